// Package integrity derives cache-busting version tokens and sub-resource
// integrity attributes from compiled stylesheet content.
package integrity

import (
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"hash"
	"slices"
	"strings"

	foundationerrors "github.com/class4kayaker/pelican-lesscpy/internal/foundation/errors"
)

// TokenLength is the number of hex characters of the SHA-256 digest used as version token.
const TokenLength = 6

// registry maps algorithm names accepted in configuration to digest constructors.
var registry = map[string]func() hash.Hash{
	"sha256": sha256.New,
	"sha384": sha512.New384,
}

// Result is the outcome of Compute.
type Result struct {
	// Token is "?" followed by the first TokenLength hex characters of the
	// SHA-256 digest, or empty when versioning is disabled.
	Token string
	// Attribute is the space-joined "<alg>-<base64>" list, possibly empty.
	Attribute string
	// Unknown lists requested algorithm names that are not in the registry,
	// in request order. They contribute nothing to Attribute.
	Unknown []string
}

// Compute derives the version token and integrity attribute for content.
// Digests appear in the order algorithms were requested; unknown names are
// reported in Result.Unknown instead of failing.
func Compute(content []byte, algorithms []string, versioned bool) Result {
	var res Result
	if versioned {
		res.Token = Token(content)
	}

	parts := make([]string, 0, len(algorithms))
	for _, name := range algorithms {
		newHash, ok := registry[name]
		if !ok {
			res.Unknown = append(res.Unknown, name)
			continue
		}
		parts = append(parts, name+"-"+digest(newHash, content))
	}
	res.Attribute = strings.Join(parts, " ")
	return res
}

// Token returns the cache-busting query suffix for content.
func Token(content []byte) string {
	sum := sha256.Sum256(content)
	return "?" + hex.EncodeToString(sum[:])[:TokenLength]
}

// Known reports whether name is a supported digest algorithm.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// Algorithms returns the supported algorithm names in sorted order.
func Algorithms() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// UnknownAlgorithmError builds the warning logged when an algorithm is skipped.
func UnknownAlgorithmError(name string) *foundationerrors.ClassifiedError {
	return foundationerrors.IntegrityError("unknown integrity algorithm").
		WithContext("algorithm", name).
		Build()
}

// Verify reports whether content matches every recognised digest in attribute.
// An attribute without any recognised digest does not verify.
func Verify(content []byte, attribute string) bool {
	matched := 0
	for _, field := range strings.Fields(attribute) {
		name, want, ok := strings.Cut(field, "-")
		if !ok {
			return false
		}
		newHash, known := registry[name]
		if !known {
			continue
		}
		got := digest(newHash, content)
		if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			return false
		}
		matched++
	}
	return matched > 0
}

func digest(newHash func() hash.Hash, content []byte) string {
	h := newHash()
	_, _ = h.Write(content)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
