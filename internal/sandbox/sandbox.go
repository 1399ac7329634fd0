// Package sandbox confines relative paths to a trusted base directory.
//
// Resolution is purely lexical: the candidate path is joined and cleaned, then
// checked for containment. The filesystem is never consulted, so symlinks
// inside the base directory are not followed.
package sandbox

import (
	"os"
	"path/filepath"
	"strings"

	foundationerrors "github.com/class4kayaker/pelican-lesscpy/internal/foundation/errors"
)

// Resolve joins rel onto baseDir and returns the cleaned absolute path.
//
// An absolute rel replaces baseDir, as path joining does. The result must be
// baseDir itself or lie beneath it; anything else, whether reached through
// ".." segments or an absolute override, fails with a path_escape error.
// An empty baseDir means the process working directory.
func Resolve(baseDir, rel string) (string, error) {
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return "", foundationerrors.WrapError(err, foundationerrors.CategoryInternal, "resolve base directory").
			Fatal().
			WithContext("base", baseDir).
			Build()
	}

	candidate := rel
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(base, candidate)
	}
	candidate = filepath.Clean(candidate)

	if !Within(base, candidate) {
		return "", foundationerrors.PathEscapeError("path resolves outside trusted root").
			WithContext("base", base).
			WithContext("path", rel).
			Build()
	}
	return candidate, nil
}

// ResolveFile is Resolve for paths that name a file to be written. The base
// directory itself is rejected with a path_escape error, since writing to it
// would place sibling files in its parent.
func ResolveFile(baseDir, rel string) (string, error) {
	candidate, err := Resolve(baseDir, rel)
	if err != nil {
		return "", err
	}
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	if candidate == base {
		return "", foundationerrors.PathEscapeError("file path resolves to trusted root").
			WithContext("base", base).
			WithContext("path", rel).
			Build()
	}
	return candidate, nil
}

// Within reports whether target is base or lies beneath it. Both paths must
// already be absolute and clean.
func Within(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

// Root binds a trusted base directory so callers can resolve against it repeatedly.
type Root struct {
	dir string
}

// NewRoot returns a Root for dir. An empty dir means the process working directory.
func NewRoot(dir string) Root {
	return Root{dir: dir}
}

// Dir returns the configured base directory as given.
func (r Root) Dir() string { return r.dir }

// Resolve confines rel to the root. See Resolve.
func (r Root) Resolve(rel string) (string, error) {
	return Resolve(r.dir, rel)
}

// ResolveFile confines a file path to the root. See ResolveFile.
func (r Root) ResolveFile(rel string) (string, error) {
	return ResolveFile(r.dir, rel)
}
