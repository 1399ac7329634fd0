package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/class4kayaker/pelican-lesscpy/internal/compiler"
	foundationerrors "github.com/class4kayaker/pelican-lesscpy/internal/foundation/errors"
	"github.com/class4kayaker/pelican-lesscpy/internal/foundation/normalization"
	"github.com/class4kayaker/pelican-lesscpy/internal/integrity"
)

var engineNormalizer = normalization.NewNormalizer(map[string]string{
	compiler.EngineAuto:  compiler.EngineAuto,
	compiler.EngineLessC: compiler.EngineLessC,
	compiler.EngineCSS:   compiler.EngineCSS,
}, compiler.EngineAuto)

// Validate checks cfg for errors that make a run meaningless and for
// suspicious settings that a run tolerates. Warnings never block a run.
//
// Paths are not sandboxed here; escaping entries are skipped at run time.
func Validate(cfg *Config) ([]string, error) {
	var warnings []string
	less := cfg.Less

	if _, err := engineNormalizer.NormalizeWithError(less.Compiler.Engine); err != nil {
		return nil, foundationerrors.ValidationError("invalid compiler engine").
			WithCause(err).
			WithContext("field", "less.compiler.engine").
			Build()
	}

	seenKeys := make(map[string]bool, len(less.Files))
	outputs := make(map[string]string, len(less.Files))
	for i, entry := range less.Files {
		if strings.TrimSpace(entry.Key) == "" {
			return nil, foundationerrors.ValidationError("entry key must not be empty").
				WithContext("index", i).
				Build()
		}
		if seenKeys[entry.Key] {
			return nil, foundationerrors.ValidationError("duplicate entry key").
				WithContext("entry", entry.Key).
				Build()
		}
		seenKeys[entry.Key] = true

		if entry.Input == "" || entry.Output == "" {
			return nil, foundationerrors.ValidationError("entry requires both input and output").
				WithContext("entry", entry.Key).
				Build()
		}

		out := filepath.Clean(entry.Output)
		if prev, ok := outputs[out]; ok {
			warnings = append(warnings, fmt.Sprintf("entries %q and %q share output %q; %q is written last and wins", prev, entry.Key, entry.Output, entry.Key))
		}
		outputs[out] = entry.Key
	}

	for _, alg := range less.Integrity {
		if !integrity.Known(alg) {
			warnings = append(warnings, fmt.Sprintf("unknown integrity algorithm %q will be skipped (supported: %s)", alg, strings.Join(integrity.Algorithms(), ", ")))
		}
	}

	if less.HeadPartial != "" && less.Files == nil {
		warnings = append(warnings, "head_partial is set but no files are declared; nothing will be rendered")
	}

	return warnings, nil
}
