package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	foundationerrors "github.com/class4kayaker/pelican-lesscpy/internal/foundation/errors"
)

func validConfig() *Config {
	return &Config{Less: LessConfig{
		Files: AssetEntries{
			{Key: "main", Input: "style.less", Output: "main.css"},
		},
		Integrity:  []string{"sha256"},
		OutputPath: "output",
		Compiler:   CompilerConfig{Engine: "auto", LessC: "lessc"},
	}}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(*Config)
		wantErr      bool
		wantWarnings int
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no files declared", mutate: func(c *Config) { c.Less.Files = nil }},
		{
			name:    "empty key",
			mutate:  func(c *Config) { c.Less.Files[0].Key = " " },
			wantErr: true,
		},
		{
			name: "duplicate key",
			mutate: func(c *Config) {
				c.Less.Files = append(c.Less.Files, AssetEntry{Key: "main", Input: "x.less", Output: "x.css"})
			},
			wantErr: true,
		},
		{
			name:    "missing output",
			mutate:  func(c *Config) { c.Less.Files[0].Output = "" },
			wantErr: true,
		},
		{
			name:    "bad engine",
			mutate:  func(c *Config) { c.Less.Compiler.Engine = "sass" },
			wantErr: true,
		},
		{
			name: "duplicate output path warns",
			mutate: func(c *Config) {
				c.Less.Files = append(c.Less.Files, AssetEntry{Key: "alt", Input: "alt.less", Output: "./main.css"})
			},
			wantWarnings: 1,
		},
		{
			name:         "unknown algorithm warns",
			mutate:       func(c *Config) { c.Less.Integrity = []string{"sha256", "md5", "sha512"} },
			wantWarnings: 2,
		},
		{
			name: "head partial without files warns",
			mutate: func(c *Config) {
				c.Less.Files = nil
				c.Less.HeadPartial = "partials/css.html"
			},
			wantWarnings: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			warnings, err := Validate(cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryValidation))
				return
			}
			require.NoError(t, err)
			assert.Len(t, warnings, tt.wantWarnings, "warnings: %v", warnings)
		})
	}
}
