package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/class4kayaker/pelican-lesscpy/internal/compiler"
	foundationerrors "github.com/class4kayaker/pelican-lesscpy/internal/foundation/errors"
)

// Format identifies a configuration file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// DefaultOutputPath is used when output_path is not configured.
const DefaultOutputPath = "output"

// FormatForPath picks the decoder for a configuration file by extension; YAML is the default.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Load loads, defaults and validates configuration from the specified file.
// Validation warnings are logged; validation errors are returned.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	// #nosec G304 -- configPath is supplied by the operator.
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, foundationerrors.ConfigError("configuration file not found").
				WithContext("path", configPath).
				Build()
		}
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "failed to read config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse(data, FormatForPath(configPath))
	if err != nil {
		return nil, err
	}

	warnings, err := Validate(cfg)
	for _, w := range warnings {
		slog.Warn("Configuration warning", "path", configPath, "warning", w)
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes configuration bytes after expanding ${VAR} references and applies defaults.
func Parse(data []byte, format Format) (*Config, error) {
	expanded := []byte(os.ExpandEnv(string(data)))

	var cfg Config
	switch format {
	case FormatTOML:
		if err := toml.NewDecoder(bytes.NewReader(expanded)).Decode(&cfg); err != nil {
			return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "failed to unmarshal TOML config").
				Fatal().
				Build()
		}
	default:
		if err := yaml.Unmarshal(expanded, &cfg); err != nil {
			return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "failed to unmarshal config").
				Fatal().
				Build()
		}
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Less.OutputPath == "" {
		cfg.Less.OutputPath = DefaultOutputPath
	}
	if strings.TrimSpace(cfg.Less.Compiler.Engine) == "" {
		cfg.Less.Compiler.Engine = compiler.EngineAuto
	}
	if cfg.Less.Compiler.LessC == "" {
		cfg.Less.Compiler.LessC = compiler.DefaultLessC
	}
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return foundationerrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := Config{
		Less: LessConfig{
			Files: AssetEntries{
				{Key: "main", Input: "less/style.less", Output: "theme/css/main.css"},
				{Key: "print", Input: "less/print.less", Output: "theme/css/print.css"},
			},
			Integrity:   []string{"sha384"},
			Versioned:   true,
			OutputPath:  DefaultOutputPath,
			HeadPartial: "partials/stylesheets.html",
			Compiler: CompilerConfig{
				Engine: compiler.EngineAuto,
				LessC:  compiler.DefaultLessC,
			},
		},
	}

	var data []byte
	var err error
	switch FormatForPath(configPath) {
	case FormatTOML:
		data, err = toml.Marshal(&example)
	default:
		data, err = yaml.Marshal(&example)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to write config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}
	return nil
}
