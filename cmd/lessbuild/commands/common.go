package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/class4kayaker/pelican-lesscpy/internal/config"
)

// Global carries process-wide state into subcommands.
type Global struct {
	Context context.Context
	Stdout  io.Writer
}

func (g *Global) ctx() context.Context {
	if g == nil || g.Context == nil {
		return context.Background()
	}
	return g.Context
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path (.yaml, .yml or .toml)" default:"lessbuild.yaml" env:"LESSBUILD_CONFIG"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log output format (text|json)" env:"LESSBUILD_LOG_FORMAT"`
	Source    string           `short:"s" help:"Override less.source_path"`
	Output    string           `short:"o" help:"Override less.output_path"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Run metadata, render and finalize: compile stylesheets into the output tree"`
	Metadata MetadataCmd `cmd:"" help:"Run the metadata phase only and print the published context"`
	Links    LinksCmd    `cmd:"" help:"Print <link> tags for the configured stylesheets"`
	Verify   VerifyCmd   `cmd:"" help:"Check built stylesheets against freshly computed metadata"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(newLogger(os.Stderr, parseLogLevel(c.Verbose), config.NormalizeLogFormat(c.LogFormat)))
	return nil
}

// parseLogLevel honours -v first, then LESSBUILD_LOG_LEVEL.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	if env := os.Getenv("LESSBUILD_LOG_LEVEL"); env != "" {
		return config.NormalizeLogLevel(env).SlogLevel()
	}
	return slog.LevelInfo
}

func newLogger(w io.Writer, level slog.Level, format config.LogFormat) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// commandLogger tags the default logger with the running subcommand.
func commandLogger(command string) *slog.Logger {
	return slog.Default().With(slog.String("command", command))
}

// loadConfig loads the configuration named on the command line and applies
// the path overrides. Logging settings from the file apply only when neither
// flags nor environment set them.
func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	if root.Source != "" {
		cfg.Less.SourcePath = root.Source
	}
	if root.Output != "" {
		cfg.Less.OutputPath = root.Output
	}

	flagsSetLogging := root.Verbose || root.LogFormat != "" || os.Getenv("LESSBUILD_LOG_LEVEL") != ""
	if !flagsSetLogging && (cfg.Logging.Level != "" || cfg.Logging.Format != "") {
		level := config.NormalizeLogLevel(cfg.Logging.Level).SlogLevel()
		slog.SetDefault(newLogger(os.Stderr, level, config.NormalizeLogFormat(cfg.Logging.Format)))
		slog.Debug("Applied logging settings from configuration", "path", root.Config)
	}
	return cfg, nil
}
