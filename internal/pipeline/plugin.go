package pipeline

import (
	"context"
	"log/slog"

	"github.com/class4kayaker/pelican-lesscpy/internal/compiler"
	"github.com/class4kayaker/pelican-lesscpy/internal/config"
	foundationerrors "github.com/class4kayaker/pelican-lesscpy/internal/foundation/errors"
	"github.com/class4kayaker/pelican-lesscpy/internal/logfields"
	"github.com/class4kayaker/pelican-lesscpy/internal/metrics"
)

// Plugin is the lifecycle contract a host drives during one generation run.
// OnMetadataPhase is invoked before templates render and OnFinalizePhase
// after; both receive the same RunContext.
type Plugin interface {
	OnMetadataPhase(ctx context.Context, rc *RunContext) error
	OnFinalizePhase(ctx context.Context, rc *RunContext) error
}

// LessPlugin runs MetadataPhase and BuildPhase with one shared compiler.
type LessPlugin struct {
	compiler compiler.Compiler
	logger   *slog.Logger
	recorder metrics.Recorder
}

var _ Plugin = (*LessPlugin)(nil)

// NewLessPlugin creates a plugin that compiles with c.
func NewLessPlugin(c compiler.Compiler) *LessPlugin {
	return &LessPlugin{
		compiler: c,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
	}
}

// NewLessPluginFromConfig builds the configured compiler and wraps it in a plugin.
func NewLessPluginFromConfig(cfg *config.Config) (*LessPlugin, error) {
	c, err := compiler.New(cfg.Less.Compiler.Engine, cfg.Less.Compiler.LessC)
	if err != nil {
		return nil, err
	}
	return NewLessPlugin(c), nil
}

// WithLogger sets the logger used by both phases.
func (p *LessPlugin) WithLogger(l *slog.Logger) *LessPlugin {
	if l != nil {
		p.logger = l
	}
	return p
}

// WithRecorder sets the metrics recorder used by both phases.
func (p *LessPlugin) WithRecorder(r metrics.Recorder) *LessPlugin {
	if r != nil {
		p.recorder = r
	}
	return p
}

func (p *LessPlugin) OnMetadataPhase(ctx context.Context, rc *RunContext) error {
	if rc == nil || rc.Config == nil {
		return foundationerrors.InternalError("run context has no configuration").Build()
	}
	if rc.Sink == nil {
		return foundationerrors.InternalError("run context has no sink").Build()
	}
	phase := &MetadataPhase{
		Compiler: p.compiler,
		Sink:     rc.Sink,
		Logger:   p.logger.With(logfields.RunID(rc.RunID)),
		Recorder: p.recorder,
	}
	_, err := phase.Run(ctx, rc.Config)
	return err
}

func (p *LessPlugin) OnFinalizePhase(ctx context.Context, rc *RunContext) error {
	if rc == nil || rc.Config == nil {
		return foundationerrors.InternalError("run context has no configuration").Build()
	}
	phase := &BuildPhase{
		Compiler: p.compiler,
		Logger:   p.logger.With(logfields.RunID(rc.RunID)),
		Recorder: p.recorder,
	}
	if rc.Sink != nil {
		if published, ok := rc.Sink.Records(); ok {
			phase.Expected = &published
		}
	}
	err := phase.Run(ctx, rc.Config)
	rc.Written = phase.Written
	return err
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

func recorderOrNoop(r metrics.Recorder) metrics.Recorder {
	if r == nil {
		return metrics.NoopRecorder{}
	}
	return r
}

func cancelled(err error) error {
	return foundationerrors.WrapError(err, foundationerrors.CategoryInternal, "run cancelled").
		Fatal().
		Build()
}
