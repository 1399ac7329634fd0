package site

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/class4kayaker/pelican-lesscpy/internal/config"
	foundationerrors "github.com/class4kayaker/pelican-lesscpy/internal/foundation/errors"
	"github.com/class4kayaker/pelican-lesscpy/internal/linktag"
	"github.com/class4kayaker/pelican-lesscpy/internal/logfields"
	"github.com/class4kayaker/pelican-lesscpy/internal/pipeline"
	"github.com/class4kayaker/pelican-lesscpy/internal/sandbox"
)

// Report summarizes one run.
type Report struct {
	RunID          string
	Start          time.Time
	End            time.Time
	PhaseDurations map[pipeline.PhaseName]time.Duration
	// Records holds what the metadata phase published; empty when nothing was published.
	Records   pipeline.Records
	Published bool
	// Written counts the stylesheets the finalize phase wrote.
	Written int
	// HeadPartial is the absolute path of the written link-tag partial, if any.
	HeadPartial string
}

// Generator runs plugins through the lifecycle for a configuration.
type Generator struct {
	cfg      *config.Config
	plugins  []pipeline.Plugin
	observer Observer
	logger   *slog.Logger
}

// NewGenerator creates a generator driving plugins in registration order.
func NewGenerator(cfg *config.Config, plugins ...pipeline.Plugin) *Generator {
	return &Generator{
		cfg:      cfg,
		plugins:  plugins,
		observer: NoopObserver{},
		logger:   slog.Default(),
	}
}

// WithObserver sets the phase observer.
func (g *Generator) WithObserver(o Observer) *Generator {
	if o != nil {
		g.observer = o
	}
	return g
}

// WithLogger sets the logger used by the render step.
func (g *Generator) WithLogger(l *slog.Logger) *Generator {
	if l != nil {
		g.logger = l
	}
	return g
}

// Run executes metadata, render and finalize. The run context is discarded
// when Run returns; only the Report survives.
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	return g.run(ctx, []pipeline.PhaseName{pipeline.PhaseMetadata, pipeline.PhaseRender, pipeline.PhaseFinalize})
}

// RunMetadata executes only the metadata phase.
func (g *Generator) RunMetadata(ctx context.Context) (*Report, error) {
	return g.run(ctx, []pipeline.PhaseName{pipeline.PhaseMetadata})
}

func (g *Generator) run(ctx context.Context, phases []pipeline.PhaseName) (*Report, error) {
	rc := pipeline.NewRunContext(g.cfg)
	report := &Report{
		RunID:          rc.RunID,
		Start:          time.Now(),
		PhaseDurations: make(map[pipeline.PhaseName]time.Duration, len(phases)),
	}
	defer func() {
		report.End = time.Now()
		report.Records, report.Published = rc.Sink.Records()
		report.Written = rc.Written
	}()

	for _, phase := range phases {
		if err := ctx.Err(); err != nil {
			return report, foundationerrors.WrapError(err, foundationerrors.CategoryInternal, "run cancelled").
				Fatal().
				WithContext("phase", phase.String()).
				Build()
		}

		g.observer.OnPhaseStart(rc.RunID, phase)
		t0 := time.Now()
		err := g.runPhase(ctx, phase, rc, report)
		d := time.Since(t0)
		report.PhaseDurations[phase] = d
		g.observer.OnPhaseComplete(rc.RunID, phase, d, err)
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

func (g *Generator) runPhase(ctx context.Context, phase pipeline.PhaseName, rc *pipeline.RunContext, report *Report) error {
	switch phase {
	case pipeline.PhaseMetadata:
		for _, p := range g.plugins {
			if err := p.OnMetadataPhase(ctx, rc); err != nil {
				return err
			}
		}
	case pipeline.PhaseRender:
		path, err := g.renderHeadPartial(rc)
		if err != nil {
			return err
		}
		report.HeadPartial = path
	case pipeline.PhaseFinalize:
		for _, p := range g.plugins {
			if err := p.OnFinalizePhase(ctx, rc); err != nil {
				return err
			}
		}
	}
	return nil
}

// renderHeadPartial writes the link tags for the published records to the
// configured head partial and returns its path. It writes nothing when no
// partial is configured or nothing was published.
func (g *Generator) renderHeadPartial(rc *pipeline.RunContext) (string, error) {
	less := g.cfg.Less
	if less.HeadPartial == "" {
		return "", nil
	}
	records, ok := rc.Sink.Records()
	if !ok {
		g.logger.Debug("No stylesheet records published; head partial not written", logfields.RunID(rc.RunID))
		return "", nil
	}

	path, err := sandbox.NewRoot(less.OutputPath).ResolveFile(less.HeadPartial)
	if err != nil {
		if !foundationerrors.IsPathEscape(err) {
			return "", err
		}
		g.logger.Error("Skipping head partial: path escapes output root",
			logfields.RunID(rc.RunID), logfields.Output(less.HeadPartial), logfields.Error(err))
		return "", nil
	}

	content, err := linktag.RenderString(linktag.FromRecords(records, less.SiteURL))
	if err != nil {
		return "", foundationerrors.InternalError("failed to render link tags").WithCause(err).Build()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", foundationerrors.FileSystemError("failed to create head partial directory").
			WithCause(err).
			WithContext("directory", dir).
			Build()
	}
	// #nosec G306 -- the partial is a public template fragment.
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", foundationerrors.FileSystemError("failed to write head partial").
			WithCause(err).
			WithContext("output", path).
			Build()
	}
	g.logger.Info("Wrote head partial", logfields.RunID(rc.RunID), logfields.Output(path), logfields.Count(records.Len()))
	return path, nil
}
