package commands

import (
	"fmt"

	prom "github.com/prometheus/client_golang/prometheus"

	foundationerrors "github.com/class4kayaker/pelican-lesscpy/internal/foundation/errors"
	"github.com/class4kayaker/pelican-lesscpy/internal/metrics"
	"github.com/class4kayaker/pelican-lesscpy/internal/pipeline"
	"github.com/class4kayaker/pelican-lesscpy/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics for this run to a textfile-collector file"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	plugin, err := pipeline.NewLessPluginFromConfig(cfg)
	if err != nil {
		return err
	}
	logger := commandLogger("build")
	plugin = plugin.WithLogger(logger)

	observers := site.Observers{site.LogObserver{Logger: logger}}
	var reg *prom.Registry
	if b.MetricsFile != "" {
		reg = prom.NewRegistry()
		rec := metrics.NewPrometheusRecorder(reg)
		plugin = plugin.WithRecorder(rec)
		observers = append(observers, site.RecorderObserver{Recorder: rec})
	}

	logger.Info("Starting stylesheet build",
		"config", root.Config,
		"output", cfg.Less.OutputPath,
		"entries", len(cfg.Less.Files))

	report, runErr := site.NewGenerator(cfg, plugin).
		WithObserver(observers).
		WithLogger(logger).
		Run(g.ctx())

	if reg != nil {
		if err := prom.WriteToTextfile(b.MetricsFile, reg); err != nil {
			logger.Error("Failed to write metrics file", "path", b.MetricsFile, "error", err)
			if runErr == nil {
				runErr = foundationerrors.FileSystemError("failed to write metrics file").
					WithCause(err).
					WithContext("path", b.MetricsFile).
					Build()
			}
		}
	}
	if runErr != nil {
		return runErr
	}

	out := g.stdout()
	fmt.Fprintf(out, "Built %d stylesheet(s) into %s (run %s)\n", report.Written, cfg.Less.OutputPath, report.RunID)
	if report.HeadPartial != "" {
		fmt.Fprintf(out, "Wrote link tags to %s\n", report.HeadPartial)
	}
	return nil
}
