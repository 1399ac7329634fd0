package site

import (
	"log/slog"
	"time"

	"github.com/class4kayaker/pelican-lesscpy/internal/logfields"
	"github.com/class4kayaker/pelican-lesscpy/internal/metrics"
	"github.com/class4kayaker/pelican-lesscpy/internal/pipeline"
)

// Observer receives callbacks around phase execution.
type Observer interface {
	OnPhaseStart(runID string, phase pipeline.PhaseName)
	OnPhaseComplete(runID string, phase pipeline.PhaseName, d time.Duration, err error)
}

// NoopObserver is a no-op implementation.
type NoopObserver struct{}

func (NoopObserver) OnPhaseStart(string, pipeline.PhaseName)                         {}
func (NoopObserver) OnPhaseComplete(string, pipeline.PhaseName, time.Duration, error) {}

// RecorderObserver adapts metrics.Recorder into an Observer.
type RecorderObserver struct{ Recorder metrics.Recorder }

func (RecorderObserver) OnPhaseStart(string, pipeline.PhaseName) {}
func (r RecorderObserver) OnPhaseComplete(_ string, phase pipeline.PhaseName, d time.Duration, _ error) {
	if r.Recorder != nil {
		r.Recorder.ObservePhaseDuration(phase.String(), d)
	}
}

// LogObserver logs phase boundaries.
type LogObserver struct{ Logger *slog.Logger }

func (o LogObserver) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o LogObserver) OnPhaseStart(runID string, phase pipeline.PhaseName) {
	o.logger().Debug("Phase started", logfields.RunID(runID), logfields.Phase(phase.String()))
}

func (o LogObserver) OnPhaseComplete(runID string, phase pipeline.PhaseName, d time.Duration, err error) {
	attrs := []any{
		logfields.RunID(runID),
		logfields.Phase(phase.String()),
		logfields.DurationMS(float64(d.Microseconds()) / 1000),
	}
	if err != nil {
		o.logger().Error("Phase failed", append(attrs, logfields.Error(err))...)
		return
	}
	o.logger().Info("Phase complete", attrs...)
}

// Observers fans callbacks out to every member in order.
type Observers []Observer

func (obs Observers) OnPhaseStart(runID string, phase pipeline.PhaseName) {
	for _, o := range obs {
		o.OnPhaseStart(runID, phase)
	}
}

func (obs Observers) OnPhaseComplete(runID string, phase pipeline.PhaseName, d time.Duration, err error) {
	for _, o := range obs {
		o.OnPhaseComplete(runID, phase, d, err)
	}
}
