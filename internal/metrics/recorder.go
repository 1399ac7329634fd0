package metrics

import "time"

// ResultLabel enumerates per-entry result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultSkipped ResultLabel = "skipped"
	ResultFailed  ResultLabel = "failed"
)

// Recorder defines observability hooks for phase and entry metrics.
type Recorder interface {
	ObservePhaseDuration(phase string, d time.Duration)
	IncEntryResult(phase string, result ResultLabel)
	IncCompile(phase string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePhaseDuration(string, time.Duration) {}
func (NoopRecorder) IncEntryResult(string, ResultLabel)         {}
func (NoopRecorder) IncCompile(string)                          {}
