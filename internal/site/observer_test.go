package site

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/class4kayaker/pelican-lesscpy/internal/metrics"
	"github.com/class4kayaker/pelican-lesscpy/internal/pipeline"
)

type durationRecorder struct {
	metrics.NoopRecorder
	phases []string
}

func (r *durationRecorder) ObservePhaseDuration(phase string, _ time.Duration) {
	r.phases = append(r.phases, phase)
}

func TestObservers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	rec := &durationRecorder{}

	obs := Observers{LogObserver{Logger: logger}, RecorderObserver{Recorder: rec}, NoopObserver{}}
	obs.OnPhaseStart("run-1", pipeline.PhaseMetadata)
	obs.OnPhaseComplete("run-1", pipeline.PhaseMetadata, 5*time.Millisecond, nil)
	obs.OnPhaseComplete("run-1", pipeline.PhaseFinalize, time.Millisecond, errors.New("disk full"))

	assert.Equal(t, []string{"metadata", "finalize"}, rec.phases)
	out := buf.String()
	assert.Contains(t, out, "Phase started")
	assert.Contains(t, out, "run_id=run-1")
	assert.Contains(t, out, "duration_ms=5")
	assert.Contains(t, out, `error="disk full"`)
}
