package pipeline

import (
	"github.com/google/uuid"

	"github.com/class4kayaker/pelican-lesscpy/internal/config"
)

// RunContext is the state shared by the phases of one generation run.
// It is created at the start of a run and discarded when the run ends.
type RunContext struct {
	RunID  string
	Config *config.Config
	Sink   *ContextSink

	// Written is the number of stylesheets the finalize phase wrote.
	Written int
}

// NewRunContext creates a context with a fresh run ID and an empty sink.
func NewRunContext(cfg *config.Config) *RunContext {
	return &RunContext{
		RunID:  uuid.NewString(),
		Config: cfg,
		Sink:   NewContextSink(),
	}
}
