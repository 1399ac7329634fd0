package pipeline

// PhaseName identifies a lifecycle phase in logs and metrics.
type PhaseName string

// Canonical phase names.
const (
	PhaseMetadata PhaseName = "metadata"
	PhaseRender   PhaseName = "render"
	PhaseFinalize PhaseName = "finalize"
)

func (p PhaseName) String() string { return string(p) }
