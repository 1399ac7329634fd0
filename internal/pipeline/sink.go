package pipeline

import (
	"sync"

	foundationerrors "github.com/class4kayaker/pelican-lesscpy/internal/foundation/errors"
)

// ContextKey is the name under which compiled stylesheet records are published.
const ContextKey = "compiled_css"

// Sink receives the records of one metadata phase.
type Sink interface {
	Publish(records Records) error
}

// ContextSink is the shared, write-once context of one generation run.
// Values other than the stylesheet records may be published by the host.
type ContextSink struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewContextSink creates an empty context.
func NewContextSink() *ContextSink {
	return &ContextSink{values: make(map[string]any)}
}

// Publish stores records under ContextKey. A second publication is rejected.
func (s *ContextSink) Publish(records Records) error {
	return s.Set(ContextKey, records)
}

// Set stores value under key. Keys are write-once.
func (s *ContextSink) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.values[key]; exists {
		return foundationerrors.InternalError("context value already published").
			WithContext("key", key).
			Build()
	}
	s.values[key] = value
	return nil
}

// Value returns the value published under key.
func (s *ContextSink) Value(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Records returns the published stylesheet records.
func (s *ContextSink) Records() (Records, bool) {
	v, ok := s.Value(ContextKey)
	if !ok {
		return Records{}, false
	}
	recs, ok := v.(Records)
	return recs, ok
}
