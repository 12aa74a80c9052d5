package middleware

import (
	"context"
	"time"

	"github.com/blogforge/core/state"
)

// Tracing writes the run's trace id onto Shared before each node so
// downstream logs (TaskLog, any structured logger) can tag every line with
// it. It never touches state on After (spec.md §4.2 item 1).
type Tracing struct {
	TraceID string
}

const tracingEnv = "TRACING_ENABLED"

func (t *Tracing) Name() string { return "tracing" }

func (t *Tracing) Before(_ context.Context, _ string, s *state.Shared) error {
	if !envEnabled(tracingEnv) {
		return nil
	}
	if s.TraceID == "" {
		s.TraceID = t.TraceID
	}
	return nil
}

func (t *Tracing) After(context.Context, string, *state.Shared, time.Duration, error) error {
	return nil
}
