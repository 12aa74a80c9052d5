package middleware

import (
	"context"
	"time"

	"github.com/blogforge/core/state"
)

// ErrorTracking drains Shared.NodeErrors (a node's private error scratch
// pad) into ErrorHistory after each node runs (spec.md §4.2 item 4), so an
// agent that recorded a non-fatal problem doesn't need to know about the
// run-wide history itself.
type ErrorTracking struct{}

const errorTrackingEnv = "ERROR_TRACKING_MIDDLEWARE_ENABLED"

func (e *ErrorTracking) Name() string { return "error_tracking" }

func (e *ErrorTracking) Before(context.Context, string, *state.Shared) error { return nil }

func (e *ErrorTracking) After(_ context.Context, nodeName string, s *state.Shared, _ time.Duration, nodeErr error) error {
	if !envEnabled(errorTrackingEnv) {
		return nil
	}
	if nodeErr != nil {
		s.RecordNonFatal(nodeName, nodeErr)
	}
	if len(s.NodeErrors) > 0 {
		s.ErrorHistory = append(s.ErrorHistory, s.NodeErrors...)
		s.NodeErrors = s.NodeErrors[:0]
	}
	return nil
}
