// Package middleware wraps every workflow node with the before/after hook
// pipeline spec.md §4.2 names: tracing, task logging, state-reducer
// protection, error draining, context compression, token budgeting, and
// context prefetch. It is built directly atop flow's own Middleware[I,O]
// decorator (flow/processor.go) — the teacher already models "wrap a
// Processor with cross-cutting behavior" as a first-class type; this
// package only supplies the concrete before/after hook composition and the
// seven hooks spec.md requires.
package middleware

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/blogforge/core/flow"
	"github.com/blogforge/core/state"
)

// Hook is one middleware's contribution to the pipeline. Before runs prior
// to the wrapped node; After runs once the node (and its nested graph, if
// any) has returned, regardless of nodeErr.
type Hook interface {
	Name() string
	Before(ctx context.Context, nodeName string, s *state.Shared) error
	After(ctx context.Context, nodeName string, s *state.Shared, elapsed time.Duration, nodeErr error) error
}

// envEnabled reads a boolean kill-switch env var, defaulting to true when
// unset or unparsable — middlewares are on by default.
func envEnabled(key string) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return true
	}
	return b
}

// Pipeline composes an ordered list of Hooks into one flow.Middleware.
// Registration order is execution order for Before; the same order is used
// for After (spec.md §4.2: "same order" — no reversal, unlike typical
// onion-style middleware stacks).
type Pipeline struct {
	hooks []Hook
}

// NewPipeline registers every hook in the given order; each hook checks its
// own kill-switch when it runs.
func NewPipeline(hooks ...Hook) *Pipeline {
	enabled := make([]Hook, 0, len(hooks))
	for _, h := range hooks {
		enabled = append(enabled, h)
	}
	return &Pipeline{hooks: enabled}
}

// masterSwitchEnv is spec.md §6's MIDDLEWARE_PIPELINE_ENABLED.
const masterSwitchEnv = "MIDDLEWARE_PIPELINE_ENABLED"

// Wrap returns a flow.Middleware (flow/processor.go's
// func(Processor[I,O]) Processor[I,O] decorator, same shape the teacher
// itself uses) that runs this pipeline's hooks around a node named
// nodeName. When the master switch is off, the processor runs unmodified.
func (p *Pipeline) Wrap(nodeName string) flow.Middleware[*state.Shared, *state.Shared] {
	return func(next flow.Processor[*state.Shared, *state.Shared]) flow.Processor[*state.Shared, *state.Shared] {
		if !envEnabled(masterSwitchEnv) {
			return next
		}
		return func(ctx context.Context, s *state.Shared) (*state.Shared, error) {
			start := time.Now()
			for _, h := range p.hooks {
				if err := h.Before(ctx, nodeName, s); err != nil {
					return nil, err
				}
			}
			out, nodeErr := next(ctx, s)
			elapsed := time.Since(start)
			for _, h := range p.hooks {
				if err := h.After(ctx, nodeName, s, elapsed, nodeErr); err != nil && nodeErr == nil {
					nodeErr = err
				}
			}
			if nodeErr != nil {
				return nil, nodeErr
			}
			return out, nil
		}
	}
}
