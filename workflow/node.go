// Package workflow assembles the twelve agents into the DAG spec.md §4.4
// names, using flow.Builder/Loop/Branch (flow/builder.go, flow/loop.go,
// flow/branch.go) the way the teacher composes its own pipelines, wrapped
// node-by-node in middleware.Pipeline.Wrap (spec.md §4.2).
package workflow

import (
	"context"
	"fmt"

	"github.com/blogforge/core/flow"
	"github.com/blogforge/core/middleware"
	"github.com/blogforge/core/state"
)

// stateFn is the uniform node shape every agent method satisfies: it reads
// and mutates the shared pointer and returns it (spec.md §4.5 "run(state)
// -> state").
type stateFn func(ctx context.Context, s *state.Shared) (*state.Shared, error)

// wrap wraps fn in the middleware pipeline under nodeName and adapts the
// result into a flow.Node[any, any], since everything flow.Builder/Loop/
// Branch accepts is untyped (flow/builder.go confirms every Then/NewLoop/
// NewBranch operates on Node[any, any]).
func wrap(pipeline *middleware.Pipeline, nodeName string, fn stateFn) flow.Node[any, any] {
	wrapped := pipeline.Wrap(nodeName)(flow.Processor[*state.Shared, *state.Shared](fn))
	return asAnyNode(nodeName, flow.Processor[*state.Shared, *state.Shared](wrapped))
}

// asAnyNode adapts a typed *state.Shared processor into Node[any, any],
// type-asserting the untyped input back to *state.Shared at the boundary.
func asAnyNode(nodeName string, p flow.Processor[*state.Shared, *state.Shared]) flow.Node[any, any] {
	return flow.Processor[any, any](func(ctx context.Context, input any) (any, error) {
		s, ok := input.(*state.Shared)
		if !ok {
			return nil, fmt.Errorf("workflow: node %q received non-*state.Shared input (%T)", nodeName, input)
		}
		return p.Run(ctx, s)
	})
}

// identity passes the state through unchanged; it fills the "continue"
// branch of a conditional loop-back edge when nothing needs to run.
var identity = flow.Processor[any, any](func(_ context.Context, input any) (any, error) {
	return input, nil
})

// errFn adapts an agent method whose signature is (ctx, *Shared) error —
// SearchCoordinator.DetectGaps and .RefineSearch (agent/searchcoordinator.go)
// — into the uniform stateFn shape every other agent method already has.
func errFn(fn func(ctx context.Context, s *state.Shared) error) stateFn {
	return func(ctx context.Context, s *state.Shared) (*state.Shared, error) {
		if err := fn(ctx, s); err != nil {
			return s, err
		}
		return s, nil
	}
}
