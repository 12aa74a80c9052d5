package flow

import (
	"context"
	"errors"
)

// LoopConfig configures a Loop: a node run repeatedly against the same
// input until MaxIterations is hit or Terminator says stop. Used by
// conditionalLoop (workflow/graph.go) to implement spec.md §4.4's
// knowledge-gap/depth/section-evaluate/revision loop-back edges, each
// capped by loopSafetyCap.
type LoopConfig[I any, O any] struct {
	// Node runs once per iteration.
	Node Node[I, O]

	// MaxIterations is a hard cap on iterations (0-based count); <= 0 means
	// no cap, relying solely on Terminator.
	MaxIterations int

	// Terminator reports whether the loop should stop after an iteration,
	// given the iteration index, the loop's input, and that iteration's
	// output. If nil, the loop runs MaxIterations times, or exactly once when
	// MaxIterations <= 0.
	Terminator func(ctx context.Context, iteration int, input I, output O) (bool, error)
}

func (cfg *LoopConfig[I, O]) validate() error {
	if cfg == nil {
		return errors.New("loop config cannot be nil")
	}
	if cfg.Node == nil {
		return errors.New("loop node cannot be nil")
	}
	return nil
}

// Loop runs a node repeatedly until a termination condition is met.
type Loop[I any, O any] struct {
	node          Node[I, O]
	maxIterations int
	terminator    func(context.Context, int, I, O) (bool, error)
}

// NewLoop builds a Loop from cfg, validating it first.
func NewLoop[I any, O any](cfg *LoopConfig[I, O]) (*Loop[I, O], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Loop[I, O]{
		node:          cfg.Node,
		maxIterations: cfg.MaxIterations,
		terminator:    cfg.Terminator,
	}, nil
}

// shouldTerminate combines MaxIterations and Terminator with OR logic: stop
// once either says so. With neither set, a single iteration always stops.
func (l *Loop[I, O]) shouldTerminate(ctx context.Context, iteration int, input I, output O) (bool, error) {
	if l.terminator == nil {
		return l.maxIterations <= 0 || iteration >= l.maxIterations-1, nil
	}
	stop, err := l.terminator(ctx, iteration, input, output)
	if err != nil {
		return false, err
	}
	if l.maxIterations > 0 && iteration >= l.maxIterations-1 {
		return true, nil
	}
	return stop, nil
}

// Run implements Node[I, O]: repeats node against the same input until
// shouldTerminate says stop, returning the final iteration's output.
func (l *Loop[I, O]) Run(ctx context.Context, input I) (O, error) {
	var iteration int
	for {
		output, err := l.node.Run(ctx, input)
		if err != nil {
			return output, err
		}

		stop, err := l.shouldTerminate(ctx, iteration, input, output)
		if err != nil {
			return output, err
		}
		if stop {
			return output, nil
		}
		iteration++
	}
}
