package flow

import (
	"errors"
	"sync/atomic"
)

// buildOnce gives a builder atomic build-once semantics, so Build() can't be
// called twice and Then() can't be called after Build().
type buildOnce struct {
	state atomic.Bool
}

func (b *buildOnce) markBuilt() bool {
	return b.state.CompareAndSwap(false, true)
}

func (b *buildOnce) isBuilt() bool {
	return b.state.Load()
}

// Builder accumulates a sequential chain of nodes and validates it on
// Build(). Used by workflow/graph.go to assemble the top-level pipeline and
// each loop-back cycle's non-looping segment (flow.Join covers those).
type Builder struct {
	errs  []error
	nodes []Node[any, any]
	once  buildOnce
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) validate() error {
	if len(b.errs) != 0 {
		return errors.Join(b.errs...)
	}
	if len(b.nodes) == 0 {
		return errors.New("flow must contain at least one node: current flow is empty")
	}
	return nil
}

func (b *Builder) recordError(err error) {
	if err != nil {
		b.errs = append(b.errs, err)
	}
}

// Then appends node to the chain. Nil nodes are ignored. Calling Then after
// Build records an error instead of panicking.
func (b *Builder) Then(node Node[any, any]) *Builder {
	if b.once.isBuilt() {
		b.recordError(errors.New("cannot modify builder: flow already built"))
		return b
	}
	if node != nil {
		b.nodes = append(b.nodes, node)
	}
	return b
}

// Build validates the accumulated chain and returns it as a single Node.
// Can only be called once.
func (b *Builder) Build() (Node[any, any], error) {
	if !b.once.markBuilt() {
		return nil, errors.New("builder already built: Build() can only be called once")
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return NewFlow(b.nodes...)
}
