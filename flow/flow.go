// Package flow Flow represents a complete data processing pipeline composed of connected nodes.
//
// Flow provides the primary entry point for constructing and executing
// sequential processing pipelines: an ordered list of nodes, each one
// threading its output into the next node's input.
package flow

import (
	"context"
	"errors"
)

// Flow chains an ordered list of nodes into a single node, threading each
// node's output into the next node's input.
type Flow struct {
	nodes []Node[any, any]
}

// NewFlow builds a Flow from an ordered list of nodes. At least one node is
// required.
func NewFlow(nodes ...Node[any, any]) (*Flow, error) {
	if len(nodes) == 0 {
		return nil, errors.New("no nodes provided")
	}
	return &Flow{nodes: nodes}, nil
}

// Then appends a node to the end of the flow.
func (f *Flow) Then(node Node[any, any]) *Flow {
	f.nodes = append(f.nodes, node)
	return f
}

// Run executes each node in order, passing the previous node's output as the
// next node's input. It stops and returns the error from the first node that
// fails, including context cancellation between steps.
func (f *Flow) Run(ctx context.Context, input any) (any, error) {
	current := input
	for _, node := range f.nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := node.Run(ctx, current)
		if err != nil {
			return nil, err
		}
		current = out
	}
	return current, nil
}
