package flow

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// BranchConfig configures a Branch: a main node plus a resolver picking
// which of Branches to run next based on the main node's output. Used by
// conditionalLoop (workflow/graph.go) to route each loop-back iteration's
// decision node to the matching continue/stop branch.
type BranchConfig struct {
	// Node is the main processing unit whose output decides the branch.
	Node Node[any, any]

	// BranchResolver returns the name of the branch to take, given the
	// original input and the main node's output. No branching occurs if nil.
	BranchResolver func(ctx context.Context, input, output any) (string, error)

	// Branches maps branch names to the node that runs when selected.
	Branches map[string]Node[any, any]
}

func (cfg *BranchConfig) validate() error {
	if cfg == nil {
		return errors.New("branch config cannot be nil")
	}
	if cfg.Node == nil {
		return errors.New("branch node cannot be nil")
	}
	return nil
}

// Branch runs a main node, then conditionally runs one of several follow-up
// nodes chosen by a resolver function.
type Branch struct {
	node           Node[any, any]
	branchResolver func(context.Context, any, any) (string, error)
	branches       map[string]Node[any, any]
}

// NewBranch builds a Branch from cfg, validating it first.
func NewBranch(cfg *BranchConfig) (*Branch, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Branch{
		node:           cfg.Node,
		branchResolver: cfg.BranchResolver,
		branches:       cfg.Branches,
	}, nil
}

func (b *Branch) resolveBranch(ctx context.Context, input, output any) (Node[any, any], error) {
	name, err := b.branchResolver(ctx, input, output)
	if err != nil {
		return nil, err
	}
	node, ok := b.branches[name]
	if !ok {
		available := slices.Collect(maps.Keys(b.branches))
		return nil, fmt.Errorf("branch %q not found: available branches are %v", name, available)
	}
	return node, nil
}

// Run implements Node[any, any]: runs the main node, then resolves and runs
// a branch if any are configured, otherwise returns the main node's output.
func (b *Branch) Run(ctx context.Context, input any) (any, error) {
	output, err := b.node.Run(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(b.branches) == 0 || b.branchResolver == nil {
		return output, nil
	}
	branchNode, err := b.resolveBranch(ctx, input, output)
	if err != nil {
		return nil, err
	}
	return branchNode.Run(ctx, output)
}
