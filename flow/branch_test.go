package flow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/flow"
)

type decision struct{ approved bool }

func decisionNode(approved bool) flow.Node[any, any] {
	return flow.Processor[any, any](func(context.Context, any) (any, error) {
		return decision{approved: approved}, nil
	})
}

func branchResolver(_ context.Context, _, output any) (string, error) {
	if output.(decision).approved {
		return "stop", nil
	}
	return "continue", nil
}

func TestNewBranch_RejectsNilConfig(t *testing.T) {
	_, err := flow.NewBranch(nil)
	assert.Error(t, err)
}

func TestNewBranch_RejectsNilNode(t *testing.T) {
	_, err := flow.NewBranch(&flow.BranchConfig{})
	assert.Error(t, err)
}

func TestBranch_RunsMainNodeOnlyWithNoBranches(t *testing.T) {
	b, err := flow.NewBranch(&flow.BranchConfig{Node: decisionNode(true)})
	require.NoError(t, err)

	out, err := b.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, decision{approved: true}, out)
}

func TestBranch_RoutesToResolvedBranch(t *testing.T) {
	b, err := flow.NewBranch(&flow.BranchConfig{
		Node:           decisionNode(true),
		BranchResolver: branchResolver,
		Branches: map[string]flow.Node[any, any]{
			"stop":     flow.Processor[any, any](func(context.Context, any) (any, error) { return "stopped", nil }),
			"continue": flow.Processor[any, any](func(context.Context, any) (any, error) { return "continued", nil }),
		},
	})
	require.NoError(t, err)

	out, err := b.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "stopped", out)
}

func TestBranch_UnknownBranchNameReturnsError(t *testing.T) {
	b, err := flow.NewBranch(&flow.BranchConfig{
		Node:           decisionNode(true),
		BranchResolver: branchResolver,
		Branches:       map[string]flow.Node[any, any]{"continue": decisionNode(false)},
	})
	require.NoError(t, err)

	_, err = b.Run(context.Background(), nil)
	assert.ErrorContains(t, err, "not found")
}

func TestBranch_PropagatesMainNodeError(t *testing.T) {
	wantErr := errors.New("evaluate failed")
	failing := flow.Processor[any, any](func(context.Context, any) (any, error) { return nil, wantErr })

	b, err := flow.NewBranch(&flow.BranchConfig{Node: failing})
	require.NoError(t, err)

	_, err = b.Run(context.Background(), nil)
	assert.Equal(t, wantErr, err)
}
