package flow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/flow"
)

type addOne struct{}

func (addOne) Run(_ context.Context, input any) (any, error) {
	return input.(int) + 1, nil
}

type failingNode struct{ err error }

func (f failingNode) Run(context.Context, any) (any, error) {
	return nil, f.err
}

func TestBuilder_ChainsNodesInOrder(t *testing.T) {
	built, err := flow.NewBuilder().
		Then(addOne{}).
		Then(addOne{}).
		Then(addOne{}).
		Build()
	require.NoError(t, err)

	out, err := built.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, out)
}

func TestBuilder_ThenIgnoresNilNodes(t *testing.T) {
	built, err := flow.NewBuilder().
		Then(addOne{}).
		Then(nil).
		Build()
	require.NoError(t, err)

	out, err := built.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, out)
}

func TestBuilder_BuildFailsWithNoNodes(t *testing.T) {
	_, err := flow.NewBuilder().Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one node")
}

func TestBuilder_BuildCanOnlyBeCalledOnce(t *testing.T) {
	b := flow.NewBuilder().Then(addOne{})
	_, err := b.Build()
	require.NoError(t, err)

	_, err = b.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already built")
}

func TestBuilder_ThenAfterBuildRecordsError(t *testing.T) {
	b := flow.NewBuilder().Then(addOne{})
	_, err := b.Build()
	require.NoError(t, err)

	b.Then(addOne{})
	_, err = b.Build()
	require.Error(t, err)
}

func TestBuilder_PropagatesNodeError(t *testing.T) {
	wantErr := errors.New("boom")
	built, err := flow.NewBuilder().
		Then(addOne{}).
		Then(failingNode{err: wantErr}).
		Build()
	require.NoError(t, err)

	_, err = built.Run(context.Background(), 0)
	assert.Equal(t, wantErr, err)
}
