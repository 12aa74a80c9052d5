package flow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/flow"
)

type counter struct{ n int }

func (c *counter) Run(context.Context, int) (int, error) {
	c.n++
	return c.n, nil
}

func TestNewLoop_RejectsNilConfig(t *testing.T) {
	_, err := flow.NewLoop[int, int](nil)
	assert.Error(t, err)
}

func TestNewLoop_RejectsNilNode(t *testing.T) {
	_, err := flow.NewLoop(&flow.LoopConfig[int, int]{})
	assert.Error(t, err)
}

func TestLoop_StopsWhenTerminatorSaysDone(t *testing.T) {
	c := &counter{}
	loop, err := flow.NewLoop(&flow.LoopConfig[int, int]{
		Node: c,
		Terminator: func(_ context.Context, _ int, _ int, output int) (bool, error) {
			return output >= 3, nil
		},
	})
	require.NoError(t, err)

	out, err := loop.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, out)
}

func TestLoop_MaxIterationsCapsEvenWithoutTerminatorDone(t *testing.T) {
	c := &counter{}
	loop, err := flow.NewLoop(&flow.LoopConfig[int, int]{
		Node:          c,
		MaxIterations: 2,
		Terminator: func(context.Context, int, int, int) (bool, error) {
			return false, nil
		},
	})
	require.NoError(t, err)

	out, err := loop.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, out)
}

func TestLoop_NoTerminatorRunsExactlyOnce(t *testing.T) {
	c := &counter{}
	loop, err := flow.NewLoop(&flow.LoopConfig[int, int]{Node: c})
	require.NoError(t, err)

	out, err := loop.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, out)
}

func TestLoop_PropagatesNodeError(t *testing.T) {
	wantErr := errors.New("section revision failed")
	failing := flow.Processor[int, int](func(context.Context, int) (int, error) { return 0, wantErr })

	loop, err := flow.NewLoop(&flow.LoopConfig[int, int]{Node: failing})
	require.NoError(t, err)

	_, err = loop.Run(context.Background(), 0)
	assert.Equal(t, wantErr, err)
}

func TestLoop_TerminatorErrorStopsLoop(t *testing.T) {
	wantErr := errors.New("terminator failed")
	c := &counter{}
	loop, err := flow.NewLoop(&flow.LoopConfig[int, int]{
		Node: c,
		Terminator: func(context.Context, int, int, int) (bool, error) {
			return false, wantErr
		},
	})
	require.NoError(t, err)

	_, err = loop.Run(context.Background(), 0)
	assert.Equal(t, wantErr, err)
}
