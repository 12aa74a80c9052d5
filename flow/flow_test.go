package flow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/flow"
)

type appendStep struct{ suffix string }

func (a appendStep) Run(_ context.Context, input any) (any, error) {
	return input.(string) + a.suffix, nil
}

func TestNewFlow_RequiresAtLeastOneNode(t *testing.T) {
	_, err := flow.NewFlow()
	assert.Error(t, err)
}

func TestFlow_RunThreadsOutputThroughNodes(t *testing.T) {
	f, err := flow.NewFlow(appendStep{suffix: "-outline"}, appendStep{suffix: "-draft"})
	require.NoError(t, err)

	out, err := f.Run(context.Background(), "article")
	require.NoError(t, err)
	assert.Equal(t, "article-outline-draft", out)
}

func TestFlow_ThenAppendsNode(t *testing.T) {
	f, err := flow.NewFlow(appendStep{suffix: "-outline"})
	require.NoError(t, err)
	f.Then(appendStep{suffix: "-draft"})

	out, err := f.Run(context.Background(), "article")
	require.NoError(t, err)
	assert.Equal(t, "article-outline-draft", out)
}

func TestFlow_RunStopsAtFirstFailingNode(t *testing.T) {
	wantErr := errors.New("research failed")
	failing := flow.Processor[any, any](func(context.Context, any) (any, error) {
		return nil, wantErr
	})
	f, err := flow.NewFlow(appendStep{suffix: "-outline"}, failing, appendStep{suffix: "-draft"})
	require.NoError(t, err)

	_, err = f.Run(context.Background(), "article")
	assert.Equal(t, wantErr, err)
}

func TestFlow_RunRespectsCancelledContext(t *testing.T) {
	f, err := flow.NewFlow(appendStep{suffix: "-outline"}, appendStep{suffix: "-draft"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = f.Run(ctx, "article")
	assert.ErrorIs(t, err, context.Canceled)
}
