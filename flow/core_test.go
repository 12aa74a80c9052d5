package flow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/flow"
)

type upper struct{}

func (upper) Run(_ context.Context, input any) (any, error) {
	return input.(string) + "!", nil
}

func TestJoin_ChainsNodesSequentially(t *testing.T) {
	joined, err := flow.Join(upper{}, upper{})
	require.NoError(t, err)

	out, err := joined.Run(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi!!", out)
}

func TestOfNode_WrapsSingleNode(t *testing.T) {
	f := flow.OfNode(upper{})
	out, err := f.Run(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi!", out)
}

func TestOfProcessor_WrapsProcessorFunc(t *testing.T) {
	proc := flow.Processor[any, any](func(_ context.Context, input any) (any, error) {
		return input.(string) + "?", nil
	})
	f := flow.OfProcessor(proc)

	out, err := f.Run(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi?", out)
}
