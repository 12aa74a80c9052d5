package flow_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/flow"
)

func TestProcessor_RunInvokesWrappedFunc(t *testing.T) {
	p := flow.Processor[string, string](func(_ context.Context, input string) (string, error) {
		return strings.ToUpper(input), nil
	})

	out, err := p.Run(context.Background(), "draft")
	require.NoError(t, err)
	assert.Equal(t, "DRAFT", out)
}

func TestProcessor_NilReturnsErrorInsteadOfPanicking(t *testing.T) {
	var p flow.Processor[string, string]
	_, err := p.Run(context.Background(), "draft")
	assert.Error(t, err)
}

func TestAsProcessor_ConvertsPlainFunc(t *testing.T) {
	fn := func(_ context.Context, input int) (int, error) { return input * 2, nil }
	p := flow.AsProcessor(fn)

	out, err := p.Run(context.Background(), 21)
	require.NoError(t, err)
	assert.Equal(t, 42, out)
}

func TestMiddleware_WrapsProcessorBehavior(t *testing.T) {
	base := flow.Processor[string, string](func(_ context.Context, input string) (string, error) {
		return input, nil
	})

	var called bool
	tagging := flow.Middleware[string, string](func(p flow.Processor[string, string]) flow.Processor[string, string] {
		return func(ctx context.Context, input string) (string, error) {
			called = true
			return p(ctx, input+"-tagged")
		}
	})

	wrapped := tagging(base)
	out, err := wrapped(context.Background(), "section")
	require.NoError(t, err)
	assert.Equal(t, "section-tagged", out)
	assert.True(t, called)
}
