package executor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/executor"
)

func TestRun_PreservesSubmissionOrder(t *testing.T) {
	tasks := []executor.Task[int]{
		{Name: "slow", Fn: func(ctx context.Context) (int, error) {
			time.Sleep(20 * time.Millisecond)
			return 1, nil
		}},
		{Name: "fast", Fn: func(ctx context.Context) (int, error) {
			return 2, nil
		}},
	}
	results, err := executor.Run(context.Background(), tasks, executor.Config{MaxWorkers: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "slow", results[0].TaskName)
	assert.Equal(t, "fast", results[1].TaskName)
	assert.Equal(t, 1, results[0].Value)
	assert.Equal(t, 2, results[1].Value)
}

func TestRun_OneFailureDoesNotAbortSiblings(t *testing.T) {
	boom := errors.New("boom")
	tasks := []executor.Task[string]{
		{Name: "a", Fn: func(ctx context.Context) (string, error) { return "", boom }},
		{Name: "b", Fn: func(ctx context.Context) (string, error) { return "ok", nil }},
	}
	results, err := executor.Run(context.Background(), tasks, executor.Config{MaxWorkers: 2})
	require.NoError(t, err)
	assert.False(t, results[0].Success)
	assert.ErrorIs(t, results[0].Err, boom)
	assert.True(t, results[1].Success)
	assert.Equal(t, "ok", results[1].Value)
}

func TestRun_PerTaskTimeoutShort(t *testing.T) {
	tasks := []executor.Task[int]{
		{Name: "hangs", Fn: func(ctx context.Context) (int, error) {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(2 * time.Second):
				return 1, nil
			}
		}},
	}
	cfg := executor.Config{MaxWorkers: 1}
	cfg.TimeoutSeconds = 0
	// Run with a pre-cancelled-ish short parent deadline to force timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	results, err := executor.Run(ctx, tasks, cfg)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
}

func TestRun_NoTasksIsProgrammerError(t *testing.T) {
	_, err := executor.Run[int](context.Background(), nil, executor.Config{})
	assert.Error(t, err)
}

func TestRun_PanicInTaskIsCaptured(t *testing.T) {
	tasks := []executor.Task[int]{
		{Name: "panics", Fn: func(ctx context.Context) (int, error) {
			panic("kaboom")
		}},
		{Name: "fine", Fn: func(ctx context.Context) (int, error) { return 7, nil }},
	}
	results, err := executor.Run(context.Background(), tasks, executor.Config{MaxWorkers: 2})
	require.NoError(t, err)
	assert.False(t, results[0].Success)
	require.Error(t, results[0].Err)
	assert.True(t, results[1].Success)
}
