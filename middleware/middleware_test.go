package middleware_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/llm"
	"github.com/blogforge/core/middleware"
	"github.com/blogforge/core/state"
	"github.com/blogforge/core/tasklog"
)

func TestPipeline_TracingWritesTraceIDOnce(t *testing.T) {
	tracing := &middleware.Tracing{TraceID: "trace-123"}
	pipeline := middleware.NewPipeline(tracing)
	wrapped := pipeline.Wrap("researcher")(func(_ context.Context, s *state.Shared) (*state.Shared, error) {
		return s, nil
	})

	s := state.New("topic", "tutorial", "beginner", state.LengthMini)
	_, err := wrapped(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "trace-123", s.TraceID)
}

func TestPipeline_TaskLogRecordsDurationAndStatus(t *testing.T) {
	task := tasklog.New("t1", "topic", "tutorial", "mini")
	hook := &middleware.TaskLog{Task: task}
	pipeline := middleware.NewPipeline(hook)
	wrapped := pipeline.Wrap("writer")(func(_ context.Context, s *state.Shared) (*state.Shared, error) {
		time.Sleep(time.Millisecond)
		return s, nil
	})

	s := state.New("topic", "tutorial", "beginner", state.LengthMini)
	_, err := wrapped(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, task.Steps, 1)
	assert.Equal(t, "writer", task.Steps[0].Agent)
	assert.Equal(t, tasklog.LevelInfo, task.Steps[0].Level)
}

func TestPipeline_TaskLogRecordsErrorLevelOnNodeError(t *testing.T) {
	task := tasklog.New("t2", "topic", "tutorial", "mini")
	hook := &middleware.TaskLog{Task: task}
	errTracking := &middleware.ErrorTracking{}
	pipeline := middleware.NewPipeline(errTracking, hook)
	boom := errors.New("writer blew up")
	wrapped := pipeline.Wrap("writer")(func(_ context.Context, s *state.Shared) (*state.Shared, error) {
		return nil, boom
	})

	s := state.New("topic", "tutorial", "beginner", state.LengthMini)
	_, err := wrapped(context.Background(), s)
	require.Error(t, err)
	require.Len(t, task.Steps, 1)
	assert.Equal(t, tasklog.LevelError, task.Steps[0].Level)
	assert.Contains(t, s.ErrorHistory, "writer: writer blew up")
}

func TestPipeline_ReducerMergesSectionsFromSnapshot(t *testing.T) {
	reducer := &middleware.Reducer{}
	pipeline := middleware.NewPipeline(reducer)
	wrapped := pipeline.Wrap("writer")(func(_ context.Context, s *state.Shared) (*state.Shared, error) {
		s.Sections = append(s.Sections, state.Section{ID: "s1", Title: "Intro"})
		return s, nil
	})

	s := state.New("topic", "tutorial", "beginner", state.LengthMini)
	s.Sections = []state.Section{{ID: "s0", Title: "Existing"}}
	_, err := wrapped(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, s.Sections, 2)
	assert.Equal(t, "s0", s.Sections[0].ID)
	assert.Equal(t, "s1", s.Sections[1].ID)
}

func TestContextPrefetch_FiresOnceBeforeResearcher(t *testing.T) {
	calls := 0
	loader := loaderFunc(func(_ context.Context, ids []string) ([]string, error) {
		calls++
		return []string{"doc text"}, nil
	})
	prefetch := &middleware.ContextPrefetch{Loader: loader}
	pipeline := middleware.NewPipeline(prefetch)
	wrapped := pipeline.Wrap("researcher")(func(_ context.Context, s *state.Shared) (*state.Shared, error) {
		return s, nil
	})

	s := state.New("topic", "tutorial", "beginner", state.LengthMini)
	s.DocumentIDs = []string{"doc1"}

	_, err := wrapped(context.Background(), s)
	require.NoError(t, err)
	_, err = wrapped(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "prefetch must fire exactly once")
	assert.Equal(t, []string{"doc text"}, s.PrefetchDocs)
}

type loaderFunc func(ctx context.Context, ids []string) ([]string, error)

func (f loaderFunc) BatchLoad(ctx context.Context, ids []string) ([]string, error) { return f(ctx, ids) }

func TestTokenBudget_SetsWarningPastCumulativeThreshold(t *testing.T) {
	tracker := llm.NewTokenTracker()
	tracker.Record(llm.Usage{Agent: "writer", InputTokens: 900, OutputTokens: 0})
	budget := &middleware.TokenBudget{TotalBudget: 1000, Tracker: tracker}
	pipeline := middleware.NewPipeline(budget)
	wrapped := pipeline.Wrap("writer")(func(_ context.Context, s *state.Shared) (*state.Shared, error) {
		return s, nil
	})

	s := state.New("topic", "tutorial", "beginner", state.LengthMini)
	_, err := wrapped(context.Background(), s)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ErrorHistory)
	assert.Equal(t, 900, s.UsedTokens)
}
