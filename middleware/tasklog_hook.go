package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/blogforge/core/llm"
	"github.com/blogforge/core/state"
	"github.com/blogforge/core/tasklog"
)

// TaskLog records per-node duration, token usage delta, and status into the
// run's tasklog.Task (spec.md §4.2 item 2 / §4.7). Duration comes from the
// elapsed time the pipeline measured around the node; token delta comes
// from diffing the shared TokenTracker's per-agent cumulative totals before
// and after the node runs (the tracker itself only accumulates).
type TaskLog struct {
	Task    *tasklog.Task
	Tracker *llm.TokenTracker

	mu       sync.Mutex
	baseline map[string]llm.AgentTotals
}

const taskLogEnv = "TASK_LOG_MIDDLEWARE_ENABLED"

func (t *TaskLog) Name() string { return "task_log" }

func (t *TaskLog) Before(_ context.Context, nodeName string, _ *state.Shared) error {
	if !envEnabled(taskLogEnv) || t.Tracker == nil {
		return nil
	}
	perAgent, _, _ := t.Tracker.Summary()
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.baseline == nil {
		t.baseline = map[string]llm.AgentTotals{}
	}
	t.baseline[nodeName] = perAgent[nodeName]
	return nil
}

func (t *TaskLog) After(_ context.Context, nodeName string, s *state.Shared, elapsed time.Duration, nodeErr error) error {
	if !envEnabled(taskLogEnv) || t.Task == nil {
		return nil
	}
	level := tasklog.LevelInfo
	detail := "ok"
	if nodeErr != nil {
		level = tasklog.LevelError
		detail = nodeErr.Error()
	} else if len(s.NodeErrors) > 0 {
		level = tasklog.LevelWarning
		detail = s.NodeErrors[len(s.NodeErrors)-1]
	}

	var delta tasklog.TokenDelta
	if t.Tracker != nil {
		perAgent, _, _ := t.Tracker.Summary()
		t.mu.Lock()
		before := t.baseline[nodeName]
		t.mu.Unlock()
		after := perAgent[nodeName]
		delta = tasklog.TokenDelta{
			Input:  after.InputTokens - before.InputTokens,
			Output: after.OutputTokens - before.OutputTokens,
		}
	}

	t.Task.Record(tasklog.Step{
		Timestamp:  time.Now(),
		Agent:      nodeName,
		Action:     "run",
		Level:      level,
		Detail:     detail,
		DurationMS: elapsed.Milliseconds(),
		Tokens:     delta,
	})
	return nil
}
