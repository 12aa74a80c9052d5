package tasklog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/tasklog"
)

func TestTask_RecordAggregatesPerAgentAndTotals(t *testing.T) {
	task := tasklog.New("task-1", "Go generics", "tutorial", "medium")

	task.Record(tasklog.Step{Agent: "writer", Action: "draft_section", Level: tasklog.LevelInfo, DurationMS: 100, Tokens: tasklog.TokenDelta{Input: 10, Output: 20}})
	task.Record(tasklog.Step{Agent: "writer", Action: "draft_section", Level: tasklog.LevelInfo, DurationMS: 50, Tokens: tasklog.TokenDelta{Input: 5, Output: 5}})
	task.Record(tasklog.Step{Agent: "researcher", Action: "search", Level: tasklog.LevelWarning, DurationMS: 30, Tokens: tasklog.TokenDelta{Input: 1, Output: 1}})

	require.Len(t, task.Steps, 3)
	assert.Equal(t, 2, task.AgentStats["writer"].Steps)
	assert.Equal(t, 15, task.AgentStats["writer"].TokensInput)
	assert.Equal(t, 25, task.AgentStats["writer"].TokensOutput)
	assert.Equal(t, int64(150), task.AgentStats["writer"].DurationMS)
	assert.Equal(t, 16, task.TotalTokens.Input)
	assert.Equal(t, 26, task.TotalTokens.Output)
}

func TestTask_RecordTruncatesOversizedDetail(t *testing.T) {
	task := tasklog.New("task-2", "t", "t", "mini")
	huge := make([]byte, 5000)
	for i := range huge {
		huge[i] = 'x'
	}
	task.Record(tasklog.Step{Agent: "writer", Detail: string(huge)})
	assert.Less(t, len(task.Steps[0].Detail), 5000)
}

func TestTask_PersistWritesJSONFile(t *testing.T) {
	task := tasklog.New("task-3", "t", "t", "mini")
	task.Finish(tasklog.StatusCompleted, 88.5, 2, 1200)

	dir := t.TempDir()
	require.NoError(t, task.Persist(dir))

	data, err := os.ReadFile(filepath.Join(dir, "task-3.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"task_id": "task-3"`)
	assert.Contains(t, string(data), `"status": "completed"`)
}
