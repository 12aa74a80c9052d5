package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/external"
	"github.com/blogforge/core/internal/testdoubles"
	"github.com/blogforge/core/state"
)

func TestGenerate_RequiresClient(t *testing.T) {
	_, err := Generate(context.Background(), Dependencies{}, Params{
		TaskID: "t1", Topic: "topic", TargetLength: state.LengthShort,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Client is required")
}

func TestResume_RequiresCheckpointStore(t *testing.T) {
	deps := Dependencies{Client: testdoubles.NewClient("ok")}
	_, err := Resume(context.Background(), deps, "t1", ResumeAccept, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CheckpointStore")
}

func TestResume_UnknownTaskErrors(t *testing.T) {
	deps := Dependencies{Client: testdoubles.NewClient("ok"), Checkpoints: NewCheckpointStore()}
	_, err := Resume(context.Background(), deps, "missing", ResumeAccept, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pending checkpoint")
}

func TestResume_EditRequiresOutline(t *testing.T) {
	deps := Dependencies{Client: testdoubles.NewClient("ok"), Checkpoints: NewCheckpointStore()}
	s := state.New("topic", "tutorial", "devs", state.LengthShort)
	s.TaskID = "t1"
	deps.Checkpoints.Save("t1", "planner", s)

	_, err := Resume(context.Background(), deps, "t1", ResumeEdit, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires an edited outline")
}

func TestStageEvents_SendsProgressAndStream(t *testing.T) {
	mgr := testdoubles.NewTaskManager()
	hook := &stageEvents{taskID: "t1", mgr: mgr}
	s := state.New("topic", "tutorial", "devs", state.LengthShort)

	require.NoError(t, hook.Before(context.Background(), "writer", s))
	require.NoError(t, hook.After(context.Background(), "writer", s, time.Millisecond, nil))

	progress := mgr.EventsOfType(external.EventProgress)
	require.Len(t, progress, 1)
	assert.Equal(t, "writer", progress[0])

	stream := mgr.EventsOfType(external.EventStream)
	require.Len(t, stream, 1)
	update, ok := stream[0].(StageUpdate)
	require.True(t, ok)
	assert.Equal(t, "writer", update.Stage)
	assert.Same(t, s, update.State)
}

func TestPersistTaskLog_NoopWithoutDir(t *testing.T) {
	persistTaskLog(Dependencies{}, nil) // must not panic despite nil task
}
