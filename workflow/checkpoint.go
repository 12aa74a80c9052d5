package workflow

import (
	"sync"

	"github.com/blogforge/core/state"
)

// Checkpoint is a saved mid-run state plus the stage it was saved at
// (spec.md §6 "interactive resume": the caller can pause after planning,
// inspect/edit the outline, then resume").
type Checkpoint struct {
	Stage string
	State *state.Shared
}

// CheckpointStore holds one in-flight checkpoint per task, keyed by
// state.Shared.TaskID. It is an in-memory store: a process restart loses
// every pending checkpoint, which matches spec.md §6's scope (no
// cross-process durability is named).
type CheckpointStore struct {
	mu          sync.Mutex
	checkpoints map[string]Checkpoint
}

// NewCheckpointStore returns an empty store.
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{checkpoints: make(map[string]Checkpoint)}
}

// Save records a checkpoint for taskID, overwriting any previous one.
func (c *CheckpointStore) Save(taskID, stage string, s *state.Shared) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkpoints[taskID] = Checkpoint{Stage: stage, State: s}
}

// Load retrieves and removes the checkpoint for taskID, if any.
func (c *CheckpointStore) Load(taskID string) (Checkpoint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp, ok := c.checkpoints[taskID]
	if ok {
		delete(c.checkpoints, taskID)
	}
	return cp, ok
}

// Peek retrieves a checkpoint without removing it.
func (c *CheckpointStore) Peek(taskID string) (Checkpoint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp, ok := c.checkpoints[taskID]
	return cp, ok
}

// Discard drops any pending checkpoint for taskID without returning it.
func (c *CheckpointStore) Discard(taskID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checkpoints, taskID)
}
