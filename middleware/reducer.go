package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/blogforge/core/state"
)

// Reducer snapshots the reducer-governed list fields on Before and, on
// After, re-applies state.ApplyReducers against that snapshot — so a node
// that ran nested parallel sub-writers (spec.md §4.3) can't have its
// concurrent writes silently clobber each other; the field-level reducers
// in the state package decide how to merge (spec.md §4.2 item 3).
type Reducer struct {
	mu        sync.Mutex
	snapshots map[*state.Shared]*state.Shared
}

const reducerEnv = "STATE_REDUCERS_ENABLED"

func (r *Reducer) Name() string { return "reducer" }

func (r *Reducer) Before(_ context.Context, _ string, s *state.Shared) error {
	if !envEnabled(reducerEnv) {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snapshots == nil {
		r.snapshots = map[*state.Shared]*state.Shared{}
	}
	r.snapshots[s] = s.Clone()
	return nil
}

func (r *Reducer) After(_ context.Context, _ string, s *state.Shared, _ time.Duration, _ error) error {
	if !envEnabled(reducerEnv) {
		return nil
	}
	r.mu.Lock()
	before, ok := r.snapshots[s]
	if ok {
		delete(r.snapshots, s)
	}
	r.mu.Unlock()
	if !ok {
		return nil
	}
	// ApplyReducers treats `s` (the post-node state) as the incoming delta
	// against the pre-node snapshot, then writes the merged result back.
	merged := *before
	state.ApplyReducers(&merged, s)
	*s = merged
	return nil
}
