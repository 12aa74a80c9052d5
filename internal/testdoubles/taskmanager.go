package testdoubles

import (
	"sync"

	"github.com/blogforge/core/external"
)

// Event is one recorded TaskManager.SendEvent call.
type Event struct {
	TaskID string
	Type   external.EventType
	Payload any
}

// TaskManager is an in-memory external.TaskManager: it records every sent
// event and lets a test flip Cancelled to exercise the cooperative
// cancellation path (spec.md §6 "IsCancelled").
type TaskManager struct {
	mu        sync.Mutex
	Events    []Event
	Cancelled map[string]bool
}

func NewTaskManager() *TaskManager {
	return &TaskManager{Cancelled: make(map[string]bool)}
}

func (m *TaskManager) SendEvent(taskID string, eventType external.EventType, payload any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, Event{TaskID: taskID, Type: eventType, Payload: payload})
}

func (m *TaskManager) IsCancelled(taskID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Cancelled[taskID]
}

// Cancel marks taskID as cancelled for subsequent IsCancelled calls.
func (m *TaskManager) Cancel(taskID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cancelled[taskID] = true
}

// EventsOfType returns the payloads of every recorded event matching t, in
// call order.
func (m *TaskManager) EventsOfType(t external.EventType) []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []any
	for _, e := range m.Events {
		if e.Type == t {
			out = append(out, e.Payload)
		}
	}
	return out
}
