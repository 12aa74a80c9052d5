package llm

import "sync"

// Usage is one call's token accounting, keyed by the agent that made it
// (spec.md §4.4's "token_tracker hook"; spec.md §5 "token tracker is a
// separate object the LLM client calls with each response's token counts").
type Usage struct {
	Agent        string
	Model        string
	InputTokens  int
	OutputTokens int
}

// AgentTotals is the accumulated usage for one agent across a run.
type AgentTotals struct {
	Calls        int
	InputTokens  int
	OutputTokens int
}

// TokenTracker accumulates per-agent token usage for a run and surfaces a
// summary at the end (spec.md §5 "token tracker ... surfaces a summary at
// the end of the run").
type TokenTracker struct {
	mu     sync.Mutex
	totals map[string]*AgentTotals
}

// NewTokenTracker returns an empty tracker. One instance per run.
func NewTokenTracker() *TokenTracker {
	return &TokenTracker{totals: make(map[string]*AgentTotals)}
}

// Record folds one call's usage into the agent's running totals.
func (t *TokenTracker) Record(u Usage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	agent := u.Agent
	if agent == "" {
		agent = "unknown"
	}
	at, ok := t.totals[agent]
	if !ok {
		at = &AgentTotals{}
		t.totals[agent] = at
	}
	at.Calls++
	at.InputTokens += u.InputTokens
	at.OutputTokens += u.OutputTokens
}

// Summary returns a snapshot of per-agent totals plus the grand total.
func (t *TokenTracker) Summary() (perAgent map[string]AgentTotals, totalInput, totalOutput int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	perAgent = make(map[string]AgentTotals, len(t.totals))
	for agent, at := range t.totals {
		perAgent[agent] = *at
		totalInput += at.InputTokens
		totalOutput += at.OutputTokens
	}
	return perAgent, totalInput, totalOutput
}
