package middleware

import (
	"context"
	"time"

	"github.com/blogforge/core/llm"
	"github.com/blogforge/core/state"
)

// nodeBudgetShare is the fraction of the total run budget a node may spend
// (spec.md §4.2 item 6): writer 35%, researcher/planner/reviewer/revision
// 10% each, everything else 5%.
var nodeBudgetShare = map[string]float64{
	"writer":     0.35,
	"researcher": 0.10,
	"planner":    0.10,
	"reviewer":   0.10,
	"revision":   0.10,
}

const defaultBudgetShare = 0.05

// cumulativeWarnThreshold is the fraction of the total budget that trips the
// proactive-compression warning.
const cumulativeWarnThreshold = 0.80

// TokenBudget enforces each node's share of TotalBudget tokens, updates
// Shared.UsedTokens (which ContextManagement reads on the next node), and,
// once cumulative usage crosses 80% of the total, records a non-fatal
// budget warning in ErrorHistory (spec.md §4.2 item 6).
type TokenBudget struct {
	TotalBudget int
	Tracker     *llm.TokenTracker
}

const tokenBudgetEnv = "TOKEN_BUDGET_ENABLED"

func (t *TokenBudget) Name() string { return "token_budget" }

func shareFor(nodeName string) float64 {
	if s, ok := nodeBudgetShare[nodeName]; ok {
		return s
	}
	return defaultBudgetShare
}

func (t *TokenBudget) Before(_ context.Context, nodeName string, s *state.Shared) error {
	if !envEnabled(tokenBudgetEnv) || t.TotalBudget <= 0 {
		return nil
	}
	cap := int(float64(t.TotalBudget) * shareFor(nodeName))
	if s.BudgetSpent == nil {
		s.BudgetSpent = map[string]int{}
	}
	if spent := s.BudgetSpent[nodeName]; spent >= cap {
		s.RecordNonFatal(nodeName, errBudgetExhausted(nodeName, cap))
	}
	return nil
}

func (t *TokenBudget) After(_ context.Context, nodeName string, s *state.Shared, _ time.Duration, _ error) error {
	if !envEnabled(tokenBudgetEnv) || t.TotalBudget <= 0 || t.Tracker == nil {
		return nil
	}
	perAgent, totalIn, totalOut := t.Tracker.Summary()
	if s.BudgetSpent == nil {
		s.BudgetSpent = map[string]int{}
	}
	if totals, ok := perAgent[nodeName]; ok {
		s.BudgetSpent[nodeName] = totals.InputTokens + totals.OutputTokens
	}
	s.UsedTokens = totalIn + totalOut
	if float64(s.UsedTokens) >= cumulativeWarnThreshold*float64(t.TotalBudget) {
		s.RecordNonFatal("token_budget", errCumulativeBudgetWarning(s.UsedTokens, t.TotalBudget))
	}
	return nil
}
