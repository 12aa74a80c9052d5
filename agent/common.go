// Package agent implements the twelve workflow roles spec.md §4.5 names:
// one file per agent, each satisfying the shared contract "run(state) ->
// state" as a flow.Processor[*state.Shared, *state.Shared] method value.
// Agents never see flow or middleware directly; the workflow package wires
// each one's Run method behind middleware.Pipeline.Wrap.
package agent

import (
	"context"
	"strings"
	"time"

	"github.com/blogforge/core/config"
	"github.com/blogforge/core/executor"
	"github.com/blogforge/core/jsonutil"
	"github.com/blogforge/core/llm"
	"github.com/blogforge/core/state"
)

// secondsToDuration converts a config seconds value to a time.Duration,
// defaulting to 24h when n is non-positive (spec.md §9 cache default TTL).
func secondsToDuration(n int) time.Duration {
	if n <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(n) * time.Second
}

// skip reports whether a prior node already set a fatal error (spec.md §3
// invariant e / §4.5 "they short-circuit if state.error is set"). Every
// agent's Run starts with `if agent.skip(s) { return s, nil }`.
func skip(s *state.Shared) bool {
	return s.Failed()
}

// chatJSON issues a JSON-constrained chat call and tolerantly decodes the
// reply into v (spec.md §4.5 "JSON-returning prompts are parsed with a
// tolerant extractor").
func chatJSON(ctx context.Context, client llm.Client, system, user, caller string, v any) error {
	messages := []llm.Message{
		{Role: llm.RoleUser, Content: user},
	}
	if system != "" {
		messages = append([]llm.Message{{Role: llm.RoleSystem, Content: system}}, messages...)
	}
	reply, err := client.Chat(ctx, messages, llm.ChatOptions{ResponseFormatJSON: true, Caller: caller})
	if err != nil {
		return err
	}
	return jsonutil.Extract(reply, v)
}

// executorConfig resolves the bounded-concurrency fan-out config for this
// run's worker budget (spec.md §4.3/§5).
func executorConfig(cfg *config.Config) executor.Config {
	return executor.Config{MaxWorkers: cfg.MaxWorkers}
}

// hasAny reports whether s contains a case-insensitive match for any of
// needles; used by small keyword-signal heuristics (planner image-preplan
// check, artist illustration-type inference).
func hasAny(s string, needles ...string) bool {
	lower := strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
