package middleware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blogforge/core/llm"
	"github.com/blogforge/core/state"
)

// Ranker picks the k most relevant search results to a topic, backing
// Layer 1 (embedding top-k filter). Implemented by
// knowledge/vectorcache against a real vector store; tests use a
// similarity-free stub.
type Ranker interface {
	TopK(ctx context.Context, topic string, results []state.SearchResult, k int) ([]state.SearchResult, error)
}

// contextLayerKTop is how many search results Layer 1 keeps.
const contextLayerKTop = 8

// ContextManagement implements the three-layer compression spec.md §4.2
// item 5 describes, gated by used_tokens/safe_input_limit:
//   - < 0.7: no-op
//   - 0.7-0.9: Layer 1, embedding top-k filter of search_results
//   - >= 0.9 and no extra context: Layer 2, LLM active compression of research data
//   - >= 0.9 with extra context (distilled sources, review history): Layer 3,
//     a single ReSum-style running summary replacing several fields
type ContextManagement struct {
	Client llm.Client
	Ranker Ranker
}

const contextCompressionEnv = "CONTEXT_COMPRESSION_MIDDLEWARE_ENABLED"

func (c *ContextManagement) Name() string { return "context_management" }

func (c *ContextManagement) Before(context.Context, string, *state.Shared) error { return nil }

func (c *ContextManagement) After(ctx context.Context, nodeName string, s *state.Shared, _ time.Duration, _ error) error {
	if !envEnabled(contextCompressionEnv) || s.SafeInputLimit <= 0 {
		return nil
	}
	ratio := float64(s.UsedTokens) / float64(s.SafeInputLimit)
	switch {
	case ratio < 0.7:
		return nil
	case ratio < 0.9:
		return c.layer1(ctx, s)
	default:
		hasExtraContext := len(s.DistilledSources) > 0 || len(s.ReviewIssues) > 0
		if !hasExtraContext {
			return c.layer2(ctx, s, nodeName)
		}
		return c.layer3(ctx, s, nodeName)
	}
}

func (c *ContextManagement) layer1(ctx context.Context, s *state.Shared) error {
	if c.Ranker == nil || len(s.SearchResults) <= contextLayerKTop {
		return nil
	}
	top, err := c.Ranker.TopK(ctx, s.Topic, s.SearchResults, contextLayerKTop)
	if err != nil {
		return nil // non-fatal: keep the unfiltered results
	}
	s.SearchResults = top
	return nil
}

func (c *ContextManagement) layer2(ctx context.Context, s *state.Shared, caller string) error {
	if c.Client == nil {
		return nil
	}
	research := strings.Join(append(append([]string{s.BackgroundKnowledge}, s.CommonThemes...), s.AccumulatedKnowledge...), "\n")
	if research == "" {
		return nil
	}
	compressed, err := c.Client.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: "Compress the following research notes to under 600 words, preserving every concrete fact, number, and named source."},
		{Role: llm.RoleUser, Content: research},
	}, llm.ChatOptions{Caller: caller + ":context_compress"})
	if err != nil {
		return nil // non-fatal: keep uncompressed context
	}
	s.AccumulatedKnowledge = []string{compressed}
	s.BackgroundKnowledge = compressed
	return nil
}

func (c *ContextManagement) layer3(ctx context.Context, s *state.Shared, caller string) error {
	if c.Client == nil {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Background: %s\n", s.BackgroundKnowledge)
	fmt.Fprintf(&b, "Distilled sources: %v\n", s.DistilledSources)
	for _, issue := range s.ReviewIssues {
		fmt.Fprintf(&b, "Review issue: %s\n", issue.Description)
	}
	if s.ContextSummary != "" {
		fmt.Fprintf(&b, "Prior running summary: %s\n", s.ContextSummary)
	}
	summary, err := c.Client.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: "Produce one running summary of everything below that future steps can rely on in place of the raw context. Be exhaustive about facts, terse about prose."},
		{Role: llm.RoleUser, Content: b.String()},
	}, llm.ChatOptions{Caller: caller + ":context_resum"})
	if err != nil {
		return nil
	}
	s.ContextSummary = summary
	s.DistilledSources = nil
	s.Contradictions = nil
	s.ContentGaps = nil
	s.UniqueAngles = nil
	s.AccumulatedKnowledge = []string{summary}
	s.BackgroundKnowledge = summary
	return nil
}
