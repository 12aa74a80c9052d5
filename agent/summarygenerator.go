package agent

import (
	"context"
	"strings"

	"github.com/blogforge/core/llm"
	"github.com/blogforge/core/state"
)

type summaryResult struct {
	TLDR            string   `json:"tldr"`
	SEOKeywords     []string `json:"seo_keywords"`
	SocialSummary   string   `json:"social_summary"`
	MetaDescription string   `json:"meta_description"`
}

// SummaryGenerator is spec.md §4.5.12's SummaryGeneratorAgent: one LLM call
// after assembly that produces the TL;DR, SEO keywords, social summary, and
// meta description, then prepends the TL;DR as a blockquote.
type SummaryGenerator struct {
	Client llm.Client
}

func (g *SummaryGenerator) Run(ctx context.Context, s *state.Shared) (*state.Shared, error) {
	if skip(s) {
		return s, nil
	}

	prompt := "Summarize this finished article on \"" + s.Topic + "\":\n\n" + truncate(s.FinalMarkdown, 6000) +
		"\n\nRespond as JSON: {\"tldr\": \"2-3 sentences\", \"seo_keywords\": [\"10-15 keywords\"], " +
		"\"social_summary\": \"50-100 chars\", \"meta_description\": \"<=150 chars\"}."

	var r summaryResult
	if err := chatJSON(ctx, g.Client, "", prompt, "summary_generator:summarize", &r); err != nil {
		s.RecordNonFatal("summary_generator", err)
		return s, nil
	}

	s.SEOKeywords = r.SEOKeywords
	s.SocialSummary = r.SocialSummary
	s.MetaDescription = r.MetaDescription

	if r.TLDR != "" {
		var b strings.Builder
		b.WriteString("> " + r.TLDR + "\n\n---\n\n")
		b.WriteString(s.FinalMarkdown)
		s.FinalMarkdown = b.String()
	}

	return s, nil
}
