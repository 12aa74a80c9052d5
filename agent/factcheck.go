package agent

import (
	"context"

	"github.com/blogforge/core/llm"
	"github.com/blogforge/core/state"
)

// FactChecker is spec.md §4.5.9's optional FactCheckAgent: it examines
// claims against cited sources and emits adjusted review issues.
type FactChecker struct {
	Client llm.Client
}

type factCheckResult struct {
	Issues []struct {
		SectionID   string `json:"section_id"`
		Severity    string `json:"severity"`
		Description string `json:"description"`
		Suggestion  string `json:"suggestion"`
	} `json:"issues"`
}

func (f *FactChecker) Run(ctx context.Context, s *state.Shared) (*state.Shared, error) {
	if skip(s) {
		return s, nil
	}
	prompt := "Check the factual claims in this draft against its cited sources.\n\nSources:\n" +
		summarizeResults(s.SearchResults) + "\n\nDraft:\n" + concatSections(s.Sections) +
		"\n\nRespond as JSON: {\"issues\": [{\"section_id\":..., \"severity\": \"high|medium|low\", " +
		"\"description\":..., \"suggestion\":...}]} (empty array if every claim checks out)."

	var r factCheckResult
	if err := chatJSON(ctx, f.Client, "", prompt, "factcheck:verify", &r); err != nil {
		s.RecordNonFatal("factcheck", err)
		return s, nil
	}
	for _, iss := range r.Issues {
		s.ReviewIssues = append(s.ReviewIssues, state.ReviewIssue{
			SectionID:   iss.SectionID,
			Severity:    state.Severity(iss.Severity),
			Description: "fact-check: " + iss.Description,
			Suggestion:  iss.Suggestion,
		})
	}
	return s, nil
}
