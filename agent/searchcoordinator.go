package agent

import (
	"context"
	"strings"

	"github.com/blogforge/core/executor"
	"github.com/blogforge/core/llm"
	"github.com/blogforge/core/state"
)

// SearchCoordinator is spec.md §4.5.4's SearchCoordinator/KnowledgeGapDetector:
// it scans the draft for gaps and, when invoked to refine, runs targeted
// follow-up searches against the top gaps.
type SearchCoordinator struct {
	Client       llm.Client
	Search       SearchProvider
	MaxRefineGaps int
}

type gapList struct {
	Gaps []struct {
		GapType        string `json:"gap_type"`
		Description    string `json:"description"`
		SuggestedQuery string `json:"suggested_query"`
	} `json:"gaps"`
}

// DetectGaps scans concatenated section content plus existing knowledge for
// gaps (spec.md §4.5.4 step 1, the "check_knowledge" node).
func (sc *SearchCoordinator) DetectGaps(ctx context.Context, s *state.Shared) error {
	if skip(s) {
		return nil
	}
	prompt := "Given this draft article on \"" + s.Topic + "\":\n" + concatSections(s.Sections) +
		"\nand existing knowledge:\n" + s.BackgroundKnowledge +
		"\nIdentify knowledge gaps. Respond as JSON: {\"gaps\": [{\"gap_type\": " +
		"\"missing_data|vague_concept|no_example\", \"description\": ..., \"suggested_query\": ...}]}."

	var gl gapList
	if err := chatJSON(ctx, sc.Client, "", prompt, "search_coordinator:gaps", &gl); err != nil {
		s.KnowledgeGaps = nil
		return nil
	}
	gaps := make([]state.KnowledgeGap, 0, len(gl.Gaps))
	for _, g := range gl.Gaps {
		gaps = append(gaps, state.KnowledgeGap{
			GapType:        state.GapType(g.GapType),
			Description:    g.Description,
			SuggestedQuery: g.SuggestedQuery,
		})
	}
	s.KnowledgeGaps = gaps
	return nil
}

// RefineSearch runs targeted searches for the top gaps, dedupes against
// prior results by URL, and appends a summary to accumulated_knowledge
// (spec.md §4.5.4 step 2, the "refine_search"/"enhance" nodes).
func (sc *SearchCoordinator) RefineSearch(ctx context.Context, s *state.Shared) error {
	if skip(s) {
		return nil
	}
	top := sc.topGaps(s.KnowledgeGaps)
	if len(top) == 0 {
		return nil
	}

	tasks := make([]executor.Task[[]state.SearchResult], len(top))
	for i, g := range top {
		query := g.SuggestedQuery
		tasks[i] = executor.Task[[]state.SearchResult]{
			Name: query,
			Fn: func(ctx context.Context) ([]state.SearchResult, error) {
				return sc.Search.Search(ctx, query, 3)
			},
		}
	}
	results, err := executor.Run(ctx, tasks, executor.Config{MaxWorkers: 3})
	if err != nil {
		return err
	}

	existing := make(map[string]struct{}, len(s.SearchResults))
	for _, r := range s.SearchResults {
		if r.URL != "" {
			existing[r.URL] = struct{}{}
		}
	}

	var fresh []state.SearchResult
	for _, r := range results {
		if !r.Success {
			continue
		}
		for _, sr := range r.Value {
			if sr.URL != "" {
				if _, dup := existing[sr.URL]; dup {
					continue
				}
				existing[sr.URL] = struct{}{}
			}
			fresh = append(fresh, sr)
		}
	}

	s.SearchResults = append(s.SearchResults, fresh...)
	if len(fresh) > 0 {
		s.AccumulatedKnowledge = append(s.AccumulatedKnowledge, summarizeResults(fresh))
	}
	s.SearchCount++
	return nil
}

func (sc *SearchCoordinator) topGaps(gaps []state.KnowledgeGap) []state.KnowledgeGap {
	n := sc.MaxRefineGaps
	if n <= 0 {
		n = 2
	}
	if len(gaps) < n {
		return gaps
	}
	return gaps[:n]
}

func concatSections(sections []state.Section) string {
	var b strings.Builder
	for _, sec := range sections {
		b.WriteString(sec.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}
