package agent

import (
	"context"

	"github.com/blogforge/core/config"
	"github.com/blogforge/core/external"
	"github.com/blogforge/core/knowledge/cache"
	"github.com/blogforge/core/llm"
	"github.com/blogforge/core/state"
)

// SearchProvider looks up web content for a query, already converted into
// state.SearchResult form (spec.md §4.5.1 step 2). knowledge.SmartSearchService
// satisfies this directly; a plain external.SearchService is adapted by
// SingleSearchAdapter below.
type SearchProvider interface {
	Search(ctx context.Context, query string, maxResults int) ([]state.SearchResult, error)
}

// SingleSearchAdapter wraps one external.SearchService as a SearchProvider,
// the fallback path when smart-search routing is unavailable (spec.md
// §4.5.1 step 2 "else fall back to a single search service").
type SingleSearchAdapter struct {
	Service external.SearchService
}

func (a SingleSearchAdapter) Search(ctx context.Context, query string, maxResults int) ([]state.SearchResult, error) {
	if a.Service == nil {
		return nil, nil
	}
	resp, err := a.Service.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	out := make([]state.SearchResult, len(resp.Results))
	for i, r := range resp.Results {
		out[i] = state.SearchResult{Title: r.Title, URL: r.URL, Content: r.Content, Source: r.Source}
	}
	return out, nil
}

// defaultQueries is the fallback query list when query generation fails
// (spec.md §4.5.1 step 1 "fallback: default query list").
func defaultQueries(topic string) []string {
	return []string{
		topic,
		topic + " best practices",
		topic + " examples tutorial",
	}
}

type queryList struct {
	Queries []string `json:"queries"`
}

type distillation struct {
	MaterialByType struct {
		Concepts    []string `json:"concepts"`
		Cases       []string `json:"cases"`
		Data        []string `json:"data"`
		Comparisons []string `json:"comparisons"`
	} `json:"material_by_type"`
	CommonThemes   []string `json:"common_themes"`
	Contradictions []string `json:"contradictions"`
}

type gapAnalysis struct {
	ContentGaps  []string `json:"content_gaps"`
	UniqueAngles []string `json:"unique_angles"`
}

// Researcher is spec.md §4.5.1's ResearcherAgent: it gathers and distills
// background material before the planner builds an outline from it.
type Researcher struct {
	Client       llm.Client
	Search       SearchProvider
	SmartSearch  bool
	Documents    external.DocumentService
	Cache        *cache.Cache
	MaxResults   int
}

// NewResearcher wires a Researcher from the resolved run config.
func NewResearcher(client llm.Client, search SearchProvider, documents external.DocumentService, cfg *config.Config) *Researcher {
	return &Researcher{
		Client:      client,
		Search:      search,
		SmartSearch: true,
		Documents:   documents,
		Cache:       cache.New(cfg.CacheDir, secondsToDuration(cfg.CacheTTLSeconds)),
		MaxResults:  5,
	}
}

func (r *Researcher) Run(ctx context.Context, s *state.Shared) (*state.Shared, error) {
	if skip(s) {
		return s, nil
	}

	queries := r.generateQueries(ctx, s)

	results, err := r.runQueries(ctx, s.Topic, queries)
	if err != nil {
		s.RecordNonFatal("researcher", err)
	}
	s.SearchResults = results
	for _, res := range results {
		s.ReferenceLinks = append(s.ReferenceLinks, state.ReferenceLink{Title: res.Title, URL: res.URL})
	}

	if len(s.DocumentIDs) > 0 && r.Documents != nil {
		merged, err := r.Documents.GetMergedKnowledge(ctx, s.DocumentIDs, toExternalResults(results))
		if err == nil {
			s.BackgroundKnowledge = merged
		}
	} else {
		s.BackgroundKnowledge = summarizeResults(results)
	}

	r.distill(ctx, s)
	r.analyzeGaps(ctx, s)

	return s, nil
}

func (r *Researcher) generateQueries(ctx context.Context, s *state.Shared) []string {
	var ql queryList
	prompt := "Generate exactly 3 focused web search queries to research the topic \"" + s.Topic +
		"\" for a " + s.ArticleType + " article aimed at a " + s.TargetAudience + " audience." +
		" Respond as JSON: {\"queries\": [\"...\", \"...\", \"...\"]}."
	if err := chatJSON(ctx, r.Client, "", prompt, "researcher:queries", &ql); err != nil || len(ql.Queries) == 0 {
		return defaultQueries(s.Topic)
	}
	return ql.Queries
}

func (r *Researcher) runQueries(ctx context.Context, topic string, queries []string) ([]state.SearchResult, error) {
	var all []state.SearchResult
	var firstErr error
	for _, q := range queries {
		key := cache.Key("researcher:search", q)
		var cached []state.SearchResult
		if r.Cache != nil && r.Cache.Get(key, &cached) {
			all = append(all, cached...)
			continue
		}
		results, err := r.Search.Search(ctx, q, r.maxResults())
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if r.Cache != nil {
			_ = r.Cache.Set(key, results)
		}
		all = append(all, results...)
	}
	return dedupeSearchResults(all), firstErr
}

func (r *Researcher) maxResults() int {
	if r.MaxResults > 0 {
		return r.MaxResults
	}
	return 5
}

// distill turns the raw search_results into the structured material the
// planner/writer consume (spec.md §4.5.1 step 4).
func (r *Researcher) distill(ctx context.Context, s *state.Shared) {
	if len(s.SearchResults) == 0 {
		return
	}
	prompt := "Given these search results about \"" + s.Topic + "\":\n" + summarizeResults(s.SearchResults) +
		"\nDistill them into JSON: {\"material_by_type\": {\"concepts\": [...], \"cases\": [...], \"data\": [...], \"comparisons\": [...]}, " +
		"\"common_themes\": [...], \"contradictions\": [...]}."
	var d distillation
	if err := chatJSON(ctx, r.Client, "", prompt, "researcher:distill", &d); err != nil {
		return
	}
	s.DistilledSources = map[string]any{
		"concepts":    d.MaterialByType.Concepts,
		"cases":       d.MaterialByType.Cases,
		"data":        d.MaterialByType.Data,
		"comparisons": d.MaterialByType.Comparisons,
	}
	s.CommonThemes = d.CommonThemes
	s.Contradictions = d.Contradictions
	for _, c := range d.MaterialByType.Concepts {
		s.KeyConcepts = append(s.KeyConcepts, state.KeyConcept{Name: c})
	}
}

// analyzeGaps identifies content_gaps/unique_angles (spec.md §4.5.1 step 5).
func (r *Researcher) analyzeGaps(ctx context.Context, s *state.Shared) {
	prompt := "Given the research so far on \"" + s.Topic + "\", identify content gaps an article should " +
		"address and unique angles that would differentiate it. Respond as JSON: " +
		"{\"content_gaps\": [...], \"unique_angles\": [...]}."
	var g gapAnalysis
	if err := chatJSON(ctx, r.Client, "", prompt, "researcher:gaps", &g); err != nil {
		return
	}
	s.ContentGaps = g.ContentGaps
	s.UniqueAngles = g.UniqueAngles
}

func summarizeResults(results []state.SearchResult) string {
	out := ""
	for i, r := range results {
		if i >= 10 {
			break
		}
		out += "- " + r.Title + ": " + truncate(r.Content, 300) + "\n"
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func toExternalResults(results []state.SearchResult) []external.SearchResult {
	out := make([]external.SearchResult, len(results))
	for i, r := range results {
		out[i] = external.SearchResult{Title: r.Title, URL: r.URL, Content: r.Content, Source: r.Source}
	}
	return out
}

func dedupeSearchResults(results []state.SearchResult) []state.SearchResult {
	seen := make(map[string]struct{}, len(results))
	out := make([]state.SearchResult, 0, len(results))
	for _, r := range results {
		if r.URL != "" {
			if _, ok := seen[r.URL]; ok {
				continue
			}
			seen[r.URL] = struct{}{}
		}
		out = append(out, r)
	}
	return out
}
