package knowledge_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/external"
	"github.com/blogforge/core/knowledge"
)

type fakeProvider struct {
	results []external.SearchResult
	err     error
}

func (p *fakeProvider) Search(ctx context.Context, query string, maxResults int) (external.SearchResponse, error) {
	if p.err != nil {
		return external.SearchResponse{}, p.err
	}
	return external.SearchResponse{Success: true, Results: p.results}, nil
}

func TestSmartSearchService_MergesAndDedupesByURL(t *testing.T) {
	svc := knowledge.NewSmartSearchService(nil, map[string]external.SearchService{
		"general": &fakeProvider{results: []external.SearchResult{
			{Title: "a", URL: "https://example.com/a", Source: "通用搜索"},
			{Title: "dup", URL: "https://example.com/a", Source: "通用搜索"},
		}},
		"github": &fakeProvider{results: []external.SearchResult{
			{Title: "repo", URL: "https://github.com/x/y", Source: "GitHub"},
		}},
	})
	svc.MaxFanOut = 10

	results, err := svc.Search(context.Background(), "github repo tooling", 10)
	require.NoError(t, err)
	urls := map[string]int{}
	for _, r := range results {
		urls[r.URL]++
	}
	assert.Equal(t, 1, urls["https://example.com/a"])
	assert.Equal(t, 1, urls["https://github.com/x/y"])
}

func TestSmartSearchService_RanksByQualityAfterMerge(t *testing.T) {
	svc := knowledge.NewSmartSearchService(nil, map[string]external.SearchService{
		"general": &fakeProvider{results: []external.SearchResult{
			{Title: "low", URL: "https://general.example/1", Source: "通用搜索"},
		}},
		"github": &fakeProvider{results: []external.SearchResult{
			{Title: "high", URL: "https://github.com/a/b", Source: "GitHub"},
		}},
	})
	svc.Sources = []knowledge.ProfessionalSource{
		{Key: "general", Name: "通用搜索", QualityWeight: 0.5},
		{Key: "github", Name: "GitHub", Keywords: []string{"github"}, QualityWeight: 0.75},
	}
	svc.MaxFanOut = 10

	results, err := svc.Search(context.Background(), "github project", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "GitHub", results[0].Source)
}

func TestSmartSearchService_RejectsDuplicateQuery(t *testing.T) {
	svc := knowledge.NewSmartSearchService(nil, map[string]external.SearchService{
		"general": &fakeProvider{results: []external.SearchResult{{Title: "a", URL: "https://x/1"}}},
	})
	_, err := svc.Search(context.Background(), "repeat me", 5)
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), "repeat me", 5)
	assert.ErrorIs(t, err, knowledge.ErrDuplicateQuery)
}

func TestSmartSearchService_ProviderFailureDisablesSourceAfterThreshold(t *testing.T) {
	svc := knowledge.NewSmartSearchService(nil, map[string]external.SearchService{
		"general": &fakeProvider{err: errors.New("boom")},
	})
	svc.Dedup = knowledge.NewQueryDeduplicator(0)
	svc.Curator = knowledge.NewSourceCurator(nil, knowledge.HealthConfig{MaxConsecutiveFailures: 1})

	for i := 0; i < 2; i++ {
		_, _ = svc.Search(context.Background(), "query number "+string(rune('a'+i)), 5)
	}
	assert.False(t, svc.Curator.CheckHealth("general"))
}
