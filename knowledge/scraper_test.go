package knowledge_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/knowledge"
	"github.com/blogforge/core/state"
)

func TestDeepScraper_NoFetcherYieldsNothingWithoutPanicking(t *testing.T) {
	d := &knowledge.DeepScraper{TopN: 2}
	results := []state.SearchResult{
		{URL: "https://csdn.net/article/1"},
		{URL: "https://example.com/post"},
		{URL: "https://github.com/org/repo"},
	}
	enriched := d.ScrapeTopN(context.Background(), results, "topic", "", 2)
	assert.Empty(t, enriched)
}

func TestDeepScraper_HTTPFallbackWhenJinaFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><script>bad()</script><p>Hello World</p></body></html>"))
	}))
	defer server.Close()

	failServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer failServer.Close()

	scraper := &knowledge.DeepScraper{
		Jina: &knowledge.JinaReader{
			HTTPClient: failServer.Client(),
			BaseURL:    failServer.URL + "/",
			MaxRetries: 1,
		},
		HTTP: knowledge.NewHTTPScraper(),
		TopN: 1,
	}
	scraper.HTTP.HTTPClient = server.Client()
	scraper.HTTP.MaxRetries = 1

	results := []state.SearchResult{{URL: server.URL, Title: "local"}}
	enriched := scraper.ScrapeTopN(context.Background(), results, "topic", "extract the greeting", 1)
	require.NotEmpty(t, enriched)
	assert.Contains(t, enriched[0].ExtractedInfo, "Hello World")
}

func TestIsLowQualityURL_MatchesBlacklistedDomains(t *testing.T) {
	d := &knowledge.DeepScraper{TopN: 5}
	filtered := d.ScrapeTopN(context.Background(), []state.SearchResult{
		{URL: "https://www.csdn.net/x"},
	}, "topic", "", 5)
	assert.Empty(t, filtered)
}
