package knowledge

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/blogforge/core/llm"
	"github.com/blogforge/core/state"
)

// lowQualityDomains mirrors deep_scraper.py's content-farm blacklist.
var lowQualityDomains = map[string]struct{}{
	"csdn.net": {}, "jianshu.com": {}, "360doc.com": {}, "baijiahao.baidu.com": {},
	"sohu.com": {}, "163.com": {}, "toutiao.com": {}, "zhidao.baidu.com": {},
	"wenku.baidu.com": {}, "docin.com": {}, "doc88.com": {},
}

// highQualityDomains are fetched ahead of everything else when selecting
// the top-N URLs to scrape.
var highQualityDomains = map[string]struct{}{
	"github.com": {}, "arxiv.org": {}, "openai.com": {}, "anthropic.com": {},
	"huggingface.co": {}, "pytorch.org": {}, "tensorflow.org": {},
	"docs.python.org": {}, "developer.mozilla.org": {}, "medium.com": {},
	"dev.to": {}, "stackoverflow.com": {},
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func isLowQualityURL(rawURL string) bool {
	domain := domainOf(rawURL)
	if domain == "" {
		return true
	}
	for lq := range lowQualityDomains {
		if strings.Contains(domain, lq) {
			return true
		}
	}
	return false
}

func isHighQualityURL(rawURL string) bool {
	domain := domainOf(rawURL)
	for hq := range highQualityDomains {
		if strings.Contains(domain, hq) {
			return true
		}
	}
	return false
}

const jinaBaseURL = "https://r.jina.ai/"

// JinaReader fetches a URL's full text as Markdown via the Jina Reader API,
// retrying with exponential backoff (deep_scraper.py's JinaReader: up to 4
// attempts).
type JinaReader struct {
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
	MaxRetries int
	// BaseURL overrides jinaBaseURL; tests point it at a local server.
	BaseURL string
}

// NewJinaReader builds a reader with the teacher's defaults (30s timeout, 4
// attempts).
func NewJinaReader(apiKey string) *JinaReader {
	return &JinaReader{
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Timeout:    30 * time.Second,
		MaxRetries: 4,
	}
}

func (j *JinaReader) Scrape(ctx context.Context, targetURL string) (string, error) {
	maxRetries := j.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 4
	}
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(maxRetries-1))

	base := j.BaseURL
	if base == "" {
		base = jinaBaseURL
	}

	var body string
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+targetURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "text/markdown")
		req.Header.Set("X-Return-Format", "markdown")
		if j.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+j.APIKey)
		}
		resp, err := j.HTTPClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(data)) == "" {
			return fmt.Errorf("knowledge: jina reader returned status %d", resp.StatusCode)
		}
		body = strings.TrimSpace(string(data))
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		return "", fmt.Errorf("knowledge: jina reader failed for %s: %w", targetURL, err)
	}
	return body, nil
}

var (
	scriptTag = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	anyTag    = regexp.MustCompile(`<[^>]+>`)
	runsOfWS  = regexp.MustCompile(`\s+`)
)

func htmlToText(html string) string {
	text := scriptTag.ReplaceAllString(html, "")
	text = styleTag.ReplaceAllString(text, "")
	text = anyTag.ReplaceAllString(text, " ")
	return strings.TrimSpace(runsOfWS.ReplaceAllString(text, " "))
}

const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// HTTPScraper is the direct-fetch fallback used when JinaReader fails
// (deep_scraper.py's HttpxScraper): browser-like headers, simple
// HTML-to-text, up to 3 attempts with exponential backoff.
type HTTPScraper struct {
	HTTPClient *http.Client
	MaxRetries int
}

func NewHTTPScraper() *HTTPScraper {
	return &HTTPScraper{HTTPClient: &http.Client{Timeout: 20 * time.Second}, MaxRetries: 3}
}

func (h *HTTPScraper) Scrape(ctx context.Context, targetURL string) (string, error) {
	maxRetries := h.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(maxRetries-1))

	var text string
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", browserUserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
		resp, err := h.HTTPClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(data)) == "" {
			return fmt.Errorf("knowledge: http scraper returned status %d", resp.StatusCode)
		}
		extracted := htmlToText(string(data))
		if extracted == "" {
			return fmt.Errorf("knowledge: http scraper extracted empty text")
		}
		text = extracted
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		return "", fmt.Errorf("knowledge: http scraper failed for %s: %w", targetURL, err)
	}
	return text, nil
}

// ScrapedSource is one successfully fetched and LLM-extracted URL.
type ScrapedSource struct {
	URL           string
	Title         string
	FullTextChars int
	ExtractedInfo string
}

const defaultExtractionMaxChars = 40000

// DeepScraper fetches the top-N URLs from a search result set and distills
// each into topic/goal-relevant material (spec.md §4.6). Jina is tried
// first; a direct HTTP fetch is the fallback.
type DeepScraper struct {
	Jina        *JinaReader
	HTTP        *HTTPScraper
	Client      llm.Client
	TopN        int
	MaxChars    int
}

// NewDeepScraper wires the teacher's two-tier fetch chain around an
// optional LLM client (a nil client returns the truncated raw text).
func NewDeepScraper(jinaAPIKey string, client llm.Client) *DeepScraper {
	return &DeepScraper{
		Jina:     NewJinaReader(jinaAPIKey),
		HTTP:     NewHTTPScraper(),
		Client:   client,
		TopN:     3,
		MaxChars: defaultExtractionMaxChars,
	}
}

// ScrapeTopN selects up to n high-quality, non-blacklisted URLs from
// results and scrapes+extracts each against topic/goal.
func (d *DeepScraper) ScrapeTopN(ctx context.Context, results []state.SearchResult, topic, goal string, n int) []ScrapedSource {
	if n <= 0 {
		n = d.TopN
	}
	selected := d.selectURLs(results, n)
	if goal == "" {
		goal = fmt.Sprintf("collect key technical information, core concepts, and practical examples related to %q", topic)
	}

	enriched := make([]ScrapedSource, 0, len(selected))
	for _, item := range selected {
		fullText := d.scrapeSingle(ctx, item.URL)
		if fullText == "" {
			continue
		}
		enriched = append(enriched, ScrapedSource{
			URL:           item.URL,
			Title:         item.Title,
			FullTextChars: len(fullText),
			ExtractedInfo: d.extractInfo(ctx, fullText, goal),
		})
	}
	return enriched
}

func (d *DeepScraper) selectURLs(results []state.SearchResult, n int) []state.SearchResult {
	filtered := make([]state.SearchResult, 0, len(results))
	for _, r := range results {
		if !isLowQualityURL(r.URL) {
			filtered = append(filtered, r)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return isHighQualityURL(filtered[i].URL) && !isHighQualityURL(filtered[j].URL)
	})
	if len(filtered) > n {
		filtered = filtered[:n]
	}
	return filtered
}

func (d *DeepScraper) scrapeSingle(ctx context.Context, targetURL string) string {
	if d.Jina != nil {
		if text, err := d.Jina.Scrape(ctx, targetURL); err == nil {
			return text
		}
	}
	if d.HTTP != nil {
		if text, err := d.HTTP.Scrape(ctx, targetURL); err == nil {
			return text
		}
	}
	return ""
}

func (d *DeepScraper) extractInfo(ctx context.Context, fullText, goal string) string {
	maxChars := d.MaxChars
	if maxChars <= 0 {
		maxChars = defaultExtractionMaxChars
	}
	truncated := fullText
	if len(truncated) > maxChars {
		truncated = truncated[:maxChars]
	}
	if d.Client == nil {
		return truncated
	}

	prompt := fmt.Sprintf(
		"Extract the key information relevant to %q from the article below. "+
			"Keep only content directly related to the goal, drop the rest. "+
			"Produce a concise summary (500-1500 words).\n\n---\n%s\n---",
		goal, truncated,
	)
	reply, err := d.Client.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, llm.ChatOptions{Caller: "deep_scraper"})
	if err != nil || strings.TrimSpace(reply) == "" {
		return truncated
	}
	return reply
}
