package knowledge

import (
	"context"
	"errors"
	"strings"

	"github.com/blogforge/core/executor"
	"github.com/blogforge/core/external"
	"github.com/blogforge/core/jsonutil"
	"github.com/blogforge/core/llm"
	"github.com/blogforge/core/state"
)

// ErrDuplicateQuery is returned by Search when the query was already
// attempted within the deduplicator's window.
var ErrDuplicateQuery = errors.New("knowledge: duplicate query rejected")

// ProfessionalSource is one routable search source: a professional blog, an
// academic index, or a general engine (ported from
// smart_search_service.py's PROFESSIONAL_BLOGS table).
type ProfessionalSource struct {
	Key           string
	Name          string
	Keywords      []string
	QualityWeight float64
	AIResearch    bool
}

// DefaultSources mirrors the teacher's hard-coded PROFESSIONAL_BLOGS/general
// engine registry; a caller may pass a longer or shorter list to
// NewSmartSearchService when a registry file is available.
var DefaultSources = []ProfessionalSource{
	{Key: "anthropic", Name: "Anthropic Research", Keywords: []string{"claude", "anthropic", "constitutional ai", "rlhf"}, QualityWeight: 0.95, AIResearch: true},
	{Key: "openai", Name: "OpenAI Blog", Keywords: []string{"gpt", "chatgpt", "openai", "dall-e", "whisper", "sora"}, QualityWeight: 0.95, AIResearch: true},
	{Key: "deepmind", Name: "Google DeepMind", Keywords: []string{"deepmind", "alphafold", "alphacode", "gemma"}, QualityWeight: 0.95, AIResearch: true},
	{Key: "meta_ai", Name: "Meta AI", Keywords: []string{"meta ai", "llama", "codellama", "fair"}, QualityWeight: 0.95, AIResearch: true},
	{Key: "google_ai", Name: "Google AI Blog", Keywords: []string{"google", "gemini", "bard", "tensorflow", "jax"}, QualityWeight: 0.90, AIResearch: true},
	{Key: "mistral", Name: "Mistral AI", Keywords: []string{"mistral", "mixtral", "pixtral", "codestral"}, QualityWeight: 0.90, AIResearch: true},
	{Key: "ms_research", Name: "Microsoft Research", Keywords: []string{"microsoft research", "phi", "orca", "autogen"}, QualityWeight: 0.90, AIResearch: true},
	{Key: "arxiv", Name: "arXiv", Keywords: []string{"paper", "arxiv", "preprint"}, QualityWeight: 0.90, AIResearch: true},
	{Key: "langchain", Name: "LangChain Blog", Keywords: []string{"langchain", "langgraph", "lcel", "langsmith"}, QualityWeight: 0.85},
	{Key: "huggingface", Name: "Hugging Face", Keywords: []string{"huggingface", "transformers", "diffusers", "llama"}, QualityWeight: 0.85},
	{Key: "xai", Name: "xAI", Keywords: []string{"xai", "grok", "x.ai"}, QualityWeight: 0.85},
	{Key: "aws", Name: "AWS Blog", Keywords: []string{"aws", "lambda", "sagemaker", "bedrock"}, QualityWeight: 0.80},
	{Key: "microsoft", Name: "Microsoft DevBlogs", Keywords: []string{"azure", "copilot", ".net", "vscode"}, QualityWeight: 0.80},
	{Key: "github", Name: "GitHub", Keywords: []string{"github", "repo", "source code"}, QualityWeight: 0.75},
	{Key: "stackoverflow", Name: "Stack Overflow", Keywords: []string{"stackoverflow", "debug", "error"}, QualityWeight: 0.75},
	{Key: "hackernews", Name: "Hacker News", Keywords: []string{"hacker news", "hn", "ycombinator"}, QualityWeight: 0.75},
	{Key: "devto", Name: "Dev.to", Keywords: []string{"dev.to", "tutorial"}, QualityWeight: 0.70},
	{Key: "reddit_ai", Name: "Reddit AI", Keywords: []string{"reddit", "r/machinelearning", "r/localllama"}, QualityWeight: 0.70},
	{Key: "general", Name: "通用搜索", Keywords: nil, QualityWeight: 0.50},
}

var aiTopicKeywords = []string{
	"ai", "llm", "gpt", "transformer", "neural", "机器学习", "深度学习", "大模型",
	"agent", "rag", "embedding", "diffusion", "reinforcement learning",
}

func isAITopic(topic string) bool {
	lower := strings.ToLower(topic)
	for _, kw := range aiTopicKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

type routeDecision struct {
	Sources []string `json:"sources"`
}

// SmartSearchService routes a query to multiple sources in parallel, merges
// the results, and ranks them by source quality (spec.md §4.6).
type SmartSearchService struct {
	Client    llm.Client
	Providers map[string]external.SearchService
	Sources   []ProfessionalSource
	Curator   *SourceCurator
	Dedup     *QueryDeduplicator
	MaxFanOut int
}

// NewSmartSearchService wires the defaults (DefaultSources, a fresh
// SourceCurator and QueryDeduplicator) around the given provider map and
// LLM client.
func NewSmartSearchService(client llm.Client, providers map[string]external.SearchService) *SmartSearchService {
	return &SmartSearchService{
		Client:    client,
		Providers: providers,
		Sources:   DefaultSources,
		Curator:   NewSourceCurator(nil, HealthConfig{}),
		Dedup:     NewQueryDeduplicator(0),
		MaxFanOut: 4,
	}
}

// Search routes query across the relevant healthy providers, merges and
// dedupes their results by URL, and ranks the merged set by source quality.
func (s *SmartSearchService) Search(ctx context.Context, query string, maxResults int) ([]state.SearchResult, error) {
	if s.Dedup != nil && !s.Dedup.Allow(query) {
		return nil, ErrDuplicateQuery
	}

	routed := s.route(ctx, query)
	if s.Curator != nil {
		routed = s.Curator.GetHealthySources(routed)
	}
	if len(routed) > s.MaxFanOut && s.MaxFanOut > 0 {
		routed = routed[:s.MaxFanOut]
	}

	tasks := make([]executor.Task[[]state.SearchResult], 0, len(routed))
	for _, key := range routed {
		provider, ok := s.Providers[key]
		if !ok {
			continue
		}
		sourceName := s.sourceName(key)
		tasks = append(tasks, executor.Task[[]state.SearchResult]{
			Name: key,
			Fn: func(ctx context.Context) ([]state.SearchResult, error) {
				resp, err := provider.Search(ctx, query, maxResults)
				if err != nil {
					return nil, err
				}
				if !resp.Success {
					return nil, errors.New(resp.Error)
				}
				return convertResults(resp.Results, sourceName), nil
			},
		})
	}
	if len(tasks) == 0 {
		return nil, nil
	}

	results, err := executor.Run(ctx, tasks, executor.Config{})
	if err != nil {
		return nil, err
	}

	merged := make([]state.SearchResult, 0, len(results)*maxResults)
	for _, r := range results {
		if s.Curator != nil {
			if r.Success {
				s.Curator.RecordSuccess(r.TaskName)
			} else {
				s.Curator.RecordFailure(r.TaskName)
			}
		}
		if r.Success {
			merged = append(merged, r.Value...)
		}
	}

	merged = dedupeByURL(merged)
	if s.Curator != nil {
		merged = s.Curator.Rank(merged)
	}
	if maxResults > 0 && len(merged) > maxResults {
		merged = merged[:maxResults]
	}
	return merged, nil
}

func (s *SmartSearchService) sourceName(key string) string {
	for _, src := range s.Sources {
		if src.Key == key {
			return src.Name
		}
	}
	return key
}

// route picks source keys for query: an LLM router first, falling back to
// keyword matching against s.Sources, then augmenting with curated
// AI-research sources when the topic looks AI-related.
func (s *SmartSearchService) route(ctx context.Context, query string) []string {
	var selected []string
	if s.Client != nil {
		if llmPicked := s.routeWithLLM(ctx, query); len(llmPicked) > 0 {
			selected = llmPicked
		}
	}
	if len(selected) == 0 {
		selected = s.routeByKeyword(query)
	}

	if isAITopic(query) {
		selected = append(selected, s.aiResearchKeys()...)
	}
	return dedupeStrings(selected)
}

func (s *SmartSearchService) routeByKeyword(query string) []string {
	lower := strings.ToLower(query)
	var keys []string
	for _, src := range s.Sources {
		for _, kw := range src.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				keys = append(keys, src.Key)
				break
			}
		}
	}
	keys = append(keys, "general")
	return keys
}

func (s *SmartSearchService) aiResearchKeys() []string {
	var keys []string
	for _, src := range s.Sources {
		if src.AIResearch {
			keys = append(keys, src.Key)
		}
	}
	return keys
}

func (s *SmartSearchService) routeWithLLM(ctx context.Context, query string) []string {
	names := make([]string, 0, len(s.Sources))
	for _, src := range s.Sources {
		names = append(names, src.Key)
	}
	prompt := "Pick the 2-4 most relevant search sources for this query from " +
		strings.Join(names, ", ") + ". Query: " + query +
		"\nRespond with JSON: {\"sources\": [\"key1\", \"key2\"]}."

	reply, err := s.Client.Chat(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: prompt},
	}, llm.ChatOptions{ResponseFormatJSON: true, Caller: "smart_search_router"})
	if err != nil {
		return nil
	}
	var decision routeDecision
	if err := jsonutil.Extract(reply, &decision); err != nil {
		return nil
	}
	return decision.Sources
}

func convertResults(results []external.SearchResult, sourceName string) []state.SearchResult {
	out := make([]state.SearchResult, len(results))
	for i, r := range results {
		source := r.Source
		if source == "" {
			source = sourceName
		}
		out[i] = state.SearchResult{Title: r.Title, URL: r.URL, Content: r.Content, Source: source}
	}
	return out
}

func dedupeByURL(results []state.SearchResult) []state.SearchResult {
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

func dedupeStrings(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
