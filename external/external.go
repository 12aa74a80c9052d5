// Package external declares the collaborator contracts the workflow core
// consumes (spec.md §6): search, image/video generation, object storage,
// document knowledge, and task/event management. Agents depend on these
// interfaces, never on a concrete provider, so tests can substitute
// internal/testdoubles implementations.
package external

import "context"

// SearchResult is one item a SearchService returns.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
	Source  string `json:"source"`
}

// SearchResponse is a SearchService.Search outcome.
type SearchResponse struct {
	Success bool           `json:"success"`
	Results []SearchResult `json:"results"`
	Summary string         `json:"summary,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// SearchService looks up web (or source-specific) content for a query.
type SearchService interface {
	Search(ctx context.Context, query string, maxResults int) (SearchResponse, error)
}

// AspectRatio constrains ImageService.Generate's framing.
type AspectRatio string

const (
	AspectWide AspectRatio = "16:9"
	AspectTall AspectRatio = "9:16"
	AspectSquare AspectRatio = "1:1"
)

// ImageGenerationRequest is one ImageService.Generate call's parameters.
type ImageGenerationRequest struct {
	Prompt      string
	AspectRatio AspectRatio
	ImageSize   string
	MaxWait     int // seconds
	Download    bool
}

// ImageGenerationResult is what the provider hands back; at least one of
// the three locators is populated on success.
type ImageGenerationResult struct {
	URL       string `json:"url,omitempty"`
	OSSURL    string `json:"oss_url,omitempty"`
	LocalPath string `json:"local_path,omitempty"`
}

// ImageService generates an illustration from a text prompt.
type ImageService interface {
	Generate(ctx context.Context, req ImageGenerationRequest) (ImageGenerationResult, error)
}

// VideoGenerationRequest is one VideoService.GenerateFromImage call's
// parameters (spec.md §6, optional collaborator).
type VideoGenerationRequest struct {
	ImageURL        string
	Prompt          string
	AspectRatio     AspectRatio
	LastFrameURL    string
	ProgressCallback func(percent int)
}

// VideoService turns a still image into a short clip. Optional: nil when a
// run has no video budget configured.
type VideoService interface {
	GenerateFromImage(ctx context.Context, req VideoGenerationRequest) (ImageGenerationResult, error)
}

// ObjectStore uploads a local artifact and returns its public URL.
type ObjectStore interface {
	UploadFile(ctx context.Context, localPath, key string) (string, error)
}

// DocumentService merges user-supplied document knowledge with web search
// results (spec.md §6, optional collaborator).
type DocumentService interface {
	GetMergedKnowledge(ctx context.Context, docIDs []string, searchResults []SearchResult) (string, error)
	ConvertSearchResults(ctx context.Context, results []SearchResult) ([]string, error)
	PrepareDocumentKnowledge(ctx context.Context, docIDs []string) (string, error)
	SummarizeForPrompt(ctx context.Context, text string, maxChars int) (string, error)
	BatchLoad(ctx context.Context, docIDs []string) ([]string, error)
}

// EventType enumerates the kinds of events a TaskManager forwards to a
// listening client (spec.md §6).
type EventType string

const (
	EventProgress  EventType = "progress"
	EventStream    EventType = "stream"
	EventResult    EventType = "result"
	EventLog       EventType = "log"
	EventComplete  EventType = "complete"
	EventError     EventType = "error"
	EventCancelled EventType = "cancelled"
)

// TaskManager forwards progress/result events for a running task and lets
// the workflow check for cooperative cancellation.
type TaskManager interface {
	SendEvent(taskID string, eventType EventType, payload any)
	IsCancelled(taskID string) bool
}
