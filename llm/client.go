// Package llm defines the contract every agent speaks to reach a language
// model (spec.md §4.4/§6), plus the tiered proxy and resilient OpenAI-backed
// implementation of it. Agents never import openai-go directly; they only
// ever see the Client interface, typically wrapped by a Proxy.
package llm

import "context"

// Role mirrors the three chat roles the teacher's chat.Request accepts.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    Role
	Content string
}

// Tier selects a model class (spec.md §4.4): fast|smart|strategic.
type Tier string

const (
	TierFast       Tier = "fast"
	TierSmart      Tier = "smart"
	TierStrategic  Tier = "strategic"
)

// ChatOptions carries the optional knobs spec.md §4.4/§6 names for chat().
// Zero value means "use the client's defaults".
type ChatOptions struct {
	ResponseFormatJSON bool
	Temperature        float64
	HasTemperature     bool
	Thinking           bool
	ThinkingBudget     int
	Tier               Tier
	Caller             string
}

// ChunkFunc receives one streamed token/fragment at a time.
type ChunkFunc func(chunk string)

// Client is the resilience-and-transport boundary every agent depends on.
// Implementations must enforce a global minimum inter-request interval,
// retry on truncation and on rate limits with backoff, and feed every
// completed call to TokenTracker.
type Client interface {
	Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error)
	ChatStream(ctx context.Context, messages []Message, onChunk ChunkFunc, opts ChatOptions) (string, error)
	ChatWithImage(ctx context.Context, prompt string, imageBase64, mimeType string, opts ChatOptions) (string, error)
	TokenTracker() *TokenTracker
}
