package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ModelConfig names the concrete model identifier behind each tier
// (spec.md §4.4: "a tier argument that the client maps to a model
// identifier"). Grounded on the teacher's ApiKey/ChatOptions constructor
// pattern — a small plain struct, no config library at this layer.
type ModelConfig struct {
	Fast       string
	Smart      string
	Strategic  string
	MaxTokens  int64
}

func (m ModelConfig) modelFor(tier Tier) string {
	switch tier {
	case TierFast:
		return m.Fast
	case TierStrategic:
		return m.Strategic
	default:
		return m.Smart
	}
}

// ResilientClientConfig configures NewResilientClient.
type ResilientClientConfig struct {
	APIKey              string
	BaseURL             string
	Models              ModelConfig
	MinRequestInterval  time.Duration // default 1s, spec.md §5
	MaxTruncationRetries int          // default 1
	MaxRateLimitRetries  int          // default 5
}

// ResilientClient is the sole concrete Client implementation: an
// openai-go-backed chat model wrapped with the resilience spec.md §4.4/§5
// mandates — global minimum inter-request interval, truncation retry,
// exponential-backoff rate-limit retry, and a token_tracker hook.
//
// Grounded on Tangerg-lynx ai/providers/openaiv2 (Api.ChatCompletion wraps
// client.Chat.Completions.New; ChatModel owns request/response translation),
// generalized with cenkalti/backoff for the retry policy the teacher's
// plain API wrapper does not itself need.
type ResilientClient struct {
	client openai.Client
	cfg    ResilientClientConfig
	tracker *TokenTracker

	mu              sync.Mutex
	lastRequestTime time.Time
}

var _ Client = (*ResilientClient)(nil)

// NewResilientClient builds a Client backed by the OpenAI-compatible API.
func NewResilientClient(cfg ResilientClientConfig) *ResilientClient {
	if cfg.MinRequestInterval <= 0 {
		cfg.MinRequestInterval = time.Second
	}
	if cfg.MaxTruncationRetries <= 0 {
		cfg.MaxTruncationRetries = 1
	}
	if cfg.MaxRateLimitRetries <= 0 {
		cfg.MaxRateLimitRetries = 5
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &ResilientClient{
		client:  openai.NewClient(opts...),
		cfg:     cfg,
		tracker: NewTokenTracker(),
	}
}

func (c *ResilientClient) TokenTracker() *TokenTracker { return c.tracker }

// rateLimit enforces the process-wide minimum inter-request delay (spec.md
// §5 "enforces a process-wide minimum inter-call delay ... via a
// mutex-protected global timestamp"). One ResilientClient instance is
// shared by the whole run, so the mutex here is already the single owner
// the spec calls for — no package-level global needed.
func (c *ResilientClient) rateLimit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	elapsed := time.Since(c.lastRequestTime)
	if wait := c.cfg.MinRequestInterval - elapsed; wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.lastRequestTime = time.Now()
	return nil
}

func toChatMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// isRateLimited reports whether err is an HTTP 429 or a 5xx server error
// from the API; both are retried with backoff.
func isRateLimited(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError
	}
	return false
}

func (c *ResilientClient) completeWithRetry(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	var resp *openai.ChatCompletion
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.cfg.MaxRateLimitRetries))
	op := func() error {
		if err := c.rateLimit(ctx); err != nil {
			return backoff.Permanent(err)
		}
		r, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			if isRateLimited(err) {
				return err // retryable
			}
			return backoff.Permanent(err)
		}
		resp = r
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		return nil, fmt.Errorf("llm: chat completion failed: %w", err)
	}
	return resp, nil
}

func (c *ResilientClient) Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error) {
	model := c.cfg.Models.modelFor(opts.Tier)
	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: toChatMessages(messages),
	}
	if c.cfg.Models.MaxTokens > 0 {
		params.MaxTokens = openai.Int(c.cfg.Models.MaxTokens)
	}
	if opts.HasTemperature {
		params.Temperature = openai.Float(opts.Temperature)
	}
	if opts.ResponseFormatJSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}

	content, truncated, usage, err := c.chatOnce(ctx, params)
	if err != nil {
		return "", err
	}

	attempts := 1
	for truncated && attempts <= c.cfg.MaxTruncationRetries {
		attempts++
		// spec.md §8/§9: LLM truncation (retry). We widen the budget and
		// re-send the same request rather than silently return a cut-off
		// response.
		if c.cfg.Models.MaxTokens > 0 {
			params.MaxTokens = openai.Int(c.cfg.Models.MaxTokens * int64(attempts))
		}
		content, truncated, usage, err = c.chatOnce(ctx, params)
		if err != nil {
			return "", err
		}
	}

	c.tracker.Record(Usage{
		Agent:        opts.Caller,
		Model:        model,
		InputTokens:  usage.input,
		OutputTokens: usage.output,
	})
	return content, nil
}

type tokenUsage struct{ input, output int }

func (c *ResilientClient) chatOnce(ctx context.Context, params openai.ChatCompletionNewParams) (content string, truncated bool, usage tokenUsage, err error) {
	resp, err := c.completeWithRetry(ctx, params)
	if err != nil {
		return "", false, tokenUsage{}, err
	}
	if len(resp.Choices) == 0 {
		return "", false, tokenUsage{}, errors.New("llm: empty choices in chat completion")
	}
	choice := resp.Choices[0]
	usage = tokenUsage{
		input:  int(resp.Usage.PromptTokens),
		output: int(resp.Usage.CompletionTokens),
	}
	return choice.Message.Content, strings.EqualFold(string(choice.FinishReason), "length"), usage, nil
}

// ChatStream streams content through onChunk and returns the full
// accumulated text, using openai-go's streaming accumulator the way the
// teacher's openaiv2.ChatModel.stream does.
func (c *ResilientClient) ChatStream(ctx context.Context, messages []Message, onChunk ChunkFunc, opts ChatOptions) (string, error) {
	if err := c.rateLimit(ctx); err != nil {
		return "", err
	}
	model := c.cfg.Models.modelFor(opts.Tier)
	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: toChatMessages(messages),
	}
	if c.cfg.Models.MaxTokens > 0 {
		params.MaxTokens = openai.Int(c.cfg.Models.MaxTokens)
	}
	if opts.HasTemperature {
		params.Temperature = openai.Float(opts.Temperature)
	}

	stream := c.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	acc := openai.ChatCompletionAccumulator{}
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" && onChunk != nil {
			onChunk(chunk.Choices[0].Delta.Content)
		}
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("llm: chat stream failed: %w", err)
	}
	c.tracker.Record(Usage{
		Agent:        opts.Caller,
		Model:        model,
		InputTokens:  int(acc.Usage.PromptTokens),
		OutputTokens: int(acc.Usage.CompletionTokens),
	})
	if len(acc.Choices) == 0 {
		return "", errors.New("llm: empty choices in chat stream")
	}
	return acc.Choices[0].Message.Content, nil
}

// ChatWithImage sends a single multimodal turn: a text prompt plus one
// base64-encoded image (spec.md §6 "chat_with_image(prompt, image_base64,
// mime_type)").
func (c *ResilientClient) ChatWithImage(ctx context.Context, prompt string, imageBase64, mimeType string, opts ChatOptions) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, imageBase64)
	params := openai.ChatCompletionNewParams{
		Model: c.cfg.Models.modelFor(opts.Tier),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
			}),
		},
	}
	content, _, usage, err := c.chatOnce(ctx, params)
	if err != nil {
		return "", err
	}
	c.tracker.Record(Usage{
		Agent:        opts.Caller,
		Model:        params.Model,
		InputTokens:  usage.input,
		OutputTokens: usage.output,
	})
	return content, nil
}
