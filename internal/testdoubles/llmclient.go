package testdoubles

import (
	"context"
	"fmt"
	"sync"

	"github.com/blogforge/core/llm"
)

// Client is a scriptable llm.Client: Responses is consumed in call order
// (last entry repeats once exhausted), every call is recorded, and every
// successful call is folded into Tracker the same way a real client would.
type Client struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Calls     []ChatCall
	Tracker   *llm.TokenTracker
}

// ChatCall is one recorded Chat/ChatStream/ChatWithImage invocation.
type ChatCall struct {
	Messages []llm.Message
	Opts     llm.ChatOptions
	Prompt   string // set only for ChatWithImage
}

func NewClient(responses ...string) *Client {
	return &Client{Responses: responses, Tracker: llm.NewTokenTracker()}
}

func (c *Client) next() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return "", c.Err
	}
	if len(c.Responses) == 0 {
		return "", nil
	}
	idx := len(c.Calls) - 1
	if idx >= len(c.Responses) {
		idx = len(c.Responses) - 1
	}
	return c.Responses[idx], nil
}

func (c *Client) record(call ChatCall) {
	c.mu.Lock()
	c.Calls = append(c.Calls, call)
	c.mu.Unlock()
}

func (c *Client) Chat(_ context.Context, messages []llm.Message, opts llm.ChatOptions) (string, error) {
	c.record(ChatCall{Messages: messages, Opts: opts})
	resp, err := c.next()
	if err != nil {
		return "", err
	}
	c.Tracker.Record(llm.Usage{Agent: opts.Caller, InputTokens: len(resp), OutputTokens: len(resp)})
	return resp, nil
}

func (c *Client) ChatStream(ctx context.Context, messages []llm.Message, onChunk llm.ChunkFunc, opts llm.ChatOptions) (string, error) {
	resp, err := c.Chat(ctx, messages, opts)
	if err != nil {
		return "", err
	}
	if onChunk != nil {
		onChunk(resp)
	}
	return resp, nil
}

func (c *Client) ChatWithImage(_ context.Context, prompt string, _ string, _ string, opts llm.ChatOptions) (string, error) {
	c.record(ChatCall{Prompt: prompt, Opts: opts})
	resp, err := c.next()
	if err != nil {
		return "", err
	}
	c.Tracker.Record(llm.Usage{Agent: opts.Caller, InputTokens: len(resp), OutputTokens: len(resp)})
	return resp, nil
}

func (c *Client) TokenTracker() *llm.TokenTracker {
	return c.Tracker
}

// CallCount returns how many Chat/ChatStream/ChatWithImage calls were made.
func (c *Client) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Calls)
}

// ErrClient is an llm.Client that always fails, for testing error paths.
type ErrClient struct {
	Err error
}

func (e ErrClient) Chat(context.Context, []llm.Message, llm.ChatOptions) (string, error) {
	return "", e.failure()
}

func (e ErrClient) ChatStream(context.Context, []llm.Message, llm.ChunkFunc, llm.ChatOptions) (string, error) {
	return "", e.failure()
}

func (e ErrClient) ChatWithImage(context.Context, string, string, string, llm.ChatOptions) (string, error) {
	return "", e.failure()
}

func (e ErrClient) TokenTracker() *llm.TokenTracker {
	return llm.NewTokenTracker()
}

func (e ErrClient) failure() error {
	if e.Err != nil {
		return e.Err
	}
	return fmt.Errorf("testdoubles: ErrClient always fails")
}
