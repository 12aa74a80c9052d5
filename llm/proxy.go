package llm

import (
	"context"
	"os"
	"strings"
)

// AgentTiers is the default Agent name → Tier registry (ported from
// original_source llm_tier_config.py's AGENT_LLM_TIERS). Agent code never
// sets a tier itself; the workflow builder resolves it once via
// ResolveAgentTier and wires a Proxy(tier) in front of the shared Client.
var AgentTiers = map[string]Tier{
	// strategic: multi-step reasoning
	"planner":            TierStrategic,
	"search_coordinator":  TierStrategic,

	// smart: core quality-sensitive output
	"writer":          TierSmart,
	"reviewer":        TierSmart,
	"humanizer":       TierSmart,
	"questioner":      TierSmart,
	"coder":           TierSmart,
	"factcheck":       TierSmart,
	"thread_checker":  TierSmart,
	"voice_checker":   TierSmart,

	// fast: simple formatting/summarization
	"researcher":         TierFast,
	"artist":             TierFast,
	"summary_generator":  TierFast,
}

// ResolveAgentTier returns the effective tier for agentName: an
// AGENT_<NAME>_LLM_TIER env override takes precedence over AgentTiers, which
// in turn falls back to TierSmart for an unregistered agent.
func ResolveAgentTier(agentName string) Tier {
	envKey := "AGENT_" + strings.ToUpper(agentName) + "_LLM_TIER"
	switch Tier(strings.ToLower(os.Getenv(envKey))) {
	case TierFast, TierSmart, TierStrategic:
		return Tier(strings.ToLower(os.Getenv(envKey)))
	}
	if tier, ok := AgentTiers[agentName]; ok {
		return tier
	}
	return TierSmart
}

// Proxy wraps a Client and transparently injects a fixed tier into every
// call (spec.md §4.4 "LLMProxy(tier)... delegates all calls to an underlying
// LLM client, injecting a tier argument"). Agent code is written entirely
// against Client and never knows a Proxy sits in front of it.
type Proxy struct {
	underlying Client
	tier       Tier
}

var _ Client = (*Proxy)(nil)

// NewProxy returns a Client that always calls underlying with tier injected,
// unless the caller already set opts.Tier explicitly.
func NewProxy(underlying Client, tier Tier) *Proxy {
	return &Proxy{underlying: underlying, tier: tier}
}

func (p *Proxy) withTier(opts ChatOptions) ChatOptions {
	if opts.Tier == "" {
		opts.Tier = p.tier
	}
	return opts
}

func (p *Proxy) Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error) {
	return p.underlying.Chat(ctx, messages, p.withTier(opts))
}

func (p *Proxy) ChatStream(ctx context.Context, messages []Message, onChunk ChunkFunc, opts ChatOptions) (string, error) {
	return p.underlying.ChatStream(ctx, messages, onChunk, p.withTier(opts))
}

// ChatWithImage always forces TierSmart: multimodal understanding needs a
// stronger model regardless of the proxy's configured tier (matches
// TieredLLMProxy.chat_with_image in the Python original).
func (p *Proxy) ChatWithImage(ctx context.Context, prompt string, imageBase64, mimeType string, opts ChatOptions) (string, error) {
	opts.Tier = TierSmart
	return p.underlying.ChatWithImage(ctx, prompt, imageBase64, mimeType, opts)
}

func (p *Proxy) TokenTracker() *TokenTracker {
	return p.underlying.TokenTracker()
}

// ForAgent builds the Proxy the workflow wires in front of each agent,
// resolving its tier via ResolveAgentTier.
func ForAgent(underlying Client, agentName string) *Proxy {
	return NewProxy(underlying, ResolveAgentTier(agentName))
}
