package llm

import "github.com/blogforge/core/llm/tokenizer"

// ContextGuard estimates whether a prompt fits the model's input budget
// before the call goes out, matching original_source llm_service.py's
// ContextGuard.check: a non-blocking warning, never an error, since the
// caller is in a better position to decide whether to trim.
type ContextGuard struct {
	tok            tokenizer.Tokenizer
	maxOutputTokens int
	contextWindow   int
}

// NewContextGuard builds a guard for a model with the given context window
// and reserved output budget.
func NewContextGuard(tok tokenizer.Tokenizer, contextWindow, maxOutputTokens int) *ContextGuard {
	return &ContextGuard{tok: tok, maxOutputTokens: maxOutputTokens, contextWindow: contextWindow}
}

// CheckResult reports whether a prompt is safely within budget.
type CheckResult struct {
	PromptTokens    int
	IsSafe          bool
	OverflowTokens  int
}

// Check estimates total prompt tokens across all messages and compares
// against contextWindow - maxOutputTokens.
func (g *ContextGuard) Check(messages []Message) CheckResult {
	total := 0
	for _, m := range messages {
		total += g.tok.Estimate(m.Content)
	}
	safeLimit := g.contextWindow - g.maxOutputTokens
	if safeLimit < 0 {
		safeLimit = 0
	}
	if total <= safeLimit {
		return CheckResult{PromptTokens: total, IsSafe: true}
	}
	return CheckResult{PromptTokens: total, IsSafe: false, OverflowTokens: total - safeLimit}
}
