// Package tokenizer estimates token counts for prompts before they go to
// the model, backing the ContextGuard/token-budget checks spec.md §5 and
// §4.3 describe.
package tokenizer

// Tokenizer estimates and round-trips token counts for a piece of text.
type Tokenizer interface {
	EncodingType() string
	Estimate(text string) int
	EstimateTokens(text string) (int, []int)
	EncodeTokens(text string) []int
	DecodeTokens(tokens []int) string
}
