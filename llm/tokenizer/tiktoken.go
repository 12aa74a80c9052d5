package tokenizer

import (
	"github.com/pkoukk/tiktoken-go"
)

var _ Tokenizer = (*Tiktoken)(nil)

// Tiktoken is a direct port of Tangerg-lynx's ai/core/tokenizer.Tiktoken,
// unchanged: the BPE estimator fits the budget-checking role here exactly
// as it did for the teacher's context window guard.
type Tiktoken struct {
	encodingType string
	encoding     *tiktoken.Tiktoken
}

func (t *Tiktoken) EncodingType() string {
	return t.encodingType
}

func (t *Tiktoken) Estimate(text string) int {
	return len(t.EncodeTokens(text))
}

func (t *Tiktoken) EstimateTokens(text string) (int, []int) {
	token := t.EncodeTokens(text)
	return len(token), token
}

func (t *Tiktoken) EncodeTokens(text string) []int {
	return t.encoding.Encode(text, nil, nil)
}

func (t *Tiktoken) DecodeTokens(tokens []int) string {
	return t.encoding.Decode(tokens)
}

// NewTiktoken builds a Tokenizer for the given tiktoken encoding name, e.g.
// "cl100k_base".
func NewTiktoken(encodingType string) (*Tiktoken, error) {
	encoding, err := tiktoken.GetEncoding(encodingType)
	if err != nil {
		return nil, err
	}
	return &Tiktoken{
		encodingType: encodingType,
		encoding:     encoding,
	}, nil
}
