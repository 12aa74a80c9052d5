package postprocess_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blogforge/core/postprocess"
	"github.com/blogforge/core/state"
)

func TestReplaceSourceReferences_SubstitutesValidIndex(t *testing.T) {
	results := []state.SearchResult{
		{Title: "Attention Is All You Need", URL: "https://arxiv.org/abs/1706.03762"},
	}
	out := postprocess.ReplaceSourceReferences("as shown in {source_001}.", results)
	assert.Equal(t, "as shown in （[Attention Is All You Need](https://arxiv.org/abs/1706.03762)）.", out)
}

func TestReplaceSourceReferences_LeavesOutOfRangeIndexUntouched(t *testing.T) {
	results := []state.SearchResult{{Title: "a", URL: "https://x"}}
	out := postprocess.ReplaceSourceReferences("see {source_099}", results)
	assert.Equal(t, "see {source_099}", out)
}

func TestReplaceSourceReferences_MissingURLFallsBackToTitleOnly(t *testing.T) {
	results := []state.SearchResult{{Title: "No Link Source"}}
	out := postprocess.ReplaceSourceReferences("{source_001}", results)
	assert.Equal(t, "（No Link Source）", out)
}

func TestReplaceSourceReferences_EmptyResultsIsNoop(t *testing.T) {
	out := postprocess.ReplaceSourceReferences("{source_001}", nil)
	assert.Equal(t, "{source_001}", out)
}

func TestSourcePlaceholderIDs_FindsAllInOrder(t *testing.T) {
	ids := postprocess.SourcePlaceholderIDs("{source_003} and {source_012} and {source_003}")
	assert.Equal(t, []string{"003", "012", "003"}, ids)
}
