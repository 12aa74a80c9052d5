package postprocess_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/postprocess"
)

func TestSanitizeMermaid_StripsFenceAndFixesLabels(t *testing.T) {
	in := "```mermaid\nflowchart TD\nA[Start\\nHere] --> B[End]\n```"
	out := postprocess.SanitizeMermaid(in)
	assert.Equal(t, "flowchart TD\nA[Start Here] --> B[End]", out)
}

func TestSanitizeMermaid_CollapsesDuplicateArrows(t *testing.T) {
	out := postprocess.SanitizeMermaid("flowchart TD\nA --> --> B")
	assert.Equal(t, "flowchart TD\nA --> B", out)
}

func TestValidateMermaid_AcceptsWellFormedChart(t *testing.T) {
	ok, msg := postprocess.ValidateMermaid("flowchart TD\nsubgraph S\nA-->B\nend")
	require.True(t, ok)
	assert.Empty(t, msg)
}

func TestValidateMermaid_RejectsMissingChartType(t *testing.T) {
	ok, msg := postprocess.ValidateMermaid("A-->B")
	assert.False(t, ok)
	assert.Contains(t, msg, "chart-type")
}

func TestValidateMermaid_RejectsUnbalancedSubgraph(t *testing.T) {
	ok, msg := postprocess.ValidateMermaid("flowchart TD\nsubgraph S\nA-->B")
	assert.False(t, ok)
	assert.Contains(t, msg, "subgraph")
}
