package postprocess_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blogforge/core/postprocess"
)

func TestFixMarkdownSeparators_AddsBlankLinesAroundStandaloneSeparator(t *testing.T) {
	in := "paragraph one\n---\nparagraph two"
	out := postprocess.FixMarkdownSeparators(in)
	assert.Equal(t, "paragraph one\n\n---\n\nparagraph two", out)
}

func TestFixMarkdownSeparators_SplitsSeparatorGluedToHeading(t *testing.T) {
	in := "text\n---## Next Section\nmore"
	out := postprocess.FixMarkdownSeparators(in)
	assert.Contains(t, out, "---\n\n## Next Section")
	assert.NotContains(t, out, "---##")
}

func TestFixMarkdownSeparators_SkipsSeparatorsInsideCodeFences(t *testing.T) {
	in := "before\n```\n---\n```\nafter"
	out := postprocess.FixMarkdownSeparators(in)
	assert.Equal(t, in, out)
}

func TestFixMarkdownSeparators_CollapsesExcessBlankLines(t *testing.T) {
	in := "a\n\n\n\n\nb"
	out := postprocess.FixMarkdownSeparators(in)
	assert.Equal(t, "a\n\nb", out)
	assert.False(t, strings.Contains(out, "\n\n\n"))
}
