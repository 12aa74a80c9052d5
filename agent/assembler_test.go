package agent_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/agent"
	"github.com/blogforge/core/state"
)

func TestAssembler_BuildsMarkdownWithHeaderTOCAndReferences(t *testing.T) {
	s := state.New("topic", "tutorial", "devs", state.LengthShort)
	s.Outline.Title = "Building Widgets"
	s.Outline.Subtitle = "a practical guide"
	s.Sections = []state.Section{
		{ID: "s1", Title: "Intro", Content: "Widgets are great.\n\n### Why widgets\nmore text"},
		{ID: "s2", Title: "Details", Content: "Some details here."},
	}
	s.ReferenceLinks = []state.ReferenceLink{{Title: "Widget Docs", URL: "https://example.test/widgets"}}
	s.SocialSummary = "A quick look at widgets."

	a := &agent.Assembler{WordsPerMinute: 200}
	out, err := a.Run(context.Background(), s)
	require.NoError(t, err)

	md := out.FinalMarkdown
	assert.Contains(t, md, "# Building Widgets")
	assert.Contains(t, md, "*a practical guide*")
	assert.Contains(t, md, "## Table of Contents")
	assert.Contains(t, md, "- Intro")
	assert.Contains(t, md, "  - Why widgets")
	assert.Contains(t, md, "Widgets are great.")
	assert.Contains(t, md, "## Summary")
	assert.Contains(t, md, "A quick look at widgets.")
	assert.Contains(t, md, "## References")
	assert.Contains(t, md, "1. [Widget Docs](https://example.test/widgets)")
}

func TestAssembler_SkipsOnPriorFailure(t *testing.T) {
	s := state.New("topic", "tutorial", "devs", state.LengthShort)
	s.Error = "earlier node failed"

	a := &agent.Assembler{WordsPerMinute: 200}
	out, err := a.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Empty(t, out.FinalMarkdown)
}
