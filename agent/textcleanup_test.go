package agent_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/agent"
	"github.com/blogforge/core/state"
)

func TestTextCleanup_CollapsesWhitespaceAndBullets(t *testing.T) {
	s := state.New("topic", "tutorial", "devs", state.LengthShort)
	s.Sections = []state.Section{
		{ID: "s1", Content: "Hello   world ,  this  is odd .\n\n\n\n* item one\n* item two\n"},
	}

	out, err := agent.TextCleanup{}.Run(context.Background(), s)
	require.NoError(t, err)

	content := out.Sections[0].Content
	assert.NotContains(t, content, "  ")
	assert.Contains(t, content, "- item one")
	assert.NotContains(t, content, "\n\n\n")
}

func TestTextCleanup_SkipsOnPriorFailure(t *testing.T) {
	s := state.New("topic", "tutorial", "devs", state.LengthShort)
	s.Error = "earlier node failed"
	s.Sections = []state.Section{{ID: "s1", Content: "unchanged   text"}}

	out, err := agent.TextCleanup{}.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "unchanged   text", out.Sections[0].Content)
}
