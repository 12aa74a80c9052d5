package agent_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/agent"
	"github.com/blogforge/core/internal/testdoubles"
	"github.com/blogforge/core/state"
)

func TestCrossSectionDedup_NoOpBelowTwoSections(t *testing.T) {
	client := testdoubles.NewClient(`{"rewrites":[]}`)
	d := &agent.CrossSectionDedup{Client: client}
	s := state.New("topic", "tutorial", "devs", state.LengthShort)
	s.Sections = []state.Section{{ID: "s1", Content: "only one section"}}

	out, err := d.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "only one section", out.Sections[0].Content)
	assert.Equal(t, 0, client.CallCount())
}

func TestCrossSectionDedup_RewritesNamedSections(t *testing.T) {
	client := testdoubles.NewClient(`{"rewrites":[{"section_id":"s2","content":"trimmed content"}]}`)
	d := &agent.CrossSectionDedup{Client: client, Threshold: 0.9}
	s := state.New("topic", "tutorial", "devs", state.LengthShort)
	s.Sections = []state.Section{
		{ID: "s1", Content: "first section repeats a point"},
		{ID: "s2", Content: "second section repeats the same point"},
	}

	out, err := d.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "first section repeats a point", out.Sections[0].Content)
	assert.Equal(t, "trimmed content", out.Sections[1].Content)
	assert.Equal(t, 1, client.CallCount())
}

func TestCrossSectionDedup_NonFatalOnBadJSON(t *testing.T) {
	client := testdoubles.NewClient("not json")
	d := &agent.CrossSectionDedup{Client: client}
	s := state.New("topic", "tutorial", "devs", state.LengthShort)
	s.Sections = []state.Section{
		{ID: "s1", Content: "a"},
		{ID: "s2", Content: "b"},
	}

	out, err := d.Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, out.Failed())
}
