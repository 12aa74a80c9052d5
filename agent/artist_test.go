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

func TestArtist_SkipsOnPriorFatalError(t *testing.T) {
	client := testdoubles.NewClient()
	a := &agent.Artist{Client: client}
	s := state.New("topic", "tutorial", "devs", state.LengthShort)
	s.SetFatal(assert.AnError)

	out, err := a.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Empty(t, out.Images)
	assert.Equal(t, 0, client.CallCount())
}

func TestArtist_FullMode_UsesOutlineAndPlaceholderSourcesWithoutDetection(t *testing.T) {
	client := testdoubles.NewClient(`{"render_method":"mermaid","content":"flowchart TD\nA-->B","caption":"diagram"}`)
	a := &agent.Artist{Client: client}
	s := state.New("topic", "tutorial", "devs", state.LengthShort)
	s.Outline.Sections = []state.SectionPlan{
		{ID: "s1", ImageType: state.ImageFlowchart, ImageDescription: "declared diagram"},
	}
	s.Sections = []state.Section{
		{ID: "s1", Content: "some text"},
		{ID: "s2", Content: "before [IMAGE: comparison - a vs b] after"},
	}

	out, err := a.Run(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, out.Images, 2)
	assert.Equal(t, 2, client.CallCount())
	assert.NotEmpty(t, out.Sections[0].ImageIDs)
	assert.NotEmpty(t, out.Sections[1].ImageIDs)
}

func TestArtist_FullMode_MissingDiagramDetectorAddsTask(t *testing.T) {
	client := testdoubles.NewClient(
		`{"needs_diagram":true,"image_type":"flowchart","description":"steps to deploy"}`,
		`{"render_method":"mermaid","content":"flowchart TD\nA-->B","caption":"deploy steps"}`,
	)
	a := &agent.Artist{Client: client}
	s := state.New("topic", "tutorial", "devs", state.LengthShort)
	s.Sections = []state.Section{
		{ID: "s1", Content: "a section with no declared image and no placeholder"},
	}

	out, err := a.Run(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, out.Images, 1)
	assert.Equal(t, 2, client.CallCount())
	assert.Equal(t, []string{out.Images[0].ID}, out.Sections[0].ImageIDs)
}

func TestArtist_FullMode_MissingDiagramDetectorSkipsWhenNotNeeded(t *testing.T) {
	client := testdoubles.NewClient(`{"needs_diagram":false}`)
	a := &agent.Artist{Client: client}
	s := state.New("topic", "tutorial", "devs", state.LengthShort)
	s.Sections = []state.Section{
		{ID: "s1", Content: "plain prose that needs no diagram"},
	}

	out, err := a.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Empty(t, out.Images)
	assert.Equal(t, 1, client.CallCount())
}

func TestArtist_FullMode_BudgetDerivedFromTargetLength(t *testing.T) {
	responses := make([]string, 0, 6)
	for i := 0; i < 3; i++ {
		responses = append(responses, `{"needs_diagram":true,"image_type":"scene","description":"illustration"}`)
	}
	for i := 0; i < 3; i++ {
		responses = append(responses, `{"render_method":"mermaid","content":"flowchart TD\nA-->B"}`)
	}
	client := testdoubles.NewClient(responses...)
	a := &agent.Artist{Client: client}
	s := state.New("topic", "tutorial", "devs", state.LengthMini)
	s.Sections = []state.Section{
		{ID: "s1", Content: "section one"},
		{ID: "s2", Content: "section two"},
		{ID: "s3", Content: "section three"},
		{ID: "s4", Content: "section four"},
	}

	out, err := a.Run(context.Background(), s)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out.Images), 3)
}

func TestArtist_MiniMode_OneImagePerSection(t *testing.T) {
	client := testdoubles.NewClient(`{"render_method":"mermaid","content":"flowchart TD\nA-->B"}`)
	a := &agent.Artist{Client: client, MiniMode: true}
	s := state.New("topic", "tutorial", "devs", state.LengthMini)
	s.Sections = []state.Section{
		{ID: "s1", Title: "Intro", Content: "hello"},
		{ID: "s2", Title: "Details", Content: "world"},
	}

	out, err := a.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Len(t, out.Images, 2)
	assert.NotEmpty(t, out.Sections[0].ImageIDs)
	assert.NotEmpty(t, out.Sections[1].ImageIDs)
}
