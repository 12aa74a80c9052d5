package skill_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/skill"
)

func TestMindMap_BuildsParentStackEdges(t *testing.T) {
	md := "# Root\n## Child A\n### Grandchild\n## Child B\n"
	out, err := skill.MindMap{}.Run(md)
	require.NoError(t, err)
	mo := out.(skill.MindMapOutput)

	require.Len(t, mo.Nodes, 4)
	assert.Equal(t, "Root", mo.Nodes[0].Label)
	assert.Equal(t, 1, mo.Nodes[0].Level)

	require.Len(t, mo.Edges, 3)
	assert.Equal(t, skill.MindMapEdge{Source: 0, Target: 1}, mo.Edges[0]) // Root -> Child A
	assert.Equal(t, skill.MindMapEdge{Source: 1, Target: 2}, mo.Edges[1]) // Child A -> Grandchild
	assert.Equal(t, skill.MindMapEdge{Source: 0, Target: 3}, mo.Edges[2]) // Root -> Child B (pops Grandchild/Child A)
}

func TestMindMap_NoHeadingsProducesEmptyGraph(t *testing.T) {
	out, err := skill.MindMap{}.Run("just some plain text\nwith no headings\n")
	require.NoError(t, err)
	mo := out.(skill.MindMapOutput)
	assert.Empty(t, mo.Nodes)
	assert.Empty(t, mo.Edges)
}
