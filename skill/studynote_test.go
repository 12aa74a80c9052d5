package skill_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/skill"
)

func TestStudyNote_OneBulletPerHeading(t *testing.T) {
	md := "# Intro\nFirst sentence here.\nmore text\n\n## Details\nSecond sentence here.\n"
	out, err := skill.StudyNote{}.Run(md)
	require.NoError(t, err)
	so := out.(skill.StudyNoteOutput)

	assert.Equal(t, []string{"Intro", "Details"}, so.KeyPoints)
	assert.Contains(t, so.Note, "**Intro**: First sentence here.")
	assert.Contains(t, so.Note, "**Details**: Second sentence here.")
}

func TestStudyNote_EmptyMarkdownProducesEmptyNote(t *testing.T) {
	out, err := skill.StudyNote{}.Run("")
	require.NoError(t, err)
	so := out.(skill.StudyNoteOutput)
	assert.Empty(t, so.Note)
	assert.Empty(t, so.KeyPoints)
}
