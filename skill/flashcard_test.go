package skill_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/skill"
)

func TestFlashcard_OneCardPerHeadingWithBody(t *testing.T) {
	md := "# Intro\nThis is the introduction body.\n\n## Details\nThis is the details body content.\n"
	out, err := skill.Flashcard{}.Run(md)
	require.NoError(t, err)
	fo := out.(skill.FlashcardOutput)
	require.Len(t, fo.Cards, 2)
	assert.Equal(t, "What is Intro?", fo.Cards[0].Question)
	assert.Contains(t, fo.Cards[0].Answer, "introduction body")
}

func TestFlashcard_SkipsHeadingsWithShortBody(t *testing.T) {
	md := "# Intro\nok\n"
	out, err := skill.Flashcard{}.Run(md)
	require.NoError(t, err)
	fo := out.(skill.FlashcardOutput)
	assert.Empty(t, fo.Cards)
}

func TestFlashcard_TruncatesLongAnswers(t *testing.T) {
	body := strings.Repeat("a", 600)
	md := "# Intro\n" + body + "\n"
	out, err := skill.Flashcard{}.Run(md)
	require.NoError(t, err)
	fo := out.(skill.FlashcardOutput)
	require.Len(t, fo.Cards, 1)
	assert.Len(t, []rune(fo.Cards[0].Answer), 500)
}
