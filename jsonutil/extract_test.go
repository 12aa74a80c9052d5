package jsonutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/jsonutil"
)

type payload struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

func TestExtract_Raw(t *testing.T) {
	var p payload
	err := jsonutil.Extract(`{"title":"hello","tags":["a","b"]}`, &p)
	require.NoError(t, err)
	assert.Equal(t, "hello", p.Title)
	assert.Equal(t, []string{"a", "b"}, p.Tags)
}

func TestExtract_FencedWithLang(t *testing.T) {
	text := "Here you go:\n```json\n{\"title\":\"x\",\"tags\":[]}\n```\nHope that helps."
	var p payload
	require.NoError(t, jsonutil.Extract(text, &p))
	assert.Equal(t, "x", p.Title)
}

func TestExtract_FencedWithoutLang(t *testing.T) {
	text := "```\n{\"title\":\"y\",\"tags\":[\"z\"]}\n```"
	var p payload
	require.NoError(t, jsonutil.Extract(text, &p))
	assert.Equal(t, "y", p.Title)
}

func TestExtract_SurroundingProse(t *testing.T) {
	text := `Sure! {"title":"z","tags":["q"]} Let me know if that helps.`
	var p payload
	require.NoError(t, jsonutil.Extract(text, &p))
	assert.Equal(t, "z", p.Title)
}

func TestExtract_NoJSON(t *testing.T) {
	var p payload
	err := jsonutil.Extract("no json here at all", &p)
	assert.ErrorIs(t, err, jsonutil.ErrNoJSON)
}
