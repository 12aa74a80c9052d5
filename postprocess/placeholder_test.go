package postprocess_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blogforge/core/postprocess"
	"github.com/blogforge/core/state"
)

func TestReplacePlaceholders_ResolvesCodeAndImageInOrder(t *testing.T) {
	content := "intro [CODE: code_1 - hello world] middle [IMAGE: flowchart - steps]"
	codeByID := map[string]state.CodeBlock{
		"code_1": {ID: "code_1", Code: "fmt.Println(\"hi\")", Language: "go"},
	}
	imageByID := map[string]state.Image{
		"img_1": {ID: "img_1", RenderMethod: state.RenderMermaid, Content: "flowchart TD\nA-->B"},
	}

	out := postprocess.ReplacePlaceholders(content, []string{"code_1"}, codeByID, []string{"img_1"}, imageByID)
	assert.Contains(t, out, "```go\nfmt.Println(\"hi\")\n```")
	assert.Contains(t, out, "```mermaid\nflowchart TD\nA-->B\n```")
	assert.NotContains(t, out, "[CODE:")
	assert.NotContains(t, out, "[IMAGE:")
}

func TestReplacePlaceholders_DropsUnrenderedImage(t *testing.T) {
	content := "see [IMAGE: scene - a sunset]"
	imageByID := map[string]state.Image{
		"img_1": {ID: "img_1"}, // no Content, no RenderedPath
	}
	out := postprocess.ReplacePlaceholders(content, nil, nil, []string{"img_1"}, imageByID)
	assert.Equal(t, "see ", out)
}

func TestReplacePlaceholders_DropsPlaceholderWithNoBoundID(t *testing.T) {
	content := "see [CODE: orphan - never bound]"
	out := postprocess.ReplacePlaceholders(content, nil, nil, nil, nil)
	assert.Equal(t, "see ", out)
}

func TestReplacePlaceholders_AIImageUsesRenderedPath(t *testing.T) {
	content := "[IMAGE: ai_image - hero shot]"
	imageByID := map[string]state.Image{
		"img_1": {ID: "img_1", RenderMethod: state.RenderAIImage, RenderedPath: "./images/hero.png", Caption: "Hero"},
	}
	out := postprocess.ReplacePlaceholders(content, nil, nil, []string{"img_1"}, imageByID)
	assert.Equal(t, "![Hero](./images/hero.png)", out)
}
