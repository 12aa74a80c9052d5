package postprocess

import (
	"fmt"
	"regexp"

	"github.com/blogforge/core/state"
)

var (
	codePlaceholder  = regexp.MustCompile(`\[CODE:[^\]]*\]`)
	imagePlaceholder = regexp.MustCompile(`\[IMAGE:[^\]]*\]`)
)

// ReplacePlaceholders resolves every `[CODE: id - description]` and
// `[IMAGE: type - description]` placeholder in content with its rendered
// markdown, matching the Nth placeholder of each kind to codeIDs[N]/
// imageIDs[N] in encounter order (spec.md §4.5.11: the coder/artist agents
// record resolved IDs onto the section in the order they found the
// placeholders). A placeholder with no corresponding ID, or whose Image
// has no rendered content, is dropped.
func ReplacePlaceholders(
	content string,
	codeIDs []string, codeByID map[string]state.CodeBlock,
	imageIDs []string, imageByID map[string]state.Image,
) string {
	content = replaceNth(content, codePlaceholder, len(codeIDs), func(i int) string {
		block, ok := codeByID[codeIDs[i]]
		if !ok {
			return ""
		}
		return codeBlockMarkdown(block)
	})
	content = replaceNth(content, imagePlaceholder, len(imageIDs), func(i int) string {
		img, ok := imageByID[imageIDs[i]]
		if !ok || !isRendered(img) {
			return ""
		}
		return imageMarkdown(img)
	})
	return content
}

// isRendered reports whether img has content bound to it: inline
// mermaid/svg source, or a resolved rendered_path/URL for an ai_image.
func isRendered(img state.Image) bool {
	return img.Content != "" || img.RenderedPath != ""
}

func codeBlockMarkdown(block state.CodeBlock) string {
	lang := block.Language
	md := "```" + lang + "\n" + block.Code + "\n```"
	if block.Output != "" {
		md += "\n\n**Output:**\n```\n" + block.Output + "\n```"
	}
	if block.Explanation != "" {
		md += "\n\n" + block.Explanation
	}
	return md
}

func imageMarkdown(img state.Image) string {
	switch img.RenderMethod {
	case state.RenderMermaid:
		return "```mermaid\n" + img.Content + "\n```"
	case state.RenderSVG:
		return img.Content
	default: // ai_image
		path := img.RenderedPath
		if path == "" {
			path = img.Content
		}
		return fmt.Sprintf("![%s](%s)", img.Caption, path)
	}
}

// replaceNth replaces each successive match of pattern in content with
// render(i) for i in [0, limit); matches beyond limit are removed.
func replaceNth(content string, pattern *regexp.Regexp, limit int, render func(i int) string) string {
	i := 0
	return pattern.ReplaceAllStringFunc(content, func(match string) string {
		if i >= limit {
			i++
			return ""
		}
		idx := i
		i++
		return render(idx)
	})
}
