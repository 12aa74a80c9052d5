// Package postprocess implements the final markdown-repair passes spec.md
// §4.5.11 describes: separator repair, placeholder substitution, and
// source-reference linking, plus the Mermaid sanitize/validate helpers
// §4.5.7 shares with the assembler.
package postprocess

import (
	"regexp"
	"strings"
)

var collapseBlankLines = regexp.MustCompile(`\n{3,}`)

// FixMarkdownSeparators repairs standalone "---" lines so they always sit
// on their own blank-line-bounded paragraph (otherwise a line glued to the
// text above it is parsed as a Setext heading, and "---##" reads as one
// run-on line) and collapses 3+ consecutive blank lines to 2. Lines inside
// fenced code blocks are left untouched (ported from
// assembler.py's _fix_markdown_separators).
func FixMarkdownSeparators(text string) string {
	lines := strings.Split(text, "\n")
	result := make([]string, 0, len(lines))
	inCodeBlock := false

	lastLine := func() string {
		if len(result) == 0 {
			return ""
		}
		return strings.TrimSpace(result[len(result)-1])
	}

	for _, line := range lines {
		stripped := strings.TrimSpace(line)

		if strings.HasPrefix(stripped, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
			continue
		}

		if inCodeBlock {
			result = append(result, line)
			continue
		}

		switch {
		case stripped == "---":
			if lastLine() != "" {
				result = append(result, "")
			}
			result = append(result, "---", "")
		case strings.HasPrefix(stripped, "---") && len(stripped) > 3 && stripped[3] != '-':
			rest := strings.TrimLeft(stripped[3:], " \t")
			if lastLine() != "" {
				result = append(result, "")
			}
			result = append(result, "---", "", rest)
		default:
			result = append(result, line)
		}
	}

	text = strings.Join(result, "\n")
	return collapseBlankLines.ReplaceAllString(text, "\n\n")
}
