package postprocess

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/blogforge/core/state"
)

var sourcePlaceholder = regexp.MustCompile(`\{source_(\d{1,3})\}`)

// ReplaceSourceReferences substitutes each `{source_NNN}` placeholder with
// a parenthesized Markdown link into a 1-indexed lookup of searchResults.
// An out-of-range index is left untouched (spec.md §4.5.11).
func ReplaceSourceReferences(content string, searchResults []state.SearchResult) string {
	if len(searchResults) == 0 {
		return content
	}
	return sourcePlaceholder.ReplaceAllStringFunc(content, func(match string) string {
		groups := sourcePlaceholder.FindStringSubmatch(match)
		idx, err := strconv.Atoi(groups[1])
		if err != nil || idx <= 0 || idx > len(searchResults) {
			return match
		}
		src := searchResults[idx-1]
		title := src.Title
		if title == "" {
			title = "来源"
		}
		if src.URL == "" {
			return fmt.Sprintf("（%s）", title)
		}
		return fmt.Sprintf("（[%s](%s)）", title, src.URL)
	})
}

// SourcePlaceholderIDs returns every `{source_NNN}` id present in content,
// in first-seen order, used by the humanizer's preserve-or-rollback check.
func SourcePlaceholderIDs(content string) []string {
	matches := sourcePlaceholder.FindAllStringSubmatch(content, -1)
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m[1]
	}
	return ids
}
