package agent

import (
	"context"
	"regexp"
	"strings"

	"github.com/blogforge/core/state"
)

var (
	multiSpace       = regexp.MustCompile(`[ \t]{2,}`)
	spaceBeforePunct = regexp.MustCompile(`\s+([,.;:!?])`)
	malformedBullet  = regexp.MustCompile(`(?m)^(\s*)[*•]\s+`)
	blankLineRun     = regexp.MustCompile(`(?m)^[ \t]*[\r\n]+`)
	multiBlankLine   = regexp.MustCompile(`([\r\n]{2,})`)
)

// TextCleanup is spec.md §4.5.9's deterministic regex-based pass: zero LLM
// calls, just punctuation/whitespace/list-marker repair.
type TextCleanup struct{}

func (TextCleanup) Run(_ context.Context, s *state.Shared) (*state.Shared, error) {
	if skip(s) {
		return s, nil
	}
	for i, sec := range s.Sections {
		s.Sections[i].Content = cleanupText(sec.Content)
	}
	return s, nil
}

func cleanupText(text string) string {
	text = multiSpace.ReplaceAllString(text, " ")
	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	text = malformedBullet.ReplaceAllString(text, "$1- ")
	text = blankLineRun.ReplaceAllString(text, "\n")
	text = multiBlankLine.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
