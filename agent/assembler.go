package agent

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/blogforge/core/postprocess"
	"github.com/blogforge/core/state"
)

var subHeading = regexp.MustCompile(`(?m)^#{3,4}\s+(.+)$`)

// Assembler is spec.md §4.5.11's AssemblerAgent: it builds the header,
// resolves placeholders, cites sources, appends a footer, and repairs
// Markdown separators to produce final_markdown.
type Assembler struct {
	WordsPerMinute int
}

func (a *Assembler) Run(_ context.Context, s *state.Shared) (*state.Shared, error) {
	if skip(s) {
		return s, nil
	}

	codeByID := make(map[string]state.CodeBlock, len(s.CodeBlocks))
	for _, c := range s.CodeBlocks {
		codeByID[c.ID] = c
	}
	imageByID := make(map[string]state.Image, len(s.Images))
	for _, img := range s.Images {
		imageByID[img.ID] = img
	}

	var body strings.Builder
	for _, sec := range s.Sections {
		content := postprocess.ReplacePlaceholders(sec.Content, sec.CodeIDs, codeByID, sec.ImageIDs, imageByID)
		content = postprocess.ReplaceSourceReferences(content, s.SearchResults)
		body.WriteString(content)
		body.WriteString("\n\n")
	}

	header := a.buildHeader(s)
	footer := a.buildFooter(s)

	full := header + "\n\n" + body.String() + footer
	full = postprocess.FixMarkdownSeparators(full)

	s.FinalMarkdown = full
	return s, nil
}

func (a *Assembler) buildHeader(s *state.Shared) string {
	var b strings.Builder
	b.WriteString("# " + s.Outline.Title + "\n\n")
	if s.Outline.Subtitle != "" {
		b.WriteString("*" + s.Outline.Subtitle + "*\n\n")
	}
	b.WriteString(fmt.Sprintf("**Reading time:** ~%d min\n\n", a.readingTime(s)))

	toc := a.buildTOC(s.Sections)
	if toc != "" {
		b.WriteString("## Table of Contents\n\n" + toc + "\n")
	}
	return b.String()
}

func (a *Assembler) readingTime(s *state.Shared) int {
	wpm := a.WordsPerMinute
	if wpm <= 0 {
		wpm = 200
	}
	words := 0
	for _, sec := range s.Sections {
		words += len(strings.Fields(sec.Content))
	}
	minutes := words / wpm
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// buildTOC extracts 3rd/4th-level subheadings per section (spec.md
// §4.5.11 "TOC derived from extracted 3rd/4th-level subheadings per section").
func (a *Assembler) buildTOC(sections []state.Section) string {
	var b strings.Builder
	for _, sec := range sections {
		b.WriteString("- " + sec.Title + "\n")
		for _, m := range subHeading.FindAllStringSubmatch(sec.Content, -1) {
			b.WriteString("  - " + m[1] + "\n")
		}
	}
	return b.String()
}

func (a *Assembler) buildFooter(s *state.Shared) string {
	var b strings.Builder
	b.WriteString("\n## Summary\n\n")
	if s.SocialSummary != "" {
		b.WriteString(s.SocialSummary + "\n\n")
	}

	if len(s.ReferenceLinks) > 0 {
		b.WriteString("## References\n\n")
		for i, link := range s.ReferenceLinks {
			b.WriteString(strconv.Itoa(i+1) + ". [" + link.Title + "](" + link.URL + ")\n")
		}
	}
	return b.String()
}
