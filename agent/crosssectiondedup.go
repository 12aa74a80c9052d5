package agent

import (
	"context"
	"strconv"

	"github.com/blogforge/core/llm"
	"github.com/blogforge/core/state"
)

// dedupThresholdDefault mirrors style.Profile's default DedupThreshold for
// callers that construct a CrossSectionDedup without a style profile.
const dedupThresholdDefault = 0.85

// CrossSectionDedup is the "cross_section_dedup" workflow node: it scans the
// full draft for content repeated across two or more sections above the
// style profile's similarity threshold and asks the model to trim every
// repeat but the section where it best belongs, preserving placeholders
// (spec.md §4.5.7 "cross-section semantic deduplication"). It is a no-op
// below two sections, since there is nothing to compare.
type CrossSectionDedup struct {
	Client    llm.Client
	Threshold float64
}

type dedupRewrite struct {
	SectionID string `json:"section_id"`
	Content   string `json:"content"`
}

type dedupResult struct {
	Rewrites []dedupRewrite `json:"rewrites"`
}

func (d *CrossSectionDedup) Run(ctx context.Context, s *state.Shared) (*state.Shared, error) {
	if skip(s) {
		return s, nil
	}
	if len(s.Sections) < 2 {
		return s, nil
	}

	threshold := d.threshold()
	prompt := "Below are the sections of an in-progress article, each preceded by its id.\n" +
		"Find passages that repeat the same point across two or more sections with semantic " +
		"similarity at or above " + strconv.FormatFloat(threshold, 'f', 2, 64) + " (0-1 scale). " +
		"For every section that contains a repeat, keep the fullest version in the single best-fitting " +
		"section and rewrite the others to remove the repeat while preserving everything else, " +
		"including every [CODE:]/[IMAGE:]/{source_NNN} placeholder.\n\n" + concatSections(s.Sections) +
		"\n\nRespond as JSON: {\"rewrites\": [{\"section_id\": \"...\", \"content\": \"...\"}]} " +
		"listing only the sections you changed."

	var r dedupResult
	if err := chatJSON(ctx, d.Client, "", prompt, "cross_section_dedup:dedupe", &r); err != nil {
		s.RecordNonFatal("cross_section_dedup", err)
		return s, nil
	}

	for _, rw := range r.Rewrites {
		for i, sec := range s.Sections {
			if sec.ID == rw.SectionID && rw.Content != "" {
				s.Sections[i].Content = rw.Content
				break
			}
		}
	}
	return s, nil
}

func (d *CrossSectionDedup) threshold() float64 {
	if d.Threshold > 0 {
		return d.Threshold
	}
	return dedupThresholdDefault
}
