package agent

import (
	"context"

	"github.com/blogforge/core/llm"
	"github.com/blogforge/core/state"
)

// ThreadChecker is spec.md §4.5.10's ThreadCheckerAgent: it verifies the
// draft's narrative flow matches outline.narrative_mode.
type ThreadChecker struct {
	Client llm.Client
}

type issuesList struct {
	Issues []string `json:"issues"`
}

func (t *ThreadChecker) Run(ctx context.Context, s *state.Shared) (*state.Shared, error) {
	if skip(s) {
		return s, nil
	}
	prompt := "Verify that this draft's narrative flow matches its intended mode \"" + string(s.Outline.NarrativeMode) +
		"\" (reader starts at: " + s.Outline.NarrativeFlow.ReaderStart + ", ends at: " + s.Outline.NarrativeFlow.ReaderEnd +
		").\n\nDraft:\n" + concatSections(s.Sections) +
		"\n\nList any narrative-thread issues. Respond as JSON: {\"issues\": [...]}."
	var r issuesList
	if err := chatJSON(ctx, t.Client, "", prompt, "thread_checker:check", &r); err != nil {
		s.RecordNonFatal("thread_checker", err)
		return s, nil
	}
	s.ThreadIssues = r.Issues
	return s, nil
}

// VoiceChecker is spec.md §4.5.10's VoiceCheckerAgent: it verifies
// consistent tone and grammatical person across sections.
type VoiceChecker struct {
	Client llm.Client
}

func (v *VoiceChecker) Run(ctx context.Context, s *state.Shared) (*state.Shared, error) {
	if skip(s) {
		return s, nil
	}
	prompt := "Verify that this draft maintains a consistent tone and grammatical person throughout.\n\n" +
		"Draft:\n" + concatSections(s.Sections) +
		"\n\nList any voice-consistency issues. Respond as JSON: {\"issues\": [...]}."
	var r issuesList
	if err := chatJSON(ctx, v.Client, "", prompt, "voice_checker:check", &r); err != nil {
		s.RecordNonFatal("voice_checker", err)
		return s, nil
	}
	s.VoiceIssues = r.Issues
	return s, nil
}

// MergeConsistencyIssues folds thread/voice issues into review_issues. It is
// called at the end of the consistency_check node, after both checks have
// run, so the reviewer node sees the merged list (spec.md §4.5.10).
func MergeConsistencyIssues(s *state.Shared) {
	for _, issue := range s.ThreadIssues {
		s.ReviewIssues = append(s.ReviewIssues, state.ReviewIssue{
			Severity:    state.SeverityMedium,
			Description: "narrative thread: " + issue,
		})
	}
	for _, issue := range s.VoiceIssues {
		s.ReviewIssues = append(s.ReviewIssues, state.ReviewIssue{
			Severity:    state.SeverityMedium,
			Description: "voice consistency: " + issue,
		})
	}
}
