package agent

import (
	"context"

	"github.com/blogforge/core/executor"
	"github.com/blogforge/core/llm"
	"github.com/blogforge/core/state"
	"github.com/blogforge/core/style"
)

// approvalScoreThreshold is the minimum score alongside zero high-severity
// issues required for approval (spec.md §4.5.8 "approved = (no
// high-severity issues) AND (score >= 80)").
const approvalScoreThreshold = 80

type reviewResult struct {
	Score    float64 `json:"score"`
	Approved bool    `json:"approved"`
	Issues   []struct {
		SectionID   string `json:"section_id"`
		Severity    string `json:"severity"`
		Description string `json:"description"`
		Suggestion  string `json:"suggestion"`
	} `json:"issues"`
	Summary string `json:"summary"`
}

// Reviewer is spec.md §4.5.8's ReviewerAgent. It grades the assembled
// draft and, when not approved, drives the revision loop back into the
// writer's correct_section/enhance_section modes.
type Reviewer struct {
	Client llm.Client
	Writer *Writer
	Style  *style.Profile
}

func (r *Reviewer) Run(ctx context.Context, s *state.Shared) (*state.Shared, error) {
	if skip(s) {
		return s, nil
	}

	prompt := "Review this assembled draft article on \"" + s.Topic + "\" against its outline and " +
		"learning objectives.\nOutline: " + s.Outline.Title +
		"\nVerbatim data that must appear unchanged: " + joinStrings(s.VerbatimData) +
		"\nLearning objectives: " + joinStrings(s.LearningObjectives) +
		"\n\nDraft:\n" + concatSections(s.Sections) +
		"\n\nRespond as JSON: {\"score\": 0-100, \"approved\": bool, \"issues\": " +
		"[{\"section_id\":..., \"severity\": \"high|medium|low\", \"description\":..., " +
		"\"suggestion\":...}], \"summary\": ...}."

	var rr reviewResult
	if err := chatJSON(ctx, r.Client, "", prompt, "reviewer:review", &rr); err != nil {
		s.SetFatal(err)
		return s, err
	}

	issues := make([]state.ReviewIssue, 0, len(rr.Issues))
	hasHigh := false
	for _, iss := range rr.Issues {
		sev := state.Severity(iss.Severity)
		if sev == state.SeverityHigh {
			hasHigh = true
		}
		issues = append(issues, state.ReviewIssue{
			SectionID:   iss.SectionID,
			Severity:    sev,
			Description: iss.Description,
			Suggestion:  iss.Suggestion,
		})
	}

	s.ReviewScore = rr.Score
	s.ReviewIssues = append(s.ReviewIssues, issues...)
	s.ReviewApproved = !hasHigh && rr.Score >= approvalScoreThreshold

	return s, nil
}

// FilterIssues narrows issues to those the configured severity filter
// considers (SPEC_FULL §12: filter-first-then-dispatch for
// revision_strategy=correct_only with severity_filter=all).
func FilterIssues(issues []state.ReviewIssue, filter style.SeverityFilter) []state.ReviewIssue {
	if filter == style.FilterAll {
		return issues
	}
	out := make([]state.ReviewIssue, 0, len(issues))
	for _, iss := range issues {
		if iss.Severity == state.SeverityHigh {
			out = append(out, iss)
		}
	}
	return out
}

// Revise applies the reviewer's issues via the style-selected strategy,
// bounded by max_revision_rounds (spec.md §4.5.8).
func (r *Reviewer) Revise(ctx context.Context, s *state.Shared) (*state.Shared, error) {
	if skip(s) {
		return s, nil
	}
	if s.RevisionCount >= r.maxRounds() {
		return s, nil
	}

	issues := FilterIssues(s.ReviewIssues, r.severityFilter())
	bySection := groupBySection(issues)

	tasks := make([]executor.Task[sectionRewrite], 0, len(bySection))
	for id, secIssues := range bySection {
		sectionID := id
		sectionIssues := secIssues
		tasks = append(tasks, executor.Task[sectionRewrite]{
			Name: sectionID,
			Fn: func(ctx context.Context) (sectionRewrite, error) {
				return r.reviseSection(ctx, s, sectionID, sectionIssues)
			},
		})
	}

	results, err := executor.Run(ctx, tasks, executor.Config{MaxWorkers: 3})
	if err != nil {
		s.SetFatal(err)
		return s, err
	}

	for _, res := range results {
		if !res.Success {
			s.RecordNonFatal("reviewer:revise", res.Err)
			continue
		}
		for i, sec := range s.Sections {
			if sec.ID == res.Value.sectionID {
				s.Sections[i].Content = res.Value.content
				break
			}
		}
	}

	s.RevisionCount++
	return s, nil
}

type sectionRewrite struct {
	sectionID string
	content   string
}

func (r *Reviewer) reviseSection(ctx context.Context, s *state.Shared, sectionID string, issues []state.ReviewIssue) (sectionRewrite, error) {
	content := ""
	for _, sec := range s.Sections {
		if sec.ID == sectionID {
			content = sec.Content
			break
		}
	}

	var rewritten string
	var err error
	if r.strategy() == style.RevisionFullRevise {
		rewritten = content
		for _, iss := range issues {
			rewritten, err = r.Writer.EnhanceSection(ctx, rewritten, []string{iss.Description}, s)
			if err != nil {
				break
			}
		}
	} else {
		rewritten, err = r.Writer.CorrectSection(ctx, content, issues)
	}
	if err != nil {
		return sectionRewrite{}, err
	}
	return sectionRewrite{sectionID: sectionID, content: rewritten}, nil
}

func (r *Reviewer) maxRounds() int {
	if r.Style != nil && r.Style.MaxRevisionRounds > 0 {
		return r.Style.MaxRevisionRounds
	}
	return 1
}

func (r *Reviewer) severityFilter() style.SeverityFilter {
	if r.Style != nil {
		return r.Style.RevisionSeverityFilter
	}
	return style.FilterHighOnly
}

func (r *Reviewer) strategy() style.RevisionStrategy {
	if r.Style != nil {
		return r.Style.RevisionStrategy
	}
	return style.RevisionCorrectOnly
}

func groupBySection(issues []state.ReviewIssue) map[string][]state.ReviewIssue {
	out := make(map[string][]state.ReviewIssue)
	for _, iss := range issues {
		out[iss.SectionID] = append(out[iss.SectionID], iss)
	}
	return out
}
