package agent

import (
	"context"

	"github.com/blogforge/core/executor"
	"github.com/blogforge/core/llm"
	"github.com/blogforge/core/state"
)

// Questioner is spec.md §4.5.5's QuestionerAgent: it runs the per-section
// depth check (the "deepen" loop) and the section-quality evaluation (the
// "section_improve" loop).
type Questioner struct {
	Client       llm.Client
	Config       *executor.Config
	DepthRequirement state.DepthRequirement
}

type depthCheckResult struct {
	IsDetailedEnough bool     `json:"is_detailed_enough"`
	DepthScore       int      `json:"depth_score"`
	VaguePoints      []string `json:"vague_points"`
}

type evaluateSectionResult struct {
	Scores struct {
		InformationDensity int `json:"information_density"`
		LogicalCoherence   int `json:"logical_coherence"`
		ProfessionalDepth  int `json:"professional_depth"`
		ExpressionQuality  int `json:"expression_quality"`
	} `json:"scores"`
	OverallQuality          float64  `json:"overall_quality"`
	SpecificIssues          []string `json:"specific_issues"`
	ImprovementSuggestions  []string `json:"improvement_suggestions"`
}

// CheckDepth runs the per-section depth check (spec.md §4.5.5 check_depth).
func (q *Questioner) CheckDepth(ctx context.Context, content string, entry state.SectionPlan) (state.QuestionResult, error) {
	prompt := "Assess the depth of this section (key concept: " + entry.KeyConcept + ", required depth: " +
		string(q.DepthRequirement) + "):\n\n" + content +
		"\n\nRespond as JSON: {\"is_detailed_enough\": bool, \"depth_score\": 0-100, \"vague_points\": [...]}."
	var r depthCheckResult
	if err := chatJSON(ctx, q.Client, "", prompt, "questioner:depth", &r); err != nil {
		return state.QuestionResult{SectionID: entry.ID, IsDetailed: true}, err
	}
	threshold := q.DepthRequirement.DepthThreshold()
	return state.QuestionResult{
		SectionID:   entry.ID,
		IsDetailed:  r.IsDetailedEnough && r.DepthScore >= threshold,
		DepthScore:  r.DepthScore,
		VaguePoints: r.VaguePoints,
	}, nil
}

// EvaluateSection runs the four-dimension quality evaluation (spec.md
// §4.5.5 evaluate_section).
func (q *Questioner) EvaluateSection(ctx context.Context, content, title, prevSummary, nextPreview string, sectionID string) (state.SectionEvaluation, error) {
	prompt := "Evaluate the quality of this section titled \"" + title + "\".\n" +
		"Previous section summary: " + prevSummary + "\nNext section preview: " + nextPreview +
		"\n\nSection:\n" + content +
		"\n\nScore information_density, logical_coherence, professional_depth, expression_quality " +
		"each 1-10. Respond as JSON: {\"scores\": {\"information_density\":.., \"logical_coherence\":.., " +
		"\"professional_depth\":.., \"expression_quality\":..}, \"overall_quality\":.., " +
		"\"specific_issues\": [...], \"improvement_suggestions\": [...]}."
	var r evaluateSectionResult
	if err := chatJSON(ctx, q.Client, "", prompt, "questioner:evaluate", &r); err != nil {
		return state.SectionEvaluation{}, err
	}
	scores := state.SectionScores{
		InformationDensity: r.Scores.InformationDensity,
		LogicalCoherence:   r.Scores.LogicalCoherence,
		ProfessionalDepth:  r.Scores.ProfessionalDepth,
		ExpressionQuality:  r.Scores.ExpressionQuality,
	}
	overall := r.OverallQuality
	if overall == 0 {
		overall = scores.Overall()
	}
	return state.SectionEvaluation{
		SectionID:              sectionID,
		Scores:                 scores,
		OverallQuality:         overall,
		SpecificIssues:         r.SpecificIssues,
		ImprovementSuggestions: r.ImprovementSuggestions,
	}, nil
}

// RunDepthCheck is the "questioner" workflow node: it fans the depth check out
// across every section and records which ones need enhancement.
func (q *Questioner) RunDepthCheck(ctx context.Context, s *state.Shared) (*state.Shared, error) {
	if skip(s) {
		return s, nil
	}
	tasks := make([]executor.Task[state.QuestionResult], len(s.Sections))
	for i, sec := range s.Sections {
		entry := q.entryFor(s, sec.ID)
		content := sec.Content
		tasks[i] = executor.Task[state.QuestionResult]{
			Name: sec.ID,
			Fn: func(ctx context.Context) (state.QuestionResult, error) {
				return q.CheckDepth(ctx, content, entry)
			},
		}
	}
	results, err := executor.Run(ctx, tasks, q.cfg())
	if err != nil {
		s.SetFatal(err)
		return s, err
	}
	qr := make([]state.QuestionResult, 0, len(results))
	allDetailed := true
	for _, r := range results {
		if !r.Success {
			continue
		}
		qr = append(qr, r.Value)
		if !r.Value.IsDetailed {
			allDetailed = false
		}
	}
	s.QuestionResults = qr
	s.AllSectionsDetailed = allDetailed
	s.QuestioningCount++
	return s, nil
}

// RunSectionEvaluate is the "section_evaluate" workflow node.
func (q *Questioner) RunSectionEvaluate(ctx context.Context, s *state.Shared) (*state.Shared, error) {
	if skip(s) {
		return s, nil
	}
	tasks := make([]executor.Task[state.SectionEvaluation], len(s.Sections))
	for i, sec := range s.Sections {
		idx := i
		id := sec.ID
		content := sec.Content
		title := sec.Title
		tasks[i] = executor.Task[state.SectionEvaluation]{
			Name: sec.ID,
			Fn: func(ctx context.Context) (state.SectionEvaluation, error) {
				prev := ""
				if idx > 0 {
					prev = truncate(s.Sections[idx-1].Content, 200)
				}
				next := ""
				if idx+1 < len(s.Sections) {
					next = s.Sections[idx+1].Title
				}
				return q.EvaluateSection(ctx, content, title, prev, next, id)
			},
		}
	}
	results, err := executor.Run(ctx, tasks, q.cfg())
	if err != nil {
		s.SetFatal(err)
		return s, err
	}
	evals := make([]state.SectionEvaluation, 0, len(results))
	needsImprovement := false
	for _, r := range results {
		if !r.Success {
			continue
		}
		evals = append(evals, r.Value)
		if r.Value.OverallQuality < 7 {
			needsImprovement = true
		}
	}
	s.SectionEvaluations = evals
	s.NeedsSectionImprovement = needsImprovement
	return s, nil
}

func (q *Questioner) entryFor(s *state.Shared, id string) state.SectionPlan {
	for _, e := range s.Outline.Sections {
		if e.ID == id {
			return e
		}
	}
	return state.SectionPlan{ID: id}
}

func (q *Questioner) cfg() executor.Config {
	if q.Config != nil {
		return *q.Config
	}
	return executor.Config{MaxWorkers: 3}
}
