package workflow

import (
	"github.com/blogforge/core/agent"
	"github.com/blogforge/core/state"
	"github.com/blogforge/core/style"
)

// Branch decisions. Every predicate below is grounded directly on
// generator.py's _should_deepen / _should_revise / _should_refine_search /
// _should_improve_sections (spec.md §4.4's four conditional edges).
const (
	branchSearch   = "search"
	branchDeepen   = "deepen"
	branchImprove  = "improve"
	branchRevision = "revision"
	branchContinue = "continue"
	branchAssemble = "assemble"
)

// maxDeepenRounds hard-caps the knowledge-depth loop independent of style
// (generator.py MAX_DEEPEN_ROUNDS = 5).
const maxDeepenRounds = 5

// maxSectionImproveRounds hard-caps the section-quality loop (generator.py
// _should_improve_sections: "improve_count >= 2").
const maxSectionImproveRounds = 2

// sectionImproveConvergence is the minimum average-score gain between two
// section-improve rounds required to keep looping; below it the loop is
// considered converged (generator.py "(curr_avg - prev_avg) < 0.3").
const sectionImproveConvergence = 0.3

// shouldDeepen decides the questioner loop's "deepen"/"continue" edge.
// maxQuestioningRounds is the style profile's effective bound
// (style.Profile.EffectiveMaxQuestioningRounds).
func shouldDeepen(maxQuestioningRounds int, s *state.Shared) string {
	if s.QuestioningCount >= maxDeepenRounds {
		return branchContinue
	}
	if !s.AllSectionsDetailed && s.QuestioningCount < maxQuestioningRounds {
		return branchDeepen
	}
	return branchContinue
}

// shouldImproveSections decides the section-quality loop's "improve"/
// "continue" edge, including the rolling-average convergence check
// (generator.py _should_improve_sections).
func shouldImproveSections(s *state.Shared) string {
	if !s.NeedsSectionImprovement {
		return branchContinue
	}
	if s.SectionImproveCount >= maxSectionImproveRounds {
		return branchContinue
	}

	var sum float64
	for _, ev := range s.SectionEvaluations {
		sum += ev.OverallQuality
	}
	currAvg := 0.0
	if len(s.SectionEvaluations) > 0 {
		currAvg = sum / float64(len(s.SectionEvaluations))
	}

	prevAvg := s.PrevSectionAvgScore
	if prevAvg > 0 && (currAvg-prevAvg) < sectionImproveConvergence {
		return branchContinue
	}

	s.PrevSectionAvgScore = currAvg
	return branchImprove
}

// shouldRefineSearch decides the knowledge loop's "search"/"continue" edge
// (generator.py _should_refine_search). important_gaps narrows to the gap
// types worth another search round: missing data and vague concepts.
func shouldRefineSearch(enableKnowledgeRefinement bool, s *state.Shared) string {
	if !enableKnowledgeRefinement {
		return branchContinue
	}
	maxCount := s.TargetLength.MaxSearchCount()
	if len(s.KnowledgeGaps) == 0 || s.SearchCount >= maxCount {
		return branchContinue
	}
	for _, gap := range s.KnowledgeGaps {
		if gap.GapType == state.GapMissingData || gap.GapType == state.GapVagueConcept {
			return branchSearch
		}
	}
	return branchContinue
}

// shouldRevise decides the reviewer loop's "revision"/"assemble" edge
// (generator.py _should_revise). In high_only mode, review_approved is
// never consulted — only the presence of high-severity issues decides, and
// the state's review_issues list is replaced with just those issues before
// routing to revision, exactly as the original does.
func shouldRevise(p *style.Profile, s *state.Shared) string {
	if s.RevisionCount >= p.MaxRevisionRounds {
		return branchAssemble
	}
	if p.RevisionSeverityFilter == style.FilterHighOnly {
		high := agent.FilterIssues(s.ReviewIssues, style.FilterHighOnly)
		if len(high) > 0 {
			s.ReviewIssues = high
			return branchRevision
		}
		return branchAssemble
	}
	if !s.ReviewApproved {
		return branchRevision
	}
	return branchAssemble
}
