// Package style holds the StyleProfile preset-driven switch board: it
// collapses the "if target_length == ..." branching the original Python
// implementation scattered across 44 call sites (style_profile.py) into one
// immutable configuration object consulted by the workflow graph and agents.
package style

import (
	"github.com/blogforge/core/state"
)

// RevisionStrategy selects how the revision node applies reviewer feedback.
type RevisionStrategy string

const (
	RevisionCorrectOnly RevisionStrategy = "correct_only"
	RevisionFullRevise  RevisionStrategy = "full_revise"
)

// SeverityFilter selects which review issues matter for should_revise.
type SeverityFilter string

const (
	FilterHighOnly SeverityFilter = "high_only"
	FilterAll      SeverityFilter = "all"
)

// ImageGenerationMode selects the artist agent's operating mode (spec.md §4.5.7).
type ImageGenerationMode string

const (
	ImageModeMiniSection ImageGenerationMode = "mini_section"
	ImageModeFull        ImageGenerationMode = "full"
)

// Profile is an immutable configuration selected by TargetLength or by name.
// It never changes after construction; the workflow and agents only read it.
type Profile struct {
	MaxRevisionRounds       int
	RevisionStrategy        RevisionStrategy
	RevisionSeverityFilter  SeverityFilter
	DepthRequirement        state.DepthRequirement
	EnableKnowledgeRefinement bool
	ImageGenerationMode     ImageGenerationMode

	Tone       string
	Complexity string
	Verbosity  string

	ImageStyle string

	EnableFactCheck    bool
	EnableThreadCheck  bool
	EnableVoiceCheck   bool
	EnableHumanizer    bool
	EnableTextCleanup  bool
	EnableSummaryGen   bool

	EnableAIBoost bool

	PersonaKey string

	ReviewGuidelines []string

	// DedupThreshold is the cosine-similarity bar for cross-section dedup
	// (Open Question 3, SPEC_FULL.md §12): default 0.85.
	DedupThreshold float64

	// Skills names optional post-assembly enrichers (SPEC_FULL.md §13),
	// empty by default. The workflow does not read this field: derivative
	// skills run as a set when Config.SkillDerivativesEnabled is on.
	Skills []string

	MaxQuestioningRounds int
}

const maxQuestioningHardCap = 5

// Mini is the preset for state.LengthMini.
func Mini() *Profile {
	return &Profile{
		MaxRevisionRounds:         1,
		RevisionStrategy:          RevisionCorrectOnly,
		RevisionSeverityFilter:    FilterHighOnly,
		DepthRequirement:          state.DepthMinimal,
		EnableKnowledgeRefinement: false,
		ImageGenerationMode:       ImageModeMiniSection,
		Tone:                      "casual",
		Complexity:                "beginner",
		Verbosity:                 "concise",
		EnableFactCheck:           true,
		EnableThreadCheck:         false,
		EnableVoiceCheck:          false,
		EnableHumanizer:           true,
		EnableTextCleanup:         true,
		EnableSummaryGen:          true,
		EnableAIBoost:             false,
		DedupThreshold:            0.85,
		MaxQuestioningRounds:      2,
	}
}

// Short is the preset for state.LengthShort.
func Short() *Profile {
	p := Mini()
	p.RevisionStrategy = RevisionCorrectOnly
	p.RevisionSeverityFilter = FilterHighOnly
	p.DepthRequirement = state.DepthShallow
	p.Tone, p.Complexity, p.Verbosity = "professional", "intermediate", "concise"
	p.EnableFactCheck = false
	return p
}

// Medium is the preset for state.LengthMedium.
func Medium() *Profile {
	return &Profile{
		MaxRevisionRounds:         3,
		RevisionStrategy:          RevisionFullRevise,
		RevisionSeverityFilter:    FilterAll,
		DepthRequirement:          state.DepthMedium,
		EnableKnowledgeRefinement: true,
		ImageGenerationMode:       ImageModeFull,
		Tone:                      "professional",
		Complexity:                "intermediate",
		Verbosity:                 "balanced",
		EnableThreadCheck:         true,
		EnableHumanizer:           true,
		EnableTextCleanup:         true,
		EnableSummaryGen:          true,
		EnableAIBoost:             true,
		DedupThreshold:            0.85,
		MaxQuestioningRounds:      2,
	}
}

// Long is the preset for state.LengthLong.
func Long() *Profile {
	p := Medium()
	p.MaxRevisionRounds = 5
	p.DepthRequirement = state.DepthDeep
	p.Complexity, p.Verbosity = "advanced", "detailed"
	p.EnableFactCheck = true
	p.EnableVoiceCheck = true
	return p
}

// FromTargetLength maps a TargetLength to its preset (backward-compat with
// the Python from_target_length classmethod); "custom" falls back to Medium.
func FromTargetLength(t state.TargetLength) *Profile {
	switch t {
	case state.LengthMini:
		return Mini()
	case state.LengthShort:
		return Short()
	case state.LengthLong:
		return Long()
	default:
		return Medium()
	}
}

// EffectiveMaxQuestioningRounds clamps to the hard cap spec.md §4.1 names
// (questioning_count >= 5 always exits the deepen loop regardless of profile).
func (p *Profile) EffectiveMaxQuestioningRounds() int {
	if p.MaxQuestioningRounds <= 0 || p.MaxQuestioningRounds > maxQuestioningHardCap {
		return maxQuestioningHardCap
	}
	return p.MaxQuestioningRounds
}
