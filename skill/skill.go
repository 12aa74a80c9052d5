// Package skill implements the optional post-assembly "derivative" passes
// SPEC_FULL.md §13 supplements from the original skills/ package: small,
// deterministic transforms over the finished Markdown (flashcards, a mind
// map, a study note) that the workflow runs as a set via Default.RunAll when
// Config.SkillDerivativesEnabled is on; there is no per-skill selection.
// None of them call an LLM; all of them are pure functions of the final
// article.
package skill

import "fmt"

// Skill turns finished article Markdown into a derivative artifact.
type Skill interface {
	Name() string
	Run(markdown string) (any, error)
}

// Registry is a name-keyed set of Skills, mirroring the teacher's own
// small registry types (e.g. middleware.Pipeline's ordered hook list):
// register once at construction, look up and run by name afterward.
type Registry struct {
	skills map[string]Skill
}

// NewRegistry builds a Registry from the given skills, keyed by Name().
func NewRegistry(skills ...Skill) *Registry {
	r := &Registry{skills: make(map[string]Skill, len(skills))}
	for _, s := range skills {
		r.skills[s.Name()] = s
	}
	return r
}

// Default is the registry pre-populated with every ported skill
// (flashcard, mindmap, study_note), matching the original's
// `from .skills import mindmap, flashcard, study_note` registration-by-import.
var Default = NewRegistry(Flashcard{}, MindMap{}, StudyNote{})

// RunNamed runs every named skill against markdown and collects successful
// outputs keyed by name; a skill that errors or isn't registered is
// recorded as a failure string instead of aborting the rest, matching the
// original's per-skill try/except in _run_derivative_skills.
func (r *Registry) RunNamed(names []string, markdown string) map[string]any {
	out := make(map[string]any, len(names))
	for _, name := range names {
		s, ok := r.skills[name]
		if !ok {
			out[name] = fmt.Sprintf("error: unknown skill %q", name)
			continue
		}
		result, err := s.Run(markdown)
		if err != nil {
			out[name] = fmt.Sprintf("error: %s", err)
			continue
		}
		out[name] = result
	}
	return out
}

// RunAll runs every registered skill against markdown, matching
// generator.py's _run_derivative_skills: when SKILL_DERIVATIVES_ENABLED is
// on, every skill the registry knows about runs unconditionally, not a
// caller-selected subset. A skill that errors is recorded as a failure
// string rather than aborting the rest.
func (r *Registry) RunAll(markdown string) map[string]any {
	out := make(map[string]any, len(r.skills))
	for name, s := range r.skills {
		result, err := s.Run(markdown)
		if err != nil {
			out[name] = fmt.Sprintf("error: %s", err)
			continue
		}
		out[name] = result
	}
	return out
}
