package style

import (
	"fmt"
	"strings"
)

// Persona is a named author voice injected into agent prompts when
// Profile.PersonaKey selects one (SPEC_FULL.md §13, ported from
// original_source persona_presets.py).
type Persona struct {
	Name        string
	Expertise   string
	Perspective string
	Credentials string
	VoiceTraits []string
}

// PromptSegment renders the persona as a prompt-injectable paragraph.
func (p Persona) PromptSegment() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, an expert in %s.", p.Name, p.Expertise)
	if p.Perspective != "" {
		fmt.Fprintf(&b, "\nYour perspective: %s", p.Perspective)
	}
	if p.Credentials != "" {
		fmt.Fprintf(&b, "\nYour background: %s", p.Credentials)
	}
	if len(p.VoiceTraits) > 0 {
		fmt.Fprintf(&b, "\nWriting style: %s", strings.Join(p.VoiceTraits, ", "))
	}
	return b.String()
}

// Presets is the built-in persona library, keyed by PersonaKey.
var Presets = map[string]Persona{
	"tech_expert": {
		Name:        "a senior technical expert",
		Expertise:   "software engineering and AI systems",
		Perspective: "analyzes problems from an architecture and engineering-practice angle",
		Credentials: "10+ years at large-scale engineering organizations",
		VoiceTraits: []string{"rigorous", "practice-oriented", "rich in code examples"},
	},
	"finance_analyst": {
		Name:        "a finance analyst",
		Expertise:   "fintech and data analysis",
		Perspective: "evaluates technology through business value and ROI",
		Credentials: "CFA charterholder with a quant-trading background",
		VoiceTraits: []string{"data-driven", "ROI-focused", "case-led"},
	},
	"education_specialist": {
		Name:        "an education-technology specialist",
		Expertise:   "online education and knowledge transfer",
		Perspective: "designs content from the learner's point of view, mindful of pacing",
		Credentials: "doctorate in education with curriculum-design experience",
		VoiceTraits: []string{"incremental", "rich in analogies", "highly interactive"},
	},
	"science_writer": {
		Name:        "a science writer",
		Expertise:   "science communication and popular science",
		Perspective: "translates complex ideas into approachable language",
		Credentials: "science-column writer",
		VoiceTraits: []string{"vivid", "narrative-driven", "accessible depth"},
	},
}

// PersonaEnabled mirrors the Python AGENT_PERSONA_ENABLED env kill-switch.
var PersonaEnabled = false

// PersonaPrompt resolves Profile.PersonaKey to a prompt segment, honoring the
// PersonaEnabled kill-switch; returns "" when disabled or the key is unknown.
func (p *Profile) PersonaPrompt() string {
	if p.PersonaKey == "" || !PersonaEnabled {
		return ""
	}
	persona, ok := Presets[p.PersonaKey]
	if !ok {
		return ""
	}
	return persona.PromptSegment()
}
