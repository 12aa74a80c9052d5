package agent

import (
	"context"

	"github.com/blogforge/core/llm"
	"github.com/blogforge/core/state"
)

// OutlineCallback receives partial outline updates as the planner streams
// its draft (spec.md §4.5.2 "supports streaming partial outline").
type OutlineCallback func(partial state.Outline)

// Planner is spec.md §4.5.2's PlannerAgent: it turns research output into a
// section outline, optionally pausing for interactive confirmation.
type Planner struct {
	Client           llm.Client
	Interactive      bool
	ImagePreplan     bool
	OnPartialOutline OutlineCallback
}

func (p *Planner) Run(ctx context.Context, s *state.Shared) (*state.Shared, error) {
	if skip(s) {
		return s, nil
	}

	outline, err := p.draftOutline(ctx, s)
	if err != nil {
		s.SetFatal(err)
		return s, err
	}
	s.Outline = outline
	if p.OnPartialOutline != nil {
		p.OnPartialOutline(outline)
	}

	if p.ImagePreplan {
		p.markPreplannable(&s.Outline)
	}

	return s, nil
}

type outlineDraft struct {
	Title          string   `json:"title"`
	Subtitle       string   `json:"subtitle"`
	NarrativeMode  string   `json:"narrative_mode"`
	ReaderStart    string   `json:"reader_start"`
	ReaderEnd      string   `json:"reader_end"`
	LogicChain     []string `json:"logic_chain"`
	Sections       []struct {
		ID               string `json:"id"`
		Title            string `json:"title"`
		KeyConcept       string `json:"key_concept"`
		NarrativeRole    string `json:"narrative_role"`
		ImageType        string `json:"illustration_type"`
		ImageDescription string `json:"image_description"`
	} `json:"sections"`
}

func (p *Planner) draftOutline(ctx context.Context, s *state.Shared) (state.Outline, error) {
	prompt := p.buildPrompt(s)
	var d outlineDraft
	if err := chatJSON(ctx, p.Client, "", prompt, "planner:outline", &d); err != nil {
		return state.Outline{}, err
	}

	sections := make([]state.SectionPlan, 0, len(d.Sections))
	for _, sec := range d.Sections {
		role := state.NarrativeRole(sec.NarrativeRole)
		if role == "" {
			role = state.RoleWhat
		}
		imgType := state.ImageType(sec.ImageType)
		if imgType == "" {
			imgType = state.ImageNone
		}
		sections = append(sections, state.SectionPlan{
			ID:               sec.ID,
			Title:            sec.Title,
			KeyConcept:       sec.KeyConcept,
			ImageType:        imgType,
			ImageDescription: sec.ImageDescription,
			NarrativeRole:    role,
		})
	}

	mode := state.NarrativeMode(d.NarrativeMode)
	if mode == "" {
		mode = state.ModeWhatWhyHow
	}

	return state.Outline{
		Title:    d.Title,
		Subtitle: d.Subtitle,
		Sections: sections,
		NarrativeMode: mode,
		NarrativeFlow: state.NarrativeFlow{
			ReaderStart: d.ReaderStart,
			ReaderEnd:   d.ReaderEnd,
			LogicChain:  d.LogicChain,
		},
	}, nil
}

func (p *Planner) buildPrompt(s *state.Shared) string {
	return "Plan an outline for a " + string(s.TargetLength) + " " + s.ArticleType + " article on \"" + s.Topic +
		"\" for a " + s.TargetAudience + " audience.\nBackground knowledge:\n" + s.BackgroundKnowledge +
		"\nContent gaps to address: " + joinStrings(s.ContentGaps) +
		"\nUnique angles to differentiate: " + joinStrings(s.UniqueAngles) +
		"\nEach section needs an id, title, key_concept, and narrative_role " +
		"(one of hook, what, why, how, compare, deep_dive, verify, summary, catalog_item). " +
		"Optionally set illustration_type and image_description when a section calls for a figure.\n" +
		"Respond as JSON: {\"title\":..., \"subtitle\":..., \"narrative_mode\":..., \"reader_start\":..., " +
		"\"reader_end\":..., \"logic_chain\": [...], \"sections\": [{\"id\":..., \"title\":..., " +
		"\"key_concept\":..., \"narrative_role\":..., \"illustration_type\":..., \"image_description\":...}]}"
}

// markPreplannable flags section images whose description does not depend
// on section content yet to be written (spec.md §4.5.2 image preplan).
func (p *Planner) markPreplannable(outline *state.Outline) {
	for i := range outline.Sections {
		sec := &outline.Sections[i]
		if sec.ImageType != state.ImageNone && sec.ImageDescription != "" {
			if !hasAny(sec.ImageDescription, "this section", "above", "below", "as shown") {
				sec.ImageDescription = "[preplan] " + sec.ImageDescription
			}
		}
	}
}

func joinStrings(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	out := ""
	for i, it := range items {
		if i > 0 {
			out += "; "
		}
		out += it
	}
	return out
}
