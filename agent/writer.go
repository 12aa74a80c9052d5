package agent

import (
	"context"
	"strconv"
	"strings"

	"github.com/blogforge/core/config"
	"github.com/blogforge/core/executor"
	"github.com/blogforge/core/llm"
	"github.com/blogforge/core/state"
	"github.com/blogforge/core/style"
)

// Writer is spec.md §4.5.3's WriterAgent: it drafts every outlined section
// in parallel and exposes the three single-section rewrite modes the
// knowledge loop, depth loop, and revision loop each call back into.
type Writer struct {
	Client llm.Client
	Style  *style.Profile
	Config *config.Config
}

func (w *Writer) Run(ctx context.Context, s *state.Shared) (*state.Shared, error) {
	if skip(s) {
		return s, nil
	}

	tasks := make([]executor.Task[state.Section], len(s.Outline.Sections))
	for i, sec := range s.Outline.Sections {
		idx := i
		entry := sec
		tasks[idx] = executor.Task[state.Section]{
			Name: entry.ID,
			Fn: func(ctx context.Context) (state.Section, error) {
				return w.draftSection(ctx, s, entry, idx)
			},
		}
	}

	results, err := executor.Run(ctx, tasks, executorConfig(w.Config))
	if err != nil {
		s.SetFatal(err)
		return s, err
	}

	sections := make([]state.Section, 0, len(results))
	for i, r := range results {
		if !r.Success {
			s.RecordNonFatal("writer", r.Err)
			sections = append(sections, state.Section{
				ID:            s.Outline.Sections[i].ID,
				Title:         s.Outline.Sections[i].Title,
				NarrativeRole: s.Outline.Sections[i].NarrativeRole,
			})
			continue
		}
		sections = append(sections, r.Value)
	}
	s.Sections = sections

	return s, nil
}

func (w *Writer) draftSection(ctx context.Context, s *state.Shared, entry state.SectionPlan, idx int) (state.Section, error) {
	prev := ""
	if idx > 0 {
		prev = summarizeContent(s.Sections, idx-1)
	}
	next := ""
	if idx+1 < len(s.Outline.Sections) {
		next = s.Outline.Sections[idx+1].Title
	}

	prompt := "Write the section \"" + entry.Title + "\" (key concept: " + entry.KeyConcept +
		", narrative role: " + string(entry.NarrativeRole) + ") of an article on \"" + s.Topic + "\".\n" +
		"Previous section summary: " + prev + "\nNext section preview: " + next +
		"\nBackground knowledge:\n" + s.BackgroundKnowledge +
		"\nVerbatim data that must appear unchanged: " + joinStrings(s.VerbatimData) +
		"\nLearning objectives: " + joinStrings(s.LearningObjectives) +
		w.personaSegment() +
		"\nWrite the section content in Markdown prose (no title heading). " +
		"Use [CODE: <id> - <description>] and [IMAGE: <type> - <description>] placeholders where a code " +
		"sample or figure belongs. Use {source_NNN} to cite a search result by 1-indexed position."

	content, err := w.Client.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, llm.ChatOptions{Caller: "writer:draft"})
	if err != nil {
		return state.Section{}, err
	}

	return state.Section{
		ID:            entry.ID,
		Title:         entry.Title,
		Content:       content,
		NarrativeRole: entry.NarrativeRole,
	}, nil
}

func (w *Writer) personaSegment() string {
	if w.Style == nil {
		return ""
	}
	if p := w.Style.PersonaPrompt(); p != "" {
		return "\n" + p
	}
	return ""
}

// EnhanceSection deepens a section flagged by the questioner's depth check
// (spec.md §4.5.3 "enhance_section", used by the depth loop, the knowledge
// loop, and the full_revise strategy once per review issue).
func (w *Writer) EnhanceSection(ctx context.Context, content string, vaguePoints []string, s *state.Shared) (string, error) {
	prompt := "The following section is insufficiently detailed. Vague points to address: " +
		joinStrings(vaguePoints) + "\n\nSection:\n" + content +
		"\n\nRewrite it with greater depth, resolving every vague point. Preserve existing " +
		"[CODE:]/[IMAGE:]/{source_NNN} placeholders."
	return w.Client.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, llm.ChatOptions{Caller: "writer:enhance"})
}

// CorrectSection applies the reviewer's issues with minimal-diff, word-count
// bounded edits (spec.md §4.5.3 "correct_section", correct_only strategy).
func (w *Writer) CorrectSection(ctx context.Context, content string, issues []state.ReviewIssue) (string, error) {
	originalWords := len(strings.Fields(content))
	maxWords := originalWords * 11 / 10

	prompt := "The following section has these issues to fix:\n" + formatIssues(issues) +
		"\n\nSection:\n" + content +
		"\n\nMake the minimal edits needed to resolve each issue. Keep the length under " +
		strconv.Itoa(maxWords) + " words. Preserve existing [CODE:]/[IMAGE:]/{source_NNN} placeholders."

	corrected, err := w.Client.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, llm.ChatOptions{Caller: "writer:correct"})
	if err != nil {
		return content, err
	}
	if len(strings.Fields(corrected)) > maxWords {
		words := strings.Fields(corrected)
		return strings.Join(words[:maxWords], " "), nil
	}
	return corrected, nil
}

// ImproveSection applies a section-level critique rewrite (spec.md §4.5.3
// "improve_section", used by the section-improvement loop).
func (w *Writer) ImproveSection(ctx context.Context, content, critique string) (string, error) {
	prompt := "Improve the following section based on this critique:\n" + critique +
		"\n\nSection:\n" + content +
		"\n\nRewrite it to address the critique. Preserve existing [CODE:]/[IMAGE:]/{source_NNN} placeholders."
	return w.Client.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, llm.ChatOptions{Caller: "writer:improve"})
}

// Deepen is the "deepen_content" workflow node: it enhances every section the
// questioner's depth check flagged as not detailed enough, using the vague
// points it reported (spec.md §4.5.5 deepen loop back-edge "deepen →
// questioner").
func (w *Writer) Deepen(ctx context.Context, s *state.Shared) (*state.Shared, error) {
	if skip(s) {
		return s, nil
	}
	flagged := make(map[string][]string, len(s.QuestionResults))
	for _, qr := range s.QuestionResults {
		if !qr.IsDetailed {
			flagged[qr.SectionID] = qr.VaguePoints
		}
	}
	if len(flagged) == 0 {
		return s, nil
	}

	tasks := make([]executor.Task[sectionRewrite], 0, len(flagged))
	for _, sec := range s.Sections {
		vague, ok := flagged[sec.ID]
		if !ok {
			continue
		}
		content := sec.Content
		id := sec.ID
		tasks = append(tasks, executor.Task[sectionRewrite]{
			Name: id,
			Fn: func(ctx context.Context) (sectionRewrite, error) {
				rewritten, err := w.EnhanceSection(ctx, content, vague, s)
				if err != nil {
					return sectionRewrite{}, err
				}
				return sectionRewrite{sectionID: id, content: rewritten}, nil
			},
		})
	}

	results, err := executor.Run(ctx, tasks, executorConfig(w.Config))
	if err != nil {
		s.SetFatal(err)
		return s, err
	}
	for _, r := range results {
		if !r.Success {
			s.RecordNonFatal("writer:deepen", r.Err)
			continue
		}
		for i, sec := range s.Sections {
			if sec.ID == r.Value.sectionID {
				s.Sections[i].Content = r.Value.content
				break
			}
		}
	}
	return s, nil
}

// ImproveSections is the "section_improve" workflow node: it rewrites every
// section the questioner's evaluation flagged with overall_quality < 7
// (spec.md §4.5.5 section-quality loop back-edge "section_improve →
// section_evaluate"), and advances the bounded loop counter.
func (w *Writer) ImproveSections(ctx context.Context, s *state.Shared) (*state.Shared, error) {
	if skip(s) {
		return s, nil
	}
	critiques := make(map[string]string, len(s.SectionEvaluations))
	for _, ev := range s.SectionEvaluations {
		if ev.OverallQuality < 7 {
			critiques[ev.SectionID] = formatEvaluation(ev)
		}
	}
	if len(critiques) == 0 {
		s.SectionImproveCount++
		return s, nil
	}

	tasks := make([]executor.Task[sectionRewrite], 0, len(critiques))
	for _, sec := range s.Sections {
		critique, ok := critiques[sec.ID]
		if !ok {
			continue
		}
		content := sec.Content
		id := sec.ID
		tasks = append(tasks, executor.Task[sectionRewrite]{
			Name: id,
			Fn: func(ctx context.Context) (sectionRewrite, error) {
				rewritten, err := w.ImproveSection(ctx, content, critique)
				if err != nil {
					return sectionRewrite{}, err
				}
				return sectionRewrite{sectionID: id, content: rewritten}, nil
			},
		})
	}

	results, err := executor.Run(ctx, tasks, executorConfig(w.Config))
	if err != nil {
		s.SetFatal(err)
		return s, err
	}
	for _, r := range results {
		if !r.Success {
			s.RecordNonFatal("writer:improve", r.Err)
			continue
		}
		for i, sec := range s.Sections {
			if sec.ID == r.Value.sectionID {
				s.Sections[i].Content = r.Value.content
				break
			}
		}
	}
	s.SectionImproveCount++
	return s, nil
}

// EnhanceWithKnowledge is the "enhance_with_knowledge" workflow node: it
// folds the search coordinator's latest refinement summary into every
// section, then hands control back to check_knowledge (spec.md §4.5.4
// refine_search loop back-edge "refine_search → enhance_with_knowledge →
// check_knowledge").
func (w *Writer) EnhanceWithKnowledge(ctx context.Context, s *state.Shared) (*state.Shared, error) {
	if skip(s) {
		return s, nil
	}
	if len(s.AccumulatedKnowledge) == 0 {
		return s, nil
	}
	latest := []string{s.AccumulatedKnowledge[len(s.AccumulatedKnowledge)-1]}

	tasks := make([]executor.Task[sectionRewrite], len(s.Sections))
	for i, sec := range s.Sections {
		content := sec.Content
		id := sec.ID
		tasks[i] = executor.Task[sectionRewrite]{
			Name: id,
			Fn: func(ctx context.Context) (sectionRewrite, error) {
				rewritten, err := w.EnhanceSection(ctx, content, latest, s)
				if err != nil {
					return sectionRewrite{}, err
				}
				return sectionRewrite{sectionID: id, content: rewritten}, nil
			},
		}
	}

	results, err := executor.Run(ctx, tasks, executorConfig(w.Config))
	if err != nil {
		s.SetFatal(err)
		return s, err
	}
	for _, r := range results {
		if !r.Success {
			s.RecordNonFatal("writer:enhance_with_knowledge", r.Err)
			continue
		}
		for i, sec := range s.Sections {
			if sec.ID == r.Value.sectionID {
				s.Sections[i].Content = r.Value.content
				break
			}
		}
	}
	return s, nil
}

func formatEvaluation(ev state.SectionEvaluation) string {
	out := "issues: " + joinStrings(ev.SpecificIssues)
	out += "; suggestions: " + joinStrings(ev.ImprovementSuggestions)
	return out
}

func summarizeContent(sections []state.Section, idx int) string {
	if idx < 0 || idx >= len(sections) {
		return ""
	}
	return truncate(sections[idx].Content, 400)
}

func formatIssues(issues []state.ReviewIssue) string {
	out := ""
	for _, iss := range issues {
		out += "- [" + string(iss.Severity) + "] " + iss.Description
		if iss.Suggestion != "" {
			out += " (suggestion: " + iss.Suggestion + ")"
		}
		out += "\n"
	}
	return out
}
