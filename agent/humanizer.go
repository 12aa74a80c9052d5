package agent

import (
	"context"
	"strings"

	"github.com/blogforge/core/executor"
	"github.com/blogforge/core/llm"
	"github.com/blogforge/core/postprocess"
	"github.com/blogforge/core/state"
)

// humanizerRescoreFloor is the retry trigger: a rewrite that still scores
// below this is considered insufficiently human and gets another pass
// (spec.md §4.5.9 "re-score rewritten content; if still < 35, retry once").
const humanizerRescoreFloor = 35

// Humanizer is spec.md §4.5.9's HumanizerAgent: per section, it scores
// AI-writing tells, skips sections that already read as human, and
// otherwise rewrites with placeholder-preservation and length-change
// safeguards.
type Humanizer struct {
	Client         llm.Client
	SkipThreshold  int
	MaxRetries     int
	Config         executor.Config
}

type aiScoreResult struct {
	Score int `json:"score"`
}

func (h *Humanizer) Run(ctx context.Context, s *state.Shared) (*state.Shared, error) {
	if skip(s) {
		return s, nil
	}

	tasks := make([]executor.Task[humanizeOutcome], len(s.Sections))
	for i, sec := range s.Sections {
		idx := i
		content := sec.Content
		id := sec.ID
		tasks[idx] = executor.Task[humanizeOutcome]{
			Name: id,
			Fn: func(ctx context.Context) (humanizeOutcome, error) {
				return h.humanizeSection(ctx, id, content)
			},
		}
	}
	results, err := executor.Run(ctx, tasks, h.cfg())
	if err != nil {
		s.SetFatal(err)
		return s, err
	}

	if s.HumanizerSkips == nil {
		s.HumanizerSkips = map[string]bool{}
	}
	for i, r := range results {
		if !r.Success {
			s.RecordNonFatal("humanizer", r.Err)
			continue
		}
		s.Sections[i].Content = r.Value.content
		s.HumanizerSkips[r.Value.sectionID] = r.Value.skipped
		if r.Value.lengthWarning {
			s.RecordNonFatal("humanizer", errLengthWarning(r.Value.sectionID))
		}
	}
	return s, nil
}

type humanizeOutcome struct {
	sectionID     string
	content       string
	skipped       bool
	lengthWarning bool
}

func (h *Humanizer) humanizeSection(ctx context.Context, sectionID, content string) (humanizeOutcome, error) {
	score, err := h.scoreAIWriting(ctx, content)
	if err != nil {
		return humanizeOutcome{sectionID: sectionID, content: content, skipped: true}, nil
	}
	if score >= h.threshold() {
		return humanizeOutcome{sectionID: sectionID, content: content, skipped: true}, nil
	}

	originalPlaceholders := postprocess.SourcePlaceholderIDs(content)
	current := content
	lengthWarning := false

	for attempt := 0; attempt < h.maxRetries()+1; attempt++ {
		rewritten, err := h.rewrite(ctx, current)
		if err != nil {
			break
		}

		if !placeholdersPreserved(originalPlaceholders, postprocess.SourcePlaceholderIDs(rewritten)) {
			continue
		}
		if lengthChanged(current, rewritten, 0.10) {
			lengthWarning = true
		}
		current = rewritten

		newScore, err := h.scoreAIWriting(ctx, current)
		if err != nil || newScore < humanizerRescoreFloor {
			continue
		}
		break
	}

	return humanizeOutcome{sectionID: sectionID, content: current, skipped: false, lengthWarning: lengthWarning}, nil
}

func (h *Humanizer) scoreAIWriting(ctx context.Context, content string) (int, error) {
	prompt := "Score 0-50 how much this passage reads like AI-generated writing (higher = more " +
		"natural and human-written):\n\n" + content + "\n\nRespond as JSON: {\"score\": 0-50}."
	var r aiScoreResult
	if err := chatJSON(ctx, h.Client, "", prompt, "humanizer:score", &r); err != nil {
		return 0, err
	}
	return r.Score, nil
}

func (h *Humanizer) rewrite(ctx context.Context, content string) (string, error) {
	prompt := "Rewrite this passage so it reads naturally and avoids common AI-writing tells, while " +
		"preserving every {source_NNN} citation placeholder exactly as written and keeping a similar " +
		"length:\n\n" + content
	return h.Client.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, llm.ChatOptions{Caller: "humanizer:rewrite"})
}

func (h *Humanizer) threshold() int {
	if h.SkipThreshold > 0 {
		return h.SkipThreshold
	}
	return 30
}

func (h *Humanizer) maxRetries() int {
	if h.MaxRetries > 0 {
		return h.MaxRetries
	}
	return 1
}

func (h *Humanizer) cfg() executor.Config {
	if h.Config.MaxWorkers > 0 {
		return h.Config
	}
	return executor.Config{MaxWorkers: 3}
}

func placeholdersPreserved(original, rewritten []string) bool {
	if len(original) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(rewritten))
	for _, id := range rewritten {
		have[id] = struct{}{}
	}
	for _, id := range original {
		if _, ok := have[id]; !ok {
			return false
		}
	}
	return true
}

func lengthChanged(original, rewritten string, fraction float64) bool {
	origLen := float64(len(strings.Fields(original)))
	if origLen == 0 {
		return false
	}
	newLen := float64(len(strings.Fields(rewritten)))
	delta := newLen - origLen
	if delta < 0 {
		delta = -delta
	}
	return delta/origLen > fraction
}

type errLengthWarning string

func (e errLengthWarning) Error() string {
	return "humanizer: section " + string(e) + " length changed more than 10%"
}
