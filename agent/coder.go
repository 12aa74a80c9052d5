package agent

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/blogforge/core/executor"
	"github.com/blogforge/core/llm"
	"github.com/blogforge/core/state"
)

// codePlaceholder matches `[CODE: <id> - <description>]`.
var codePlaceholder = regexp.MustCompile(`\[CODE:\s*([a-zA-Z0-9_\-]+)\s*-\s*([^\]]+)\]`)

// Coder is spec.md §4.5.6's CoderAgent: it scans every section for code
// placeholders and produces a code sample for each, in parallel.
type Coder struct {
	Client llm.Client
	Config executor.Config
}

type codeGenResult struct {
	Code        string `json:"code"`
	Output      string `json:"output"`
	Explanation string `json:"explanation"`
	Language    string `json:"language"`
}

func (c *Coder) Run(ctx context.Context, s *state.Shared) (*state.Shared, error) {
	if skip(s) {
		return s, nil
	}

	type placeholder struct {
		id, description, sectionID string
	}
	var placeholders []placeholder
	for _, sec := range s.Sections {
		for _, m := range codePlaceholder.FindAllStringSubmatch(sec.Content, -1) {
			placeholders = append(placeholders, placeholder{id: m[1], description: m[2], sectionID: sec.ID})
		}
	}
	if len(placeholders) == 0 {
		return s, nil
	}

	tasks := make([]executor.Task[state.CodeBlock], len(placeholders))
	for i, ph := range placeholders {
		id := "code_" + strconv.Itoa(i+1)
		desc := ph.description
		tasks[i] = executor.Task[state.CodeBlock]{
			Name: ph.id,
			Fn: func(ctx context.Context) (state.CodeBlock, error) {
				return c.generate(ctx, id, desc, s.Topic)
			},
		}
	}

	results, err := executor.Run(ctx, tasks, c.Config)
	if err != nil {
		s.SetFatal(err)
		return s, err
	}

	codeByID := make(map[string]string, len(placeholders))
	blocks := make([]state.CodeBlock, 0, len(results))
	for i, r := range results {
		if !r.Success {
			s.RecordNonFatal("coder", r.Err)
			continue
		}
		blocks = append(blocks, r.Value)
		codeByID[placeholders[i].id] = r.Value.ID
	}
	s.CodeBlocks = append(s.CodeBlocks, blocks...)

	for i, sec := range s.Sections {
		matches := codePlaceholder.FindAllStringSubmatch(sec.Content, -1)
		for _, m := range matches {
			if id, ok := codeByID[m[1]]; ok {
				s.Sections[i].CodeIDs = append(s.Sections[i].CodeIDs, id)
			}
		}
	}

	return s, nil
}

func (c *Coder) generate(ctx context.Context, id, description, topic string) (state.CodeBlock, error) {
	prompt := fmt.Sprintf("Write a runnable code sample for a %q-topic article: %s. Include the code, "+
		"its expected output, and a short explanation. Respond as JSON: "+
		"{\"code\": ..., \"output\": ..., \"explanation\": ..., \"language\": ...}.", topic, description)
	var r codeGenResult
	if err := chatJSON(ctx, c.Client, "", prompt, "coder:generate", &r); err != nil {
		return state.CodeBlock{}, err
	}
	return state.CodeBlock{
		ID:          id,
		Code:        r.Code,
		Output:      r.Output,
		Language:    r.Language,
		Explanation: r.Explanation,
	}, nil
}
