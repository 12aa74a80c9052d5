package skill_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/skill"
)

type failingSkill struct{}

func (failingSkill) Name() string                     { return "failing" }
func (failingSkill) Run(string) (any, error) { return nil, errors.New("boom") }

type okSkill struct{}

func (okSkill) Name() string                  { return "ok" }
func (okSkill) Run(md string) (any, error) { return len(md), nil }

func TestRunNamed_UnknownSkillRecordsError(t *testing.T) {
	r := skill.NewRegistry(okSkill{})
	out := r.RunNamed([]string{"nope"}, "hello")
	require.Contains(t, out, "nope")
	assert.Contains(t, out["nope"], "unknown skill")
}

func TestRunNamed_FailingSkillRecordsErrorButContinues(t *testing.T) {
	r := skill.NewRegistry(okSkill{}, failingSkill{})
	out := r.RunNamed([]string{"failing", "ok"}, "hello")
	assert.Contains(t, out["failing"], "boom")
	assert.Equal(t, 5, out["ok"])
}

func TestRunAll_RunsEveryRegisteredSkill(t *testing.T) {
	r := skill.NewRegistry(okSkill{}, failingSkill{})
	out := r.RunAll("hello")
	assert.Len(t, out, 2)
	assert.Contains(t, out["failing"], "boom")
	assert.Equal(t, 5, out["ok"])
}

func TestDefaultRegistry_HasAllThreeSkills(t *testing.T) {
	out := skill.Default.RunAll("# Title\nsome body text here.\n\n## Sub\nmore body text.")
	assert.Contains(t, out, "flashcard")
	assert.Contains(t, out, "mindmap")
	assert.Contains(t, out, "study_note")
}
