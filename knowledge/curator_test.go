package knowledge_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/knowledge"
	"github.com/blogforge/core/state"
)

func TestSourceCurator_RankOrdersByWeightDescending(t *testing.T) {
	c := knowledge.NewSourceCurator(nil, knowledge.HealthConfig{})
	results := []state.SearchResult{
		{Title: "a", Source: "通用搜索"},
		{Title: "b", Source: "Anthropic Research"},
		{Title: "c", Source: "GitHub"},
	}
	ranked := c.Rank(results)
	require.Len(t, ranked, 3)
	assert.Equal(t, "Anthropic Research", ranked[0].Source)
	assert.Equal(t, "GitHub", ranked[1].Source)
	assert.Equal(t, "通用搜索", ranked[2].Source)
}

func TestSourceCurator_UnknownSourceUsesDefaultWeight(t *testing.T) {
	c := knowledge.NewSourceCurator(nil, knowledge.HealthConfig{})
	results := []state.SearchResult{
		{Title: "a", Source: "Some Random Blog"},
		{Title: "b", Source: "Hacker News"},
	}
	ranked := c.Rank(results)
	assert.Equal(t, "Hacker News", ranked[0].Source)
}

func TestSourceCurator_DisablesAfterConsecutiveFailures(t *testing.T) {
	c := knowledge.NewSourceCurator(nil, knowledge.HealthConfig{MaxConsecutiveFailures: 2, Cooldown: time.Hour})
	assert.True(t, c.CheckHealth("flaky"))
	c.RecordFailure("flaky")
	assert.True(t, c.CheckHealth("flaky"))
	c.RecordFailure("flaky")
	assert.False(t, c.CheckHealth("flaky"))
}

func TestSourceCurator_SuccessResetsFailureCount(t *testing.T) {
	c := knowledge.NewSourceCurator(nil, knowledge.HealthConfig{MaxConsecutiveFailures: 2, Cooldown: time.Hour})
	c.RecordFailure("x")
	c.RecordSuccess("x")
	c.RecordFailure("x")
	assert.True(t, c.CheckHealth("x"), "failure count should have reset after success")
}

func TestSourceCurator_ReenablesAfterCooldown(t *testing.T) {
	c := knowledge.NewSourceCurator(nil, knowledge.HealthConfig{MaxConsecutiveFailures: 1, Cooldown: time.Millisecond})
	c.RecordFailure("slow-cooldown")
	require.False(t, c.CheckHealth("slow-cooldown"))
	time.Sleep(5 * time.Millisecond)
	assert.True(t, c.CheckHealth("slow-cooldown"))
}

func TestSourceCurator_GetHealthySourcesFiltersDisabled(t *testing.T) {
	c := knowledge.NewSourceCurator(nil, knowledge.HealthConfig{MaxConsecutiveFailures: 1, Cooldown: time.Hour})
	c.RecordFailure("bad")
	healthy := c.GetHealthySources([]string{"good", "bad"})
	assert.Equal(t, []string{"good"}, healthy)
}

func TestSourceCurator_OverridesMergeOverFallback(t *testing.T) {
	c := knowledge.NewSourceCurator(knowledge.SourceWeights{"My Blog": 0.99}, knowledge.HealthConfig{})
	results := []state.SearchResult{
		{Title: "a", Source: "Anthropic Research"},
		{Title: "b", Source: "My Blog"},
	}
	ranked := c.Rank(results)
	assert.Equal(t, "My Blog", ranked[0].Source)
}
