package knowledge_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/blogforge/core/knowledge"
)

func TestQueryDeduplicator_RejectsRepeatWithinWindow(t *testing.T) {
	d := knowledge.NewQueryDeduplicator(time.Hour)
	assert.True(t, d.Allow("transformer attention mechanisms"))
	assert.False(t, d.Allow("Transformer Attention Mechanisms  "))
}

func TestQueryDeduplicator_AllowsAfterWindowElapses(t *testing.T) {
	d := knowledge.NewQueryDeduplicator(5 * time.Millisecond)
	assert.True(t, d.Allow("diffusion models"))
	time.Sleep(10 * time.Millisecond)
	assert.True(t, d.Allow("diffusion models"))
}

func TestQueryDeduplicator_ResetClearsHistory(t *testing.T) {
	d := knowledge.NewQueryDeduplicator(time.Hour)
	assert.True(t, d.Allow("rag pipelines"))
	d.Reset()
	assert.True(t, d.Allow("rag pipelines"))
}
