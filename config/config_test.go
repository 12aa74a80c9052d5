package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/config"
	"github.com/blogforge/core/state"
)

func TestLoad_DefaultsAndStylePreset(t *testing.T) {
	cfg := config.Load(state.LengthMedium)
	require.NotNil(t, cfg.Style)
	assert.Equal(t, 3, cfg.Style.MaxRevisionRounds)
	assert.True(t, cfg.MiddlewarePipelineEnabled)
	assert.Equal(t, 3, cfg.MaxWorkers)
	assert.Equal(t, 30, cfg.HumanizerSkipThreshold)
}

func TestLoad_ClampsHumanizerThreshold(t *testing.T) {
	t.Setenv("HUMANIZER_SKIP_THRESHOLD", "999")
	cfg := config.Load(state.LengthMini)
	assert.Equal(t, 50, cfg.HumanizerSkipThreshold)
}

func TestLoad_EnvOverridesMaxWorkers(t *testing.T) {
	t.Setenv("BLOG_GENERATOR_MAX_WORKERS", "7")
	cfg := config.Load(state.LengthShort)
	assert.Equal(t, 7, cfg.MaxWorkers)
}
