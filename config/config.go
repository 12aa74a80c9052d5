// Package config resolves the environment-variable-driven options spec.md
// §6 enumerates into a typed Config, following the teacher's spf13/cast
// idiom for loose env-string-to-typed-value coercion (e.g.
// ai/model/chat/client/invoker.go's cast.ToString) instead of hand-rolled
// parsing at every call site.
package config

import (
	"os"

	"github.com/spf13/cast"

	"github.com/blogforge/core/state"
	"github.com/blogforge/core/style"
)

// Config is the resolved set of options for one run: the style profile plus
// the ambient environment overrides that gate middleware, workers, and
// per-feature retry/repair ceilings.
type Config struct {
	Style *style.Profile

	MiddlewarePipelineEnabled bool
	TracingEnabled            bool
	TokenBudgetEnabled        bool
	ContextCompressionEnabled bool
	StateReducersEnabled      bool

	MaxWorkers int

	// TotalTokenBudget is the run-wide ceiling middleware.TokenBudget divides
	// into per-node shares (spec.md §4.2 item 6); 0 disables enforcement.
	TotalTokenBudget int

	HumanizerSkipThreshold int // 0-50
	HumanizerMaxRetries    int
	MermaidRepairMaxRetries int

	ImagePreplanEnabled       bool
	CrossSectionDedupEnabled  bool
	KnowledgeGapDetectorEnabled bool
	AIBoostEnabled            bool

	HumanizerEnabled   bool
	ThreadCheckEnabled bool
	VoiceCheckEnabled  bool
	FactCheckEnabled   bool
	TextCleanupEnabled bool
	SummaryGenEnabled  bool

	// SkillDerivativesEnabled gates the optional post-assembly flashcard/
	// mindmap/study_note enrichers (SPEC_FULL.md §13); off by default, same
	// as the original SKILL_DERIVATIVES_ENABLED switch.
	SkillDerivativesEnabled bool

	CacheDir string
	CacheTTLSeconds int

	TaskLogDir string
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	return cast.ToBool(v)
}

func intEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n := cast.ToInt(v)
	if n == 0 && v != "0" {
		return fallback
	}
	return n
}

// clampHumanizerThreshold enforces spec.md §6's HUMANIZER_SKIP_THRESHOLD
// (0-50) bound.
func clampHumanizerThreshold(n int) int {
	if n < 0 {
		return 0
	}
	if n > 50 {
		return 50
	}
	return n
}

// Load resolves a Config for targetLength from the process environment,
// starting from style.FromTargetLength's preset.
func Load(targetLength state.TargetLength) *Config {
	return &Config{
		Style: style.FromTargetLength(targetLength),

		MiddlewarePipelineEnabled: boolEnv("MIDDLEWARE_PIPELINE_ENABLED", true),
		TracingEnabled:            boolEnv("TRACING_ENABLED", false),
		TokenBudgetEnabled:        boolEnv("TOKEN_BUDGET_ENABLED", true),
		ContextCompressionEnabled: boolEnv("CONTEXT_COMPRESSION_MIDDLEWARE_ENABLED", true),
		StateReducersEnabled:      boolEnv("STATE_REDUCERS_ENABLED", true),

		MaxWorkers:       intEnv("BLOG_GENERATOR_MAX_WORKERS", 3),
		TotalTokenBudget: intEnv("BLOG_GENERATOR_TOKEN_BUDGET", 100_000),

		HumanizerSkipThreshold:  clampHumanizerThreshold(intEnv("HUMANIZER_SKIP_THRESHOLD", 30)),
		HumanizerMaxRetries:     intEnv("HUMANIZER_MAX_RETRIES", 2),
		MermaidRepairMaxRetries: intEnv("MERMAID_REPAIR_MAX_RETRIES", 2),

		ImagePreplanEnabled:         boolEnv("IMAGE_PREPLAN_ENABLED", true),
		CrossSectionDedupEnabled:    boolEnv("CROSS_SECTION_DEDUP_ENABLED", false),
		KnowledgeGapDetectorEnabled: boolEnv("KNOWLEDGE_GAP_DETECTOR_ENABLED", true),
		AIBoostEnabled:              boolEnv("AI_BOOST_ENABLED", false),

		HumanizerEnabled:   boolEnv("HUMANIZER_ENABLED", true),
		ThreadCheckEnabled: boolEnv("THREAD_CHECK_ENABLED", true),
		VoiceCheckEnabled:  boolEnv("VOICE_CHECK_ENABLED", true),
		FactCheckEnabled:   boolEnv("FACTCHECK_ENABLED", true),
		TextCleanupEnabled: boolEnv("TEXT_CLEANUP_ENABLED", true),
		SummaryGenEnabled:  boolEnv("SUMMARY_GENERATOR_ENABLED", true),

		SkillDerivativesEnabled: boolEnv("SKILL_DERIVATIVES_ENABLED", false),

		CacheDir:        envOr("BLOG_GENERATOR_CACHE_DIR", "./.cache/blog_generator"),
		CacheTTLSeconds: intEnv("BLOG_GENERATOR_CACHE_TTL_SECONDS", 24*60*60),

		TaskLogDir: envOr("BLOG_GENERATOR_TASK_LOG_DIR", "./logs/tasks"),
	}
}
