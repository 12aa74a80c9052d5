// Command blogforge runs a single blog-generation task end to end from the
// command line (spec.md §6's generate() entry point, given a real LLM
// backend instead of a UI-driven task queue).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/blogforge/core/external"
	"github.com/blogforge/core/llm"
	"github.com/blogforge/core/state"
	"github.com/blogforge/core/workflow"
)

func main() {
	var (
		topic          = flag.String("topic", "", "article topic (required)")
		articleType    = flag.String("type", "tutorial", "article type")
		targetAudience = flag.String("audience", "intermediate developers", "target audience")
		targetLength   = flag.String("length", "medium", "mini|short|medium|long|custom")
		interactive    = flag.Bool("interactive", false, "pause after planning for outline review")
		apiKey         = flag.String("api-key", os.Getenv("OPENAI_API_KEY"), "OpenAI-compatible API key")
		baseURL        = flag.String("base-url", os.Getenv("OPENAI_BASE_URL"), "OpenAI-compatible base URL (optional)")
		taskLogDir     = flag.String("task-log-dir", "./logs/tasks", "directory for per-task execution logs")
	)
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if *topic == "" {
		log.Fatal().Msg("blogforge: -topic is required")
	}
	if *apiKey == "" {
		log.Fatal().Msg("blogforge: -api-key or OPENAI_API_KEY is required")
	}

	length := state.TargetLength(*targetLength)
	taskID := uuid.NewString()

	client := llm.NewResilientClient(llm.ResilientClientConfig{
		APIKey:  *apiKey,
		BaseURL: *baseURL,
		Models: llm.ModelConfig{
			Fast:      envOr("BLOGFORGE_MODEL_FAST", "gpt-4o-mini"),
			Smart:     envOr("BLOGFORGE_MODEL_SMART", "gpt-4o"),
			Strategic: envOr("BLOGFORGE_MODEL_STRATEGIC", "gpt-4o"),
			MaxTokens: 4096,
		},
	})

	taskManager := &loggingTaskManager{}
	checkpoints := workflow.NewCheckpointStore()

	deps := workflow.Dependencies{
		Client:      client,
		TaskManager: taskManager,
		Checkpoints: checkpoints,
		TaskLogDir:  *taskLogDir,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	result, err := workflow.Generate(ctx, deps, workflow.Params{
		TaskID:         taskID,
		Topic:          *topic,
		ArticleType:    *articleType,
		TargetAudience: *targetAudience,
		TargetLength:   length,
		Interactive:    *interactive,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("blogforge: generate failed")
	}

	if result.Interrupt != nil {
		fmt.Printf("paused for outline review: %s\n\n", result.Interrupt.Title)
		for _, s := range result.Interrupt.Sections {
			fmt.Printf("  - %s\n", s.Title)
		}
		fmt.Printf("\naccepting outline as drafted (run with a UI to edit)\n")

		result, err = workflow.Resume(ctx, deps, taskID, workflow.ResumeAccept, nil)
		if err != nil {
			log.Fatal().Err(err).Msg("blogforge: resume failed")
		}
	}

	if !result.Success {
		log.Fatal().Str("error", result.Error).Msg("blogforge: generation did not complete")
	}

	fmt.Println(result.Markdown)
	log.Info().
		Int("sections", result.SectionsCount).
		Int("images", result.ImagesCount).
		Float64("review_score", result.ReviewScore).
		Msg("blogforge: done")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loggingTaskManager forwards every SendEvent to the structured logger and
// never cancels: a CLI run has no separate process to ask for cancellation.
type loggingTaskManager struct{}

func (loggingTaskManager) SendEvent(taskID string, eventType external.EventType, payload any) {
	log.Debug().Str("task_id", taskID).Str("event", string(eventType)).Interface("payload", payload).Msg("blogforge: event")
}

func (loggingTaskManager) IsCancelled(string) bool { return false }
