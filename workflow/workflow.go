package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blogforge/core/agent"
	"github.com/blogforge/core/config"
	"github.com/blogforge/core/executor"
	"github.com/blogforge/core/external"
	"github.com/blogforge/core/flow"
	"github.com/blogforge/core/knowledge"
	"github.com/blogforge/core/llm"
	"github.com/blogforge/core/middleware"
	"github.com/blogforge/core/skill"
	"github.com/blogforge/core/state"
	"github.com/blogforge/core/style"
	"github.com/blogforge/core/tasklog"
)

// Dependencies bundles every external system a run needs. Ranker and
// DocumentLoader are optional (nil-safe: middleware.ContextManagement and
// middleware.ContextPrefetch both no-op without them) — a caller with no
// vector store configured still gets a complete run, just without Layer 1
// context compression or document prefetch (spec.md §4.2 items 5 and 7).
type Dependencies struct {
	Client         llm.Client
	SearchSources  map[string]external.SearchService
	Documents      external.DocumentService
	Images         external.ImageService
	TaskManager    external.TaskManager
	Ranker         middleware.Ranker
	DocumentLoader middleware.DocumentLoader
	Checkpoints    *CheckpointStore
	TaskLogDir     string
}

// Params is one generate request (spec.md §6's entry point signature).
type Params struct {
	TaskID         string
	Topic          string
	ArticleType    string
	TargetAudience string
	TargetLength   state.TargetLength
	DocumentIDs    []string
	Interactive    bool
	StyleOverride  *style.Profile
}

// InterruptPayload is the pause point spec.md §4.9 returns when Interactive
// is requested: an interactive run stops right after the planner and hands
// the drafted outline back for confirmation or editing.
type InterruptPayload struct {
	Type          string              `json:"type"`
	Title         string              `json:"title"`
	Sections      []state.SectionPlan `json:"sections"`
	NarrativeMode state.NarrativeMode `json:"narrative_mode"`
	NarrativeFlow state.NarrativeFlow `json:"narrative_flow"`
}

// Result is spec.md §6's generate() return shape.
type Result struct {
	Success         bool                       `json:"success"`
	Markdown        string                     `json:"markdown,omitempty"`
	Outline         state.Outline              `json:"outline"`
	SectionsCount   int                        `json:"sections_count"`
	ImagesCount     int                        `json:"images_count"`
	CodeBlocksCount int                        `json:"code_blocks_count"`
	ReviewScore     float64                    `json:"review_score"`
	TokenSummary    map[string]llm.AgentTotals `json:"token_summary,omitempty"`
	SEOKeywords     []string                   `json:"seo_keywords,omitempty"`
	SocialSummary   string                     `json:"social_summary,omitempty"`
	MetaDescription string                     `json:"meta_description,omitempty"`
	SkillOutputs    map[string]any             `json:"skill_outputs,omitempty"`
	Error           string                     `json:"error,omitempty"`

	Interrupt *InterruptPayload `json:"interrupt,omitempty"`
}

// StageUpdate is one element of the streaming variant spec.md §6 names:
// "{stage, state}" emitted once per node. When Dependencies.TaskManager is
// set, stageEvents below forwards one of these as an EventStream payload
// after every node runs, giving a caller the streaming variant over the
// same channel it already polls for progress/result/log events — no
// separate streaming API is needed.
type StageUpdate struct {
	Stage string       `json:"stage"`
	State *state.Shared `json:"state"`
}

// stageEvents is a middleware.Hook that forwards a progress event before
// each node and a {stage, state} snapshot after it, satisfying spec.md
// §6's "streaming variant yielding {stage, state} per node" over the same
// external.TaskManager a caller already listens on.
type stageEvents struct {
	taskID string
	mgr    external.TaskManager
}

func (e *stageEvents) Name() string { return "stage_events" }

func (e *stageEvents) Before(_ context.Context, nodeName string, _ *state.Shared) error {
	e.mgr.SendEvent(e.taskID, external.EventProgress, nodeName)
	return nil
}

func (e *stageEvents) After(_ context.Context, nodeName string, s *state.Shared, _ time.Duration, _ error) error {
	e.mgr.SendEvent(e.taskID, external.EventStream, StageUpdate{Stage: nodeName, State: s})
	return nil
}

// Generate runs a complete blog-generation task from scratch. When
// p.Interactive is true, it stops after the planner and returns a Result
// whose Interrupt field is set instead of running to completion; the
// caller resumes via Resume.
func Generate(ctx context.Context, deps Dependencies, p Params) (*Result, error) {
	s := state.New(p.Topic, p.ArticleType, p.TargetAudience, p.TargetLength)
	s.TaskID = p.TaskID
	s.DocumentIDs = p.DocumentIDs

	cfg := config.Load(p.TargetLength)
	if p.StyleOverride != nil {
		cfg.Style = p.StyleOverride
	}

	task := tasklog.New(p.TaskID, p.Topic, p.ArticleType, string(p.TargetLength))
	graph, err := newGraph(deps, cfg, task, p.TargetLength, p.Interactive)
	if err != nil {
		return nil, err
	}

	if p.Interactive {
		return runInteractivePrefix(ctx, deps, graph, cfg, task, s)
	}
	return runToCompletion(ctx, deps, graph, cfg, task, s)
}

// ResumeAction is the caller's decision on a paused outline (spec.md §4.9:
// "accept" or "edit(new_outline)").
type ResumeAction string

const (
	ResumeAccept ResumeAction = "accept"
	ResumeEdit   ResumeAction = "edit"
)

// Resume re-enters an interactive run after Generate returned an
// InterruptPayload. Action "edit" replaces the outline with edited and
// clears sections so the writer drafts fresh content against it (spec.md
// §4.9 "re-enters the writer with possibly rewritten outline and cleared
// sections"); "accept" continues with the checkpointed outline unchanged.
func Resume(ctx context.Context, deps Dependencies, taskID string, action ResumeAction, edited *state.Outline) (*Result, error) {
	if deps.Checkpoints == nil {
		return nil, fmt.Errorf("workflow: resume requires a CheckpointStore")
	}
	cp, ok := deps.Checkpoints.Load(taskID)
	if !ok {
		return nil, fmt.Errorf("workflow: no pending checkpoint for task %q", taskID)
	}
	s := cp.State

	if action == ResumeEdit {
		if edited == nil {
			return nil, fmt.Errorf("workflow: resume action %q requires an edited outline", ResumeEdit)
		}
		s.Outline = *edited
		s.Sections = nil
	}

	cfg := config.Load(s.TargetLength)
	task := tasklog.New(s.TaskID, s.Topic, s.ArticleType, string(s.TargetLength))
	graph, err := newGraph(deps, cfg, task, s.TargetLength, false)
	if err != nil {
		return nil, err
	}

	execution, err := graph.BuildExecution()
	if err != nil {
		return nil, fmt.Errorf("workflow: build execution graph: %w", err)
	}
	return finish(ctx, deps, execution, cfg, task, s)
}

// runInteractivePrefix runs researcher+planner only, checkpoints the
// result, and returns the interrupt payload instead of continuing.
func runInteractivePrefix(ctx context.Context, deps Dependencies, g *Graph, cfg *config.Config, task *tasklog.Task, s *state.Shared) (*Result, error) {
	planning, err := g.BuildPlanning()
	if err != nil {
		return nil, fmt.Errorf("workflow: build planning graph: %w", err)
	}
	out, err := planning.Run(ctx, s)
	if err != nil {
		return nil, err
	}
	s, ok := out.(*state.Shared)
	if !ok {
		return nil, fmt.Errorf("workflow: planning graph returned non-*state.Shared output (%T)", out)
	}
	if s.Failed() {
		task.Finish(tasklog.StatusFailed, 0, 0, 0)
		persistTaskLog(deps, task)
		return &Result{Success: false, Error: s.Error}, nil
	}

	deps.Checkpoints.Save(s.TaskID, "planner", s)
	return &Result{
		Success: true,
		Outline: s.Outline,
		Interrupt: &InterruptPayload{
			Type:          "confirm_outline",
			Title:         s.Outline.Title,
			Sections:      s.Outline.Sections,
			NarrativeMode: s.Outline.NarrativeMode,
			NarrativeFlow: s.Outline.NarrativeFlow,
		},
	}, nil
}

// runToCompletion builds and runs the full non-interactive graph.
func runToCompletion(ctx context.Context, deps Dependencies, g *Graph, cfg *config.Config, task *tasklog.Task, s *state.Shared) (*Result, error) {
	node, err := g.Build()
	if err != nil {
		return nil, fmt.Errorf("workflow: build graph: %w", err)
	}
	return finish(ctx, deps, node, cfg, task, s)
}

// finish runs node over s to completion, persists the task log, and shapes
// the terminal Result (spec.md §6).
func finish(ctx context.Context, deps Dependencies, node flow.Node[any, any], cfg *config.Config, task *tasklog.Task, s *state.Shared) (*Result, error) {
	if deps.TaskManager != nil && deps.TaskManager.IsCancelled(s.TaskID) {
		task.Finish(tasklog.StatusFailed, 0, s.RevisionCount, 0)
		persistTaskLog(deps, task)
		return &Result{Success: false, Error: "cancelled"}, nil
	}

	out, err := node.Run(ctx, s)
	if err != nil {
		task.Finish(tasklog.StatusFailed, 0, s.RevisionCount, 0)
		persistTaskLog(deps, task)
		return nil, err
	}
	s, ok := out.(*state.Shared)
	if !ok {
		return nil, fmt.Errorf("workflow: graph returned non-*state.Shared output (%T)", out)
	}

	wordCount := len(splitWords(s.FinalMarkdown))
	if s.Failed() {
		task.Finish(tasklog.StatusFailed, s.ReviewScore, s.RevisionCount, wordCount)
		persistTaskLog(deps, task)
		if deps.TaskManager != nil {
			deps.TaskManager.SendEvent(s.TaskID, external.EventError, s.Error)
		}
		return &Result{Success: false, Error: s.Error, Outline: s.Outline}, nil
	}

	task.Finish(tasklog.StatusCompleted, s.ReviewScore, s.RevisionCount, wordCount)
	persistTaskLog(deps, task)
	if deps.TaskManager != nil {
		deps.TaskManager.SendEvent(s.TaskID, external.EventComplete, s.FinalMarkdown)
	}

	var tokenSummary map[string]llm.AgentTotals
	if deps.Client != nil {
		tokenSummary, _, _ = deps.Client.TokenTracker().Summary()
	}

	var skillOutputs map[string]any
	if cfg.SkillDerivativesEnabled && s.FinalMarkdown != "" {
		skillOutputs = skill.Default.RunAll(s.FinalMarkdown)
	}

	return &Result{
		Success:         true,
		Markdown:        s.FinalMarkdown,
		Outline:         s.Outline,
		TokenSummary:    tokenSummary,
		SectionsCount:   len(s.Sections),
		ImagesCount:     len(s.Images),
		CodeBlocksCount: len(s.CodeBlocks),
		ReviewScore:     s.ReviewScore,
		SEOKeywords:     s.SEOKeywords,
		SocialSummary:   s.SocialSummary,
		MetaDescription: s.MetaDescription,
		SkillOutputs:    skillOutputs,
	}, nil
}

func persistTaskLog(deps Dependencies, task *tasklog.Task) {
	if deps.TaskLogDir == "" {
		return
	}
	_ = task.Persist(deps.TaskLogDir)
}

func splitWords(text string) []string {
	return strings.Fields(text)
}

// newGraph constructs one Graph instance wired against deps and cfg: every
// agent gets the shared client proxied to its resolved tier (spec.md §4.4
// "LLMProxy(tier)"), the middleware pipeline gets all seven hooks, and the
// search/document/image dependencies are wired straight through from deps.
func newGraph(deps Dependencies, cfg *config.Config, task *tasklog.Task, targetLength state.TargetLength, interactive bool) (*Graph, error) {
	if deps.Client == nil {
		return nil, fmt.Errorf("workflow: Dependencies.Client is required")
	}

	tiered := func(agentName string) llm.Client {
		return llm.NewProxy(deps.Client, llm.ResolveAgentTier(agentName))
	}

	var search agent.SearchProvider
	if len(deps.SearchSources) > 1 {
		search = knowledge.NewSmartSearchService(tiered("researcher"), deps.SearchSources)
	} else {
		var single external.SearchService
		for _, svc := range deps.SearchSources {
			single = svc
		}
		search = agent.SingleSearchAdapter{Service: single}
	}

	tracker := deps.Client.TokenTracker()
	hooks := []middleware.Hook{
		&middleware.Tracing{TraceID: task.TaskID},
		&middleware.TaskLog{Task: task, Tracker: tracker},
		&middleware.Reducer{},
		&middleware.ErrorTracking{},
		&middleware.ContextManagement{Client: tiered("researcher"), Ranker: deps.Ranker},
		&middleware.TokenBudget{TotalBudget: cfg.TotalTokenBudget, Tracker: tracker},
		&middleware.ContextPrefetch{Loader: deps.DocumentLoader, Timeout: 30 * time.Second},
	}
	if deps.TaskManager != nil {
		hooks = append(hooks, &stageEvents{taskID: task.TaskID, mgr: deps.TaskManager})
	}
	pipeline := middleware.NewPipeline(hooks...)

	execCfg := executor.Config{MaxWorkers: cfg.MaxWorkers}
	writer := &agent.Writer{Client: tiered("writer"), Style: cfg.Style, Config: cfg}

	g := &Graph{
		Pipeline: pipeline,
		Style:    cfg.Style,
		Config:   cfg,

		Researcher: agent.NewResearcher(tiered("researcher"), search, deps.Documents, cfg),
		Planner: &agent.Planner{
			Client:       tiered("planner"),
			Interactive:  interactive,
			ImagePreplan: cfg.ImagePreplanEnabled,
		},
		Writer: writer,
		SearchCoordinator: &agent.SearchCoordinator{
			Client:        tiered("search_coordinator"),
			Search:        search,
			MaxRefineGaps: 3,
		},
		Questioner: &agent.Questioner{
			Client:           tiered("questioner"),
			Config:           &execCfg,
			DepthRequirement: cfg.Style.DepthRequirement,
		},
		Coder: &agent.Coder{Client: tiered("coder"), Config: execCfg},
		Artist: &agent.Artist{
			Client:      tiered("artist"),
			Images:      deps.Images,
			Config:      execCfg,
			ImageBudget: targetLength.ImageBudget(),
			MiniMode:    cfg.Style.ImageGenerationMode == style.ImageModeMiniSection,
		},
		CrossSectionDedup: &agent.CrossSectionDedup{Client: tiered("cross_section_dedup"), Threshold: cfg.Style.DedupThreshold},
		ThreadChecker:     &agent.ThreadChecker{Client: tiered("thread_checker")},
		VoiceChecker:      &agent.VoiceChecker{Client: tiered("voice_checker")},
		Reviewer: &agent.Reviewer{
			Client: tiered("reviewer"),
			Writer: writer,
			Style:  cfg.Style,
		},
		FactChecker:      &agent.FactChecker{Client: tiered("factcheck")},
		Humanizer:        &agent.Humanizer{Client: tiered("humanizer"), SkipThreshold: cfg.HumanizerSkipThreshold, MaxRetries: cfg.HumanizerMaxRetries, Config: execCfg},
		Assembler:        &agent.Assembler{WordsPerMinute: 200},
		SummaryGenerator: &agent.SummaryGenerator{Client: tiered("summary_generator")},
	}
	return g, nil
}
