package workflow

import (
	"context"
	"fmt"

	"github.com/blogforge/core/agent"
	"github.com/blogforge/core/config"
	"github.com/blogforge/core/flow"
	"github.com/blogforge/core/middleware"
	"github.com/blogforge/core/state"
	"github.com/blogforge/core/style"
)

// loopSafetyCap bounds every conditional loop below independent of its own
// predicate, as a backstop against a predicate bug spinning forever — the
// predicates themselves already terminate well before this (spec.md §4.1's
// own bounds top out at maxDeepenRounds=5).
const loopSafetyCap = 25

// Graph bundles one instance of every agent plus the middleware pipeline
// and run configuration, and assembles them into the DAG spec.md §4.4
// names via flow.Builder/Loop/Branch (spec.md §4.4, generator.py's
// StateGraph wiring).
type Graph struct {
	Pipeline *middleware.Pipeline
	Style    *style.Profile
	Config   *config.Config

	Researcher        *agent.Researcher
	Planner           *agent.Planner
	Writer            *agent.Writer
	SearchCoordinator *agent.SearchCoordinator
	Questioner        *agent.Questioner
	Coder             *agent.Coder
	Artist            *agent.Artist
	CrossSectionDedup *agent.CrossSectionDedup
	ThreadChecker     *agent.ThreadChecker
	VoiceChecker      *agent.VoiceChecker
	Reviewer          *agent.Reviewer
	FactChecker       *agent.FactChecker
	Humanizer         *agent.Humanizer
	Assembler         *agent.Assembler
	SummaryGenerator  *agent.SummaryGenerator
}

// Build wires the complete graph: researcher -> planner -> writer -> the
// knowledge loop -> the depth loop -> the section-quality loop ->
// coder_and_artist -> cross_section_dedup -> consistency_check -> the
// revision loop -> factcheck -> text_cleanup -> humanizer -> assembler ->
// summary_generator (spec.md §4.4).
func (g *Graph) Build() (flow.Node[any, any], error) {
	planning, err := g.BuildPlanning()
	if err != nil {
		return nil, err
	}
	execution, err := g.BuildExecution()
	if err != nil {
		return nil, err
	}
	return flow.Join(planning, execution)
}

// BuildPlanning wires just researcher -> planner: the prefix that runs
// before an interactive pause (spec.md §4.9, generator.py's interrupt
// point sits right after the planner node).
func (g *Graph) BuildPlanning() (flow.Node[any, any], error) {
	return flow.Join(
		wrap(g.Pipeline, "researcher", g.Researcher.Run),
		wrap(g.Pipeline, "planner", g.Planner.Run),
	)
}

// BuildExecution wires everything from the writer onward: what Resume
// re-enters once an interactive run's outline has been accepted or edited
// (spec.md §4.9 "resume ... re-enters the writer with possibly rewritten
// outline and cleared sections").
func (g *Graph) BuildExecution() (flow.Node[any, any], error) {
	knowledgeLoop, err := g.buildKnowledgeLoop()
	if err != nil {
		return nil, fmt.Errorf("workflow: knowledge loop: %w", err)
	}
	depthLoop, err := g.buildDepthLoop()
	if err != nil {
		return nil, fmt.Errorf("workflow: depth loop: %w", err)
	}
	sectionLoop, err := g.buildSectionLoop()
	if err != nil {
		return nil, fmt.Errorf("workflow: section loop: %w", err)
	}
	revisionLoop, err := g.buildRevisionLoop()
	if err != nil {
		return nil, fmt.Errorf("workflow: revision loop: %w", err)
	}

	b := flow.NewBuilder().
		Then(wrap(g.Pipeline, "writer", g.Writer.Run)).
		Then(knowledgeLoop).
		Then(depthLoop).
		Then(sectionLoop).
		Then(wrap(g.Pipeline, "coder_and_artist", g.coderAndArtist)).
		Then(wrap(g.Pipeline, "cross_section_dedup", g.crossSectionDedup)).
		Then(wrap(g.Pipeline, "consistency_check", g.consistencyCheck)).
		Then(revisionLoop).
		Then(wrap(g.Pipeline, "factcheck", gated(g.factCheckEnabled(), g.FactChecker.Run))).
		Then(wrap(g.Pipeline, "text_cleanup", gated(g.textCleanupEnabled(), agent.TextCleanup{}.Run))).
		Then(wrap(g.Pipeline, "humanizer", gated(g.humanizerEnabled(), g.Humanizer.Run))).
		Then(wrap(g.Pipeline, "assembler", g.Assembler.Run)).
		Then(wrap(g.Pipeline, "summary_generator", gated(g.summaryGenEnabled(), g.SummaryGenerator.Run)))

	return b.Build()
}

// buildKnowledgeLoop wires check_knowledge --[search/continue]--> {refine_search
// -> enhance_with_knowledge -> (loop back to check_knowledge), continue}
// (spec.md §4.4, generator.py _should_refine_search).
func (g *Graph) buildKnowledgeLoop() (flow.Node[any, any], error) {
	refineCycle, err := flow.Join(
		wrap(g.Pipeline, "refine_search", errFn(g.SearchCoordinator.RefineSearch)),
		wrap(g.Pipeline, "enhance_with_knowledge", g.Writer.EnhanceWithKnowledge),
	)
	if err != nil {
		return nil, err
	}

	return conditionalLoop(
		g.Pipeline,
		"check_knowledge",
		errFn(g.SearchCoordinator.DetectGaps),
		func(s *state.Shared) string { return shouldRefineSearch(g.Style.EnableKnowledgeRefinement, s) },
		map[string]flow.Node[any, any]{
			branchSearch:   refineCycle,
			branchContinue: identity,
		},
		branchContinue,
	)
}

// buildDepthLoop wires questioner --[deepen/continue]--> {deepen_content ->
// (loop back to questioner), continue} (spec.md §4.4, generator.py
// _should_deepen).
func (g *Graph) buildDepthLoop() (flow.Node[any, any], error) {
	maxRounds := g.Style.EffectiveMaxQuestioningRounds()
	return conditionalLoop(
		g.Pipeline,
		"questioner",
		g.Questioner.RunDepthCheck,
		func(s *state.Shared) string { return shouldDeepen(maxRounds, s) },
		map[string]flow.Node[any, any]{
			branchDeepen:   wrap(g.Pipeline, "deepen_content", g.Writer.Deepen),
			branchContinue: identity,
		},
		branchContinue,
	)
}

// buildSectionLoop wires section_evaluate --[improve/continue]-->
// {section_improve -> (loop back to section_evaluate), continue}
// (spec.md §4.4, generator.py _should_improve_sections).
func (g *Graph) buildSectionLoop() (flow.Node[any, any], error) {
	return conditionalLoop(
		g.Pipeline,
		"section_evaluate",
		g.Questioner.RunSectionEvaluate,
		shouldImproveSections,
		map[string]flow.Node[any, any]{
			branchImprove:  wrap(g.Pipeline, "section_improve", g.Writer.ImproveSections),
			branchContinue: identity,
		},
		branchContinue,
	)
}

// buildRevisionLoop wires reviewer --[revision/assemble]--> {revision ->
// (loop back to reviewer), assemble} (spec.md §4.4, generator.py
// _should_revise).
func (g *Graph) buildRevisionLoop() (flow.Node[any, any], error) {
	return conditionalLoop(
		g.Pipeline,
		"reviewer",
		g.Reviewer.Run,
		func(s *state.Shared) string { return shouldRevise(g.Style, s) },
		map[string]flow.Node[any, any]{
			branchRevision: wrap(g.Pipeline, "revision", g.Reviewer.Revise),
			branchAssemble: identity,
		},
		branchAssemble,
	)
}

// coderAndArtist runs the code-sample and illustration passes sequentially
// over the same shared state (spec.md §5's "no two nodes mutate state
// concurrently" — a deliberate departure from generator.py's nominal
// parallel fan-out of the two).
func (g *Graph) coderAndArtist(ctx context.Context, s *state.Shared) (*state.Shared, error) {
	if s.Failed() {
		return s, nil
	}
	if s, err := g.Coder.Run(ctx, s); err != nil {
		return s, err
	}
	return g.Artist.Run(ctx, s)
}

// crossSectionDedup gates the dedup pass on CrossSectionDedupEnabled
// (generator.py _cross_section_dedup_node, env-gated only, off by default).
func (g *Graph) crossSectionDedup(ctx context.Context, s *state.Shared) (*state.Shared, error) {
	if !g.Config.CrossSectionDedupEnabled {
		return s, nil
	}
	g.CrossSectionDedup.Threshold = g.Style.DedupThreshold
	return g.CrossSectionDedup.Run(ctx, s)
}

// consistencyCheck runs the thread and voice checks sequentially (same
// rationale as coderAndArtist), each gated by its own env+style double
// switch (generator.py _is_enabled), then folds their issues into
// review_issues (generator.py: the reviewer consumes merged issues).
func (g *Graph) consistencyCheck(ctx context.Context, s *state.Shared) (*state.Shared, error) {
	if s.Failed() {
		return s, nil
	}
	if len(s.Sections) < 2 {
		return s, nil
	}
	threadOn := g.Config.ThreadCheckEnabled && g.Style.EnableThreadCheck
	voiceOn := g.Config.VoiceCheckEnabled && g.Style.EnableVoiceCheck

	var err error
	if threadOn {
		s, err = g.ThreadChecker.Run(ctx, s)
		if err != nil {
			return s, err
		}
	}
	if voiceOn {
		s, err = g.VoiceChecker.Run(ctx, s)
		if err != nil {
			return s, err
		}
	}
	agent.MergeConsistencyIssues(s)
	return s, nil
}

func (g *Graph) factCheckEnabled() bool {
	return g.Config.FactCheckEnabled && g.Style.EnableFactCheck
}

func (g *Graph) textCleanupEnabled() bool {
	return g.Config.TextCleanupEnabled && g.Style.EnableTextCleanup
}

func (g *Graph) humanizerEnabled() bool {
	return g.Config.HumanizerEnabled && g.Style.EnableHumanizer
}

func (g *Graph) summaryGenEnabled() bool {
	return g.Config.SummaryGenEnabled && g.Style.EnableSummaryGen
}

// gated no-ops fn when enabled is false, matching generator.py's
// _is_enabled double env+style switch on factcheck/text_cleanup/
// humanizer/summary_generator.
func gated(enabled bool, fn stateFn) stateFn {
	if enabled {
		return fn
	}
	return func(_ context.Context, s *state.Shared) (*state.Shared, error) {
		return s, nil
	}
}

// conditionalLoop builds one of spec.md §4.4's four conditional loop-back
// edges: run decisionFn, resolve a branch name from the resulting state,
// and either run that branch's node and loop back to decisionFn, or stop.
// This is flow.Loop wrapping flow.Branch (flow/loop.go, flow/branch.go):
// the Branch's decision node re-runs every iteration (matching the
// original graph's literal loop-back edges), and the Loop's Terminator
// reads the branch just taken via a closure, since Loop's own signature
// only sees the iteration's input/output values.
func conditionalLoop(
	pipeline *middleware.Pipeline,
	decisionName string,
	decisionFn stateFn,
	resolve func(s *state.Shared) string,
	branches map[string]flow.Node[any, any],
	continueValue string,
) (flow.Node[any, any], error) {
	decisionNode := wrap(pipeline, decisionName, decisionFn)

	var lastDecision string
	branch, err := flow.NewBranch(&flow.BranchConfig{
		Node: decisionNode,
		BranchResolver: func(_ context.Context, _ any, output any) (string, error) {
			s, ok := output.(*state.Shared)
			if !ok {
				return "", fmt.Errorf("workflow: %s decision produced non-*state.Shared output (%T)", decisionName, output)
			}
			lastDecision = resolve(s)
			return lastDecision, nil
		},
		Branches: branches,
	})
	if err != nil {
		return nil, err
	}

	return flow.NewLoop(&flow.LoopConfig[any, any]{
		Node:          branch,
		MaxIterations: loopSafetyCap,
		Terminator: func(_ context.Context, _ int, _ any, _ any) (bool, error) {
			return lastDecision == continueValue, nil
		},
	})
}
