/*
Package flow composes the article-generation pipeline out of small,
independently testable nodes. workflow/graph.go assembles the top-level
sequence (outline, research, draft, review, polish) with a Builder, and
wraps each of spec.md §4.4's loop-back edges (knowledge-gap, depth,
section-evaluate, revision) in a Loop guarded by a Branch that routes to
either "continue" or "stop".

# Core Concepts

Node is the unit every step implements:

	type Node[I any, O any] interface {
	    Run(ctx context.Context, input I) (O, error)
	}

Processor adapts a plain function to Node, and Middleware wraps a Node
with cross-cutting behavior (tracing, logging) without changing its
signature; middleware/middleware.go uses this to attach span/log
middleware to every agent node.

# Sequencing

NewFlow/Join chain nodes so each one's output feeds the next's input,
stopping at the first error or cancelled context:

	seq, err := NewFlow(outlineNode, researchNode, draftNode)

Builder accumulates the same chain with a fluent API and validates it once
on Build():

	pipeline, err := NewBuilder().
	    Then(outlineNode).
	    Then(researchNode).
	    Then(draftNode).
	    Build()

# Loops and Branches

Loop repeats a node against its own input until MaxIterations is hit or
Terminator reports done — this is how each of the four loop-back edges
enforces its safety cap:

	loop, err := NewLoop(&LoopConfig[State, State]{
	    Node:          evaluateSection,
	    MaxIterations: loopSafetyCap,
	    Terminator:    func(ctx context.Context, i int, in, out State) (bool, error) {
	        return out.SectionApproved, nil
	    },
	})

Branch runs a node, then picks the next node by name from the node's
output:

	gate, err := NewBranch(&BranchConfig{
	    Node: decideContinue,
	    BranchResolver: func(ctx context.Context, input, output any) (string, error) {
	        if output.(Decision).ShouldContinue {
	            return "continue", nil
	        }
	        return "stop", nil
	    },
	    Branches: map[string]Node[any, any]{
	        "continue": loopBodyNode,
	        "stop":     exitNode,
	    },
	})

conditionalLoop in workflow/graph.go composes Loop and Branch this way for
each of the four loop-back edges.

# Concurrency

flow deliberately has no parallel/batch/fan-out node: per-item concurrent
work (per-section code generation, per-section image tasks) goes through
the executor package instead, which bounds worker count and degrades to
serial execution under tracing (spec.md §4.3). Keeping fan-out in one
place avoids two competing concurrency primitives in the same pipeline.
*/
package flow
