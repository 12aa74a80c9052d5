// Package executor implements the bounded-concurrency parallel task
// fan-out engine spec.md §4.3 describes, used by every agent that drafts,
// checks, or illustrates per-section/per-placeholder work.
package executor

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/blogforge/core/pkg/safe"
	lynxsync "github.com/blogforge/core/pkg/sync"
)

// Task is one unit of fan-out work. Name identifies it in the result list;
// Fn does the work and must itself honor ctx cancellation/deadline.
type Task[T any] struct {
	Name string
	Fn   func(ctx context.Context) (T, error)
}

// Result is one task's outcome, emitted in original submission order
// regardless of completion order (spec.md §4.3).
type Result[T any] struct {
	TaskName string
	Success  bool
	Value    T
	Err      error
}

// ErrTimeout is the sentinel Result.Err holds when a task is cancelled by
// its per-task timeout.
var ErrTimeout = errors.New("timeout")

// Config controls fan-out width and per-task deadline.
type Config struct {
	MaxWorkers     int
	TimeoutSeconds int
}

const (
	defaultMaxWorkersEnv = "BLOG_GENERATOR_MAX_WORKERS"
	defaultMaxWorkers    = 3
	defaultTimeout       = 120 * time.Second
)

// ResolveMaxWorkers reads BLOG_GENERATOR_MAX_WORKERS, defaulting to 3
// (spec.md §4.3 "default from env, typically 3").
func ResolveMaxWorkers() int {
	if v := os.Getenv(defaultMaxWorkersEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultMaxWorkers
}

func (c Config) maxWorkers() int {
	if c.MaxWorkers > 0 {
		return c.MaxWorkers
	}
	return ResolveMaxWorkers()
}

func (c Config) timeout() time.Duration {
	if c.TimeoutSeconds > 0 {
		return time.Duration(c.TimeoutSeconds) * time.Second
	}
	return defaultTimeout
}

// tracingEnabledEnv mirrors middleware's TRACING_ENABLED: when tracing is
// on, Run degrades to serial execution so every log line stays attributable
// to a single in-flight trace (spec.md §4.3 "if tracing is enabled,
// degrade to serial to preserve trace context").
const tracingEnabledEnv = "TRACING_ENABLED"

func tracingEnabled() bool {
	v, ok := os.LookupEnv(tracingEnabledEnv)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// Run executes tasks with bounded concurrency (or serially, under tracing),
// collecting results in submission order. A single failing or panicking
// task never aborts its siblings; Run itself only returns an error for
// programmer mistakes (spec.md §4.3 "never raises to the caller except on
// programmer error") — an empty tasks slice is one such case.
func Run[T any](ctx context.Context, tasks []Task[T], cfg Config) ([]Result[T], error) {
	if len(tasks) == 0 {
		return nil, errors.New("executor: no tasks provided")
	}

	results := make([]Result[T], len(tasks))

	runOne := func(i int) {
		task := tasks[i]
		taskCtx, cancel := context.WithTimeout(ctx, cfg.timeout())
		defer cancel()

		done := make(chan Result[T], 1)
		safe.Go(func() {
			v, err := task.Fn(taskCtx)
			done <- Result[T]{TaskName: task.Name, Success: err == nil, Value: v, Err: err}
		}, func(panicErr error) {
			done <- Result[T]{TaskName: task.Name, Success: false, Err: panicErr}
		})

		select {
		case r := <-done:
			results[i] = r
		case <-taskCtx.Done():
			results[i] = Result[T]{TaskName: task.Name, Success: false, Err: ErrTimeout}
		}
	}

	if tracingEnabled() {
		for i := range tasks {
			runOne(i)
		}
		return results, nil
	}

	limiter := lynxsync.NewLimiter(cfg.maxWorkers())
	wait := make(chan struct{}, len(tasks))
	for i := range tasks {
		i := i
		limiter.Acquire()
		safe.Go(func() {
			defer limiter.Release()
			defer func() { wait <- struct{}{} }()
			runOne(i)
		})
	}
	for range tasks {
		<-wait
	}
	return results, nil
}
