package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/blogforge/core/state"
)

// DocumentLoader batch-loads document_ids into their textual content,
// backing ContextPrefetch (spec.md §4.2 item 7). external.DocumentService
// satisfies this with its BatchLoad method.
type DocumentLoader interface {
	BatchLoad(ctx context.Context, docIDs []string) ([]string, error)
}

const contextPrefetchEnv = "CONTEXT_PREFETCH_MIDDLEWARE_ENABLED"

// defaultPrefetchTimeout bounds how long ContextPrefetch waits for
// DocumentLoader before giving up and letting the researcher run without it.
const defaultPrefetchTimeout = 30 * time.Second

// ContextPrefetch fires exactly once, immediately before the researcher
// node, loading any configured document_ids into prefetch_docs under a
// bounded timeout (spec.md §4.2 item 7).
type ContextPrefetch struct {
	Loader  DocumentLoader
	Timeout time.Duration

	once sync.Once
}

func (c *ContextPrefetch) Name() string { return "context_prefetch" }

func (c *ContextPrefetch) Before(ctx context.Context, nodeName string, s *state.Shared) error {
	if !envEnabled(contextPrefetchEnv) || nodeName != "researcher" || c.Loader == nil {
		return nil
	}
	if len(s.DocumentIDs) == 0 {
		return nil
	}
	c.once.Do(func() {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = defaultPrefetchTimeout
		}
		loadCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		docs, err := c.Loader.BatchLoad(loadCtx, s.DocumentIDs)
		if err != nil {
			s.RecordNonFatal("context_prefetch", err)
			return
		}
		s.PrefetchDocs = docs
	})
	return nil
}

func (c *ContextPrefetch) After(context.Context, string, *state.Shared, time.Duration, error) error {
	return nil
}
