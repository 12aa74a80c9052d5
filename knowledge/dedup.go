package knowledge

import (
	"strings"
	"sync"
	"time"
)

const defaultDedupWindow = 60 * time.Second

// QueryDeduplicator rejects a query it has already seen within a short
// window, preventing a gap-analysis or refine-search loop from resubmitting
// the same search repeatedly (spec.md §4.6).
type QueryDeduplicator struct {
	window time.Duration

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewQueryDeduplicator builds a deduplicator with the given rejection
// window; a zero window falls back to 60 seconds.
func NewQueryDeduplicator(window time.Duration) *QueryDeduplicator {
	if window <= 0 {
		window = defaultDedupWindow
	}
	return &QueryDeduplicator{window: window, seen: make(map[string]time.Time)}
}

func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Allow reports whether query may proceed: true the first time it is seen,
// or once its window has elapsed; false for a repeat within the window. A
// true result also records the attempt.
func (d *QueryDeduplicator) Allow(query string) bool {
	key := normalizeQuery(query)
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()
	last, ok := d.seen[key]
	if ok && now.Sub(last) < d.window {
		return false
	}
	d.seen[key] = now
	return true
}

// Reset clears all recorded queries.
func (d *QueryDeduplicator) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = make(map[string]time.Time)
}
