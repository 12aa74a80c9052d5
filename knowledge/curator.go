// Package knowledge implements the search-routing, source-quality, and
// deep-fetch services spec.md §4.6 describes: SmartSearchService,
// SourceCurator, QueryDeduplicator, and DeepScraper.
package knowledge

import (
	"sort"
	"sync"
	"time"

	"github.com/blogforge/core/state"
)

const (
	defaultMaxConsecutiveFailures = 3
	defaultHealthCooldown         = 30 * time.Minute
	defaultSourceWeight           = 0.50
)

// fallbackSourceWeights mirrors source_curator.py's hard-coded weight table,
// used whenever no registry overrides it.
var fallbackSourceWeights = map[string]float64{
	"Anthropic Research": 0.95,
	"OpenAI Blog":        0.95,
	"Google DeepMind":    0.95,
	"Meta AI":            0.95,
	"Google AI Blog":     0.90,
	"Mistral AI":         0.90,
	"Microsoft Research": 0.90,
	"arXiv":              0.90,
	"LangChain Blog":     0.85,
	"xAI":                0.85,
	"Hugging Face":       0.85,
	"AWS Blog":           0.80,
	"Microsoft DevBlogs":  0.80,
	"Hacker News":        0.75,
	"GitHub":             0.75,
	"Stack Overflow":     0.75,
	"Dev.to":             0.70,
	"Reddit AI":          0.70,
	"机器之心":              0.70,
	"Google Search":      0.60,
	"搜狗搜索":              0.55,
	"通用搜索":              0.50,
}

// SourceWeights lets a caller override or extend fallbackSourceWeights from
// a registry file; nil means "use the fallback table as-is".
type SourceWeights map[string]float64

// HealthConfig tunes the cooldown state machine; a zero value falls back to
// the hard-coded defaults.
type HealthConfig struct {
	MaxConsecutiveFailures int
	Cooldown               time.Duration
	DefaultWeight          float64
}

// SourceCurator tracks source quality weights and per-source health,
// disabling a source after repeated failures until its cooldown elapses.
type SourceCurator struct {
	weights       map[string]float64
	defaultWeight float64
	maxFailures   int
	cooldown      time.Duration

	mu            sync.Mutex
	failureCounts map[string]int
	disabledAt    map[string]time.Time
}

// NewSourceCurator builds a curator from an optional weight override and
// health config; both nil/zero arguments reproduce the hard-coded defaults.
func NewSourceCurator(overrides SourceWeights, cfg HealthConfig) *SourceCurator {
	weights := make(map[string]float64, len(fallbackSourceWeights))
	for k, v := range fallbackSourceWeights {
		weights[k] = v
	}
	for k, v := range overrides {
		weights[k] = v
	}

	defaultWeight := cfg.DefaultWeight
	if defaultWeight == 0 {
		defaultWeight = defaultSourceWeight
	}
	maxFailures := cfg.MaxConsecutiveFailures
	if maxFailures == 0 {
		maxFailures = defaultMaxConsecutiveFailures
	}
	cooldown := cfg.Cooldown
	if cooldown == 0 {
		cooldown = defaultHealthCooldown
	}

	return &SourceCurator{
		weights:       weights,
		defaultWeight: defaultWeight,
		maxFailures:   maxFailures,
		cooldown:      cooldown,
		failureCounts: make(map[string]int),
		disabledAt:    make(map[string]time.Time),
	}
}

func (c *SourceCurator) weightFor(result state.SearchResult) float64 {
	if w, ok := c.weights[result.Source]; ok {
		return w
	}
	return c.defaultWeight
}

// Rank sorts results by source quality weight, descending, stable on ties.
func (c *SourceCurator) Rank(results []state.SearchResult) []state.SearchResult {
	if len(results) == 0 {
		return results
	}
	ranked := make([]state.SearchResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return c.weightFor(ranked[i]) > c.weightFor(ranked[j])
	})
	return ranked
}

// CheckHealth reports whether sourceID is currently usable, re-enabling it
// once its cooldown has elapsed.
func (c *SourceCurator) CheckHealth(sourceID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	disabledAt, disabled := c.disabledAt[sourceID]
	if !disabled {
		return true
	}
	if time.Since(disabledAt) >= c.cooldown {
		delete(c.disabledAt, sourceID)
		delete(c.failureCounts, sourceID)
		return true
	}
	return false
}

// RecordFailure counts a failure against sourceID, disabling it once
// maxFailures consecutive failures accrue.
func (c *SourceCurator) RecordFailure(sourceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failureCounts[sourceID]++
	if c.failureCounts[sourceID] >= c.maxFailures {
		c.disabledAt[sourceID] = time.Now()
	}
}

// RecordSuccess resets sourceID's failure counter.
func (c *SourceCurator) RecordSuccess(sourceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.failureCounts, sourceID)
}

// DisableSource manually disables sourceID, starting its cooldown now.
func (c *SourceCurator) DisableSource(sourceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disabledAt[sourceID] = time.Now()
}

// EnableSource manually clears sourceID's disabled state and failure count.
func (c *SourceCurator) EnableSource(sourceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.disabledAt, sourceID)
	delete(c.failureCounts, sourceID)
}

// GetHealthySources filters sourceIDs down to those CheckHealth currently
// accepts.
func (c *SourceCurator) GetHealthySources(sourceIDs []string) []string {
	healthy := make([]string, 0, len(sourceIDs))
	for _, id := range sourceIDs {
		if c.CheckHealth(id) {
			healthy = append(healthy, id)
		}
	}
	return healthy
}
