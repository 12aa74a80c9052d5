// Package testdoubles provides in-memory fakes for the external.* and
// llm.Client collaborator contracts, so agent and workflow tests never reach
// a real network (spec.md §8, "tests ... against fakes"). Each fake is a
// scriptable recorder: construct it with the canned responses a test wants,
// then assert on the calls it recorded afterward.
package testdoubles

import (
	"context"
	"sync"

	"github.com/blogforge/core/external"
)

// SearchService is a scriptable external.SearchService: Responses is
// consumed in call order, falling back to the last entry once exhausted so a
// test doesn't have to script every call a loop makes.
type SearchService struct {
	mu        sync.Mutex
	Responses []external.SearchResponse
	Err       error
	Queries   []string
	calls     int
}

func (s *SearchService) Search(_ context.Context, query string, _ int) (external.SearchResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Queries = append(s.Queries, query)
	if s.Err != nil {
		return external.SearchResponse{}, s.Err
	}
	if len(s.Responses) == 0 {
		return external.SearchResponse{Success: true}, nil
	}
	idx := s.calls
	if idx >= len(s.Responses) {
		idx = len(s.Responses) - 1
	}
	s.calls++
	return s.Responses[idx], nil
}

// CallCount returns how many times Search was invoked.
func (s *SearchService) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Queries)
}
