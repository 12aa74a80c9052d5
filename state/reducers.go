package state

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
)

// Reducer merges a parallel node's private writes to one field back into the
// state the driver holds. Field-level, matching spec.md §3/§4.2/§5:
//   - id-keyed lists (Sections): later writes of the same id overwrite earlier
//   - stringifiable lists (everything else below): dedup by string form,
//     first-seen order preserved
//
// Grounded on original_source/backend/services/blog_generator/schemas/reducers.py
// (merge_list_dedup / merge_sections).
type Reducer[T any] func(existing, incoming []T) []T

// MergeListDedup implements STATE_REDUCERS["search_results"/"images"/...]:
// string-keyed dedup, existing entries keep their original position, new
// unseen entries append in their incoming order.
func MergeListDedup[T any](existing, incoming []T) []T {
	if len(incoming) == 0 {
		return existing
	}
	if len(existing) == 0 {
		return incoming
	}

	seen := make(map[string]struct{}, len(existing)+len(incoming))
	result := make([]T, 0, len(existing)+len(incoming))
	for _, item := range existing {
		key := stringify(item)
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			result = append(result, item)
		}
	}
	for _, item := range incoming {
		key := stringify(item)
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			result = append(result, item)
		}
	}
	return result
}

func stringify(v any) string {
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%+v", v)
}

// MergeSections implements merge_sections: id-keyed merge where a later
// write of the same section id overwrites the earlier one in place, and
// brand-new ids append at the end in first-seen order.
func MergeSections(existing, incoming []Section) []Section {
	if len(incoming) == 0 {
		return existing
	}
	if len(existing) == 0 {
		return incoming
	}

	byID := make(map[string]Section, len(existing)+len(incoming))
	order := make([]string, 0, len(existing)+len(incoming))

	for _, s := range existing {
		byID[s.ID] = s
		order = append(order, s.ID)
	}
	for _, s := range incoming {
		if _, ok := byID[s.ID]; !ok {
			order = append(order, s.ID)
		}
		byID[s.ID] = s
	}
	return lo.Map(order, func(id string, _ int) Section { return byID[id] })
}

// ApplyReducers merges a node's private-copy writes back into the
// driver-held state for every reducer-registered field (STATE_REDUCERS in
// the Python original). Called by middleware.Reducer.After.
func ApplyReducers(base, delta *Shared) {
	base.SearchResults = MergeListDedup(base.SearchResults, delta.SearchResults)
	base.Sections = MergeSections(base.Sections, delta.Sections)
	base.Images = MergeListDedup(base.Images, delta.Images)
	base.CodeBlocks = MergeListDedup(base.CodeBlocks, delta.CodeBlocks)
	base.KeyConcepts = MergeListDedup(base.KeyConcepts, delta.KeyConcepts)
	base.ReferenceLinks = MergeListDedup(base.ReferenceLinks, delta.ReferenceLinks)
	base.ReviewIssues = MergeListDedup(base.ReviewIssues, delta.ReviewIssues)
}
