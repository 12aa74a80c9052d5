package testdoubles

import (
	"context"
	"strings"

	"github.com/blogforge/core/external"
)

// DocumentService is a canned external.DocumentService: every method returns
// a fixed string/slice regardless of input, unless Err is set.
type DocumentService struct {
	MergedKnowledge     string
	ConvertedResults    []string
	DocumentKnowledge   string
	SummarizedForPrompt string
	BatchLoaded         []string
	Err                 error
}

func (d *DocumentService) GetMergedKnowledge(_ context.Context, _ []string, _ []external.SearchResult) (string, error) {
	if d.Err != nil {
		return "", d.Err
	}
	return d.MergedKnowledge, nil
}

func (d *DocumentService) ConvertSearchResults(_ context.Context, results []external.SearchResult) ([]string, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	if d.ConvertedResults != nil {
		return d.ConvertedResults, nil
	}
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Title+": "+r.Content)
	}
	return out, nil
}

func (d *DocumentService) PrepareDocumentKnowledge(_ context.Context, _ []string) (string, error) {
	if d.Err != nil {
		return "", d.Err
	}
	return d.DocumentKnowledge, nil
}

func (d *DocumentService) SummarizeForPrompt(_ context.Context, text string, maxChars int) (string, error) {
	if d.Err != nil {
		return "", d.Err
	}
	if d.SummarizedForPrompt != "" {
		return d.SummarizedForPrompt, nil
	}
	if len(text) <= maxChars {
		return text, nil
	}
	return text[:maxChars], nil
}

func (d *DocumentService) BatchLoad(_ context.Context, ids []string) ([]string, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	if d.BatchLoaded != nil {
		return d.BatchLoaded, nil
	}
	return []string{strings.Join(ids, ",")}, nil
}
