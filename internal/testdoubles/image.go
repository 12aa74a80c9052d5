package testdoubles

import (
	"context"
	"fmt"
	"sync"

	"github.com/blogforge/core/external"
)

// ImageService is a scriptable external.ImageService that hands back a
// deterministic URL per call (or Err, if set) and records every request.
type ImageService struct {
	mu       sync.Mutex
	Err      error
	Requests []external.ImageGenerationRequest
}

func (i *ImageService) Generate(_ context.Context, req external.ImageGenerationRequest) (external.ImageGenerationResult, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Requests = append(i.Requests, req)
	if i.Err != nil {
		return external.ImageGenerationResult{}, i.Err
	}
	return external.ImageGenerationResult{URL: fmt.Sprintf("https://fake.test/image/%d.png", len(i.Requests))}, nil
}

// CallCount returns how many times Generate was invoked.
func (i *ImageService) CallCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.Requests)
}
