package vectorcache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogforge/core/knowledge/vectorcache"
)

type stubEmbedder struct {
	vectors [][]float32
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return s.vectors[:len(texts)], nil
}

func TestOpenAIEmbedder_ImplementsEmbedderInterface(t *testing.T) {
	var _ vectorcache.Embedder = &vectorcache.OpenAIEmbedder{}
}

func TestStubEmbedder_ReturnsOneVectorPerText(t *testing.T) {
	e := &stubEmbedder{vectors: [][]float32{{1, 0}, {0, 1}, {1, 1}}}
	vecs, err := e.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
}
