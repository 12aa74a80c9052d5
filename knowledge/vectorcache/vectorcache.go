// Package vectorcache implements middleware.Ranker against a Qdrant
// collection of search-result embeddings, grounded on the teacher's own
// Qdrant vector store wiring in ai/providers/vectorstores/qdrant: a
// required *qdrant.Client plus an embedding model, upserted per point and
// queried by nearest neighbor.
package vectorcache

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/qdrant/go-client/qdrant"

	"github.com/blogforge/core/state"
)

// Embedder turns text into a vector. OpenAIEmbedder is the production
// implementation; tests substitute a deterministic stub.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// OpenAIEmbedder calls the OpenAI-compatible embeddings endpoint.
type OpenAIEmbedder struct {
	client openai.Client
	model  string
}

// NewOpenAIEmbedder builds an embedder against apiKey/baseURL (baseURL may
// be empty to use the default). model defaults to text-embedding-3-small.
func NewOpenAIEmbedder(apiKey, baseURL, model string) *OpenAIEmbedder {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	return &OpenAIEmbedder{client: openai.NewClient(opts...), model: model}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("vectorcache: embeddings request failed: %w", err)
	}
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for j, f := range d.Embedding {
			vec[j] = float32(f)
		}
		out[i] = vec
	}
	return out, nil
}

const payloadContentKey = "content"

// Store ranks state.SearchResult items by embedding similarity to a topic,
// backing middleware.Ranker's Layer-1 context filter. Each TopK call
// upserts the candidate results into the collection, then queries with the
// topic's own embedding so ranking stays fresh per call instead of
// depending on a long-lived index.
type Store struct {
	client         *qdrant.Client
	embedder       Embedder
	collectionName string
}

// Config configures a Store.
type Config struct {
	Client         *qdrant.Client
	Embedder       Embedder
	CollectionName string
	VectorSize     uint64
}

// New builds a Store, creating the collection if it does not already
// exist.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("vectorcache: client is required")
	}
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("vectorcache: embedder is required")
	}
	if cfg.CollectionName == "" {
		cfg.CollectionName = "blogforge_context"
	}
	if cfg.VectorSize == 0 {
		cfg.VectorSize = 1536
	}

	exists, err := cfg.Client.CollectionExists(ctx, cfg.CollectionName)
	if err != nil {
		return nil, fmt.Errorf("vectorcache: check collection: %w", err)
	}
	if !exists {
		err = cfg.Client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: cfg.CollectionName,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     cfg.VectorSize,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return nil, fmt.Errorf("vectorcache: create collection: %w", err)
		}
	}

	return &Store{client: cfg.Client, embedder: cfg.Embedder, collectionName: cfg.CollectionName}, nil
}

// TopK implements middleware.Ranker: it embeds topic and each result's
// title+content, upserts the results as points, queries by the topic
// vector, and returns the k closest results in original SearchResult form.
func (s *Store) TopK(ctx context.Context, topic string, results []state.SearchResult, k int) ([]state.SearchResult, error) {
	if len(results) == 0 {
		return nil, nil
	}
	if k <= 0 || k > len(results) {
		k = len(results)
	}

	texts := make([]string, 0, len(results)+1)
	texts = append(texts, topic)
	for _, r := range results {
		texts = append(texts, r.Title+"\n"+r.Content)
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("vectorcache: expected %d embeddings, got %d", len(texts), len(vectors))
	}
	topicVector := vectors[0]
	resultVectors := vectors[1:]

	points := make([]*qdrant.PointStruct, len(results))
	ids := make([]string, len(results))
	for i, r := range results {
		id := uuid.NewString()
		ids[i] = id
		payload, perr := qdrant.TryValueMap(map[string]any{payloadContentKey: i})
		if perr != nil {
			return nil, fmt.Errorf("vectorcache: build payload: %w", perr)
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(id),
			Vectors: qdrant.NewVectors(toFloat64(resultVectors[i])...),
			Payload: payload,
		}
	}
	if _, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Points:         points,
	}); err != nil {
		return nil, fmt.Errorf("vectorcache: upsert: %w", err)
	}
	defer s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: idsToPointIDs(ids)},
			},
		},
	})

	scored, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQuery(toFloat64(topicVector)...),
		Limit:          uintPtr(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("vectorcache: query: %w", err)
	}

	out := make([]state.SearchResult, 0, len(scored))
	for _, point := range scored {
		idx, ok := indexFromPayload(point.Payload)
		if !ok || idx < 0 || idx >= len(results) {
			continue
		}
		out = append(out, results[idx])
	}
	return out, nil
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

func idsToPointIDs(ids []string) []*qdrant.PointId {
	out := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		out[i] = qdrant.NewID(id)
	}
	return out
}

func uintPtr(v uint64) *uint64 { return &v }

func indexFromPayload(payload map[string]*qdrant.Value) (int, bool) {
	v, ok := payload[payloadContentKey]
	if !ok {
		return 0, false
	}
	if iv, ok := v.Kind.(*qdrant.Value_IntegerValue); ok {
		return int(iv.IntegerValue), true
	}
	return 0, false
}
