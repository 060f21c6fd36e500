package cli

import (
	"context"
	"hash/fnv"
	"testing"

	"github.com/custodia-labs/casedex/internal/adapters/driven/storage/memory"
	vectormemory "github.com/custodia-labs/casedex/internal/adapters/driven/vectorstore/memory"
	"github.com/custodia-labs/casedex/internal/chunker"
	"github.com/custodia-labs/casedex/internal/core/domain"
	"github.com/custodia-labs/casedex/internal/core/services"
)

const testDims = 8

// stubEmbedding returns a deterministic unit vector per distinct text so
// commands can run against the in-memory stack without a network.
type stubEmbedding struct{}

func (stubEmbedding) Embed(_ context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))
	state := h.Sum64()

	vec := make([]float32, testDims)
	for i := range vec {
		state = state*6364136223846793005 + 1442695040888963407
		if state&1 == 0 {
			vec[i] = 1
		} else {
			vec[i] = -1
		}
	}
	return vec, nil
}

func (s stubEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (stubEmbedding) Dimensions() int            { return testDims }
func (stubEmbedding) ModelName() string          { return "stub" }
func (stubEmbedding) Ping(context.Context) error { return nil }
func (stubEmbedding) Close() error               { return nil }

// setupTestServices wires the package-level services against in-memory
// adapters and returns a cleanup that unwires them.
func setupTestServices(t *testing.T) func() {
	t.Helper()

	vectorStore, err := vectormemory.New(testDims)
	if err != nil {
		t.Fatalf("creating vector store: %v", err)
	}
	docStore := memory.NewDocumentStore()

	embedder := services.NewBatchEmbedder(stubEmbedding{}, 10, domain.RetryPolicy{MaxAttempts: 1})

	ingestService = services.NewIngestService(
		buildExtractors(),
		chunker.New(chunker.WithChunkSize(200), chunker.WithOverlap(0)),
		embedder,
		docStore,
		vectorStore,
	)
	retrievalService = services.NewRetrievalService(
		docStore,
		vectorStore,
		embedder,
		services.WithMinScore(-1),
	)

	return func() {
		ingestService = nil
		retrievalService = nil
		llmService = nil
	}
}
