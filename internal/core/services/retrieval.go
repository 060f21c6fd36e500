package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/casedex/internal/core/domain"
	"github.com/custodia-labs/casedex/internal/core/ports/driven"
	"github.com/custodia-labs/casedex/internal/core/ports/driving"
	"github.com/custodia-labs/casedex/internal/logger"
)

// DefaultTopK is the result limit used when the caller does not set one.
const DefaultTopK = 10

// DefaultMinScore is the similarity cutoff below which matches are
// dropped. Low-confidence matches make misleading citations.
const DefaultMinScore = 0.25

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService answers similarity queries against the vector store and
// resolves matches back to source passages.
type RetrievalService struct {
	docStore    driven.DocumentStore
	vectorStore driven.VectorStore
	embedder    *BatchEmbedder
	topK        int
	minScore    float64
}

// RetrievalOption configures the retrieval service.
type RetrievalOption func(*RetrievalService)

// WithTopK sets the default result limit.
func WithTopK(k int) RetrievalOption {
	return func(s *RetrievalService) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithMinScore sets the similarity cutoff.
func WithMinScore(score float64) RetrievalOption {
	return func(s *RetrievalService) {
		s.minScore = score
	}
}

// NewRetrievalService creates the retrieval service.
func NewRetrievalService(
	docStore driven.DocumentStore,
	vectorStore driven.VectorStore,
	embedder *BatchEmbedder,
	opts ...RetrievalOption,
) *RetrievalService {
	s := &RetrievalService{
		docStore:    docStore,
		vectorStore: vectorStore,
		embedder:    embedder,
		topK:        DefaultTopK,
		minScore:    DefaultMinScore,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Retrieve parses inline tag filters from the query, embeds the residual
// text and returns ranked chunks above the score cutoff. An empty result
// set is a valid outcome, not an error.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, opts domain.RetrieveOptions) ([]domain.RetrievedChunk, error) {
	logger.Section("Retrieve")
	logger.Debug("Query: %q", query)

	if strings.TrimSpace(query) == "" {
		return []domain.RetrievedChunk{}, nil
	}

	parsed := domain.ParseQuery(query)

	extTags, err := domain.NormalizeTags(opts.Tags)
	if err != nil {
		return nil, err
	}
	tags := domain.UnionTags(parsed.Tags, extTags)

	topK := opts.TopK
	if topK <= 0 {
		topK = s.topK
	}
	logger.Debug("Residual text: %q, tags: %v, topK: %d", parsed.ResidualText, tags, topK)

	embedding, err := s.embedder.EmbedQuery(ctx, parsed.EmbedText())
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.vectorStore.Query(ctx, embedding, topK, tags)
	if err != nil {
		return nil, fmt.Errorf("query store: %w", err)
	}
	logger.Debug("Store returned %d matches", len(matches))

	results := make([]domain.RetrievedChunk, 0, len(matches))
	for _, m := range matches {
		if m.Score < s.minScore {
			continue
		}

		chunk, err := s.docStore.GetChunk(ctx, m.ChunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Deleted between index time and query time.
				logger.Warn("Skipping match for missing chunk %s", m.ChunkID)
				continue
			}
			return nil, fmt.Errorf("load chunk %s: %w", m.ChunkID, err)
		}

		results = append(results, domain.RetrievedChunk{Chunk: *chunk, Score: m.Score})
	}

	logger.Info("Retrieved %d chunks above cutoff %.2f", len(results), s.minScore)
	return results, nil
}
