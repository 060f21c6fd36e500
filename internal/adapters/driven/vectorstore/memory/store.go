// Package memory provides the ephemeral in-process vector store.
// It exists for setups without external infrastructure and as the
// behavioural reference for the remote backend: for the same records and
// query, both must rank identically up to floating-point tolerance.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/casedex/internal/core/domain"
	"github.com/custodia-labs/casedex/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// record is a stored vector with its insertion sequence number. Replacing
// a record keeps the original sequence so re-upserts do not change
// tie-break order.
type record struct {
	domain.VectorRecord
	seq uint64
}

// Store is an in-memory implementation of driven.VectorStore using exact
// cosine similarity over all records.
type Store struct {
	mu      sync.RWMutex
	dims    int
	records map[string]record
	nextSeq uint64
}

// New creates an in-memory vector store for embeddings of the given width.
func New(dims int) (*Store, error) {
	if dims < 1 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %d", domain.ErrInvalidInput, dims)
	}
	return &Store{
		dims:    dims,
		records: make(map[string]record),
	}, nil
}

// Upsert inserts or replaces records by chunk ID. All records are
// validated before any is inserted, so a dimension mismatch never leaves
// the batch half-applied.
func (s *Store) Upsert(_ context.Context, records []domain.VectorRecord) error {
	for _, r := range records {
		if len(r.Embedding) != s.dims {
			return fmt.Errorf("%w: record %s has %d dimensions, store expects %d",
				domain.ErrDimensionMismatch, r.ChunkID, len(r.Embedding), s.dims)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		stored := record{VectorRecord: cloneRecord(r)}
		if prev, ok := s.records[r.ChunkID]; ok {
			stored.seq = prev.seq
		} else {
			stored.seq = s.nextSeq
			s.nextSeq++
		}
		s.records[r.ChunkID] = stored
	}

	return nil
}

// Query returns up to topK records ranked by cosine similarity descending.
// Ties are broken by insertion order, earlier first.
func (s *Store) Query(_ context.Context, embedding []float32, topK int, tagFilter []string) ([]domain.VectorMatch, error) {
	if len(embedding) != s.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, store expects %d",
			domain.ErrDimensionMismatch, len(embedding), s.dims)
	}
	if topK < 1 {
		return []domain.VectorMatch{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		match domain.VectorMatch
		seq   uint64
	}

	candidates := make([]scored, 0, len(s.records))
	for _, r := range s.records {
		if !domain.HasAllTags(r.Metadata.Tags, tagFilter) {
			continue
		}
		candidates = append(candidates, scored{
			match: domain.VectorMatch{
				ChunkID:  r.ChunkID,
				Score:    cosineSimilarity(embedding, r.Embedding),
				Metadata: r.Metadata,
			},
			seq: r.seq,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].match.Score != candidates[j].match.Score {
			return candidates[i].match.Score > candidates[j].match.Score
		}
		return candidates[i].seq < candidates[j].seq
	})

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	matches := make([]domain.VectorMatch, len(candidates))
	for i, c := range candidates {
		matches[i] = c.match
	}
	return matches, nil
}

// Delete removes all records belonging to documentID. Deleting a document
// with no records is a no-op.
func (s *Store) Delete(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, r := range s.records {
		if r.Metadata.DocumentID == documentID {
			delete(s.records, id)
		}
	}
	return nil
}

// Dimensions returns the configured embedding width.
func (s *Store) Dimensions() int {
	return s.dims
}

// Close releases resources. A no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// cloneRecord deep-copies a record so callers cannot mutate stored state.
func cloneRecord(r domain.VectorRecord) domain.VectorRecord {
	out := r
	out.Embedding = append([]float32(nil), r.Embedding...)
	out.Metadata.Tags = append([]string(nil), r.Metadata.Tags...)
	return out
}

// cosineSimilarity computes the cosine of the angle between a and b.
// A zero vector has no direction and scores 0 against everything.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
