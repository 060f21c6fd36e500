package driven

import (
	"context"

	"github.com/custodia-labs/casedex/internal/core/domain"
)

// VectorStore is the storage backend abstraction for vector records.
// Two interchangeable implementations exist: an ephemeral in-process store
// and a persistent remote store. Both must produce the same ranked
// ordering for identical inputs up to floating-point tolerance, so the
// backend can be swapped by configuration without visible behaviour change.
type VectorStore interface {
	// Upsert inserts or replaces records by chunk ID. It fails with
	// domain.ErrDimensionMismatch if any embedding's width differs from
	// Dimensions(). Safe to call concurrently with Query: readers never
	// observe a half-written record.
	Upsert(ctx context.Context, records []domain.VectorRecord) error

	// Query returns up to topK records ranked by cosine similarity,
	// descending, restricted to records whose tags are a superset of
	// every tag in tagFilter. An empty filter means no restriction.
	// Ties are broken by insertion order (earlier-inserted ranks higher).
	Query(ctx context.Context, embedding []float32, topK int, tagFilter []string) ([]domain.VectorMatch, error)

	// Delete removes all records whose metadata references documentID.
	Delete(ctx context.Context, documentID string) error

	// Dimensions returns the fixed embedding width this store instance
	// was initialised with.
	Dimensions() int

	// Close releases resources.
	Close() error
}
