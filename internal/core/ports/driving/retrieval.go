package driving

import (
	"context"

	"github.com/custodia-labs/casedex/internal/core/domain"
)

// RetrievalService answers similarity queries with provenance.
type RetrievalService interface {
	// Retrieve parses inline tag filters from the query, embeds the
	// residual text and returns ranked chunks above the score cutoff.
	// An empty result set is a valid, non-error outcome.
	Retrieve(ctx context.Context, query string, opts domain.RetrieveOptions) ([]domain.RetrievedChunk, error)

	// Cite maps ranked chunks back to source documents, deduplicating
	// per document+page. Chunks whose document has been deleted are
	// omitted rather than failing the call.
	Cite(ctx context.Context, results []domain.RetrievedChunk) ([]domain.Citation, error)
}
