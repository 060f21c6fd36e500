package driven

import (
	"context"

	"github.com/custodia-labs/casedex/internal/core/domain"
)

// LLMService generates a grounded answer from a query and its citations.
// This is an optional external collaborator - when nil, the ask command is
// disabled but retrieval still works. The core's obligation is only to
// supply well-ranked, well-attributed passages.
type LLMService interface {
	// Answer produces free text grounded in the given citations.
	Answer(ctx context.Context, query string, citations []domain.Citation) (string, error)

	// Close releases resources.
	Close() error
}
