package driving

import (
	"context"

	"github.com/custodia-labs/casedex/internal/core/domain"
)

// IngestService orchestrates document ingestion:
// extract -> chunk -> embed -> upsert.
type IngestService interface {
	// Ingest processes a single document end to end and returns the
	// registered document. On cancellation or failure after some chunks
	// were committed, the document is marked partially indexed and the
	// committed chunks remain queryable.
	Ingest(ctx context.Context, req domain.IngestRequest) (*domain.Document, error)

	// IngestAll processes independent documents, collecting per-document
	// outcomes. One document's failure never aborts the rest.
	IngestAll(ctx context.Context, reqs []domain.IngestRequest) []domain.IngestOutcome

	// Delete removes a document, its chunks and its vector records.
	Delete(ctx context.Context, documentID string) error

	// Retag replaces a document's tags. Chunk tag snapshots are not
	// rewritten; re-ingest the document to refresh them.
	Retag(ctx context.Context, documentID string, tags []string) error

	// ListDocuments returns all registered documents.
	ListDocuments(ctx context.Context) ([]domain.Document, error)
}
