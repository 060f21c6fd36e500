package driven

import (
	"context"

	"github.com/custodia-labs/casedex/internal/core/domain"
)

// DocumentStore is the document registry: it persists documents and their
// chunks so retrieved vector matches can be resolved back to source
// passages. Backed by memory for the ephemeral setup and SQLite for the
// persistent one.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks stores chunks for a document.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound when it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunk retrieves a chunk by ID.
	// Returns domain.ErrNotFound when it does not exist.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunks retrieves all chunks for a document in ingestion order.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// UpdateStatus updates a document's index status.
	UpdateStatus(ctx context.Context, id string, status domain.IndexStatus) error

	// UpdateTags replaces a document's tags. Stored chunk tags are a
	// snapshot and are deliberately left untouched until re-ingestion.
	UpdateTags(ctx context.Context, id string, tags []string) error

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all documents, most recently ingested first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)
}
