package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/casedex/internal/chunker"
	"github.com/custodia-labs/casedex/internal/core/domain"
	"github.com/custodia-labs/casedex/internal/core/ports/driven"
	"github.com/custodia-labs/casedex/internal/core/ports/driving"
	"github.com/custodia-labs/casedex/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService runs the ingestion pipeline:
// extract -> chunk -> embed -> upsert.
//
// Embedding and upserting happen per batch, so an interruption leaves the
// already committed batches queryable and the document marked partial.
type IngestService struct {
	extractors  *ExtractorRegistry
	chunker     *chunker.Chunker
	embedder    *BatchEmbedder
	docStore    driven.DocumentStore
	vectorStore driven.VectorStore
}

// NewIngestService creates the ingestion service.
func NewIngestService(
	extractors *ExtractorRegistry,
	ck *chunker.Chunker,
	embedder *BatchEmbedder,
	docStore driven.DocumentStore,
	vectorStore driven.VectorStore,
) *IngestService {
	return &IngestService{
		extractors:  extractors,
		chunker:     ck,
		embedder:    embedder,
		docStore:    docStore,
		vectorStore: vectorStore,
	}
}

// Ingest processes a single document end to end.
func (s *IngestService) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.Document, error) {
	logger.Section("Ingest")
	logger.Debug("File: %q format=%s size=%d tags=%v", req.Filename, req.Format, len(req.Content), req.Tags)

	if req.Filename == "" {
		return nil, fmt.Errorf("%w: empty filename", domain.ErrInvalidInput)
	}
	if len(req.Content) == 0 {
		return nil, fmt.Errorf("%w: empty file %q", domain.ErrInvalidInput, req.Filename)
	}

	tags, err := domain.NormalizeTags(req.Tags)
	if err != nil {
		return nil, err
	}

	extractor, err := s.extractors.ForFormat(req.Format)
	if err != nil {
		return nil, err
	}

	result, err := extractor.Extract(ctx, req.Content)
	if err != nil {
		return nil, fmt.Errorf("extract %q: %w", req.Filename, err)
	}
	logger.Debug("Extracted %d characters, %d pages", len(result.Text), max(1, len(result.PageBoundaries)))

	doc := &domain.Document{
		ID:            uuid.New().String(),
		Filename:      req.Filename,
		Format:        req.Format,
		Tags:          tags,
		RawByteLength: len(req.Content),
		IndexStatus:   domain.IndexStatusPartial,
		IngestedAt:    time.Now().UTC(),
	}

	chunks := s.chunker.Chunk(doc.ID, result.Text, result.PageBoundaries)
	for i := range chunks {
		chunks[i].Tags = append([]string(nil), tags...)
	}
	logger.Debug("Chunked into %d chunks", len(chunks))

	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	if len(chunks) > 0 {
		if err := s.docStore.SaveChunks(ctx, chunks); err != nil {
			return nil, fmt.Errorf("save chunks: %w", err)
		}
	}

	if err := s.indexChunks(ctx, chunks); err != nil {
		// Committed batches stay queryable; the document stays partial.
		logger.Warn("Indexing %q interrupted: %v", req.Filename, err)
		return doc, fmt.Errorf("index %q: %w", req.Filename, err)
	}

	if err := s.docStore.UpdateStatus(ctx, doc.ID, domain.IndexStatusComplete); err != nil {
		return doc, fmt.Errorf("mark complete: %w", err)
	}
	doc.IndexStatus = domain.IndexStatusComplete

	logger.Info("Ingested %q: %d chunks indexed", req.Filename, len(chunks))
	return doc, nil
}

// indexChunks embeds and upserts chunks batch by batch.
func (s *IngestService) indexChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}

	return s.embedder.EmbedAll(ctx, texts, func(offset int, embeddings [][]float32) error {
		records := make([]domain.VectorRecord, len(embeddings))
		for i, emb := range embeddings {
			ch := chunks[offset+i]
			records[i] = domain.VectorRecord{
				ChunkID:   ch.ID,
				Embedding: emb,
				Metadata: domain.VectorMetadata{
					DocumentID: ch.DocumentID,
					Tags:       ch.Tags,
					PageIndex:  ch.PageIndex,
				},
			}
		}
		return s.vectorStore.Upsert(ctx, records)
	})
}

// maxParallelIngest bounds how many documents ingest at once. Chunk order
// within a document is unaffected; the limit only caps cross-document
// fan-out.
const maxParallelIngest = 4

// IngestAll processes independent documents in parallel, isolating
// failures per document. Outcomes are returned in request order.
// Cancellation reports the context error for every request not yet
// started.
func (s *IngestService) IngestAll(ctx context.Context, reqs []domain.IngestRequest) []domain.IngestOutcome {
	outcomes := make([]domain.IngestOutcome, len(reqs))

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxParallelIngest)

	for i, req := range reqs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				outcomes[i] = domain.IngestOutcome{Filename: req.Filename, Err: err}
				return
			}

			doc, err := s.Ingest(ctx, req)
			outcomes[i] = domain.IngestOutcome{
				Filename: req.Filename,
				Document: doc,
				Err:      err,
			}
		}()
	}

	wg.Wait()
	return outcomes
}

// Delete removes a document, its chunks and its vector records.
func (s *IngestService) Delete(ctx context.Context, documentID string) error {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return err
	}

	if err := s.vectorStore.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("delete vectors: %w", err)
	}

	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	logger.Info("Deleted document %s", documentID)
	return nil
}

// Retag replaces a document's tags. Chunk tag snapshots and vector record
// metadata keep the tags from ingestion time.
func (s *IngestService) Retag(ctx context.Context, documentID string, tags []string) error {
	normalized, err := domain.NormalizeTags(tags)
	if err != nil {
		return err
	}

	if err := s.docStore.UpdateTags(ctx, documentID, normalized); err != nil {
		return err
	}

	logger.Info("Retagged document %s: %v", documentID, normalized)
	return nil
}

// ListDocuments returns all registered documents.
func (s *IngestService) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx)
}
