package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Ingestion errors. Scoped to a single document: a batch ingestion
	// collects these per document instead of aborting.

	// ErrUnsupportedFormat indicates a file format no extractor handles.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrExtraction indicates a corrupt or unreadable file.
	ErrExtraction = errors.New("text extraction failed")

	// ErrOCRUnavailable indicates OCR was required for a scanned page or
	// image but no OCR collaborator is configured. A configuration
	// condition, not a crash.
	ErrOCRUnavailable = errors.New("OCR service unavailable")

	// Operation errors. Surfaced to the caller as ingestion/retrieval
	// failure, never silently degraded to empty results.

	// ErrEmbeddingService indicates the embedding service failed after
	// all bounded retries were exhausted.
	ErrEmbeddingService = errors.New("embedding service failed")

	// ErrDimensionMismatch indicates an embedding's width differs from
	// the vector store's fixed dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrStoreUnavailable indicates the persistent vector store could not
	// be reached or rejected the operation.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrDanglingReference indicates a chunk references a document that no
	// longer exists. Recovered locally by omitting the citation.
	ErrDanglingReference = errors.New("chunk references missing document")

	// ErrLLMUnavailable indicates the answer-generation service is not
	// configured. Retrieval still works without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
