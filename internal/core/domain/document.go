package domain

import "time"

// IndexStatus records how far a document got through the ingestion pipeline.
type IndexStatus string

const (
	// IndexStatusComplete means every chunk of the document has been
	// embedded and upserted into the vector store.
	IndexStatusComplete IndexStatus = "complete"

	// IndexStatusPartial means ingestion was interrupted (cancellation,
	// embedding or store failure) after some chunks were already committed.
	// Committed chunks remain queryable.
	IndexStatusPartial IndexStatus = "partial"
)

// Document represents an ingested case file.
// It is immutable once ingested except for tag edits; deleting a document
// cascades to its chunks and vector records.
type Document struct {
	// ID is the stable unique identifier for the document.
	ID string

	// Filename is the original upload filename.
	Filename string

	// Format is the declared file format (pdf, docx, txt, image).
	Format Format

	// Tags are the document's current tags. Chunks carry a snapshot of
	// these taken at ingestion time, not a live reference.
	Tags []string

	// RawByteLength is the size of the uploaded file in bytes.
	RawByteLength int

	// IndexStatus tells whether all chunks reached the vector store.
	IndexStatus IndexStatus

	// IngestedAt is when the document was ingested.
	IngestedAt time.Time
}

// Chunk is a bounded passage of a document's extracted text, the unit of
// retrieval. Chunks are created by the chunker and never mutated.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links back to the owning Document.
	DocumentID string

	// Text is the chunk's passage, a verbatim slice of the document's
	// extracted text.
	Text string

	// PageIndex is the zero-based page the chunk starts on.
	PageIndex int

	// CharStart and CharEnd bound the chunk's span within the document's
	// concatenated extracted text. Invariant: CharStart < CharEnd.
	CharStart int
	CharEnd   int

	// Tags are a value copy of the document's tags at ingestion time.
	// Editing the document's tags later does not change them.
	Tags []string
}

// VectorMetadata is the denormalised chunk metadata stored alongside an
// embedding so backends can filter without a registry lookup.
type VectorMetadata struct {
	// DocumentID is the owning document.
	DocumentID string

	// Tags is the chunk's tag snapshot.
	Tags []string

	// PageIndex is the chunk's starting page.
	PageIndex int
}

// VectorRecord pairs a chunk with its embedding. Each chunk owns exactly
// one record; records are replaced by ChunkID on re-upsert.
type VectorRecord struct {
	// ChunkID identifies the owning chunk.
	ChunkID string

	// Embedding is the fixed-width vector. Its length must match the
	// store's configured dimensionality.
	Embedding []float32

	// Metadata is the denormalised filter metadata.
	Metadata VectorMetadata
}

// VectorMatch is a single similarity hit returned by a vector store.
type VectorMatch struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the cosine similarity, higher is better.
	Score float64

	// Metadata is the stored metadata for the matched record.
	Metadata VectorMetadata
}

// RetrievedChunk is a fully hydrated retrieval result.
type RetrievedChunk struct {
	// Chunk is the matched chunk loaded from the document registry.
	Chunk Chunk

	// Score is the similarity score from the vector store.
	Score float64
}

// Citation links a retrieved passage back to its source document and page.
// Citations are transient result objects, never persisted.
type Citation struct {
	// DocumentID is the source document.
	DocumentID string

	// Filename is the source document's original filename.
	Filename string

	// PageIndex is the zero-based page the passage starts on.
	PageIndex int

	// Excerpt is a human-presentable window of the chunk text.
	Excerpt string

	// Score is the best similarity score seen for this document+page.
	Score float64
}

// IngestRequest describes one document to ingest.
type IngestRequest struct {
	// Filename is the original filename, kept for citations.
	Filename string

	// Format is the declared file format.
	Format Format

	// Content is the raw file bytes.
	Content []byte

	// Tags are applied to the document and snapshotted onto its chunks.
	Tags []string
}

// IngestOutcome reports the per-document result of a batch ingestion.
// A failed document never aborts the rest of the batch.
type IngestOutcome struct {
	// Filename identifies the request this outcome belongs to.
	Filename string

	// Document is the ingested document, nil when Err is set and
	// ingestion failed before the document was registered.
	Document *Document

	// Err is the ingestion error for this document, if any.
	Err error
}

// RetrieveOptions configures a retrieval call.
type RetrieveOptions struct {
	// TopK is the maximum number of chunks to return.
	TopK int

	// Tags is an externally supplied tag filter, unioned with any
	// tag tokens parsed from the query string.
	Tags []string
}
