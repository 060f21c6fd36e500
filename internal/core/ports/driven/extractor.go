package driven

import (
	"context"

	"github.com/custodia-labs/casedex/internal/core/domain"
)

// Extractor converts a raw document file into plain text.
// Each extractor handles specific declared formats.
type Extractor interface {
	// Formats returns the formats this extractor handles.
	Formats() []domain.Format

	// Extract converts raw file bytes into text with page boundaries.
	// It fails with domain.ErrExtraction for corrupt or unreadable files
	// and domain.ErrOCRUnavailable when OCR is required but no OCR
	// collaborator is configured.
	Extract(ctx context.Context, content []byte) (*ExtractResult, error)
}

// ExtractResult is the output of text extraction.
type ExtractResult struct {
	// Text is the full extracted text, pages concatenated in order.
	Text string

	// PageBoundaries holds the character offset of each page's start
	// within Text. Single-page formats leave it empty, which is treated
	// as one page starting at offset 0.
	PageBoundaries []int
}
