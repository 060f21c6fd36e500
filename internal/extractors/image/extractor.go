// Package image extracts text from image documents via OCR.
package image

import (
	"context"
	"fmt"

	"github.com/custodia-labs/casedex/internal/core/domain"
	"github.com/custodia-labs/casedex/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles scanned images. It has no extraction of its own and
// delegates entirely to the OCR collaborator.
type Extractor struct {
	ocr driven.OCRService
}

// New creates a new image extractor. ocr may be nil, in which case every
// extraction fails with domain.ErrOCRUnavailable.
func New(ocr driven.OCRService) *Extractor {
	return &Extractor{ocr: ocr}
}

// Formats returns the formats this extractor handles.
func (e *Extractor) Formats() []domain.Format {
	return []domain.Format{domain.FormatImage}
}

// Extract recognises text in the image bytes.
func (e *Extractor) Extract(ctx context.Context, content []byte) (*driven.ExtractResult, error) {
	if e.ocr == nil {
		return nil, fmt.Errorf("%w: image ingestion requires an OCR service", domain.ErrOCRUnavailable)
	}

	text, err := e.ocr.Recognize(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("recognise image: %w", err)
	}

	return &driven.ExtractResult{Text: text}, nil
}
