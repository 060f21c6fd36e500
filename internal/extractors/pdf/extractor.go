// Package pdf extracts text from PDF documents with page boundaries.
// Text extraction uses the embedded text layer; documents with no text
// layer at all (scans) fall back to the OCR collaborator when one is
// configured.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/casedex/internal/core/domain"
	"github.com/custodia-labs/casedex/internal/core/ports/driven"
	"github.com/custodia-labs/casedex/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// pageSeparator joins consecutive pages in the extracted text.
const pageSeparator = "\n"

// Extractor handles PDF documents.
type Extractor struct {
	ocr driven.OCRService
}

// New creates a new PDF extractor. ocr may be nil; then scanned PDFs
// without a text layer fail with domain.ErrOCRUnavailable.
func New(ocr driven.OCRService) *Extractor {
	return &Extractor{ocr: ocr}
}

// Formats returns the formats this extractor handles.
func (e *Extractor) Formats() []domain.Format {
	return []domain.Format{domain.FormatPDF}
}

// Extract reads the PDF's text layer page by page, recording the character
// offset where each page starts. When the whole document has no text layer
// it is treated as a scan and sent to OCR instead.
func (e *Extractor) Extract(ctx context.Context, content []byte) (result *driven.ExtractResult, err error) {
	// The PDF parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: malformed PDF: %v", domain.ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}

	var builder strings.Builder
	var boundaries []int

	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		boundaries = append(boundaries, builder.Len())

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			// A single unreadable page should not sink the document.
			logger.Warn("PDF page %d/%d unreadable: %v", i, pages, err)
			continue
		}

		builder.WriteString(text)
		if i < pages {
			builder.WriteString(pageSeparator)
		}
	}

	text := builder.String()
	if strings.TrimSpace(text) == "" {
		return e.extractScanned(ctx, content)
	}

	return &driven.ExtractResult{Text: text, PageBoundaries: boundaries}, nil
}

// extractScanned sends the raw PDF to OCR. The OCR service rasterises the
// pages itself, so the recognised text comes back without page offsets and
// the document is treated as a single page.
func (e *Extractor) extractScanned(ctx context.Context, content []byte) (*driven.ExtractResult, error) {
	if e.ocr == nil {
		return nil, fmt.Errorf("%w: PDF has no text layer", domain.ErrOCRUnavailable)
	}

	logger.Info("PDF has no text layer, falling back to OCR")
	text, err := e.ocr.Recognize(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("recognise scanned PDF: %w", err)
	}

	return &driven.ExtractResult{Text: text}, nil
}
