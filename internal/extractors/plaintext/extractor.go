// Package plaintext extracts text from plain text files.
package plaintext

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/casedex/internal/core/domain"
	"github.com/custodia-labs/casedex/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text documents. The bytes are the text; the only
// work is validating the encoding and stripping a BOM.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Formats returns the formats this extractor handles.
func (e *Extractor) Formats() []domain.Format {
	return []domain.Format{domain.FormatText}
}

// Extract returns the file content as text.
func (e *Extractor) Extract(_ context.Context, content []byte) (*driven.ExtractResult, error) {
	text := strings.TrimPrefix(string(content), "\ufeff")

	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: file is not valid UTF-8", domain.ErrExtraction)
	}

	return &driven.ExtractResult{Text: text}, nil
}
