package services

import (
	"fmt"

	"github.com/custodia-labs/casedex/internal/core/domain"
	"github.com/custodia-labs/casedex/internal/core/ports/driven"
)

// ExtractorRegistry maps document formats to their extractors.
// Registration order decides which extractor wins when two claim the same
// format: the later one replaces the earlier.
type ExtractorRegistry struct {
	byFormat map[domain.Format]driven.Extractor
}

// NewExtractorRegistry creates a registry from the given extractors.
func NewExtractorRegistry(extractors ...driven.Extractor) *ExtractorRegistry {
	r := &ExtractorRegistry{
		byFormat: make(map[domain.Format]driven.Extractor),
	}
	for _, ext := range extractors {
		r.Register(ext)
	}
	return r
}

// Register adds an extractor for every format it declares.
func (r *ExtractorRegistry) Register(ext driven.Extractor) {
	for _, f := range ext.Formats() {
		r.byFormat[f] = ext
	}
}

// ForFormat returns the extractor for format, or
// domain.ErrUnsupportedFormat when none is registered.
func (r *ExtractorRegistry) ForFormat(format domain.Format) (driven.Extractor, error) {
	ext, ok := r.byFormat[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format)
	}
	return ext, nil
}

// Formats returns all formats with a registered extractor.
func (r *ExtractorRegistry) Formats() []domain.Format {
	formats := make([]domain.Format, 0, len(r.byFormat))
	for f := range r.byFormat {
		formats = append(formats, f)
	}
	return formats
}
