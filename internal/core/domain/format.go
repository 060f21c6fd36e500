package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the declared file format of an ingested document.
type Format string

// Supported document formats.
const (
	FormatPDF   Format = "pdf"
	FormatDocx  Format = "docx"
	FormatText  Format = "txt"
	FormatImage Format = "image"
)

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	switch f {
	case FormatPDF, FormatDocx, FormatText, FormatImage:
		return true
	}
	return false
}

// String returns the format name.
func (f Format) String() string {
	return string(f)
}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
	return f, nil
}

// FormatFromPath infers the format from a file path's extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return FormatPDF, nil
	case ".docx", ".doc":
		return FormatDocx, nil
	case ".txt", ".text", ".md":
		return FormatText, nil
	case ".png", ".jpg", ".jpeg", ".tiff", ".bmp":
		return FormatImage, nil
	}
	return "", fmt.Errorf("%w: extension %q", ErrUnsupportedFormat, ext)
}
