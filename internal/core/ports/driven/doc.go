// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): text extraction, OCR, embedding generation,
// vector storage, the document registry and answer generation.
package driven
