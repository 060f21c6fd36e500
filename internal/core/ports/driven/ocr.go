package driven

import "context"

// OCRService recognises text in an image. This is an optional collaborator:
// when nil, scanned pages and image documents cannot be ingested and fail
// with domain.ErrOCRUnavailable. Its absence is a configuration condition,
// not a crash.
type OCRService interface {
	// Recognize extracts text from image bytes.
	Recognize(ctx context.Context, image []byte) (string, error)

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error
}
