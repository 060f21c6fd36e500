package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/casedex/internal/core/domain"
	"github.com/custodia-labs/casedex/internal/core/ports/driven"
	"github.com/custodia-labs/casedex/internal/logger"
)

// DefaultBatchSize is the maximum number of texts sent to the embedding
// service in a single request.
const DefaultBatchSize = 100

// BatchEmbedder wraps an EmbeddingService with batching and bounded retry.
// Large inputs are split into sub-batches; each sub-batch is retried
// independently with exponential backoff, so a transient failure late in a
// document does not force re-embedding the whole document.
type BatchEmbedder struct {
	service   driven.EmbeddingService
	batchSize int
	policy    domain.RetryPolicy
}

// NewBatchEmbedder creates a batching embedder. A batchSize below 1 falls
// back to DefaultBatchSize.
func NewBatchEmbedder(service driven.EmbeddingService, batchSize int, policy domain.RetryPolicy) *BatchEmbedder {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &BatchEmbedder{
		service:   service,
		batchSize: batchSize,
		policy:    policy,
	}
}

// Dimensions returns the embedding width of the underlying service.
func (e *BatchEmbedder) Dimensions() int {
	return e.service.Dimensions()
}

// EmbedAll embeds texts batch by batch, invoking commit after each
// successful sub-batch with the offset of its first text. When a sub-batch
// fails after all retries, or commit returns an error, EmbedAll stops and
// returns that error; earlier committed batches are unaffected.
func (e *BatchEmbedder) EmbedAll(ctx context.Context, texts []string, commit func(offset int, embeddings [][]float32) error) error {
	for offset := 0; offset < len(texts); offset += e.batchSize {
		end := offset + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		embeddings, err := e.embedWithRetry(ctx, texts[offset:end])
		if err != nil {
			return err
		}

		if err := commit(offset, embeddings); err != nil {
			return err
		}

		logger.Debug("Embedded batch %d-%d of %d texts", offset, end, len(texts))
	}

	return nil
}

// EmbedTexts embeds texts and returns all embeddings in input order.
func (e *BatchEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	all := make([][]float32, 0, len(texts))

	err := e.EmbedAll(ctx, texts, func(_ int, embeddings [][]float32) error {
		all = append(all, embeddings...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return all, nil
}

// EmbedQuery embeds a single query text with the same retry behaviour as
// document batches.
func (e *BatchEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.embedWithRetry(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// embedWithRetry calls EmbedBatch under the retry policy. Cancellation is
// surfaced as the context error, never wrapped as a service failure.
func (e *BatchEmbedder) embedWithRetry(ctx context.Context, batch []string) ([][]float32, error) {
	attempts := e.policy.Attempts()
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			wait := e.policy.Backoff(attempt - 1)
			logger.Debug("Retrying embedding batch in %s (attempt %d/%d)", wait, attempt, attempts)
			if err := sleepCtx(ctx, wait); err != nil {
				return nil, err
			}
		}

		embeddings, err := e.service.EmbedBatch(ctx, batch)
		if err == nil {
			if len(embeddings) != len(batch) {
				return nil, fmt.Errorf("%w: got %d embeddings for %d texts",
					domain.ErrEmbeddingService, len(embeddings), len(batch))
			}
			return embeddings, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		logger.Warn("Embedding batch of %d failed (attempt %d/%d): %v", len(batch), attempt, attempts, err)
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", domain.ErrEmbeddingService, attempts, lastErr)
}

// sleepCtx waits for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
