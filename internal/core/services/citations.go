package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/casedex/internal/core/domain"
	"github.com/custodia-labs/casedex/internal/logger"
)

// excerptLimit bounds a citation excerpt in characters.
const excerptLimit = 240

// Cite maps ranked chunks back to source documents. Citations pointing at
// the same document+page are deduplicated: the first occurrence keeps its
// rank position and the highest score seen for the pair. Chunks whose
// document has been deleted are omitted rather than failing the call.
func (s *RetrievalService) Cite(ctx context.Context, results []domain.RetrievedChunk) ([]domain.Citation, error) {
	type pageKey struct {
		documentID string
		pageIndex  int
	}

	citations := make([]domain.Citation, 0, len(results))
	index := make(map[pageKey]int)
	docs := make(map[string]*domain.Document)

	for _, r := range results {
		key := pageKey{documentID: r.Chunk.DocumentID, pageIndex: r.Chunk.PageIndex}

		if at, ok := index[key]; ok {
			if r.Score > citations[at].Score {
				citations[at].Score = r.Score
			}
			continue
		}

		doc, ok := docs[r.Chunk.DocumentID]
		if !ok {
			var err error
			doc, err = s.docStore.GetDocument(ctx, r.Chunk.DocumentID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					logger.Warn("Omitting citation: %v: document %s", domain.ErrDanglingReference, r.Chunk.DocumentID)
					continue
				}
				return nil, fmt.Errorf("resolve document %s: %w", r.Chunk.DocumentID, err)
			}
			docs[doc.ID] = doc
		}

		index[key] = len(citations)
		citations = append(citations, domain.Citation{
			DocumentID: doc.ID,
			Filename:   doc.Filename,
			PageIndex:  r.Chunk.PageIndex,
			Excerpt:    excerpt(r.Chunk.Text),
			Score:      r.Score,
		})
	}

	return citations, nil
}

// excerpt trims chunk text to a presentable window, cutting on a rune
// boundary and marking the truncation.
func excerpt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= excerptLimit {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:excerptLimit])

	// Prefer ending on a word boundary.
	if i := strings.LastIndexByte(cut, ' '); i > excerptLimit/2 {
		cut = cut[:i]
	}

	return cut + "..."
}
