// Package chunker splits extracted document text into overlapping passages
// with positional metadata. Splitting is sentence-boundary aware: a
// sentence is never cut in half, and a sentence longer than the target
// size becomes its own oversized chunk rather than being truncated.
package chunker

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/casedex/internal/core/domain"
)

// DefaultChunkSize is the default target chunk size in characters.
const DefaultChunkSize = 1000

// DefaultOverlap is the default overlap between consecutive chunks.
const DefaultOverlap = 100

// Chunker splits text into sentence-aligned chunks.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave room for the chunk to advance.
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// span is a half-open [start, end) byte range within the source text.
type span struct {
	start int
	end   int
}

// Chunk splits text into ordered chunks for the given document.
// pageBoundaries holds the character offset of each page's start; an empty
// slice means a single page. Whitespace-only input produces no chunks.
//
// Chunk spans tile the text: the first chunk starts at offset 0, each
// chunk's start is at or before the previous chunk's end, and the last
// chunk ends at len(text). Reconciling overlaps therefore reconstructs
// the full text with no character skipped.
func (c *Chunker) Chunk(documentID, text string, pageBoundaries []int) []domain.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	spans := sentenceSpans(text)
	var chunks []domain.Chunk

	i := 0
	for i < len(spans) {
		start := spans[i].start
		j := i
		end := spans[j].end

		// Pack following sentences while they fit the target size.
		// The first sentence is always included, so a sentence longer
		// than the target becomes its own oversized chunk.
		for j+1 < len(spans) && spans[j+1].end-start <= c.chunkSize {
			j++
			end = spans[j].end
		}

		chunks = c.emit(chunks, documentID, text, start, end, pageBoundaries)

		if j+1 >= len(spans) {
			break
		}

		// Start the next chunk early enough to re-include up to overlap
		// characters of trailing sentences, without re-walking the whole
		// chunk.
		k := j + 1
		for k-1 > i && end-spans[k-1].start <= c.overlap {
			k--
		}
		i = k
	}

	return chunks
}

// emit appends a chunk for text[start:end]. A whitespace-only tail is
// folded into the previous chunk so spans stay gap-free.
func (c *Chunker) emit(chunks []domain.Chunk, documentID, text string, start, end int, pageBoundaries []int) []domain.Chunk {
	passage := text[start:end]
	if strings.TrimSpace(passage) == "" {
		if n := len(chunks); n > 0 && chunks[n-1].CharEnd < end {
			chunks[n-1].CharEnd = end
			chunks[n-1].Text = text[chunks[n-1].CharStart:end]
		}
		return chunks
	}

	return append(chunks, domain.Chunk{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		Text:       passage,
		PageIndex:  pageIndexFor(pageBoundaries, start),
		CharStart:  start,
		CharEnd:    end,
	})
}

// pageIndexFor returns the zero-based page containing offset.
func pageIndexFor(pageBoundaries []int, offset int) int {
	if len(pageBoundaries) == 0 {
		return 0
	}
	// Last boundary at or before offset.
	idx := sort.SearchInts(pageBoundaries, offset+1) - 1
	if idx < 0 {
		return 0
	}
	return idx
}

// sentenceSpans partitions text into sentence-sized spans. Every byte of
// the text belongs to exactly one span. A sentence ends after a run of
// terminators ('.', '!', '?') followed by whitespace, or after a run of
// newlines.
func sentenceSpans(text string) []span {
	var spans []span
	start := 0
	i := 0

	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		next := i + size

		switch {
		case isTerminator(r):
			next = consumeWhile(text, next, isTerminator)
			if next >= len(text) || startsWithSpace(text[next:]) {
				spans = append(spans, span{start: start, end: next})
				start = next
			}
		case r == '\n' || r == '\r':
			next = consumeWhile(text, next, func(r rune) bool { return r == '\n' || r == '\r' })
			spans = append(spans, span{start: start, end: next})
			start = next
		}

		i = next
	}

	if start < len(text) {
		spans = append(spans, span{start: start, end: len(text)})
	}

	return spans
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}

// consumeWhile advances from offset over runes satisfying pred.
func consumeWhile(text string, offset int, pred func(rune) bool) int {
	for offset < len(text) {
		r, size := utf8.DecodeRuneInString(text[offset:])
		if !pred(r) {
			break
		}
		offset += size
	}
	return offset
}
