package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/casedex/internal/core/domain"
	"github.com/custodia-labs/casedex/internal/core/ports/driven"
)

// fakeEmbedding is a deterministic EmbeddingService. It can be told to
// fail the next N EmbedBatch calls before succeeding.
type fakeEmbedding struct {
	mu           sync.Mutex
	dims         int
	failuresLeft int
	calls        int
	batchSizes   []int
}

var _ driven.EmbeddingService = (*fakeEmbedding)(nil)

func newFakeEmbedding(dims int) *fakeEmbedding {
	return &fakeEmbedding{dims: dims}
}

func (f *fakeEmbedding) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.batchSizes = append(f.batchSizes, len(texts))

	if f.failuresLeft > 0 {
		f.failuresLeft--
		return nil, errors.New("embedding backend down")
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = embedText(text, f.dims)
	}
	return out, nil
}

func (f *fakeEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	embs, err := f.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embs[0], nil
}

func (f *fakeEmbedding) Dimensions() int            { return f.dims }
func (f *fakeEmbedding) ModelName() string          { return "fake-embedder" }
func (f *fakeEmbedding) Ping(context.Context) error { return nil }
func (f *fakeEmbedding) Close() error               { return nil }

// embedText maps text to a stable sign vector. Identical texts compare at
// cosine 1.0 and distinct texts land far from it.
func embedText(text string, dims int) []float32 {
	v := make([]float32, dims)
	h := uint32(2166136261)
	for i := 0; i < len(text); i++ {
		h = (h ^ uint32(text[i])) * 16777619
	}
	for i := range v {
		h = h*1664525 + 1013904223
		if h&0x80000000 != 0 {
			v[i] = 1
		} else {
			v[i] = -1
		}
	}
	return v
}

// fakeVectorStore is a minimal in-memory store for service tests.
// failAfterUpserts, when non-negative, fails every Upsert call after that
// many successful ones.
type fakeVectorStore struct {
	mu               sync.Mutex
	dims             int
	records          map[string]domain.VectorRecord
	order            []string
	upserts          int
	failAfterUpserts int
}

var _ driven.VectorStore = (*fakeVectorStore)(nil)

func newFakeVectorStore(dims int) *fakeVectorStore {
	return &fakeVectorStore{
		dims:             dims,
		records:          make(map[string]domain.VectorRecord),
		failAfterUpserts: -1,
	}
}

func (f *fakeVectorStore) Upsert(_ context.Context, records []domain.VectorRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAfterUpserts >= 0 && f.upserts >= f.failAfterUpserts {
		return domain.ErrStoreUnavailable
	}
	f.upserts++

	for _, r := range records {
		if len(r.Embedding) != f.dims {
			return domain.ErrDimensionMismatch
		}
		if _, ok := f.records[r.ChunkID]; !ok {
			f.order = append(f.order, r.ChunkID)
		}
		f.records[r.ChunkID] = r
	}
	return nil
}

func (f *fakeVectorStore) Query(_ context.Context, embedding []float32, topK int, tagFilter []string) ([]domain.VectorMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matches []domain.VectorMatch
	for _, id := range f.order {
		r := f.records[id]
		if !domain.HasAllTags(r.Metadata.Tags, tagFilter) {
			continue
		}
		matches = append(matches, domain.VectorMatch{
			ChunkID:  r.ChunkID,
			Score:    cosine(embedding, r.Embedding),
			Metadata: r.Metadata,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (f *fakeVectorStore) Delete(_ context.Context, documentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.order[:0]
	for _, id := range f.order {
		if f.records[id].Metadata.DocumentID == documentID {
			delete(f.records, id)
			continue
		}
		kept = append(kept, id)
	}
	f.order = kept
	return nil
}

func (f *fakeVectorStore) Dimensions() int { return f.dims }
func (f *fakeVectorStore) Close() error    { return nil }

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// fakeDocStore is an in-memory document registry for service tests.
type fakeDocStore struct {
	mu     sync.Mutex
	docs   map[string]domain.Document
	chunks map[string]domain.Chunk
	byDoc  map[string][]string
}

var _ driven.DocumentStore = (*fakeDocStore)(nil)

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{
		docs:   make(map[string]domain.Document),
		chunks: make(map[string]domain.Chunk),
		byDoc:  make(map[string][]string),
	}
}

func (f *fakeDocStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[doc.ID] = *doc
	return nil
}

func (f *fakeDocStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range chunks {
		f.chunks[ch.ID] = ch
		f.byDoc[ch.DocumentID] = append(f.byDoc[ch.DocumentID], ch.ID)
	}
	return nil
}

func (f *fakeDocStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (f *fakeDocStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &ch, nil
}

func (f *fakeDocStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Chunk
	for _, id := range f.byDoc[documentID] {
		out = append(out, f.chunks[id])
	}
	return out, nil
}

func (f *fakeDocStore) UpdateStatus(_ context.Context, id string, status domain.IndexStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.IndexStatus = status
	f.docs[id] = doc
	return nil
}

func (f *fakeDocStore) UpdateTags(_ context.Context, id string, tags []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Tags = tags
	f.docs[id] = doc
	return nil
}

func (f *fakeDocStore) DeleteDocument(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.docs, id)
	for _, chunkID := range f.byDoc[id] {
		delete(f.chunks, chunkID)
	}
	delete(f.byDoc, id)
	return nil
}

func (f *fakeDocStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Document, 0, len(f.docs))
	for _, doc := range f.docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IngestedAt.After(out[j].IngestedAt) })
	return out, nil
}

// fakeExtractor returns canned text for the txt format.
type fakeExtractor struct {
	text           string
	pageBoundaries []int
	err            error
}

var _ driven.Extractor = (*fakeExtractor)(nil)

func (f *fakeExtractor) Formats() []domain.Format {
	return []domain.Format{domain.FormatText}
}

func (f *fakeExtractor) Extract(context.Context, []byte) (*driven.ExtractResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &driven.ExtractResult{Text: f.text, PageBoundaries: f.pageBoundaries}, nil
}
