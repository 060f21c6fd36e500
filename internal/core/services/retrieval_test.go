package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/casedex/internal/chunker"
	"github.com/custodia-labs/casedex/internal/core/domain"
)

type retrievalFixture struct {
	ingest      *IngestService
	retrieval   *RetrievalService
	embedding   *fakeEmbedding
	vectorStore *fakeVectorStore
	docStore    *fakeDocStore
	extractor   *fakeExtractor
}

func newRetrievalFixture(t *testing.T, opts ...RetrievalOption) *retrievalFixture {
	t.Helper()

	f := &retrievalFixture{
		embedding:   newFakeEmbedding(32),
		vectorStore: newFakeVectorStore(32),
		docStore:    newFakeDocStore(),
		extractor:   &fakeExtractor{},
	}
	embedder := NewBatchEmbedder(f.embedding, 100, zeroWaitPolicy(2))
	f.ingest = NewIngestService(
		NewExtractorRegistry(f.extractor),
		chunker.New(chunker.WithChunkSize(200), chunker.WithOverlap(0)),
		embedder,
		f.docStore,
		f.vectorStore,
	)
	f.retrieval = NewRetrievalService(f.docStore, f.vectorStore, embedder, opts...)
	return f
}

func (f *retrievalFixture) mustIngest(t *testing.T, filename, text string, tags ...string) *domain.Document {
	t.Helper()

	f.extractor.text = text
	doc, err := f.ingest.Ingest(context.Background(), domain.IngestRequest{
		Filename: filename,
		Format:   domain.FormatText,
		Content:  []byte(text),
		Tags:     tags,
	})
	require.NoError(t, err)
	return doc
}

func TestRetrieveRoundTrip(t *testing.T) {
	f := newRetrievalFixture(t)
	passage := "The defendant was seen leaving the premises at noon."
	doc := f.mustIngest(t, "witness.txt", passage)
	f.mustIngest(t, "other.txt", "Completely unrelated billing records for March.")

	results, err := f.retrieval.Retrieve(context.Background(), passage, domain.RetrieveOptions{})

	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, doc.ID, results[0].Chunk.DocumentID, "exact passage ranks first")
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestRetrieveEmptyQuery(t *testing.T) {
	f := newRetrievalFixture(t)

	results, err := f.retrieval.Retrieve(context.Background(), "   ", domain.RetrieveOptions{})

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, f.embedding.calls)
}

func TestRetrieveEmptyResultIsNotAnError(t *testing.T) {
	f := newRetrievalFixture(t, WithMinScore(0.999))
	f.mustIngest(t, "doc.txt", "Some indexed passage about inspections.")

	results, err := f.retrieval.Retrieve(context.Background(), "entirely different topic", domain.RetrieveOptions{})

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrieveInlineTagFilter(t *testing.T) {
	f := newRetrievalFixture(t, WithMinScore(-1))
	passage := "Crash occurred at the intersection of Fifth and Main."
	tagged := f.mustIngest(t, "report.txt", passage, "accident-report")
	f.mustIngest(t, "memo.txt", passage, "internal-memo")

	results, err := f.retrieval.Retrieve(context.Background(),
		passage+" tag:accident-report", domain.RetrieveOptions{})

	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Equal(t, tagged.ID, r.Chunk.DocumentID, "filter excludes other documents")
	}

	// The '#' form is a strict alias.
	hashResults, err := f.retrieval.Retrieve(context.Background(),
		passage+" #accident-report", domain.RetrieveOptions{})
	require.NoError(t, err)
	require.Len(t, hashResults, len(results))
	for i := range results {
		assert.Equal(t, results[i].Chunk.ID, hashResults[i].Chunk.ID)
	}
}

func TestRetrieveUnionsExternalTags(t *testing.T) {
	f := newRetrievalFixture(t, WithMinScore(-1))
	passage := "Settlement terms were finalised in the spring."
	both := f.mustIngest(t, "both.txt", passage, "settlement", "finance")
	f.mustIngest(t, "one.txt", passage, "settlement")

	results, err := f.retrieval.Retrieve(context.Background(),
		passage+" tag:settlement", domain.RetrieveOptions{Tags: []string{"finance"}})

	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Equal(t, both.ID, r.Chunk.DocumentID, "both filters must hold")
	}
}

func TestRetrieveSkipsDanglingChunks(t *testing.T) {
	f := newRetrievalFixture(t, WithMinScore(-1))
	passage := "Inventory audit flagged seventeen discrepancies."
	doc := f.mustIngest(t, "audit.txt", passage)

	// Remove the registry rows but leave the vector records behind.
	require.NoError(t, f.docStore.DeleteDocument(context.Background(), doc.ID))

	results, err := f.retrieval.Retrieve(context.Background(), passage, domain.RetrieveOptions{})

	require.NoError(t, err)
	assert.Empty(t, results, "stale vector matches are dropped, not errors")
}

func TestRetrieveTopKLimit(t *testing.T) {
	f := newRetrievalFixture(t, WithMinScore(-1))
	for _, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt"} {
		f.mustIngest(t, name, "Recurring safety inspection checklist for "+name+".")
	}

	results, err := f.retrieval.Retrieve(context.Background(),
		"safety inspection", domain.RetrieveOptions{TopK: 2})

	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRetrieveInvalidExternalTag(t *testing.T) {
	f := newRetrievalFixture(t)

	_, err := f.retrieval.Retrieve(context.Background(), "anything",
		domain.RetrieveOptions{Tags: []string{"has space"}})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRetrieveOnlyTagsStillEmbeds(t *testing.T) {
	f := newRetrievalFixture(t, WithMinScore(-1))
	f.mustIngest(t, "doc.txt", "Tagged content body.", "urgent")

	results, err := f.retrieval.Retrieve(context.Background(), "tag:urgent", domain.RetrieveOptions{})

	require.NoError(t, err)
	assert.NotEmpty(t, results, "tag-only query embeds the raw text instead of an empty string")
	assert.GreaterOrEqual(t, f.embedding.calls, 1)
}

func TestRetrieveLongDocumentChunking(t *testing.T) {
	f := newRetrievalFixture(t, WithMinScore(-1))
	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString("Clause covering indemnification and liability limits. ")
	}
	doc := f.mustIngest(t, "contract.txt", b.String())

	chunks, err := f.docStore.GetChunks(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1, "long document produces multiple chunks")

	results, err := f.retrieval.Retrieve(context.Background(),
		"indemnification liability", domain.RetrieveOptions{TopK: 50})
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}
