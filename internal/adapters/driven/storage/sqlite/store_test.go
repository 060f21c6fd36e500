package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/casedex/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleDocument(id string) *domain.Document {
	return &domain.Document{
		ID:            id,
		Filename:      id + ".pdf",
		Format:        domain.FormatPDF,
		Tags:          []string{"case-2024", "appeal"},
		RawByteLength: 4096,
		IndexStatus:   domain.IndexStatusComplete,
		IngestedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := sampleDocument("d1")
	require.NoError(t, s.SaveDocument(ctx, doc))

	got, err := s.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, doc.Filename, got.Filename)
	assert.Equal(t, doc.Format, got.Format)
	assert.Equal(t, doc.Tags, got.Tags)
	assert.Equal(t, doc.RawByteLength, got.RawByteLength)
	assert.Equal(t, doc.IndexStatus, got.IndexStatus)
	assert.True(t, doc.IngestedAt.Equal(got.IngestedAt))

	_, err = s.GetDocument(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveDocumentUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := sampleDocument("d1")
	doc.IndexStatus = domain.IndexStatusPartial
	require.NoError(t, s.SaveDocument(ctx, doc))

	doc.IndexStatus = domain.IndexStatusComplete
	doc.Filename = "renamed.pdf"
	require.NoError(t, s.SaveDocument(ctx, doc))

	got, err := s.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "renamed.pdf", got.Filename)
	assert.Equal(t, domain.IndexStatusComplete, got.IndexStatus)

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestChunksRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDocument(ctx, sampleDocument("d1")))

	chunks := []domain.Chunk{
		{ID: "c1", DocumentID: "d1", Text: "First passage.", PageIndex: 0, CharStart: 0, CharEnd: 14, Tags: []string{"appeal"}},
		{ID: "c2", DocumentID: "d1", Text: "Second passage.", PageIndex: 1, CharStart: 14, CharEnd: 29},
	}
	require.NoError(t, s.SaveChunks(ctx, chunks))

	got, err := s.GetChunks(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0].ID)
	assert.Equal(t, "c2", got[1].ID)
	assert.Equal(t, []string{"appeal"}, got[0].Tags)
	assert.Nil(t, got[1].Tags)
	assert.Equal(t, 14, got[1].CharStart)

	chunk, err := s.GetChunk(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, "Second passage.", chunk.Text)
	assert.Equal(t, 1, chunk.PageIndex)

	_, err = s.GetChunk(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveChunksReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDocument(ctx, sampleDocument("d1")))
	require.NoError(t, s.SaveChunks(ctx, []domain.Chunk{
		{ID: "old", DocumentID: "d1", Text: "old"},
	}))
	require.NoError(t, s.SaveChunks(ctx, []domain.Chunk{
		{ID: "new", DocumentID: "d1", Text: "new"},
	}))

	_, err := s.GetChunk(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := s.GetChunks(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ID)
}

func TestUpdateStatusAndTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := sampleDocument("d1")
	doc.IndexStatus = domain.IndexStatusPartial
	require.NoError(t, s.SaveDocument(ctx, doc))

	require.NoError(t, s.UpdateStatus(ctx, "d1", domain.IndexStatusComplete))
	require.NoError(t, s.UpdateTags(ctx, "d1", []string{"closed"}))

	got, err := s.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, domain.IndexStatusComplete, got.IndexStatus)
	assert.Equal(t, []string{"closed"}, got.Tags)

	assert.ErrorIs(t, s.UpdateStatus(ctx, "missing", domain.IndexStatusComplete), domain.ErrNotFound)
	assert.ErrorIs(t, s.UpdateTags(ctx, "missing", nil), domain.ErrNotFound)
}

func TestDeleteDocumentCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDocument(ctx, sampleDocument("d1")))
	require.NoError(t, s.SaveChunks(ctx, []domain.Chunk{
		{ID: "c1", DocumentID: "d1", Text: "text"},
	}))

	require.NoError(t, s.DeleteDocument(ctx, "d1"))

	_, err := s.GetDocument(ctx, "d1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.GetChunk(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, s.DeleteDocument(ctx, "d1"), domain.ErrNotFound)
}

func TestListDocumentsOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for _, d := range []struct {
		id  string
		age time.Duration
	}{
		{"oldest", -2 * time.Hour},
		{"newest", 0},
		{"middle", -time.Hour},
	} {
		doc := sampleDocument(d.id)
		doc.IngestedAt = base.Add(d.age)
		require.NoError(t, s.SaveDocument(ctx, doc))
	}

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "newest", docs[0].ID)
	assert.Equal(t, "middle", docs[1].ID)
	assert.Equal(t, "oldest", docs[2].ID)
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.SaveDocument(ctx, sampleDocument("d1")))
	require.NoError(t, s.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "d1.pdf", got.Filename)
}
