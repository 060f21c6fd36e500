package image

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/casedex/internal/core/domain"
)

type fakeOCR struct {
	text string
	err  error
}

func (f *fakeOCR) Recognize(context.Context, []byte) (string, error) {
	return f.text, f.err
}

func (f *fakeOCR) Ping(context.Context) error { return nil }

func TestFormats(t *testing.T) {
	assert.Equal(t, []domain.Format{domain.FormatImage}, New(nil).Formats())
}

func TestExtractWithoutOCR(t *testing.T) {
	_, err := New(nil).Extract(context.Background(), []byte("png bytes"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrOCRUnavailable)
}

func TestExtractDelegatesToOCR(t *testing.T) {
	ocr := &fakeOCR{text: "Recognised scan text."}

	result, err := New(ocr).Extract(context.Background(), []byte("png bytes"))

	require.NoError(t, err)
	assert.Equal(t, "Recognised scan text.", result.Text)
}

func TestExtractPropagatesOCRFailure(t *testing.T) {
	ocr := &fakeOCR{err: errors.New("service down")}

	_, err := New(ocr).Extract(context.Background(), []byte("png bytes"))

	require.Error(t, err)
	assert.ErrorContains(t, err, "service down")
}
