package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/casedex/internal/core/domain"
)

func TestFormats(t *testing.T) {
	assert.Equal(t, []domain.Format{domain.FormatText}, New().Formats())
}

func TestExtract(t *testing.T) {
	result, err := New().Extract(context.Background(), []byte("Plain case notes.\nSecond line."))

	require.NoError(t, err)
	assert.Equal(t, "Plain case notes.\nSecond line.", result.Text)
	assert.Empty(t, result.PageBoundaries)
}

func TestExtractStripsBOM(t *testing.T) {
	result, err := New().Extract(context.Background(), []byte("\ufeffContent after BOM."))

	require.NoError(t, err)
	assert.Equal(t, "Content after BOM.", result.Text)
}

func TestExtractRejectsInvalidUTF8(t *testing.T) {
	_, err := New().Extract(context.Background(), []byte{0xff, 0xfe, 0x00, 0x41})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}
