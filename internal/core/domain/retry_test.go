package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy_Attempts(t *testing.T) {
	assert.Equal(t, 3, DefaultRetryPolicy().Attempts())
	assert.Equal(t, 1, RetryPolicy{}.Attempts())
	assert.Equal(t, 1, RetryPolicy{MaxAttempts: -5}.Attempts())
}

func TestRetryPolicy_Backoff(t *testing.T) {
	p := RetryPolicy{
		MaxAttempts:    5,
		InitialBackoff: 100 * time.Millisecond,
		Multiplier:     2.0,
		MaxBackoff:     350 * time.Millisecond,
	}

	assert.Equal(t, 100*time.Millisecond, p.Backoff(1))
	assert.Equal(t, 200*time.Millisecond, p.Backoff(2))
	// Capped by MaxBackoff.
	assert.Equal(t, 350*time.Millisecond, p.Backoff(3))
	assert.Equal(t, 350*time.Millisecond, p.Backoff(4))
}

func TestRetryPolicy_Backoff_ZeroWait(t *testing.T) {
	// Tests inject zero-wait policies; backoff must be zero throughout.
	p := RetryPolicy{MaxAttempts: 4}

	for i := 1; i <= 4; i++ {
		assert.Zero(t, p.Backoff(i))
	}
}

func TestRetryPolicy_Backoff_ConstantWhenMultiplierBelowOne(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, InitialBackoff: 50 * time.Millisecond, Multiplier: 0}

	assert.Equal(t, 50*time.Millisecond, p.Backoff(1))
	assert.Equal(t, 50*time.Millisecond, p.Backoff(2))
}

func TestFormatParsing(t *testing.T) {
	f, err := ParseFormat("PDF")
	assert.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	_, err = ParseFormat("epub")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	f, err = FormatFromPath("/cases/smith/accident_report.DOCX")
	assert.NoError(t, err)
	assert.Equal(t, FormatDocx, f)

	f, err = FormatFromPath("scan.jpeg")
	assert.NoError(t, err)
	assert.Equal(t, FormatImage, f)

	_, err = FormatFromPath("archive.zip")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
