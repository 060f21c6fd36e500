package domain

import "time"

// RetryPolicy describes bounded retry with exponential backoff. It is
// passed into the embedder and store adapters as a value so tests can
// inject zero-wait variants. No operation is ever retried indefinitely.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// InitialBackoff is the wait before the first retry.
	InitialBackoff time.Duration

	// Multiplier scales the backoff after each failed attempt.
	// Values below 1 are treated as 1 (constant backoff).
	Multiplier float64

	// MaxBackoff caps the wait between attempts. Zero means no cap.
	MaxBackoff time.Duration
}

// DefaultRetryPolicy returns the production retry policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		Multiplier:     2.0,
		MaxBackoff:     10 * time.Second,
	}
}

// Attempts returns the effective attempt count, at least 1.
func (p RetryPolicy) Attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Backoff returns the wait before retry number retry (1-based: the wait
// after the first failure is Backoff(1)).
func (p RetryPolicy) Backoff(retry int) time.Duration {
	if retry < 1 || p.InitialBackoff <= 0 {
		return 0
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := p.InitialBackoff
	for i := 1; i < retry; i++ {
		d = time.Duration(float64(d) * mult)
		if p.MaxBackoff > 0 && d >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}
