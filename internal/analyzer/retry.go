package analyzer

import (
	"context"
	"net/http"
	"time"
)

// RetryPolicy decides whether and when a failed call is attempted again.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	// MaxDelay caps a single wait. Zero means uncapped.
	MaxDelay time.Duration
	// Retryable receives the HTTP status (0 when no response arrived) and the
	// transport error, if any.
	Retryable func(status int, err error) bool
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 4,
		BaseDelay:   time.Second,
		Multiplier:  2,
		Retryable:   RetryOnRateLimitOrTransport,
	}
}

// RetryOnRateLimitOrTransport retries HTTP 429 and every transport failure,
// per-attempt client timeouts included. Cancellation of the caller's context is
// checked by the client loop, not here.
func RetryOnRateLimitOrTransport(status int, err error) bool {
	if err != nil {
		return true
	}
	return status == http.StatusTooManyRequests
}

// Delay returns the wait before retry number n (1-based).
func (p RetryPolicy) Delay(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(p.BaseDelay)
	for i := 1; i < n; i++ {
		d *= mult
		if p.MaxDelay > 0 && d >= float64(p.MaxDelay) {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && time.Duration(d) > p.MaxDelay {
		return p.MaxDelay
	}
	return time.Duration(d)
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p RetryPolicy) retryable(status int, err error) bool {
	if p.Retryable == nil {
		return RetryOnRateLimitOrTransport(status, err)
	}
	return p.Retryable(status, err)
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
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
