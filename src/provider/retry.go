package provider

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/optionsmith/chainview/src/models"
)

// RetryPolicy retries a remote operation with exponential backoff. Rate-limit
// failures wait twice as long as ordinary transient failures at every step. The
// Sleep hook exists so tests can record delays instead of sleeping.
type RetryPolicy struct {
	MaxRetries      int
	BaseDelay       time.Duration
	Multiplier      float64
	RateLimitFactor float64
	Retryable       func(error) bool
	Sleep           func(ctx context.Context, d time.Duration) error
}

func NewRetryPolicy(maxRetries int, baseDelay time.Duration) *RetryPolicy {
	return &RetryPolicy{
		MaxRetries:      maxRetries,
		BaseDelay:       baseDelay,
		Multiplier:      2.0,
		RateLimitFactor: 2.0,
		Retryable:       isRetryable,
		Sleep:           sleepWithContext,
	}
}

// Do runs op once plus up to MaxRetries retries. A non-retryable error returns
// immediately; exhausting the retries returns the last error observed.
func (p *RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	delay := p.BaseDelay

	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if !p.Retryable(lastErr) {
			return lastErr
		}

		if attempt >= p.MaxRetries {
			break
		}

		wait := delay
		if errors.Is(lastErr, models.RateLimitedErr) {
			wait = time.Duration(float64(delay) * p.RateLimitFactor)
		}

		log.Warnf("RetryPolicy: attempt %d failed, backing off %v: %v", attempt+1, wait, lastErr)

		if err := p.Sleep(ctx, wait); err != nil {
			return err
		}

		delay = time.Duration(float64(delay) * p.Multiplier)
	}

	return lastErr
}

func isRetryable(err error) bool {
	return errors.Is(err, models.RateLimitedErr) || errors.Is(err, models.ProviderUnavailableErr)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
