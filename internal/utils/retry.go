package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
)

// Retry holds the parameters for an exponential back-off retry.
type Retry struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *log.Logger
	// Retryable reports whether err is worth another attempt. Nil retries
	// every error.
	Retryable func(error) bool
}

// Do runs fn until it succeeds, the attempts are exhausted, the error is not
// retryable, or ctx is done. The delay doubles after each failure.
func (r Retry) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := r.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if r.Retryable != nil && !r.Retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}
		if r.Logger != nil {
			r.Logger.Warnf("[retry] %s failed (attempt %d/%d): %v, retrying in %v",
				op, attempt, attempts, lastErr, delay)
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, attempts, lastErr)
}
