package store

import (
	"context"
	"errors"
	"time"
)

// retryableError marks a backend error as transient.
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// retryable wraps err so that withRetry tries again.
func retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// retryDelay is the first backoff delay; it doubles after every attempt.
var retryDelay = 200 * time.Millisecond

// withRetry runs fn up to 3 times with exponential backoff. Only errors
// wrapped with retryable trigger another attempt; the last error is
// returned unwrapped.
func withRetry(ctx context.Context, fn func() error) error {
	const attempts = 3
	delay := retryDelay
	var lastErr error

	for i := 0; i < attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryable(err) {
			return err
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	var re *retryableError
	if errors.As(lastErr, &re) {
		return re.err
	}
	return lastErr
}
