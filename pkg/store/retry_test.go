package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetry(t *testing.T) {
	old := retryDelay
	retryDelay = time.Millisecond
	t.Cleanup(func() { retryDelay = old })
}

func TestWithRetry(t *testing.T) {
	fastRetry(t)
	ctx := context.Background()
	boom := errors.New("boom")

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := withRetry(ctx, func() error {
			calls++
			if calls < 3 {
				return retryable(boom)
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("err=%v calls=%d, want nil 3", err, calls)
		}
	})

	t.Run("gives up and unwraps", func(t *testing.T) {
		calls := 0
		err := withRetry(ctx, func() error {
			calls++
			return retryable(boom)
		})
		if err != boom {
			t.Errorf("err = %v, want boom", err)
		}
		if calls != 3 {
			t.Errorf("calls = %d, want 3", calls)
		}
	})

	t.Run("permanent error stops", func(t *testing.T) {
		calls := 0
		err := withRetry(ctx, func() error {
			calls++
			return boom
		})
		if err != boom || calls != 1 {
			t.Errorf("err=%v calls=%d, want boom 1", err, calls)
		}
	})

	t.Run("context cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		err := withRetry(ctx, func() error { return retryable(boom) })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}

func TestIsRetryable(t *testing.T) {
	if isRetryable(errors.New("x")) {
		t.Error("plain error should not be retryable")
	}
	if !isRetryable(retryable(errors.New("x"))) {
		t.Error("wrapped error should be retryable")
	}
	if retryable(nil) != nil {
		t.Error("retryable(nil) should be nil")
	}
}
