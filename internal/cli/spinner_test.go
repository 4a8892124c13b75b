package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a bytes.Buffer shared with the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWithSpinnerReturnsResult(t *testing.T) {
	var out syncBuffer
	got, err := withSpinner(context.Background(), &out, "Rendering SVG...", func(context.Context) ([]byte, error) {
		time.Sleep(120 * time.Millisecond)
		return []byte("<svg/>"), nil
	})
	if err != nil {
		t.Fatalf("withSpinner() error: %v", err)
	}
	if string(got) != "<svg/>" {
		t.Errorf("withSpinner() = %q", got)
	}
	if !strings.Contains(out.String(), "Rendering SVG...") {
		t.Errorf("spinner never drew its message: %q", out.String())
	}
	if !strings.HasSuffix(out.String(), "\r") {
		t.Error("spinner line not cleared")
	}
}

func TestWithSpinnerPropagatesError(t *testing.T) {
	var out syncBuffer
	want := errors.New("boom")
	_, err := withSpinner(context.Background(), &out, "x", func(context.Context) (int, error) {
		return 0, want
	})
	if !errors.Is(err, want) {
		t.Errorf("withSpinner() error = %v, want %v", err, want)
	}
}

func TestSpinnerStopsOnCancel(t *testing.T) {
	var out syncBuffer
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(&out, "waiting")
	s.start(ctx)
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner goroutine did not exit after cancel")
	}
	s.halt()
	s.halt()
}
