package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner animates a one-line progress indicator on w until stopped or
// until its context ends.
type spinner struct {
	w       io.Writer
	message string
	tick    time.Duration

	mu      sync.Mutex
	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func newSpinner(w io.Writer, message string) *spinner {
	return &spinner{
		w:       w,
		message: message,
		tick:    80 * time.Millisecond,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (s *spinner) start(ctx context.Context) {
	go func() {
		defer close(s.stopped)
		t := time.NewTicker(s.tick)
		defer t.Stop()
		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-t.C:
				s.mu.Lock()
				fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]), StyleDim.Render(s.message))
				s.mu.Unlock()
			}
		}
	}()
}

// halt stops the animation and clears the line. It is safe to call more
// than once.
func (s *spinner) halt() {
	s.once.Do(func() {
		close(s.stop)
		<-s.stopped
		s.mu.Lock()
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
		s.mu.Unlock()
	})
}

// withSpinner runs fn while a spinner with message animates on w.
func withSpinner[T any](ctx context.Context, w io.Writer, message string, fn func(context.Context) (T, error)) (T, error) {
	s := newSpinner(w, message)
	s.start(ctx)
	defer s.halt()
	return fn(ctx)
}
