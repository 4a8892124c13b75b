// Package cli implements the vfxgraph command-line interface.
//
// The commands read and write effect graph documents, render them, and
// manage stored assets. The CLI is built using cobra and logs through
// charmbracelet/log; the same logger is handed to the serializer and the
// HTTP server, so --verbose also shows skipped nodes and dropped edges.
//
// # Commands
//
// The main commands are:
//   - inspect: Summarize a document, print its JSON view, or browse it
//   - upgrade: Rewrite a document at the current schema version
//   - render: Draw a graph as DOT or SVG
//   - store: Put, get, list and remove assets
//   - serve: Run the HTTP API
//
// # Example
//
//	import "github.com/matzehuels/vfxgraph/internal/cli"
//
//	func main() {
//	    if err := cli.Execute(ctx); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Decoded fx.vfx (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
