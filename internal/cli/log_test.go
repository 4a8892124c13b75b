package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"warn at info", LogInfo, func(l *log.Logger) { l.Warn("skipped unsupported node", "kind", "Comment") }, true},
		{"debug at info", LogInfo, func(l *log.Logger) { l.Debug("decoded", "version", 10) }, false},
		{"debug at debug", LogDebug, func(l *log.Logger) { l.Debug("decoded", "version", 10) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.Logger.Debug("hidden")
	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown", "target", 7)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug line logged at info level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "target=7") {
		t.Errorf("debug line missing after SetLogLevel: %q", out)
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, LogInfo))
	time.Sleep(5 * time.Millisecond)
	prog.done("Decoded fx.vfx")

	out := buf.String()
	if !strings.Contains(out, "Decoded fx.vfx (") {
		t.Errorf("progress output = %q", out)
	}
}
