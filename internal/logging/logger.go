// Package logging provides the engine's two output channels: a leveled
// slog.Logger for operational messages on stderr, and a DecisionLogger
// that appends one JSON line per routing decision to decisions.jsonl in
// the data directory.
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace is a custom slog level below Debug for full content
// logging. At this level every match candidate and expansion repair is
// included.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a level name ("trace", "debug", "info", "warn",
// "error", case-insensitive) to a slog.Level. Anything unrecognized
// falls back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a text-format slog.Logger writing to w at the named
// level.
func NewLogger(level string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// slog would print the trace level as DEBUG-4.
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// DecisionLogger appends decision events to a JSONL file. It is safe
// for concurrent use, and a nil *DecisionLogger is valid: every method
// no-ops, so callers never branch on whether tracing is on.
type DecisionLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewDecisionLogger creates a decision logger writing to
// dir/decisions.jsonl, opened for append. When disabled it returns
// nil, and nil is what callers should keep using; every method is
// nil-safe. Returns nil too if the file cannot be opened, so tracing
// never takes the engine down.
func NewDecisionLogger(dir string, enabled bool) *DecisionLogger {
	if !enabled {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	path := filepath.Join(dir, "decisions.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return &DecisionLogger{file: f}
}

// Log appends event as one JSON line, adding a "time" field. The
// caller's map is left untouched.
func (dl *DecisionLogger) Log(event map[string]any) {
	if dl == nil || dl.file == nil {
		return
	}

	// Copy so the caller's map is never touched.
	entry := make(map[string]any, len(event)+1)
	for k, v := range event {
		entry[k] = v
	}
	entry["time"] = time.Now().UTC().Format(time.RFC3339Nano)

	line, err := json.Marshal(entry)
	if err != nil {
		return
	}

	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.file == nil {
		return
	}
	_, _ = dl.file.Write(append(line, '\n'))
}

// Close releases the underlying file. Later Log calls become no-ops.
func (dl *DecisionLogger) Close() {
	if dl == nil || dl.file == nil {
		return
	}

	dl.mu.Lock()
	defer dl.mu.Unlock()

	dl.file.Close()
	dl.file = nil
}
