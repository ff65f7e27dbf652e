// Package logging provides leveled logging and transition tracing for contagion.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A TransitionLogger for structured JSONL status-change traces (transitions.jsonl)
package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace is a custom slog level below Debug for per-individual logging.
// At this level every status change is also echoed to the operational log.
const LevelTrace = slog.LevelDebug - 4

// TransitionsFile is the name of the JSONL trace written by TransitionLogger.
const TransitionsFile = "transitions.jsonl"

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Label the custom trace level
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

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Transition is one status change, written as a single JSONL line.
type Transition struct {
	Time       string `json:"time"`
	RunID      string `json:"run_id,omitempty"`
	Day        int    `json:"day"`
	Individual int    `json:"individual"`
	From       string `json:"from"`
	To         string `json:"to"`
}

// TransitionLogger appends Transition events to a JSONL sink.
// Concurrent calls are serialized; each Log call's events stay contiguous.
// A nil *TransitionLogger discards everything.
type TransitionLogger struct {
	mu   sync.Mutex
	w    io.Writer
	file *os.File
	now  func() time.Time
}

// NewTransitionLogger opens dir/transitions.jsonl for append when level is
// debug or trace. At info level, or if the file cannot be opened, it
// returns nil and nothing is written.
func NewTransitionLogger(dir string, level string) *TransitionLogger {
	if ParseLevel(level) >= slog.LevelInfo {
		return nil
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	f, err := os.OpenFile(filepath.Join(dir, TransitionsFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}
	return &TransitionLogger{w: f, file: f, now: time.Now}
}

// NewTransitionWriter logs to w. Close does not close w.
func NewTransitionWriter(w io.Writer) *TransitionLogger {
	return &TransitionLogger{w: w, now: time.Now}
}

// Enabled reports whether events will be written.
func (tl *TransitionLogger) Enabled() bool {
	return tl != nil && tl.w != nil
}

// Log writes events, one per line. Events without a Time are stamped
// with the current UTC time.
func (tl *TransitionLogger) Log(events ...Transition) {
	if !tl.Enabled() || len(events) == 0 {
		return
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	stamp := tl.now().UTC().Format(time.RFC3339Nano)
	for _, ev := range events {
		if ev.Time == "" {
			ev.Time = stamp
		}
		if err := enc.Encode(ev); err != nil {
			return
		}
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()
	if tl.w != nil {
		_, _ = tl.w.Write(buf.Bytes())
	}
}

// Close closes the underlying file. Later calls to Log are dropped.
func (tl *TransitionLogger) Close() {
	if tl == nil {
		return
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()
	if tl.file != nil {
		_ = tl.file.Close()
		tl.file = nil
	}
	tl.w = nil
}
