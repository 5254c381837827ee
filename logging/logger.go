// Package logging provides consistent structured logging using slog.
//
// All club services log in one line-oriented format:
//
//	2026-01-06T14:05:52Z [club] LEVEL message key=value...
//
// Initialize once at startup with logging.Init("club"), then use slog
// directly throughout the codebase.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LineHandler implements slog.Handler with the club log line format.
type LineHandler struct {
	source string
	level  slog.Level
	writer io.Writer
	attrs  []slog.Attr
}

// NewHandler creates a handler writing the club line format.
func NewHandler(source string, w io.Writer, level slog.Level) *LineHandler {
	return &LineHandler{
		source: source,
		writer: w,
		level:  level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *LineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle formats and writes the log record.
func (h *LineHandler) Handle(_ context.Context, r slog.Record) error {
	var buf strings.Builder
	buf.WriteString(r.Time.UTC().Format(time.RFC3339))
	buf.WriteString(" [")
	buf.WriteString(h.source)
	buf.WriteString("] ")
	buf.WriteString(r.Level.String())
	buf.WriteString(" ")
	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		writeAttr(&buf, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&buf, a)
		return true
	})

	buf.WriteString("\n")
	_, err := h.writer.Write([]byte(buf.String()))
	return err
}

func writeAttr(buf *strings.Builder, a slog.Attr) {
	buf.WriteString(" ")
	buf.WriteString(a.Key)
	buf.WriteString("=")
	buf.WriteString(fmt.Sprintf("%v", a.Value.Any()))
}

// WithAttrs returns a new handler with the given attributes.
func (h *LineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &LineHandler{
		source: h.source,
		writer: h.writer,
		level:  h.level,
		attrs:  merged,
	}
}

// WithGroup returns the handler unchanged; group nesting is flattened
// into plain key=value pairs in this format.
func (h *LineHandler) WithGroup(_ string) slog.Handler {
	return h
}

// NewLogger creates a new slog logger at the level from LOG_LEVEL.
func NewLogger(source string, w io.Writer) *slog.Logger {
	return slog.New(NewHandler(source, w, getLevelFromEnv()))
}

// getLevelFromEnv returns the log level from the LOG_LEVEL environment variable.
func getLevelFromEnv() slog.Level {
	switch strings.ToUpper(os.Getenv("LOG_LEVEL")) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init initializes the default slog logger with the given source.
func Init(source string) {
	InitWithWriter(source, os.Stdout)
}

// InitWithWriter initializes the default slog logger with a custom writer (for testing).
func InitWithWriter(source string, w io.Writer) {
	slog.SetDefault(NewLogger(source, w))
}
