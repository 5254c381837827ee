package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestHandlerLineFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler("club", &buf, slog.LevelInfo))

	logger.Info("Import complete", "members", 12, "employees", 3)

	line := strings.TrimSuffix(buf.String(), "\n")
	if !strings.Contains(line, "[club] INFO Import complete") {
		t.Errorf("line = %q, want it to contain %q", line, "[club] INFO Import complete")
	}
	if !strings.HasSuffix(line, "members=12 employees=3") {
		t.Errorf("line = %q, want attrs suffix %q", line, "members=12 employees=3")
	}
	if !strings.HasPrefix(strings.Fields(line)[0], "2") || !strings.Contains(line, "T") {
		t.Errorf("line = %q, want RFC3339 timestamp prefix", line)
	}
}

func TestHandlerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler("club", &buf, slog.LevelWarn))

	logger.Info("should be dropped")
	logger.Warn("should be kept")

	out := buf.String()
	if strings.Contains(out, "should be dropped") {
		t.Errorf("output contains filtered info line: %q", out)
	}
	if !strings.Contains(out, "WARN should be kept") {
		t.Errorf("output missing warn line: %q", out)
	}
}

func TestHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := NewHandler("club", &buf, slog.LevelInfo)
	logger := slog.New(base.WithAttrs([]slog.Attr{slog.String("batch", "b1")}))

	logger.Info("row processed", "line", 4)

	out := buf.String()
	if !strings.Contains(out, "batch=b1") {
		t.Errorf("output = %q, want preset attr batch=b1", out)
	}
	if !strings.Contains(out, "line=4") {
		t.Errorf("output = %q, want record attr line=4", out)
	}
}
