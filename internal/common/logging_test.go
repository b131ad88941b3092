package common

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerWithOutput_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("warn", &buf)

	logger.Info().Str("op", "load").Msg("filtered")
	if buf.Len() != 0 {
		t.Fatalf("info event should be filtered at warn level, got %q", buf.String())
	}

	logger.Warn().Str("op", "load").Msg("kept")
	if !strings.Contains(buf.String(), `"op":"load"`) {
		t.Errorf("expected structured field in output, got %q", buf.String())
	}
}

func TestParseLevel_DefaultsToInfo(t *testing.T) {
	if parseLevel("chatty") != parseLevel("info") {
		t.Error("unknown level should fall back to info")
	}
}
