package logging

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestLogPerformanceRecordsOperation(t *testing.T) {
	logger, buf := NewTestLogger()

	logger.LogPerformance("api GET /user", time.Now())

	out := buf.String()
	if !strings.Contains(out, "Performance") {
		t.Errorf("output missing performance marker: %q", out)
	}
	if !strings.Contains(out, "api GET /user") {
		t.Errorf("output missing operation name: %q", out)
	}
}

func TestLogPerformanceIsSilentWithoutDebug(t *testing.T) {
	logger, buf := NewTestLogger()
	logger.debug = false

	logger.LogPerformance("api GET /user", time.Now())

	if buf.Len() != 0 {
		t.Errorf("expected no output outside debug mode, got %q", buf.String())
	}
}

func TestSetVerboseRaisesLevel(t *testing.T) {
	al := &AppLogger{logger: log.NewWithOptions(io.Discard, log.Options{})}
	al.logger.SetLevel(log.WarnLevel)

	al.SetVerbose(false)
	if al.logger.GetLevel() != log.WarnLevel {
		t.Error("SetVerbose(false) must not change the level")
	}

	al.SetVerbose(true)
	if al.logger.GetLevel() != log.InfoLevel {
		t.Errorf("level after SetVerbose(true) = %v, want info", al.logger.GetLevel())
	}
}

func TestDebugLoggerKeepsItsLevel(t *testing.T) {
	al := &AppLogger{logger: log.NewWithOptions(io.Discard, log.Options{}), debug: true}
	al.logger.SetLevel(log.DebugLevel)

	al.SetVerbose(true)
	if al.logger.GetLevel() != log.DebugLevel {
		t.Error("SetVerbose must not lower an already-debug logger")
	}
}
