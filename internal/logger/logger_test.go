package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"
)

func reset(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
		now = time.Now
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	reset(t)

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false initially")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}
}

func TestDebug_WhenVerbose(t *testing.T) {
	buf := reset(t)
	SetVerbose(true)

	Debug("test message %s", "arg")

	if buf.String() != "[DEBUG] test message arg\n" {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestGatedLevels_WhenNotVerbose(t *testing.T) {
	buf := reset(t)
	SetVerbose(false)

	Debug("debug")
	Info("info")
	Section("section")

	if buf.Len() != 0 {
		t.Errorf("expected no output when not verbose, got %q", buf.String())
	}
}

func TestSection(t *testing.T) {
	buf := reset(t)
	SetVerbose(true)

	Section("Retrieve")

	if buf.String() != "\n=== Retrieve ===\n" {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestWarnAndError_AlwaysWritten(t *testing.T) {
	buf := reset(t)
	SetVerbose(false)

	Warn("low results: %d", 0)
	Error("failed: %s", "boom")

	want := "[WARN] low results: 0\n[ERROR] failed: boom\n"
	if buf.String() != want {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestTimed(t *testing.T) {
	buf := reset(t)
	SetVerbose(true)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls-1) * 15 * time.Millisecond)
	}

	Timed("search")()

	if !strings.Contains(buf.String(), "search took 15ms") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}
