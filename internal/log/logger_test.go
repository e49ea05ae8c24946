package log

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestInitialize(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	if Verbosity() != LevelInfo {
		t.Errorf("expected verbosity %d, got %d", LevelInfo, Verbosity())
	}
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer

	Initialize(LevelTrace, &buf)

	Info("test info", "key", "value")
	Debug("test debug", "key", "value")
	Trace("test trace", "key", "value")
	Warn("test warn", "key", "value")
	Error("test error", "key", "value")

	if buf.Len() == 0 {
		t.Error("expected log output, got none")
	}
}

func TestQuietSuppressesInfo(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelQuiet, &buf)

	Info("hidden")
	Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output at quiet level, got %q", buf.String())
	}

	Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Error("expected warnings at quiet level")
	}
}

func TestVerbosityLevels(t *testing.T) {
	tests := []struct {
		level   int
		isInfo  bool
		isDebug bool
	}{
		{LevelQuiet, false, false},
		{LevelInfo, true, false},
		{LevelDebug, true, true},
		{LevelTrace, true, true},
	}

	var buf bytes.Buffer
	for _, tt := range tests {
		Initialize(tt.level, &buf)

		if IsInfo() != tt.isInfo {
			t.Errorf("at level %d: expected IsInfo()=%v, got %v", tt.level, tt.isInfo, IsInfo())
		}
		if IsDebug() != tt.isDebug {
			t.Errorf("at level %d: expected IsDebug()=%v, got %v", tt.level, tt.isDebug, IsDebug())
		}
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	Progress("Reading timelines %d%%", 50)
	ProgressDone()

	if !strings.Contains(buf.String(), "Reading timelines 50%") {
		t.Errorf("unexpected progress output %q", buf.String())
	}
}

func TestAnnotations(t *testing.T) {
	var logs, annotated bytes.Buffer
	Initialize(LevelQuiet, &logs)
	EnableAnnotations(&annotated)
	defer EnableAnnotations(nil)

	Warn("could not post reminder", "item", "acme/widgets#1")
	Error("multi\nline 100%")
	Info("not annotated")

	want := "::warning::could not post reminder item=acme/widgets#1\n" +
		"::error::multi%0Aline 100%25\n"
	if annotated.String() != want {
		t.Errorf("annotations = %q, want %q", annotated.String(), want)
	}
}

func TestLogInterruptsProgressLine(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	Progress("Reading timelines: %d/%d", 1, 4)
	Info("posted reminder", "item", "acme/widgets#1")
	ProgressDone()

	out := buf.String()
	if !strings.HasPrefix(out, "\rReading timelines: 1/4\n") {
		t.Errorf("progress line was not terminated before the log record: %q", out)
	}
	if strings.Contains(out, " done") {
		t.Errorf("ProgressDone after an interrupted line should print nothing, got %q", out)
	}
}

func TestConcurrentProgress(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Progress("item %d", n)
			Debug("hidden at info")
		}(i)
	}
	wg.Wait()
	ProgressDone()

	if !strings.HasSuffix(buf.String(), " done\n") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
