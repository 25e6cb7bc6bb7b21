package logger

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harrison/docqa/internal/executor"
	"github.com/harrison/docqa/internal/models"
)

// TestNewConsoleLogger verifies the constructor creates a ConsoleLogger with the provided writer.
func TestNewConsoleLogger(t *testing.T) {
	t.Run("with valid writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewConsoleLogger(buf, "info")

		if logger.writer != buf {
			t.Error("writer not set correctly")
		}
		if logger.logLevel != "info" {
			t.Errorf("expected log level %q, got %q", "info", logger.logLevel)
		}
		if logger.colorOutput {
			t.Error("buffers never get color output")
		}
	})

	t.Run("with nil writer", func(t *testing.T) {
		logger := NewConsoleLogger(nil, "info")
		if logger.writer != nil {
			t.Error("expected nil writer")
		}
	})
}

func TestLogFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	NewConsoleLogger(buf, "info").LogInfo("hello")

	line := buf.String()
	if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "] [INFO] hello\n") {
		t.Errorf("unexpected line format: %q", line)
	}
}

func TestLogRunStart(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	logger.LogRunStart(3, 2, "collect-all")
	if !strings.Contains(buf.String(), "Analyzing 3 documents with 2 workers (collect-all)") {
		t.Errorf("unexpected output: %q", buf.String())
	}

	buf.Reset()
	logger.LogRunStart(1, 1, "fail-fast")
	if !strings.Contains(buf.String(), "Analyzing 1 document with 1 workers (fail-fast)") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestLogDocumentResult(t *testing.T) {
	pass := models.Result{Path: "docs/a.md", Status: models.StatusPass}
	fail := models.Result{
		Path:   "docs/b.md",
		Status: models.StatusFail,
		Checks: []models.MetricCheck{
			{Metric: "fk_grade", Outcome: models.StatusFail, Message: "fk_grade 15 exceeds the maximum of 14"},
			{Metric: "ari", Outcome: models.StatusPass},
		},
		Warnings: []models.ParseWarning{{Line: 7, Message: "code fence never closed"}},
	}

	t.Run("info hides passing documents", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewConsoleLogger(buf, "info")
		logger.LogRunStart(2, 1, "collect-all")
		buf.Reset()

		logger.LogDocumentResult(pass)
		logger.LogDocumentResult(fail)

		output := buf.String()
		if strings.Contains(output, "docs/a.md") {
			t.Errorf("passing document should be logged at debug level: %q", output)
		}
		want := "[WARN] docs/b.md: FAIL (fk_grade 15 exceeds the maximum of 14; line 7: code fence never closed)"
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in %q", want, output)
		}
	})

	t.Run("debug shows progress", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewConsoleLogger(buf, "debug")
		logger.LogRunStart(2, 1, "collect-all")
		buf.Reset()

		logger.LogDocumentResult(pass)
		if !strings.Contains(buf.String(), "[DEBUG] docs/a.md: PASS [") || !strings.Contains(buf.String(), "1/2 (50%)") {
			t.Errorf("unexpected output: %q", buf.String())
		}
	})
}

func TestLogRunSummary(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	report := models.NewReport([]models.Result{
		{Path: "a.md", Status: models.StatusPass, Readability: models.ReadabilityMetrics{Words: 120}, Composition: models.Composition{TotalLines: 30}},
		{Path: "b.md", Status: models.StatusError},
	}, true)
	logger.LogRunSummary(report)

	output := buf.String()
	for _, want := range []string{
		"=== Analysis Summary ===",
		"Documents: 2 (passed 1, warned 0, failed 0, errored 1)",
		"Prose words: 120, lines: 30",
		"Run stopped early",
		"Status: ERROR",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in summary, got %q", want, output)
		}
	}
}

// TestTimestampFormat verifies HH:MM:SS timestamps.
func TestTimestampFormat(t *testing.T) {
	ts := timestamp()
	if len(ts) != 8 || ts[2] != ':' || ts[5] != ':' {
		t.Errorf("expected HH:MM:SS, got %s", ts)
	}
}

// TestConcurrentLogging verifies thread safety with concurrent logging.
func TestConcurrentLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "debug")
	logger.LogRunStart(10, 4, "collect-all")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			logger.LogDocumentResult(models.Result{Path: fmt.Sprintf("doc%d.md", index), Status: models.StatusPass})
		}(i)
	}
	wg.Wait()

	output := buf.String()
	for i := 0; i < 10; i++ {
		if !strings.Contains(output, fmt.Sprintf("doc%d.md", i)) {
			t.Errorf("expected output to contain doc%d.md", i)
		}
	}
	if !strings.Contains(output, "10/10 (100%)") {
		t.Errorf("expected final progress 10/10, got %q", output)
	}
}

// TestNilWriter verifies that nil writer is handled gracefully.
func TestNilWriter(t *testing.T) {
	logger := NewConsoleLogger(nil, "trace")

	logger.LogRunStart(1, 1, "collect-all")
	logger.LogDocumentResult(models.Result{Path: "a.md", Status: models.StatusFail})
	logger.LogRunSummary(models.NewReport(nil, false))
	logger.LogError("nothing")
}

func TestDurationFormatting(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{250 * time.Millisecond, "250ms"},
		{5 * time.Second, "5s"},
		{90 * time.Second, "1m30s"},
		{2 * time.Minute, "2m"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.duration); got != tt.expected {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.duration, got, tt.expected)
		}
	}
}

func TestNoOpLogger(t *testing.T) {
	logger := NewNoOpLogger()
	logger.LogRunStart(1, 1, "collect-all")
	logger.LogDocumentResult(models.Result{})
	logger.LogRunSummary(nil)
}

func TestLoggersSatisfyExecutorInterface(t *testing.T) {
	var _ executor.Logger = NewConsoleLogger(nil, "info")
	var _ executor.Logger = NewNoOpLogger()
}

func TestConsoleSourceIsGofmtClean(t *testing.T) {
	src, err := os.ReadFile("console.go")
	if err != nil {
		t.Fatalf("read console.go: %v", err)
	}
	formatted, err := format.Source(src)
	if err != nil {
		t.Fatalf("format console.go: %v", err)
	}
	if !bytes.Equal(src, formatted) {
		t.Error("console.go is not gofmt-formatted")
	}
}
