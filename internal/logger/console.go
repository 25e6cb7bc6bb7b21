// Package logger provides console logging of analysis runs.
//
// The ConsoleLogger writes leveled, timestamped lines and implements the
// executor's run logging hooks. It is safe for concurrent use.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/harrison/docqa/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger logs run progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// Color output is automatically enabled for terminal output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
	progress    *ProgressBar
	started     time.Time
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if w == os.Stdout || w == os.Stderr {
		// color.NoColor honors NO_COLOR and non-TTY output
		return !color.NoColor
	}
	return false
}

// ValidLevel reports whether level names a known log level.
func ValidLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "error":
		return true
	}
	return false
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	if !ValidLevel(level) {
		return "info"
	}
	return strings.ToLower(strings.TrimSpace(level))
}

// shouldLog checks if a message at the given level should be logged.
func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
// Format: "[HH:MM:SS] [INFO] <message>"
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	cl.writeLine(level, message)
}

// writeLine formats one line. Callers hold the mutex.
func (cl *ConsoleLogger) writeLine(level, message string) {
	ts := timestamp()
	if cl.colorOutput {
		fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", ts, levelColor(level).Sprint(level), message)
		return
	}
	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", ts, level, message)
}

func levelColor(level string) *color.Color {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack)
	case "DEBUG":
		return color.New(color.FgCyan)
	case "INFO":
		return color.New(color.FgBlue)
	case "WARN":
		return color.New(color.FgYellow)
	case "ERROR":
		return color.New(color.FgRed)
	}
	return color.New(color.Reset)
}

func statusColor(status string) *color.Color {
	switch status {
	case models.StatusPass:
		return color.New(color.FgGreen)
	case models.StatusWarn:
		return color.New(color.FgYellow)
	case models.StatusFail:
		return color.New(color.FgRed)
	case models.StatusError:
		return color.New(color.FgRed, color.Bold)
	}
	return color.New(color.Reset)
}

// LogRunStart logs the size of the run at INFO level and resets progress.
// Format: "[HH:MM:SS] [INFO] Analyzing <n> documents with <w> workers (<mode>)"
func (cl *ConsoleLogger) LogRunStart(total, workers int, mode string) {
	cl.mutex.Lock()
	cl.progress = NewProgressBar(total, 20, cl.colorOutput)
	cl.started = time.Now()
	cl.mutex.Unlock()

	noun := "documents"
	if total == 1 {
		noun = "document"
	}
	cl.LogInfo(fmt.Sprintf("Analyzing %d %s with %d workers (%s)", total, noun, workers, mode))
}

// LogDocumentResult logs one document's outcome. Passing documents are
// logged at DEBUG level with run progress; anything else at WARN level with
// the reasons.
func (cl *ConsoleLogger) LogDocumentResult(result models.Result) {
	if cl.writer == nil {
		return
	}

	level := "DEBUG"
	if result.Status != models.StatusPass {
		level = "WARN"
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	var progress string
	if cl.progress != nil {
		cl.progress.Increment()
		progress = " " + cl.progress.Render()
	}
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	status := result.Status
	if cl.colorOutput {
		status = statusColor(result.Status).Sprint(result.Status)
	}
	message := fmt.Sprintf("%s: %s", result.Path, status)
	if reasons := result.Problems(); len(reasons) > 0 {
		message += " (" + strings.Join(reasons, "; ") + ")"
	}
	if level == "DEBUG" {
		message += progress
	}
	cl.writeLine(level, message)
}

// LogRunSummary logs the aggregate outcome at INFO level.
func (cl *ConsoleLogger) LogRunSummary(report *models.Report) {
	if cl.writer == nil || report == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	s := report.Summary
	header := "=== Analysis Summary ==="
	status := report.Status
	if cl.colorOutput {
		header = color.New(color.Bold).Sprint(header)
		status = statusColor(report.Status).Sprint(report.Status)
	}

	cl.writeLine("INFO", header)
	cl.writeLine("INFO", fmt.Sprintf("Documents: %d (passed %d, warned %d, failed %d, errored %d)",
		s.Total, s.Passed, s.Warned, s.Failed, s.Errored))
	cl.writeLine("INFO", fmt.Sprintf("Prose words: %d, lines: %d", s.Words, s.Lines))
	if !cl.started.IsZero() {
		cl.writeLine("INFO", fmt.Sprintf("Duration: %s", formatDuration(time.Since(cl.started))))
	}
	if report.Incomplete {
		cl.writeLine("INFO", "Run stopped early; remaining documents were not analyzed")
	}
	cl.writeLine("INFO", fmt.Sprintf("Status: %s", status))
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "250ms", "5s", "1m30s"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		minutes := d / time.Minute
		seconds := (d % time.Minute) / time.Second
		if seconds == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// NoOpLogger discards all run logging.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// LogRunStart is a no-op implementation.
func (n *NoOpLogger) LogRunStart(total, workers int, mode string) {}

// LogDocumentResult is a no-op implementation.
func (n *NoOpLogger) LogDocumentResult(result models.Result) {}

// LogRunSummary is a no-op implementation.
func (n *NoOpLogger) LogRunSummary(report *models.Report) {}
