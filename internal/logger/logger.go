// Package logger provides verbose diagnostics for tabula.
// Nothing is printed unless --verbose is set. Lines go to stderr as
// plain text, or as JSON objects when --log-format=json is used so that
// agent traces can be collected by other tools.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Format selects how log lines are rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var (
	mu      sync.RWMutex
	verbose bool
	style             = FormatText
	output  io.Writer = os.Stderr
	now               = time.Now
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the writer for log lines. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetFormat switches between text and JSON lines. Unknown values fall
// back to text.
func SetFormat(f Format) {
	mu.Lock()
	defer mu.Unlock()
	if f != FormatJSON {
		f = FormatText
	}
	style = f
}

type entry struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"msg"`
}

func write(level, msg string) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose {
		return
	}
	if style == FormatJSON {
		line, err := json.Marshal(entry{
			Time:    now().UTC().Format(time.RFC3339Nano),
			Level:   level,
			Message: msg,
		})
		if err != nil {
			return
		}
		fmt.Fprintln(output, string(line))
		return
	}
	if level == "section" {
		fmt.Fprintf(output, "\n=== %s ===\n", msg)
		return
	}
	fmt.Fprintf(output, "[%s] %s\n", levelTag(level), msg)
}

func levelTag(level string) string {
	switch level {
	case "debug":
		return "DEBUG"
	case "info":
		return "INFO"
	case "warn":
		return "WARN"
	default:
		return "ERROR"
	}
}

// Debug logs a detail message.
func Debug(format string, args ...any) {
	write("debug", fmt.Sprintf(format, args...))
}

// Info logs an informational message.
func Info(format string, args ...any) {
	write("info", fmt.Sprintf(format, args...))
}

// Warn logs a recoverable problem.
func Warn(format string, args ...any) {
	write("warn", fmt.Sprintf(format, args...))
}

// Error logs a failure that was handled but changed the outcome.
func Error(format string, args ...any) {
	write("error", fmt.Sprintf(format, args...))
}

// Section marks the start of a pipeline stage.
func Section(name string) {
	write("section", name)
}

// Timed logs the start of a stage and returns a func that logs its
// duration. Use as: defer logger.Timed("index build")().
func Timed(stage string) func() {
	start := now()
	Debug("%s: started", stage)
	return func() {
		Debug("%s: done in %s", stage, now().Sub(start).Round(time.Microsecond))
	}
}
