package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	out     io.Writer
	logFile *os.File
	mu      sync.Mutex
)

// Enable turns on debug logging to the specified file. The file is truncated.
func Enable(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	mu.Lock()
	closeLocked()
	logFile = f
	out = f
	mu.Unlock()

	Log("debug logging enabled (pid %d)", os.Getpid())
	return nil
}

// SetOutput sends debug logging to w. A nil w disables logging.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
	out = w
}

// Close closes the debug log file and disables logging.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
}

func closeLocked() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	out = nil
}

// IsEnabled returns whether debug logging is enabled.
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return out != nil
}

// Log writes a debug message if debugging is enabled.
func Log(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if out == nil {
		return
	}

	timestamp := time.Now().Format("15:04:05.000")
	_, _ = fmt.Fprintf(out, "[%s] %s\n", timestamp, fmt.Sprintf(format, args...))
}

// Timed logs the duration of an operation. Usage:
//
//	defer debug.Timed("operation name")()
func Timed(name string) func() {
	if !IsEnabled() {
		return func() {}
	}

	start := time.Now()
	return func() {
		Log("%s (%v)", name, time.Since(start).Round(time.Microsecond))
	}
}
