// Package logger provides the leveled logging facade used by the shelf CLI.
// Debug and info messages are printed only in verbose mode; warnings and
// errors always reach the output so skipped records are never silent.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Fields carries record-level context such as a message id or file name.
type Fields map[string]any

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	log               = newLogger(os.Stderr, false)
)

func newLogger(w io.Writer, v bool) zerolog.Logger {
	cw := zerolog.ConsoleWriter{
		Out:          w,
		NoColor:      true,
		PartsExclude: []string{zerolog.TimestampFieldName},
	}
	level := zerolog.WarnLevel
	if v {
		level = zerolog.DebugLevel
	}
	return zerolog.New(cw).Level(level)
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	log = newLogger(output, v)
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	log = newLogger(w, verbose)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	DebugWith(nil, format, args...)
}

// DebugWith prints a message with fields if verbose mode is enabled.
func DebugWith(fields Fields, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	emit(log.Debug(), fields, format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	emit(log.Info(), nil, format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	WarnWith(nil, format, args...)
}

// WarnWith prints a warning message with fields.
func WarnWith(fields Fields, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	emit(log.Warn(), fields, format, args...)
}

// Error prints an error message with the error attached.
func Error(err error, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	emit(log.Error().Err(err), nil, format, args...)
}

// emit finishes an event. A nil event means the level is disabled.
func emit(e *zerolog.Event, fields Fields, format string, args ...any) {
	if e == nil {
		return
	}
	if len(fields) > 0 {
		e = e.Fields(map[string]any(fields))
	}
	e.Msgf(format, args...)
}
