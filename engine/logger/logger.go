// package logger provides the process-wide structured logger used by every engine package.
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once      sync.Once
	singleton *log.Logger
)

func get() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "oxy-showcase",
			CallerOffset:    1,
		})
		singleton.SetLevel(log.InfoLevel)
	})
	return singleton
}

// SetLevel changes the minimum level that is written. Unknown names fall back to info.
//
// Parameters:
//   - level: one of "debug", "info", "warn", "error", "fatal"
func SetLevel(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	get().SetLevel(lvl)
}

// SetOutput redirects log output, which tests use to silence or capture it.
//
// Parameters:
//   - w: the destination writer
func SetOutput(w io.Writer) {
	get().SetOutput(w)
}

// With returns a child logger carrying the given key/value pairs on every line. The child
// is called directly, so it reports its own caller. It keeps the level and output in
// effect when it was created.
//
// Parameters:
//   - keyvals: alternating keys and values
//
// Returns:
//   - *log.Logger: the child logger
func With(keyvals ...any) *log.Logger {
	child := get().With(keyvals...)
	child.SetCallerOffset(0)
	return child
}

func Debug(msg string, args ...any) {
	get().Debugf(msg, args...)
}

func Info(msg string, args ...any) {
	get().Infof(msg, args...)
}

func Warn(msg string, args ...any) {
	get().Warnf(msg, args...)
}

func Error(msg string, args ...any) {
	get().Errorf(msg, args...)
}

func Fatal(msg string, args ...any) {
	get().Fatalf(msg, args...)
}
