// Package log is the structured logger shared by docmock packages.
package log

import (
	"io"
	"log/slog"
	"strings"
)

// Logger is a logger that carries an action or map labels.
type Logger interface {
	// Action logger with action key field
	Action(action string) StdLogger
	// With any map data, the value of key must be string, int ... basic value
	With(map[string]any) StdLogger
	// Inject tags to current logger
	Inject(map[string]any)
}

// StdLogger the standard logger
type StdLogger interface {
	// Debug print the debug log if the len(args) is 0, the args will be ignored.
	Debug(msgOrFormat string, args ...any)
	Info(msgOrFormat string, args ...any)
	Warn(msgOrFormat string, args ...any)
	Error(msgOrFormat string, args ...any)
}

// Default returns the process logger.
func Default() Logger {
	return std
}

// Action set action field for logger
func Action(action string) StdLogger {
	return std.Action(action)
}

// With any map data, the value of key must be string, int ... basic value
func With(m map[string]any) StdLogger {
	return std.With(m)
}

// SetLevel set the log level with: debug, info, warn, error
func SetLevel(level string) {
	l, err := parseLevel(level)
	if err != nil {
		panic(err)
	}
	std.level.Set(l)
}

// CheckLevel returns the error SetLevel would panic with.
func CheckLevel(level string) error {
	_, err := parseLevel(level)
	return err
}

func parseLevel(level string) (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(strings.ToUpper(level)))
	return l, err
}

// SetOutput redirects the JSON output, mostly for tests that capture log lines.
// Loggers derived before the call write to the new output too.
func SetOutput(w io.Writer) {
	output.Store(newJSONLogger(w, std.level))
}

func newJSONLogger(w io.Writer, lvl *slog.LevelVar) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: lvl,
	}))
}
