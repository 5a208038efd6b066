package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync/atomic"
)

var (
	std    *sLogger
	output atomic.Pointer[slog.Logger]
)

const actionKey = "action"

func init() {
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelDebug)
	std = &sLogger{level: lvl}
	output.Store(newJSONLogger(os.Stdout, lvl))
}

type sLogger struct {
	level  *slog.LevelVar
	fields []any
}

func (l *sLogger) log(level slog.Level, msgOrFormat string, args []any) {
	if len(args) > 0 {
		msgOrFormat = fmt.Sprintf(msgOrFormat, args...)
	}
	output.Load().With(l.fields...).Log(context.Background(), level, msgOrFormat)
}

// Debug logs a message at DebugLevel. The message includes any fields
// accumulated on the logger.
func (l *sLogger) Debug(msgOrFormat string, args ...any) {
	l.log(slog.LevelDebug, msgOrFormat, args)
}

// Info logs a message at InfoLevel. The message includes any fields
// accumulated on the logger.
func (l *sLogger) Info(msgOrFormat string, args ...any) {
	l.log(slog.LevelInfo, msgOrFormat, args)
}

// Warn logs a message at WarnLevel.
func (l *sLogger) Warn(msgOrFormat string, args ...any) {
	l.log(slog.LevelWarn, msgOrFormat, args)
}

// Error logs a message at ErrorLevel.
func (l *sLogger) Error(msgOrFormat string, args ...any) {
	l.log(slog.LevelError, msgOrFormat, args)
}

// Action logger with just an action key.
func (l *sLogger) Action(action string) StdLogger {
	return l.derive(slog.String(actionKey, action))
}

// With add custom maps for logger
func (l *sLogger) With(m map[string]any) StdLogger {
	return l.derive(tagsToFields(m)...)
}

func (l *sLogger) derive(extra ...any) *sLogger {
	fields := make([]any, 0, len(l.fields)+len(extra))
	fields = append(fields, l.fields...)
	fields = append(fields, extra...)
	return &sLogger{
		level:  l.level,
		fields: fields,
	}
}

// Inject inject data
func (l *sLogger) Inject(m map[string]any) {
	l.fields = append(l.fields, tagsToFields(m)...)
}

func tagsToFields(m map[string]any) []any {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fields := make([]any, len(keys))
	for i, key := range keys {
		switch v := m[key].(type) {
		case string:
			fields[i] = slog.String(key, v)
		case int:
			fields[i] = slog.Int(key, v)
		case int64:
			fields[i] = slog.Int64(key, v)
		case bool:
			fields[i] = slog.Bool(key, v)
		case float64:
			fields[i] = slog.Float64(key, v)
		default:
			fields[i] = slog.Any(key, v)
		}
	}
	return fields
}
