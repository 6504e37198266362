package logging

import (
	"fmt"

	"go.temporal.io/sdk/log"
	"go.uber.org/zap"
)

// TemporalLogger routes Temporal SDK, workflow and activity logs into zap.
type TemporalLogger struct {
	zl *zap.Logger
}

var (
	_ log.Logger     = (*TemporalLogger)(nil)
	_ log.WithLogger = (*TemporalLogger)(nil)
)

// NewTemporalLogger wraps zl for client.Options.Logger.
func NewTemporalLogger(zl *zap.Logger) *TemporalLogger {
	return &TemporalLogger{zl: OrNop(zl).WithOptions(zap.AddCallerSkip(1))}
}

func (l *TemporalLogger) Debug(msg string, keyvals ...interface{}) {
	l.zl.Debug(msg, fields(keyvals)...)
}

func (l *TemporalLogger) Info(msg string, keyvals ...interface{}) {
	l.zl.Info(msg, fields(keyvals)...)
}

func (l *TemporalLogger) Warn(msg string, keyvals ...interface{}) {
	l.zl.Warn(msg, fields(keyvals)...)
}

func (l *TemporalLogger) Error(msg string, keyvals ...interface{}) {
	l.zl.Error(msg, fields(keyvals)...)
}

// With returns a logger that always carries keyvals.
func (l *TemporalLogger) With(keyvals ...interface{}) log.Logger {
	return &TemporalLogger{zl: l.zl.With(fields(keyvals)...)}
}

// fields pairs up Temporal's alternating key/value arguments. A dangling
// key is kept under "extra".
func fields(keyvals []interface{}) []zap.Field {
	if len(keyvals) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(keyvals)/2+1)
	for i := 0; i < len(keyvals); i += 2 {
		if i+1 == len(keyvals) {
			out = append(out, zap.Any("extra", keyvals[i]))
			break
		}
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprint(keyvals[i])
		}
		if err, isErr := keyvals[i+1].(error); isErr {
			out = append(out, zap.NamedError(key, err))
			continue
		}
		out = append(out, zap.Any(key, keyvals[i+1]))
	}
	return out
}
