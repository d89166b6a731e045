// Package logging supplies the Logger interface referenced by the core
// configuration and its default zap-backed implementation.
package logging

import "go.uber.org/zap"

// Logger is the logging contract every component receives through Config.
// Components never construct their own logger.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	With(fields ...any) Logger
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// DefaultLogger returns the zap-backed default Logger implementation used
// when a Config is constructed without WithLogger.
func DefaultLogger() Logger {
	z, err := zap.NewProduction()
	if err != nil {
		z = zap.NewNop()
	}
	return &zapLogger{sugar: z.Sugar()}
}

// NewNop returns a Logger that discards everything, useful in tests.
func NewNop() Logger {
	return &zapLogger{sugar: zap.NewNop().Sugar()}
}

func (l *zapLogger) Debugf(format string, args ...any) { l.sugar.Debugf(format, args...) }
func (l *zapLogger) Infof(format string, args ...any)  { l.sugar.Infof(format, args...) }
func (l *zapLogger) Warnf(format string, args ...any)  { l.sugar.Warnf(format, args...) }
func (l *zapLogger) Errorf(format string, args ...any) { l.sugar.Errorf(format, args...) }

func (l *zapLogger) With(fields ...any) Logger {
	return &zapLogger{sugar: l.sugar.With(fields...)}
}
