package tracking

import (
	"go.temporal.io/sdk/log"
	"go.uber.org/zap"
)

// Logger adapts zap to the Temporal SDK logger
type Logger struct {
	sugar *zap.SugaredLogger
}

var _ log.Logger = (*Logger)(nil)

// NewLogger wraps logger. The Temporal component is added as a field.
func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{sugar: logger.With(zap.String("component", "temporal")).Sugar()}
}

func (l *Logger) Debug(msg string, keyvals ...interface{}) { l.sugar.Debugw(msg, keyvals...) }
func (l *Logger) Info(msg string, keyvals ...interface{})  { l.sugar.Infow(msg, keyvals...) }
func (l *Logger) Warn(msg string, keyvals ...interface{})  { l.sugar.Warnw(msg, keyvals...) }
func (l *Logger) Error(msg string, keyvals ...interface{}) { l.sugar.Errorw(msg, keyvals...) }
