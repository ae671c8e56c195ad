// Package logger : enveloppe mince autour de zap.SugaredLogger, pour ne
// pas propager la dépendance zap dans les signatures du reste du code.
package logger

import (
	"strings"

	"go.uber.org/zap"
)

type Logger struct {
	sugar *zap.SugaredLogger
}

func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{sugar: z.Sugar()}, nil
}

// Nop : logger silencieux pour les tests.
func Nop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() { _ = l.sugar.Sync() }

func (l *Logger) Debug(msg string, kv ...interface{}) { l.sugar.Debugw(msg, kv...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.sugar.Infow(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.sugar.Warnw(msg, kv...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.sugar.Errorw(msg, kv...) }
func (l *Logger) Fatal(msg string, kv ...interface{}) { l.sugar.Fatalw(msg, kv...) }

func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(kv...)}
}
