package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console zap logger named after the given component.
func New(name string, level string) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stdout),
		zap.NewAtomicLevelAt(ParseLevel(level)),
	)
	return zap.New(core, zap.AddCaller()).Named(name)
}

// ParseLevel falls back to info for anything zap does not recognise.
func ParseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// BadgerLogger lets badger write through zap.
type BadgerLogger struct {
	log *zap.SugaredLogger
}

func NewBadgerLogger(log *zap.Logger) *BadgerLogger {
	return &BadgerLogger{log.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (b *BadgerLogger) Errorf(template string, args ...interface{}) {
	b.log.Errorf(template, args...)
}

func (b *BadgerLogger) Warningf(template string, args ...interface{}) {
	b.log.Warnf(template, args...)
}

func (b *BadgerLogger) Infof(template string, args ...interface{}) {
	b.log.Infof(template, args...)
}

func (b *BadgerLogger) Debugf(template string, args ...interface{}) {
	b.log.Debugf(template, args...)
}
