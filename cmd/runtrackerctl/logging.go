package main

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger writes warnings to stderr and, when path is set, everything
// from debug up as JSON to a size-rotated file.
func newLogger(stderr io.Writer, path string) (*zap.Logger, func() error) {
	console := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(stderr),
		zapcore.WarnLevel,
	)
	if path == "" {
		return zap.New(console), func() error { return nil }
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	file := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(rotator),
		zapcore.DebugLevel,
	)
	return zap.New(zapcore.NewTee(console, file)), rotator.Close
}
