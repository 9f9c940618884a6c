// Package logger builds the zap logger shared by every stage of a run.
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options holds the configuration for creating a new logger instance.
type Options struct {
	// Debug lowers the level from info to debug.
	Debug bool

	// Output specifies where logs should be written.
	// If nil, defaults to os.Stderr
	Output io.Writer
}

// New creates a console-encoded logger.
//
// Example:
//
//	log := logger.New(logger.Options{Debug: true})
//	log.Info("scan started", zap.String("path", root))
func New(opts Options) *zap.Logger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05"),
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(opts.Output),
		level(opts.Debug),
	)

	return zap.New(core)
}

func level(debug bool) zapcore.LevelEnabler {
	if debug {
		return zapcore.DebugLevel
	}

	return zapcore.InfoLevel
}
