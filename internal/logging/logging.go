// Package logging builds the zap logger shared by the commands.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// sugared zap logger used across the CLI
type Logger struct {
	*zap.SugaredLogger
}

// logger settings beyond verbosity
type Options struct {
	Verbose bool
	// silence console output below warnings
	Quiet bool
	// optional path of a rotated JSON log file
	File string
}

// New builds the console logger, adding a rotated JSON file core when
// opts.File is set.
func New(opts Options) *Logger {
	level := zapcore.InfoLevel
	switch {
	case opts.Verbose:
		level = zapcore.DebugLevel
	case opts.Quiet:
		level = zapcore.WarnLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.Lock(os.Stderr),
			level,
		),
	}

	if file := strings.TrimSpace(opts.File); file != "" {
		w := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(w),
			zapcore.DebugLevel,
		))
	}

	return &Logger{zap.New(zapcore.NewTee(cores...)).Sugar()}
}

// logger that discards everything
func Nop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}

// Named returns a child logger tagged with a component name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{l.SugaredLogger.Named(name)}
}
