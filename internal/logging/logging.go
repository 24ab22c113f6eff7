// Package logging builds the zap logger used by mdtran commands. Debug to
// warn entries go to a human-readable console core on stderr; errors go only
// to a JSON diagnostic log file, since commands report them to the user
// themselves.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	// File receives error-level entries as JSON. Empty disables the file.
	File string
	// Verbose lowers the console level from warn to debug.
	Verbose bool
	// Console defaults to os.Stderr.
	Console io.Writer
}

// New returns a logger and a function that flushes and closes its outputs.
func New(opts Options) (*zap.Logger, func(), error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	consoleLevel := zapcore.WarnLevel
	if opts.Verbose {
		consoleLevel = zapcore.DebugLevel
	}

	consoleEnc := zap.NewDevelopmentEncoderConfig()
	consoleEnc.EncodeLevel = zapcore.CapitalLevelEncoder
	consoleEnc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")

	belowError := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= consoleLevel && l < zapcore.ErrorLevel
	})
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEnc), zapcore.AddSync(console), belowError),
	}

	closeFile := func() {}
	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		sink, closeSink, err := zap.Open(opts.File)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		closeFile = closeSink

		fileEnc := zap.NewProductionEncoderConfig()
		fileEnc.TimeKey = "timestamp"
		fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEnc), sink, zapcore.ErrorLevel))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	return logger, func() {
		_ = logger.Sync()
		closeFile()
	}, nil
}
