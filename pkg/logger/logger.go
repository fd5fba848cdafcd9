package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log = zap.NewNop()

// Init builds the global logger. With a log file the output is JSON; console
// adds stdout, which must stay off while the terminal UI owns the screen.
func Init(level string, logFile string, console bool) error {
	var config zap.Config

	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return err
		}
		config = zap.NewProductionConfig()
		config.OutputPaths = []string{logFile}
		if console {
			config.OutputPaths = append(config.OutputPaths, "stdout")
		}
		config.ErrorOutputPaths = []string{logFile}
	} else {
		config = zap.NewDevelopmentConfig()
		if !console {
			config.OutputPaths = nil
		}
	}

	// Set log level
	switch level {
	case "debug":
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "info":
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	case "warn":
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		config.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	built, err := config.Build()
	if err != nil {
		return err
	}
	Log = built

	return nil
}

func Sync() error {
	if Log != nil {
		return Log.Sync()
	}
	return nil
}
