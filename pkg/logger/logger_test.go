package logger

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		logFile string
		console bool
		wantErr bool
	}{
		{
			name:    "init with debug level, console",
			level:   "debug",
			console: true,
		},
		{
			name:  "init with info level, silent",
			level: "info",
		},
		{
			name:    "init with warn level, console",
			level:   "warn",
			console: true,
		},
		{
			name:    "init with invalid level defaults to info",
			level:   "invalid",
			console: true,
		},
		{
			name:    "init with log file in new directory",
			level:   "info",
			logFile: filepath.Join(t.TempDir(), "logs", "test.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Log = zap.NewNop()

			err := Init(tt.level, tt.logFile, tt.console)
			if (err != nil) != tt.wantErr {
				t.Errorf("Init() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if Log == nil {
				t.Error("Init() did not initialize Log")
			}
		})
	}
}

func TestInitWritesToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "blocker.log")
	if err := Init("debug", logFile, false); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	Log.Info("session transition", zap.String("session_id", "abc"))
	_ = Sync()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("log file is empty")
	}
}

func TestSyncWithNilLogger(t *testing.T) {
	Log = nil
	defer func() { Log = zap.NewNop() }()

	if err := Sync(); err != nil {
		t.Errorf("Sync() error = %v", err)
	}
}
