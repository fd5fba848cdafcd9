package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "load with defaults (no config file)",
			setup: func(t *testing.T) string {
				chdir(t, t.TempDir())
				t.Setenv("XDG_CONFIG_HOME", t.TempDir())
				return ""
			},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Server.Enabled)
				assert.Equal(t, "127.0.0.1:7878", cfg.Server.Addr())
				assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
				assert.Equal(t, GatewayHosts, cfg.Gateway.Kind)
				assert.Equal(t, "/etc/hosts", cfg.Gateway.HostsPath)
				assert.Equal(t, float64(10080), cfg.Session.MaxMinutes)
				assert.False(t, cfg.Session.AllowRestart)
				assert.Equal(t, float64(25), cfg.Session.DefaultMinutes)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "site_blocker.db", filepath.Base(cfg.Storage.Path))
			},
		},
		{
			name: "load with environment variables",
			setup: func(t *testing.T) string {
				chdir(t, t.TempDir())
				t.Setenv("XDG_CONFIG_HOME", t.TempDir())
				t.Setenv("APP_SERVER_PORT", "9090")
				t.Setenv("APP_GATEWAY_KIND", "memory")
				t.Setenv("APP_SESSION_ALLOWRESTART", "true")
				t.Setenv("APP_LOGGING_LEVEL", "debug")
				return ""
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, GatewayMemory, cfg.Gateway.Kind)
				assert.True(t, cfg.Session.AllowRestart)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name: "load explicit yaml file",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				path := filepath.Join(dir, "blocker.yaml")
				content := "server:\n  enabled: false\n  port: 8181\n" +
					"storage:\n  path: " + filepath.Join(dir, "state.db") + "\n" +
					"gateway:\n  kind: hosts\n  hostspath: " + filepath.Join(dir, "hosts") + "\n" +
					"session:\n  maxminutes: 120\n"
				require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
				return path
			},
			check: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.Server.Enabled)
				assert.Equal(t, 8181, cfg.Server.Port)
				assert.Equal(t, "state.db", filepath.Base(cfg.Storage.Path))
				assert.Equal(t, "hosts", filepath.Base(cfg.Gateway.HostsPath))
				assert.Equal(t, float64(120), cfg.Session.MaxMinutes)
			},
		},
		{
			name: "explicit file missing",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.yaml")
			},
			wantErr: true,
		},
		{
			name: "unknown gateway kind",
			setup: func(t *testing.T) string {
				chdir(t, t.TempDir())
				t.Setenv("XDG_CONFIG_HOME", t.TempDir())
				t.Setenv("APP_GATEWAY_KIND", "iptables")
				return ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setup(t)

			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Server:  ServerConfig{Enabled: true, Host: "127.0.0.1", Port: 7878},
		Storage: StorageConfig{Path: "x.db"},
		Gateway: GatewayConfig{Kind: GatewayMemory},
		Session: SessionConfig{MaxMinutes: 60},
	}
	require.NoError(t, valid.Validate())

	noHosts := valid
	noHosts.Gateway = GatewayConfig{Kind: GatewayHosts}
	assert.Error(t, noHosts.Validate())

	badPort := valid
	badPort.Server.Port = 70000
	assert.Error(t, badPort.Validate())

	disabled := badPort
	disabled.Server.Enabled = false
	assert.NoError(t, disabled.Validate())

	noMax := valid
	noMax.Session.MaxMinutes = 0
	assert.Error(t, noMax.Validate())
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
