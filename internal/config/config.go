// Package config provides configuration management for the blocker.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppName names the config and data directories.
const AppName = "site_blocker"

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Gateway GatewayConfig
	Session SessionConfig
	Logging LoggingConfig
}

// ServerConfig contains the local control API configuration.
type ServerConfig struct {
	Enabled         bool
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	APIKeys         []string
}

// Addr returns the listen address of the control API.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig points at the sqlite database holding the session record.
type StorageConfig struct {
	Path string
}

// GatewayConfig selects how the rule set is enforced.
type GatewayConfig struct {
	Kind      string
	HostsPath string
}

// Gateway kinds.
const (
	GatewayHosts  = "hosts"
	GatewayMemory = "memory"
)

// SessionConfig contains state machine options.
type SessionConfig struct {
	MaxMinutes     float64
	AllowRestart   bool
	DefaultMinutes float64
	PauseMinutes   float64
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// Load loads configuration from file and environment variables. An explicit
// path overrides the search of ".", "./config" and the user config directory.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, AppName))
		}
	}

	setDefaults(v)

	// Nested keys resolve from APP_SECTION_KEY, e.g. APP_SERVER_PORT.
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the application cannot run with.
func (c *Config) Validate() error {
	switch c.Gateway.Kind {
	case GatewayHosts:
		if c.Gateway.HostsPath == "" {
			return errors.New("gateway.hostspath is required for the hosts gateway")
		}
	case GatewayMemory:
	default:
		return fmt.Errorf("unknown gateway.kind %q", c.Gateway.Kind)
	}
	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Session.MaxMinutes <= 0 {
		return fmt.Errorf("session.maxminutes must be positive, got %v", c.Session.MaxMinutes)
	}
	if c.Storage.Path == "" {
		return errors.New("storage.path is required")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	dataDir := defaultDataDir()

	// Server
	v.SetDefault("server.enabled", true)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 7878)
	v.SetDefault("server.shutdowntimeout", 5*time.Second)
	v.SetDefault("server.apikeys", []string{})

	// Storage
	v.SetDefault("storage.path", filepath.Join(dataDir, "site_blocker.db"))

	// Gateway
	v.SetDefault("gateway.kind", GatewayHosts)
	v.SetDefault("gateway.hostspath", "/etc/hosts")

	// Session
	v.SetDefault("session.maxminutes", 7*24*60)
	v.SetDefault("session.allowrestart", false)
	v.SetDefault("session.defaultminutes", 25)
	v.SetDefault("session.pauseminutes", 5)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, AppName)
	}
	return "."
}
