// Package config provides configuration management for xssh.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration. It is constructed once
// per run and passed by value into each component: there is no shared
// mutable run state.
type Config struct {
	SSHConfig      string        `mapstructure:"ssh-config"`      // Host-alias registry source
	Inventory      string        `mapstructure:"inventory"`       // Optional YAML inventory overlay
	Port           int           `mapstructure:"port"`            // SSH port override (0 uses the default)
	ConnectTimeout time.Duration `mapstructure:"connect-timeout"` // Per-connection timeout
	LogLevel       string        `mapstructure:"log-level"`       // Log level (debug, info, error)
	LogFormat      string        `mapstructure:"log-format"`      // Log format (json, text)
	LogFile        string        `mapstructure:"log-file"`        // Optional log file
}

// Manager loads and validates configuration from defaults, config files,
// and environment variables.
type Manager struct {
	v *viper.Viper
}

// NewManager creates a configuration manager.
func NewManager() *Manager {
	return &Manager{v: viper.New()}
}

// setDefaults establishes default configuration values.
func (m *Manager) setDefaults() {
	sshConfig := ""
	if home, err := os.UserHomeDir(); err == nil {
		sshConfig = filepath.Join(home, ".ssh", "config")
	}
	m.v.SetDefault("ssh-config", sshConfig)
	m.v.SetDefault("inventory", "")
	m.v.SetDefault("port", 0)
	m.v.SetDefault("connect-timeout", 5*time.Second)
	m.v.SetDefault("log-level", "info")
	m.v.SetDefault("log-format", "text")
	m.v.SetDefault("log-file", "")
}

// Load reads configuration from all sources with proper precedence:
// defaults, then an optional config file, then XSSH_* environment
// variables.
func (m *Manager) Load() (*Config, error) {
	m.setDefaults()

	m.v.SetConfigName("config")
	m.v.SetConfigType("yaml")
	m.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		m.v.AddConfigPath(filepath.Join(home, ".config", "xssh"))
	}

	m.v.SetEnvPrefix("XSSH")
	m.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	m.v.AutomaticEnv()

	if err := m.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures configuration values are valid and consistent.
func Validate(cfg *Config) error {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("port %d out of valid range (0-65535)", cfg.Port)
	}
	if cfg.ConnectTimeout < 0 {
		return fmt.Errorf("connect-timeout must be non-negative, got %v", cfg.ConnectTimeout)
	}

	switch cfg.LogLevel {
	case "debug", "info", "error":
	default:
		return fmt.Errorf("invalid log level '%s': must be one of 'debug', 'info', or 'error'", cfg.LogLevel)
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format '%s': must be 'json' or 'text'", cfg.LogFormat)
	}

	return nil
}
