// Package config loads the client configuration file. All of the timing
// tunables the platform historically hard-coded (refresh window, idle
// threshold, reconnect budget) are deployment configuration here.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/classtide/classtide/internal/realtime"
	"github.com/classtide/classtide/internal/session"
)

// Config is the full client configuration.
type Config struct {
	Server   ServerConfig    `yaml:"server"`
	Session  session.Config  `yaml:"session"`
	Realtime realtime.Config `yaml:"realtime"`

	// InAppAlerts gates transient toasts for inbound notifications.
	InAppAlerts bool `yaml:"in_app_alerts"`
}

// ServerConfig names the remote endpoints.
type ServerConfig struct {
	BaseURL     string `yaml:"base_url"`
	RealtimeURL string `yaml:"realtime_url"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			BaseURL:     "https://api.classtide.io",
			RealtimeURL: "wss://api.classtide.io/realtime",
		},
		InAppAlerts: true,
	}
}

// DefaultPath returns ~/.classtide/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".classtide", "config.yaml"), nil
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist. Unset fields keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Debug().Str("path", path).Msg("no config file, using defaults")
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	log.Debug().Str("path", path).Msg("config loaded")

	return cfg, nil
}
