package realtime

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML accepts human-readable durations ("1s", "30s") in the
// config file.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		MaxReconnectAttempts     int    `yaml:"max_reconnect_attempts"`
		ReconnectInitialInterval string `yaml:"reconnect_initial_interval"`
		ReconnectMaxInterval     string `yaml:"reconnect_max_interval"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.MaxReconnectAttempts != 0 {
		c.MaxReconnectAttempts = raw.MaxReconnectAttempts
	}
	for _, f := range []struct {
		name string
		src  string
		dst  *time.Duration
	}{
		{"reconnect_initial_interval", raw.ReconnectInitialInterval, &c.ReconnectInitialInterval},
		{"reconnect_max_interval", raw.ReconnectMaxInterval, &c.ReconnectMaxInterval},
	} {
		if f.src == "" {
			continue
		}
		d, err := time.ParseDuration(f.src)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", f.name, err)
		}
		*f.dst = d
	}

	return nil
}
