package session

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML accepts human-readable durations ("30s", "5m") in the
// config file.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		WatcherInterval   string `yaml:"watcher_interval"`
		RefreshWindow     string `yaml:"refresh_window"`
		IdleThreshold     string `yaml:"idle_threshold"`
		HeartbeatInterval string `yaml:"heartbeat_interval"`
		DefaultSessionTTL string `yaml:"default_session_ttl"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	for _, f := range []struct {
		name string
		src  string
		dst  *time.Duration
	}{
		{"watcher_interval", raw.WatcherInterval, &c.WatcherInterval},
		{"refresh_window", raw.RefreshWindow, &c.RefreshWindow},
		{"idle_threshold", raw.IdleThreshold, &c.IdleThreshold},
		{"heartbeat_interval", raw.HeartbeatInterval, &c.HeartbeatInterval},
		{"default_session_ttl", raw.DefaultSessionTTL, &c.DefaultSessionTTL},
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
