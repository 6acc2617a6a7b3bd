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
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
		assert.True(t, cfg.InAppAlerts)
		assert.NotEmpty(t, cfg.Server.BaseURL)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
server:
  base_url: https://lms.school.edu
  realtime_url: wss://lms.school.edu/realtime
session:
  refresh_window: 90s
  idle_threshold: 15m
realtime:
  max_reconnect_attempts: 8
in_app_alerts: false
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "https://lms.school.edu", cfg.Server.BaseURL)
		assert.Equal(t, "wss://lms.school.edu/realtime", cfg.Server.RealtimeURL)
		assert.Equal(t, 90*time.Second, cfg.Session.RefreshWindow)
		assert.Equal(t, 15*time.Minute, cfg.Session.IdleThreshold)
		assert.Equal(t, 8, cfg.Realtime.MaxReconnectAttempts)
		assert.False(t, cfg.InAppAlerts)
	})

	t.Run("unparseable file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: ["), 0600))

		_, err := Load(path)
		require.Error(t, err)
	})
}
