// Package session owns the authenticated principal's lifecycle: login and
// silent restore, proactive token refresh, expiry detection, activity
// tracking, and the derived permission queries the UI gates on.
package session

import (
	"errors"
	"time"
)

// State is the session lifecycle state. Transitions:
//
//	Anonymous --login/probe success--> Authenticated
//	Authenticated --refresh success--> Authenticated (expiry extended)
//	Authenticated --refresh failure | expiry detected--> Expired
//	Authenticated | Expired --logout--> Anonymous
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

var (
	// ErrNoRefreshToken is returned when a refresh is requested with no
	// refresh token stored. No network call is made.
	ErrNoRefreshToken = errors.New("no refresh token")

	// ErrSessionEnded is returned when an in-flight refresh resolves after
	// the session has already been torn down; the result is discarded.
	ErrSessionEnded = errors.New("session ended")
)

// Config carries the session timing tunables. The zero value is usable;
// withDefaults fills in the recommended production values.
type Config struct {
	// WatcherInterval is how often the background expiry watcher runs.
	WatcherInterval time.Duration `yaml:"watcher_interval"`

	// RefreshWindow triggers a proactive refresh once time remaining
	// until expiry falls inside it.
	RefreshWindow time.Duration `yaml:"refresh_window"`

	// IdleThreshold is how long without observed activity before a
	// sensitive action should demand re-authentication.
	IdleThreshold time.Duration `yaml:"idle_threshold"`

	// HeartbeatInterval is the periodic activity signal while the client
	// is visible.
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`

	// DefaultSessionTTL is the assumed token lifetime when the access
	// token carries no readable expiry claim.
	DefaultSessionTTL time.Duration `yaml:"default_session_ttl"`
}

func (c Config) withDefaults() Config {
	if c.WatcherInterval == 0 {
		c.WatcherInterval = 30 * time.Second
	}
	if c.RefreshWindow == 0 {
		c.RefreshWindow = 60 * time.Second
	}
	if c.IdleThreshold == 0 {
		c.IdleThreshold = 30 * time.Minute
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = 5 * time.Minute
	}
	if c.DefaultSessionTTL == 0 {
		c.DefaultSessionTTL = 15 * time.Minute
	}
	return c
}
