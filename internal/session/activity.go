package session

import (
	"github.com/rs/zerolog/log"
)

// Touch records an observed user interaction (pointer, keyboard, focus,
// and friends in a UI host; command invocations in the CLI). Ignored when
// the session is not live.
func (m *Manager) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticated {
		return
	}
	m.lastActivity = m.clock.Now()
}

// SetVisible records foreground/background visibility. Becoming visible
// counts as activity; the heartbeat only counts while visible.
func (m *Manager) SetVisible(visible bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visible = visible
	if visible && m.state == StateAuthenticated {
		m.lastActivity = m.clock.Now()
	}
}

// RequiresReauth reports whether the idle threshold has elapsed since the
// last observed activity. It does not log the user out; it is a signal for
// the caller to demand a step-up before a sensitive action.
func (m *Manager) RequiresReauth() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticated {
		return false
	}
	return m.clock.Now().Sub(m.lastActivity) > m.cfg.IdleThreshold
}

// StartActivityTracking installs the heartbeat. Guarded so repeated
// mount/unmount cycles never stack duplicate trackers; a second call while
// tracking is a no-op.
func (m *Manager) StartActivityTracking() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticated {
		return
	}
	m.startTrackingLocked()
}

// StopActivityTracking tears the heartbeat down. Idempotent.
func (m *Manager) StopActivityTracking() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopTrackingLocked()
}

// Tracking reports whether the activity heartbeat is installed.
func (m *Manager) Tracking() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tracking
}

func (m *Manager) startTrackingLocked() {
	if m.tracking {
		return
	}
	m.tracking = true
	stop := make(chan struct{})
	m.trackerStop = stop
	go m.heartbeat(stop)

	log.Debug().Msg("activity tracking started")
}

func (m *Manager) stopTrackingLocked() {
	if !m.tracking {
		return
	}
	close(m.trackerStop)
	m.trackerStop = nil
	m.tracking = false

	log.Debug().Msg("activity tracking stopped")
}

func (m *Manager) heartbeat(stop chan struct{}) {
	t := m.clock.NewTicker(m.cfg.HeartbeatInterval)
	defer t.Stop()

	for {
		select {
		case <-t.Chan():
			m.mu.Lock()
			if m.visible && m.state == StateAuthenticated {
				m.lastActivity = m.clock.Now()
			}
			m.mu.Unlock()
		case <-stop:
			return
		}
	}
}
