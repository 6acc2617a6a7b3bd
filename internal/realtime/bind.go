package realtime

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/classtide/classtide/internal/session"
)

// IdentityFromSession derives the connection-time identity from the
// session manager's current user.
func IdentityFromSession(s *session.Manager) IdentityProvider {
	return func() (Identity, bool) {
		if !s.IsAuthenticated() {
			return Identity{}, false
		}
		u := s.CurrentUser()
		if u == nil {
			return Identity{}, false
		}
		return Identity{UserID: u.ID, UserType: u.Role}, true
	}
}

// Bind couples the connection lifecycle to authentication state: becoming
// authenticated connects (when autoConnect is set), ceasing to be
// authenticated disconnects. This coupling is what prevents an orphaned
// connection outliving a logout. The returned function unbinds and tears
// the connection down.
func Bind(s *session.Manager, m *Manager, autoConnect bool) func() {
	unsub := s.OnChange(func(st session.State) {
		switch st {
		case session.StateAuthenticated:
			if autoConnect {
				if err := m.Connect(context.Background()); err != nil {
					log.Warn().Err(err).Msg("auto-connect failed")
				}
			}
		default:
			m.Disconnect()
		}
	})

	if autoConnect && s.IsAuthenticated() {
		if err := m.Connect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("auto-connect failed")
		}
	}

	return func() {
		unsub()
		m.Disconnect()
	}
}
