// Package realtime owns the single live bidirectional channel to the
// server: connect/disconnect tied to authentication state, bounded
// reconnection, room membership intents, and generic event dispatch.
package realtime

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/classtide/classtide/internal/models"
)

var (
	// ErrAuthRejected means the server refused to authorize the channel.
	// The remedy is a fresh login, not another reconnect attempt.
	ErrAuthRejected = errors.New("realtime auth rejected")

	// ErrServerClosed means the server initiated the disconnect. The
	// manager retries immediately rather than waiting passively.
	ErrServerClosed = errors.New("server closed connection")

	// ErrUnreachable is the terminal state after reconnect attempts are
	// exhausted; recovering requires a fresh login or restart.
	ErrUnreachable = errors.New("connection unreachable, reconnect attempts exhausted")
)

// Identity is the connection-time authentication context the server uses
// to authorize the channel.
type Identity struct {
	UserID   string
	UserType models.Role
}

// IdentityProvider yields the current authenticated identity, if any.
// The manager refuses to connect without one.
type IdentityProvider func() (Identity, bool)

// Envelope is the wire frame: an event name plus an opaque JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Conn is a single live connection. Read blocks until a frame or error;
// transport implementations translate their close semantics into
// ErrAuthRejected / ErrServerClosed where applicable.
type Conn interface {
	Read() (*Envelope, error)
	Write(*Envelope) error
	Close() error
}

// Transport dials new connections. The manager owns every Conn it returns;
// nothing outside this package touches the handle directly.
type Transport interface {
	Dial(ctx context.Context, id Identity) (Conn, error)
}
