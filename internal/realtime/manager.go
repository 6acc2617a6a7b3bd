package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"

	"github.com/classtide/classtide/internal/clock"
)

// Config carries the reconnection tunables. The zero value is usable;
// withDefaults fills in the recommended production values.
type Config struct {
	// MaxReconnectAttempts bounds automatic reconnection. Past it the
	// manager goes terminal rather than retrying forever.
	MaxReconnectAttempts int `yaml:"max_reconnect_attempts"`

	// ReconnectInitialInterval seeds the exponential backoff schedule.
	ReconnectInitialInterval time.Duration `yaml:"reconnect_initial_interval"`

	// ReconnectMaxInterval caps the backoff schedule.
	ReconnectMaxInterval time.Duration `yaml:"reconnect_max_interval"`
}

func (c Config) withDefaults() Config {
	if c.MaxReconnectAttempts == 0 {
		c.MaxReconnectAttempts = 5
	}
	if c.ReconnectInitialInterval == 0 {
		c.ReconnectInitialInterval = time.Second
	}
	if c.ReconnectMaxInterval == 0 {
		c.ReconnectMaxInterval = 30 * time.Second
	}
	return c
}

// AlertLevel classifies user-visible connection alerts.
type AlertLevel string

const (
	AlertInfo    AlertLevel = "info"
	AlertWarning AlertLevel = "warning"
	AlertError   AlertLevel = "error"
)

// Alert is a short, non-technical message for the user. Technical detail
// is logged, not displayed.
type Alert struct {
	Level   AlertLevel
	Message string
}

// Status is a read-only snapshot of the connection state.
type Status struct {
	Connected    bool
	Reconnecting bool
	Attempts     int
	Terminal     bool
	AuthRejected bool
	Err          string
}

// Handler receives an inbound event payload.
type Handler func(data json.RawMessage)

type subscription struct {
	id int
	fn Handler
}

// Manager owns exactly one live connection per authenticated session. It
// is self-healing under transient failure and torn down promptly on
// logout. The transport handle never escapes it.
type Manager struct {
	transport Transport
	identity  IdentityProvider
	clock     clock.Clock
	cfg       Config

	mu           sync.Mutex
	conn         Conn
	connected    bool
	reconnecting bool
	terminal     bool
	authErr      bool
	lastErr      string
	attempts     int
	gen          int

	handlers map[string][]*subscription
	nextSub  int

	statusSubs map[int]func(Status)
	nextStatus int

	onAlert func(Alert)
}

// NewManager creates a connection manager. The clock may be nil, in which
// case wall time is used.
func NewManager(transport Transport, identity IdentityProvider, clk clock.Clock, cfg Config) *Manager {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Manager{
		transport:  transport,
		identity:   identity,
		clock:      clk,
		cfg:        cfg.withDefaults(),
		handlers:   make(map[string][]*subscription),
		statusSubs: make(map[int]func(Status)),
	}
}

// OnAlert registers the sink for user-visible connection alerts. Must be
// set before Connect.
func (m *Manager) OnAlert(fn func(Alert)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onAlert = fn
}

// Connect opens the connection. A no-op when already connected or when no
// authenticated identity is available; returns ErrUnreachable in the
// terminal state.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.connected {
		m.mu.Unlock()
		log.Debug().Msg("connect skipped: already connected")
		return nil
	}
	if m.terminal {
		m.mu.Unlock()
		return ErrUnreachable
	}
	gen := m.gen
	m.mu.Unlock()

	err := m.establish(ctx, gen)
	if err != nil && !errors.Is(err, ErrAuthRejected) {
		go m.reconnectLoop(gen)
	}
	return err
}

// Disconnect tears the connection down and resets all local state.
// Idempotent; also clears the terminal state so a fresh login can
// reconnect.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.gen++
	if m.conn != nil {
		if err := m.conn.Close(); err != nil {
			log.Debug().Err(err).Msg("close on disconnect")
		}
		m.conn = nil
	}
	wasConnected := m.connected
	m.connected = false
	m.reconnecting = false
	m.terminal = false
	m.authErr = false
	m.lastErr = ""
	m.attempts = 0
	fns, snap := m.statusSnapshotLocked()
	m.mu.Unlock()

	if wasConnected {
		log.Info().Msg("realtime disconnected")
	}
	notifyStatus(fns, snap)
}

// IsConnected reports whether the connection is live.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Status returns a snapshot of the connection state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked()
}

// OnStatusChange registers a callback for connection state changes. The
// returned function detaches it.
func (m *Manager) OnStatusChange(fn func(Status)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextStatus
	m.nextStatus++
	m.statusSubs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.statusSubs, id)
	}
}

// Emit sends a fire-and-forget event. When not connected this is a logged
// no-op, never an error or a queued send; callers needing delivery
// guarantees must check IsConnected first.
func (m *Manager) Emit(event string, data any) {
	m.mu.Lock()
	conn := m.conn
	connected := m.connected
	m.mu.Unlock()

	if !connected || conn == nil {
		log.Warn().Str("event", event).Msg("emit dropped: not connected")
		return
	}

	raw, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("failed to marshal event payload")
		return
	}

	if err := conn.Write(&Envelope{Event: event, Data: raw}); err != nil {
		log.Warn().Err(err).Str("event", event).Msg("emit failed")
	}
}

// On registers a handler for an inbound event and returns a detach
// function. Calling the detach function is safe even after the connection
// has been torn down.
func (m *Manager) On(event string, fn Handler) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.handlers[event] = append(m.handlers[event], &subscription{id: id, fn: fn})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		subs := m.handlers[event]
		for i, s := range subs {
			if s.id == id {
				m.handlers[event] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Off removes all handlers for an event.
func (m *Manager) Off(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handlers, event)
}

// establish performs one dial attempt for the given connection generation.
// A generation mismatch after the dial means a disconnect happened in the
// meantime; the fresh connection is discarded rather than installed.
func (m *Manager) establish(ctx context.Context, gen int) error {
	m.mu.Lock()
	if m.gen != gen || m.connected {
		m.mu.Unlock()
		return nil
	}
	id, ok := m.identity()
	if !ok {
		m.mu.Unlock()
		log.Debug().Msg("connect skipped: no authenticated user")
		return nil
	}
	m.mu.Unlock()

	conn, err := m.transport.Dial(ctx, id)

	m.mu.Lock()
	if m.gen != gen || m.connected {
		m.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return nil
	}

	if err != nil {
		m.attempts++
		m.lastErr = err.Error()
		authRej := errors.Is(err, ErrAuthRejected)
		if authRej {
			m.authErr = true
		}
		exceeded := !authRej && m.attempts >= m.cfg.MaxReconnectAttempts
		fns, snap := m.statusSnapshotLocked()
		m.mu.Unlock()

		log.Warn().Err(err).Int("attempts", snap.Attempts).Msg("realtime connect failed")
		if authRej {
			m.alert(AlertError, "Your session could not be verified. Please log in again.")
		} else if exceeded {
			m.alert(AlertWarning, "Connection failed. Please check your connection.")
		}
		notifyStatus(fns, snap)
		return err
	}

	m.conn = conn
	m.connected = true
	m.reconnecting = false
	m.attempts = 0
	m.lastErr = ""
	m.authErr = false
	go m.readLoop(conn, gen)
	fns, snap := m.statusSnapshotLocked()
	m.mu.Unlock()

	log.Info().Str("user_id", id.UserID).Str("user_type", string(id.UserType)).Msg("realtime connected")
	notifyStatus(fns, snap)
	return nil
}

// readLoop pumps inbound frames until the connection fails or is torn
// down.
func (m *Manager) readLoop(conn Conn, gen int) {
	for {
		env, err := conn.Read()
		if err != nil {
			m.handleReadError(err, gen)
			return
		}
		m.dispatch(env)
	}
}

func (m *Manager) handleReadError(err error, gen int) {
	m.mu.Lock()
	if m.gen != gen {
		// Deliberate disconnect already cleaned up.
		m.mu.Unlock()
		return
	}
	m.connected = false
	m.conn = nil
	m.lastErr = err.Error()
	authRej := errors.Is(err, ErrAuthRejected)
	if authRej {
		m.authErr = true
	}
	fns, snap := m.statusSnapshotLocked()
	m.mu.Unlock()

	notifyStatus(fns, snap)

	if authRej {
		log.Warn().Err(err).Msg("realtime channel auth rejected")
		m.alert(AlertError, "Your session is no longer valid. Please log in again.")
		return
	}

	if errors.Is(err, ErrServerClosed) {
		// Server-initiated disconnect: attempt a manual reconnect right
		// away instead of waiting out a backoff interval.
		log.Info().Msg("server closed connection, reconnecting")
		if rerr := m.establish(context.Background(), gen); rerr == nil {
			return
		}
		go m.reconnectLoop(gen)
		return
	}

	log.Warn().Err(err).Msg("realtime connection lost")
	go m.reconnectLoop(gen)
}

// reconnectLoop retries with exponential backoff until connected, the
// attempt budget runs out, or the generation is invalidated by a
// deliberate disconnect.
func (m *Manager) reconnectLoop(gen int) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = m.cfg.ReconnectInitialInterval
	b.MaxInterval = m.cfg.ReconnectMaxInterval

	for {
		m.mu.Lock()
		if m.gen != gen || m.connected || m.terminal {
			m.mu.Unlock()
			return
		}
		if m.attempts >= m.cfg.MaxReconnectAttempts {
			m.terminal = true
			m.reconnecting = false
			m.lastErr = "reconnection failed"
			fns, snap := m.statusSnapshotLocked()
			m.mu.Unlock()

			log.Error().Int("attempts", snap.Attempts).Msg("reconnect attempts exhausted")
			m.alert(AlertError, "Unable to restore the connection. Please reload the app.")
			notifyStatus(fns, snap)
			return
		}
		m.reconnecting = true
		m.mu.Unlock()

		<-m.clock.After(b.NextBackOff())

		err := m.establish(context.Background(), gen)
		if err == nil {
			m.mu.Lock()
			restored := m.connected && m.gen == gen
			m.mu.Unlock()
			if restored {
				m.alert(AlertInfo, "Connection restored.")
				return
			}
			// Identity disappeared or a disconnect raced us; stop quietly.
			return
		}
		if errors.Is(err, ErrAuthRejected) {
			return
		}
	}
}

// dispatch fans an inbound frame out to subscribers. Handler panics are
// contained here and logged, never propagated into callers.
func (m *Manager) dispatch(env *Envelope) {
	m.mu.Lock()
	subs := make([]*subscription, len(m.handlers[env.Event]))
	copy(subs, m.handlers[env.Event])
	m.mu.Unlock()

	for _, s := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Str("event", env.Event).Any("panic", r).Msg("event handler panicked")
				}
			}()
			s.fn(env.Data)
		}()
	}
}

func (m *Manager) statusLocked() Status {
	return Status{
		Connected:    m.connected,
		Reconnecting: m.reconnecting,
		Attempts:     m.attempts,
		Terminal:     m.terminal,
		AuthRejected: m.authErr,
		Err:          m.lastErr,
	}
}

func (m *Manager) statusSnapshotLocked() ([]func(Status), Status) {
	fns := make([]func(Status), 0, len(m.statusSubs))
	for _, fn := range m.statusSubs {
		fns = append(fns, fn)
	}
	return fns, m.statusLocked()
}

func notifyStatus(fns []func(Status), snap Status) {
	for _, fn := range fns {
		fn(snap)
	}
}

func (m *Manager) alert(level AlertLevel, msg string) {
	m.mu.Lock()
	fn := m.onAlert
	m.mu.Unlock()
	if fn != nil {
		fn(Alert{Level: level, Message: msg})
	}
}
