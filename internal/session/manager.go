package session

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/classtide/classtide/internal/api"
	"github.com/classtide/classtide/internal/authz"
	"github.com/classtide/classtide/internal/clock"
	"github.com/classtide/classtide/internal/models"
	"github.com/classtide/classtide/internal/tokenstore"
)

// Manager is the session state machine. All mutation goes through it; the
// token store is written only from here.
type Manager struct {
	api    api.AuthClient
	tokens tokenstore.Store
	clock  clock.Clock
	cfg    Config

	mu            sync.Mutex
	state         State
	user          *models.User
	perms         []authz.Permission
	expiry        time.Time
	lastActivity  time.Time
	visible       bool
	expiredReason string

	inflight *refreshCall

	watcherStop chan struct{}
	tracking    bool
	trackerStop chan struct{}

	subs   map[int]func(State)
	nextID int
}

type refreshCall struct {
	done chan struct{}
	err  error
}

// NewManager creates a session manager. The clock may be nil, in which case
// wall time is used.
func NewManager(client api.AuthClient, tokens tokenstore.Store, clk clock.Clock, cfg Config) *Manager {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Manager{
		api:     client,
		tokens:  tokens,
		clock:   clk,
		cfg:     cfg.withDefaults(),
		state:   StateAnonymous,
		visible: true,
		subs:    make(map[int]func(State)),
	}
}

// OnChange registers a callback invoked (outside the manager's lock) on
// every state transition. The returned function detaches it.
func (m *Manager) OnChange(fn func(State)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsAuthenticated reports whether the session is live.
func (m *Manager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

// CurrentUser returns a copy of the authenticated user, or nil.
func (m *Manager) CurrentUser() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Expiry returns the current session expiry instant (zero when anonymous).
func (m *Manager) Expiry() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiry
}

// LastActivity returns the last observed user-activity instant.
func (m *Manager) LastActivity() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActivity
}

// ExpiredReason explains why the session ended, for the "your session
// ended" UI. Empty unless state is Expired.
func (m *Manager) ExpiredReason() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiredReason
}

// Login authenticates with email and password, stores the returned token
// pair, and transitions to Authenticated.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.notify(m.transition(StateAuthenticating))

	res, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.mu.Lock()
		fns, st := m.clearSessionLocked("")
		m.mu.Unlock()
		m.notify(fns, st)
		return fmt.Errorf("login failed: %w", err)
	}

	if err := m.tokens.SetTokens(res.AccessToken, res.RefreshToken); err != nil {
		m.mu.Lock()
		fns, st := m.clearSessionLocked("")
		m.mu.Unlock()
		m.notify(fns, st)
		return fmt.Errorf("failed to store tokens: %w", err)
	}

	m.mu.Lock()
	m.establishLocked(res.User, res.AccessToken)
	fns, st := m.setStateLocked(StateAuthenticated)
	m.mu.Unlock()
	m.notify(fns, st)

	log.Info().Str("user_id", res.User.ID).Str("role", string(res.User.Role)).Msg("logged in")

	return nil
}

// CheckAuth probes whether a stored token still maps to a live session and
// silently restores it if so. Never returns an error; all failure funnels
// into the false return and an Anonymous transition.
func (m *Manager) CheckAuth(ctx context.Context) bool {
	token := m.tokens.Token()
	if token == "" {
		m.mu.Lock()
		fns, st := m.clearSessionLocked("")
		m.mu.Unlock()
		m.notify(fns, st)
		return false
	}

	res, err := m.api.CheckSession(ctx, token)
	if err != nil || !res.Authenticated || res.User == nil {
		if err != nil {
			log.Debug().Err(err).Msg("session check failed")
		}
		if cerr := m.tokens.Clear(); cerr != nil {
			log.Warn().Err(cerr).Msg("failed to clear tokens")
		}
		m.mu.Lock()
		fns, st := m.clearSessionLocked("")
		m.mu.Unlock()
		m.notify(fns, st)
		return false
	}

	m.mu.Lock()
	m.establishLocked(res.User, token)
	fns, st := m.setStateLocked(StateAuthenticated)
	m.mu.Unlock()
	m.notify(fns, st)

	log.Debug().Str("user_id", res.User.ID).Msg("session restored")

	return true
}

// RefreshSession rotates the access token and extends expiry. Concurrent
// calls are single-flight: a second caller waits on the pending request
// and shares its result rather than issuing a duplicate rotation.
func (m *Manager) RefreshSession(ctx context.Context) error {
	m.mu.Lock()
	if call := m.inflight; call != nil {
		m.mu.Unlock()
		<-call.done
		return call.err
	}

	refresh := m.tokens.RefreshToken()
	if refresh == "" {
		fns, st := m.expireLocked("no refresh token")
		m.mu.Unlock()
		m.notify(fns, st)
		return ErrNoRefreshToken
	}

	call := &refreshCall{done: make(chan struct{})}
	m.inflight = call
	m.mu.Unlock()

	res, err := m.api.Refresh(ctx, refresh)

	m.mu.Lock()
	m.inflight = nil

	var fns []func(State)
	var st State
	switch {
	case m.state != StateAuthenticated:
		// The session was torn down while the refresh was in flight.
		// Applying the result now would resurrect a dead session.
		call.err = ErrSessionEnded
	case err != nil:
		fns, st = m.expireLocked("session refresh failed")
		call.err = fmt.Errorf("refresh failed: %w", err)
	default:
		newRefresh := res.RefreshToken
		if newRefresh == "" {
			newRefresh = refresh
		}
		if serr := m.tokens.SetTokens(res.AccessToken, newRefresh); serr != nil {
			fns, st = m.expireLocked("failed to store refreshed tokens")
			call.err = serr
			break
		}
		m.expiry = m.expiryFromToken(res.AccessToken)
		log.Debug().Time("expiry", m.expiry).Msg("session refreshed")
	}
	m.mu.Unlock()

	close(call.done)
	if fns != nil {
		m.notify(fns, st)
	}
	return call.err
}

// Logout ends the session. With everywhere set, the remote
// logout-everywhere endpoint is called first, best-effort; its failure
// never blocks the local logout. Credentials are cleared before the state
// change is announced so an in-flight reconnect cannot pick up a stale
// token.
func (m *Manager) Logout(ctx context.Context, everywhere bool) {
	if everywhere {
		if token := m.tokens.Token(); token != "" {
			if err := m.api.LogoutAll(ctx, token); err != nil {
				log.Warn().Err(err).Msg("logout-everywhere call failed")
			}
		}
	}

	if err := m.tokens.Clear(); err != nil {
		log.Warn().Err(err).Msg("failed to clear tokens")
	}

	m.mu.Lock()
	fns, st := m.clearSessionLocked("")
	m.mu.Unlock()
	m.notify(fns, st)

	log.Info().Msg("logged out")
}

// HasRole reports whether the authenticated user holds the given role.
func (m *Manager) HasRole(role models.Role) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateAuthenticated && m.user != nil && m.user.Role == role
}

// HasPermission checks the permission set captured at login/refresh time.
func (m *Manager) HasPermission(perm authz.Permission) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateAuthenticated && slices.Contains(m.perms, perm)
}

// HasAnyPermission reports whether any of the listed permissions is held.
func (m *Manager) HasAnyPermission(perms ...authz.Permission) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticated {
		return false
	}
	for _, p := range perms {
		if slices.Contains(m.perms, p) {
			return true
		}
	}
	return false
}

// CanAccessResource checks the role-based resource/action table.
// Unauthenticated always fails.
func (m *Manager) CanAccessResource(resource, action string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticated || m.user == nil {
		return false
	}
	return authz.CanAccessResource(m.user.Role, resource, action)
}

// establishLocked populates the session after a successful login or probe
// and starts the background watcher and activity tracker.
func (m *Manager) establishLocked(user *models.User, accessToken string) {
	m.user = user
	m.perms = authz.PermissionsFor(user.Role)
	m.expiry = m.expiryFromToken(accessToken)
	m.lastActivity = m.clock.Now()
	m.expiredReason = ""
	m.startWatcherLocked()
	m.startTrackingLocked()
}

// expireLocked force-ends the session, preserving the user record so the
// UI can explain "your session ended" rather than silently looking logged
// out. Returns the callbacks to notify after unlocking.
func (m *Manager) expireLocked(reason string) ([]func(State), State) {
	m.stopBackgroundLocked()
	if err := m.tokens.Clear(); err != nil {
		log.Warn().Err(err).Msg("failed to clear tokens")
	}
	m.expiredReason = reason
	log.Info().Str("reason", reason).Msg("session expired")
	return m.setStateLocked(StateExpired)
}

// clearSessionLocked resets to Anonymous, dropping the user record.
func (m *Manager) clearSessionLocked(reason string) ([]func(State), State) {
	m.stopBackgroundLocked()
	m.user = nil
	m.perms = nil
	m.expiry = time.Time{}
	m.expiredReason = reason
	return m.setStateLocked(StateAnonymous)
}

func (m *Manager) stopBackgroundLocked() {
	if m.watcherStop != nil {
		close(m.watcherStop)
		m.watcherStop = nil
	}
	m.stopTrackingLocked()
}

// setStateLocked transitions state and returns the subscriber snapshot to
// invoke after the lock is released. Nil when the state did not change.
func (m *Manager) setStateLocked(next State) ([]func(State), State) {
	if m.state == next {
		return nil, next
	}
	m.state = next

	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	return fns, next
}

func (m *Manager) transition(next State) ([]func(State), State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setStateLocked(next)
}

func (m *Manager) notify(fns []func(State), st State) {
	for _, fn := range fns {
		fn(st)
	}
}

// expiryFromToken reads the exp claim from the access token without
// verifying the signature; validation is the server's job, the client only
// needs the deadline for its refresh schedule.
func (m *Manager) expiryFromToken(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	log.Debug().Msg("access token has no readable expiry, assuming default TTL")
	return m.clock.Now().Add(m.cfg.DefaultSessionTTL)
}

// startWatcherLocked starts the background expiry watcher if not running.
func (m *Manager) startWatcherLocked() {
	if m.watcherStop != nil {
		return
	}
	stop := make(chan struct{})
	m.watcherStop = stop
	go m.watch(stop)
}

func (m *Manager) watch(stop chan struct{}) {
	t := m.clock.NewTicker(m.cfg.WatcherInterval)
	defer t.Stop()

	for {
		select {
		case <-t.Chan():
			m.watchTick()
		case <-stop:
			return
		}
	}
}

// watchTick enforces the hard expiry boundary and schedules proactive
// refresh inside the refresh window.
func (m *Manager) watchTick() {
	m.mu.Lock()
	if m.state != StateAuthenticated {
		m.mu.Unlock()
		return
	}

	remaining := m.expiry.Sub(m.clock.Now())
	if remaining <= 0 {
		fns, st := m.expireLocked("session expired")
		m.mu.Unlock()
		m.notify(fns, st)
		return
	}

	needRefresh := remaining <= m.cfg.RefreshWindow && m.inflight == nil
	m.mu.Unlock()

	if needRefresh {
		if err := m.RefreshSession(context.Background()); err != nil {
			log.Warn().Err(err).Msg("proactive session refresh failed")
		}
	}
}
