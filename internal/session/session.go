/**
 * @description
 * This file contains the process-wide authentication session manager. It owns
 * the login/logout transitions, restores a persisted session at startup, and
 * handles forced invalidation when the backend rejects the credential.
 *
 * Key features:
 * - Explicit lifecycle: Initializing -> Unauthenticated <-> Authenticated.
 *   Screens must not render until Initialize has completed.
 * - The session is the sole gate for "authenticated": there is no separately
 *   settable flag, and a session without a user is never constructed.
 * - Corrupted persisted state self-heals silently: both entries are discarded
 *   and the manager comes up unauthenticated.
 * - Logout is idempotent, so a user-initiated logout cannot race a forced
 *   invalidation into an inconsistent state.
 */

package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/smartbank/banking-client/internal/domain"
	"github.com/smartbank/banking-client/internal/notify"
)

// State is the lifecycle state of the session manager.
type State int

const (
	// StateInitializing is the startup state before the persisted store has
	// been consulted. Dependent screens block while in this state.
	StateInitializing State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session pairs a credential token with the user it was issued to.
type Session struct {
	Token string
	User  domain.User
}

// Manager is the process-wide authentication session. It is safe for
// concurrent use.
type Manager struct {
	store    *Store
	notifier notify.Notifier
	logger   *slog.Logger

	mu       sync.Mutex
	state    State
	session  Session
	onForced func()
}

// NewManager creates a session manager in the Initializing state. Initialize
// must be called before any dependent code consults the manager.
func NewManager(store *Store, notifier notify.Notifier, logger *slog.Logger) *Manager {
	return &Manager{
		store:    store,
		notifier: notifier,
		logger:   logger,
		state:    StateInitializing,
	}
}

// OnForcedLogout registers the hook invoked after a forced invalidation, in
// addition to the normal logout side effects. The front end uses it to
// navigate back to the login entry point.
func (m *Manager) OnForcedLogout(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onForced = fn
}

// Initialize restores the session from the persisted store. It transitions to
// Authenticated when both the token and a deserializable user are present, and
// to Unauthenticated otherwise. Corrupted entries are discarded rather than
// surfaced: stale local state is an internal consistency issue, not a user
// error.
func (m *Manager) Initialize() {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, rawUser, err := m.store.Load()
	if err != nil {
		m.logger.Warn("discarding unreadable session state", "error", err)
		_ = m.store.Clear()
		m.state = StateUnauthenticated
		return
	}

	if token == "" || len(rawUser) == 0 {
		m.state = StateUnauthenticated
		return
	}

	var user domain.User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		m.logger.Warn("discarding corrupted session state", "error", err)
		_ = m.store.Clear()
		m.state = StateUnauthenticated
		return
	}

	m.session = Session{Token: token, User: user}
	m.state = StateAuthenticated
	m.logger.Info("session restored", "user_id", user.ID)
}

// Login persists the credential and user and transitions to Authenticated.
func (m *Manager) Login(token string, user domain.User) error {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to serialize user: %w", err)
	}

	m.mu.Lock()
	if err := m.store.Save(token, rawUser); err != nil {
		m.mu.Unlock()
		return err
	}
	m.session = Session{Token: token, User: user}
	m.state = StateAuthenticated
	m.mu.Unlock()

	m.notifier.Success("Login successful!")
	return nil
}

// Logout clears the persisted entries and transitions to Unauthenticated.
// Calling it while already unauthenticated changes nothing and emits no
// notification.
func (m *Manager) Logout() {
	m.mu.Lock()
	if m.state != StateAuthenticated {
		m.mu.Unlock()
		return
	}
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("failed to clear persisted session", "error", err)
	}
	m.session = Session{}
	m.state = StateUnauthenticated
	m.mu.Unlock()

	m.notifier.Success("Logged out successfully!")
}

// Invalidate is the forced-invalidation entry point, triggered by any API
// response that reports credential rejection. It logs the user out and fires
// the registered redirect hook. Safe to call from any goroutine and at any
// time, including when already unauthenticated.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	wasAuthenticated := m.state == StateAuthenticated
	fn := m.onForced
	m.mu.Unlock()

	if wasAuthenticated {
		m.logger.Warn("session invalidated by server")
		m.Logout()
	}
	if fn != nil {
		fn()
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Loading reports whether initialization has not yet completed.
func (m *Manager) Loading() bool {
	return m.State() == StateInitializing
}

// IsAuthenticated reports whether a session is active. It is true exactly when
// the manager holds a Session.
func (m *Manager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

// Token returns the current credential token, or "" when unauthenticated. It
// satisfies the bankclient.TokenSource contract.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Token
}

// CurrentUser returns the authenticated user and whether one exists.
func (m *Manager) CurrentUser() (domain.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticated {
		return domain.User{}, false
	}
	return m.session.User, true
}
