package session

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"ppf-ops-platform/internal/agent/gateway"
	"ppf-ops-platform/internal/agent/securestore"
)

// DefaultRefreshInterval is how often the background loop renews the session
// while authenticated.
const DefaultRefreshInterval = 50 * time.Minute

// State is the manager's authentication state.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
)

// Store persists the credential bundle between runs.
type Store interface {
	Get() (*securestore.Record, error)
	Put(rec *securestore.Record) error
	Clear() error
}

// Gateway is the remote auth surface the manager drives.
type Gateway interface {
	Login(ctx context.Context, email, password string) (*gateway.Session, error)
	CreateAccount(ctx context.Context, email, password, name string) (*gateway.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*gateway.Session, error)
	Logout(ctx context.Context, token, refreshToken string) error
	ValidateSession(ctx context.Context, token string) (userID, role string, err error)
	GetUserProfile(ctx context.Context, token string) (*gateway.Profile, error)
}

// Notifier surfaces transient user-facing notices. Implementations must not block.
type Notifier interface {
	Notify(message string)
}

// Manager owns the single authoritative session/profile pair and every
// transition on it. The profile may lag the session: it loads asynchronously
// and is discarded whenever the session it belongs to is replaced.
type Manager struct {
	store    Store
	gw       Gateway
	notifier Notifier

	refreshInterval time.Duration
	refreshing      atomic.Bool

	mu      sync.Mutex
	state   State
	session *gateway.Session
	profile *gateway.Profile
	// generation increments on every session change; async responses carrying
	// an older generation are discarded instead of clobbering newer state.
	generation uint64
}

// NewManager returns an unauthenticated Manager. notifier may be nil.
func NewManager(store Store, gw Gateway, notifier Notifier) *Manager {
	return &Manager{
		store:           store,
		gw:              gw,
		notifier:        notifier,
		refreshInterval: DefaultRefreshInterval,
		state:           StateUnauthenticated,
	}
}

// SetRefreshInterval overrides the background renewal cadence. Call before Run.
func (m *Manager) SetRefreshInterval(d time.Duration) {
	if d > 0 {
		m.refreshInterval = d
	}
}

func (m *Manager) notify(message string) {
	if m.notifier != nil {
		m.notifier.Notify(message)
	}
}

// State returns the current authentication state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns a copy of the active session, or nil when unauthenticated.
func (m *Manager) Session() *gateway.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	cp := *m.session
	return &cp
}

// Profile returns a copy of the loaded profile, or nil when absent. A nil
// profile with an active session just means the async load has not landed.
func (m *Manager) Profile() *gateway.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		return nil
	}
	cp := *m.profile
	return &cp
}

// adopt installs a new session and returns the generation tied to it.
func (m *Manager) adopt(s *gateway.Session) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = s
	m.profile = nil
	m.state = StateAuthenticated
	m.generation++
	return m.generation
}

func (m *Manager) persist(s *gateway.Session) {
	err := m.store.Put(&securestore.Record{
		Token:        s.Token,
		RefreshToken: s.RefreshToken,
		UserID:       s.UserID,
		Role:         s.Role,
		ExpiresAt:    s.ExpiresAt,
	})
	if err != nil {
		log.Printf("session: persisting session failed: %v", err)
	}
}

// Bootstrap restores the persisted session at startup. The stored token is
// validated exactly once; if that fails and a refresh token exists, one
// refresh exchange is attempted before giving up.
func (m *Manager) Bootstrap(ctx context.Context) {
	rec, err := m.store.Get()
	if err != nil {
		log.Printf("session: persisted session unreadable, clearing: %v", err)
		if cerr := m.store.Clear(); cerr != nil {
			log.Printf("session: clearing store failed: %v", cerr)
		}
		m.notify("Your session has expired. Please sign in again.")
		return
	}
	if rec == nil {
		return
	}

	if userID, role, verr := m.gw.ValidateSession(ctx, rec.Token); verr == nil {
		gen := m.adopt(&gateway.Session{
			Token:        rec.Token,
			RefreshToken: rec.RefreshToken,
			UserID:       userID,
			Role:         role,
			ExpiresAt:    rec.ExpiresAt,
		})
		go m.loadProfile(ctx, gen)
		return
	}

	if rec.RefreshToken != "" {
		if s, rerr := m.gw.Refresh(ctx, rec.RefreshToken); rerr == nil {
			m.persist(s)
			gen := m.adopt(s)
			go m.loadProfile(ctx, gen)
			return
		}
	}

	if cerr := m.store.Clear(); cerr != nil {
		log.Printf("session: clearing store failed: %v", cerr)
	}
	m.notify("Your session has expired. Please sign in again.")
}

// SignIn exchanges credentials for a session and loads the profile in the
// background.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*gateway.Session, error) {
	return m.authenticate(ctx, func() (*gateway.Session, error) {
		return m.gw.Login(ctx, email, password)
	})
}

// SignUp creates an account; a successful signup lands authenticated.
func (m *Manager) SignUp(ctx context.Context, email, password, name string) (*gateway.Session, error) {
	return m.authenticate(ctx, func() (*gateway.Session, error) {
		return m.gw.CreateAccount(ctx, email, password, name)
	})
}

func (m *Manager) authenticate(ctx context.Context, exchange func() (*gateway.Session, error)) (*gateway.Session, error) {
	m.mu.Lock()
	m.state = StateAuthenticating
	m.mu.Unlock()

	s, err := exchange()
	if err != nil {
		m.mu.Lock()
		if m.state == StateAuthenticating {
			m.state = StateUnauthenticated
		}
		m.mu.Unlock()
		m.notify(err.Error())
		return nil, err
	}

	m.persist(s)
	gen := m.adopt(s)
	go m.loadProfile(ctx, gen)
	cp := *s
	return &cp, nil
}

// SignOut revokes the session remotely on a best-effort basis and always ends
// unauthenticated with the store cleared.
func (m *Manager) SignOut(ctx context.Context) {
	m.mu.Lock()
	s := m.session
	m.mu.Unlock()

	if s != nil {
		if err := m.gw.Logout(ctx, s.Token, s.RefreshToken); err != nil {
			log.Printf("session: remote logout failed: %v", err)
		}
	}
	if err := m.store.Clear(); err != nil {
		log.Printf("session: clearing store failed: %v", err)
	}

	m.mu.Lock()
	m.session = nil
	m.profile = nil
	m.state = StateUnauthenticated
	m.generation++
	m.mu.Unlock()
}

// RefreshProfile reloads the profile for the active session. No-op when
// unauthenticated.
func (m *Manager) RefreshProfile(ctx context.Context) {
	m.mu.Lock()
	gen := m.generation
	authed := m.state == StateAuthenticated
	m.mu.Unlock()
	if !authed {
		return
	}
	m.loadProfile(ctx, gen)
}

// loadProfile fetches the profile tied to generation gen. A missing profile
// means the account was deleted; expired or rejected credentials force a
// sign-out; anything else (typically a transport blip) is logged and the
// session stays usable.
func (m *Manager) loadProfile(ctx context.Context, gen uint64) {
	m.mu.Lock()
	if gen != m.generation || m.session == nil {
		m.mu.Unlock()
		return
	}
	token := m.session.Token
	m.mu.Unlock()

	p, err := m.gw.GetUserProfile(ctx, token)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		// The session changed while the fetch was in flight.
		return
	}
	if err != nil {
		switch gateway.KindOf(err) {
		case gateway.KindNotFound:
			m.forceSignOutLocked("Your account no longer exists. Please contact an administrator.")
		case gateway.KindExpired, gateway.KindInvalid:
			m.forceSignOutLocked("Your session has expired. Please sign in again.")
		default:
			log.Printf("session: profile load failed, keeping session: %v", err)
		}
		return
	}
	m.profile = p
}

// forceSignOutLocked tears the session down without a remote logout call.
// Caller holds mu.
func (m *Manager) forceSignOutLocked(notice string) {
	if err := m.store.Clear(); err != nil {
		log.Printf("session: clearing store failed: %v", err)
	}
	m.session = nil
	m.profile = nil
	m.state = StateUnauthenticated
	m.generation++
	m.notify(notice)
}

// Run renews the session on a fixed cadence until ctx is cancelled. Ticks that
// arrive while an exchange is still in flight are dropped, not queued.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.RefreshTick(ctx)
		}
	}
}

// RefreshTick performs one background renewal. A failed exchange is logged
// only: the active session is never torn down from the background path.
func (m *Manager) RefreshTick(ctx context.Context) {
	if !m.refreshing.CompareAndSwap(false, true) {
		return
	}
	defer m.refreshing.Store(false)

	m.mu.Lock()
	gen := m.generation
	m.mu.Unlock()

	rec, err := m.store.Get()
	if err != nil || rec == nil || rec.RefreshToken == "" {
		if err != nil {
			log.Printf("session: background refresh skipped, store unreadable: %v", err)
		}
		return
	}

	s, err := m.gw.Refresh(ctx, rec.RefreshToken)
	if err != nil {
		log.Printf("session: background refresh failed: %v", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation || m.state != StateAuthenticated {
		// A sign-out or a new sign-in won the race; the refreshed tokens
		// belong to the session this tick started under, not the current one.
		return
	}
	m.session = s
	m.generation++
	m.persist(s)
}
