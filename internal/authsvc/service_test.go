package authsvc

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	identitydomain "ppf-ops-platform/internal/identity/domain"
	"ppf-ops-platform/internal/security"
	sessiondomain "ppf-ops-platform/internal/session/domain"
	userdomain "ppf-ops-platform/internal/user/domain"
)

type memUsers struct {
	mu sync.Mutex
	m  map[string]*userdomain.User
}

func newMemUsers() *memUsers { return &memUsers{m: make(map[string]*userdomain.User)} }

func (r *memUsers) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.m[id]; ok {
		u2 := *u
		return &u2, nil
	}
	return nil, nil
}

func (r *memUsers) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.m {
		if u.Email == email {
			u2 := *u
			return &u2, nil
		}
	}
	return nil, nil
}

func (r *memUsers) Create(ctx context.Context, u *userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u2 := *u
	r.m[u.ID] = &u2
	return nil
}

type memIdentities struct {
	mu sync.Mutex
	m  []*identitydomain.Identity
}

func (r *memIdentities) GetByUserAndProvider(ctx context.Context, userID string, provider identitydomain.IdentityProvider) (*identitydomain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.m {
		if i.UserID == userID && i.Provider == provider {
			i2 := *i
			return &i2, nil
		}
	}
	return nil, nil
}

func (r *memIdentities) Create(ctx context.Context, i *identitydomain.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i2 := *i
	r.m = append(r.m, &i2)
	return nil
}

type memSessions struct {
	mu sync.Mutex
	m  map[string]*sessiondomain.Session
}

func newMemSessions() *memSessions {
	return &memSessions{m: make(map[string]*sessiondomain.Session)}
}

func (r *memSessions) GetByID(ctx context.Context, id string) (*sessiondomain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.m[id]; ok {
		s2 := *s
		return &s2, nil
	}
	return nil, nil
}

func (r *memSessions) Create(ctx context.Context, s *sessiondomain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s2 := *s
	r.m[s.ID] = &s2
	return nil
}

func (r *memSessions) Revoke(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.m[id]; ok && s.RevokedAt == nil {
		now := time.Now().UTC()
		s.RevokedAt = &now
	}
	return nil
}

func (r *memSessions) RevokeAllSessionsByUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, s := range r.m {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
		}
	}
	return nil
}

func (r *memSessions) UpdateRefreshToken(ctx context.Context, sessionID, jti, refreshTokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.m[sessionID]; ok {
		s.RefreshJti = jti
		s.RefreshTokenHash = refreshTokenHash
	}
	return nil
}

func (r *memSessions) UpdateLastSeen(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.m[id]; ok {
		s.LastSeenAt = &at
	}
	return nil
}

const testPassword = "Sup3r-secret-pw!"

func newTestService(t *testing.T) (*AuthService, *memUsers, *memSessions) {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	users := newMemUsers()
	sessions := newMemSessions()
	svc := NewAuthService(users, &memIdentities{}, sessions,
		security.NewHasher(4), tokens, 168*time.Hour, nil)
	return svc, users, sessions
}

func register(t *testing.T, svc *AuthService) *AuthResult {
	t.Helper()
	res, err := svc.Register(context.Background(), "tech@shop.test", testPassword, "Taylor")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return res
}

func TestRegister_ReturnsSession(t *testing.T) {
	svc, users, _ := newTestService(t)
	res := register(t, svc)

	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Error("expected token pair on signup")
	}
	if res.Role != string(userdomain.DefaultRole) {
		t.Errorf("Role = %q, want default %q", res.Role, userdomain.DefaultRole)
	}
	u, _ := users.GetByID(context.Background(), res.UserID)
	if u == nil {
		t.Fatal("user not persisted")
	}
	if u.Role != userdomain.DefaultRole {
		t.Errorf("persisted role = %q, want viewer", u.Role)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc)
	_, err := svc.Register(context.Background(), "TECH@shop.test", testPassword, "Other")
	if !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Errorf("err = %v, want ErrEmailAlreadyRegistered", err)
	}
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	cases := []string{"short", "alllowercase1!aa", "ALLUPPERCASE1!AA", "NoNumbersHere!!", "NoSymbols12345a"}
	for _, pw := range cases {
		if _, err := svc.Register(context.Background(), "x@y.test", pw, "X"); err == nil {
			t.Errorf("password %q accepted", pw)
		}
	}
}

func TestRegister_BadEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.Register(context.Background(), "not-an-email", testPassword, "X"); err == nil {
		t.Error("invalid email accepted")
	}
	if _, err := svc.Register(context.Background(), "", testPassword, "X"); err == nil {
		t.Error("empty email accepted")
	}
}

func TestLogin_Success(t *testing.T) {
	svc, _, _ := newTestService(t)
	reg := register(t, svc)

	res, err := svc.Login(context.Background(), "tech@shop.test", testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.UserID != reg.UserID {
		t.Errorf("UserID = %q, want %q", res.UserID, reg.UserID)
	}
	if res.ExpiresAt.Before(time.Now()) {
		t.Error("access token already expired")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc)
	_, err := svc.Login(context.Background(), "tech@shop.test", "Wrong-password-1!")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_UnknownOrDisabledUser(t *testing.T) {
	svc, users, _ := newTestService(t)
	res := register(t, svc)

	if _, err := svc.Login(context.Background(), "nobody@shop.test", testPassword); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: err = %v, want ErrInvalidCredentials", err)
	}

	users.mu.Lock()
	users.m[res.UserID].Status = userdomain.UserStatusDisabled
	users.mu.Unlock()
	if _, err := svc.Login(context.Background(), "tech@shop.test", testPassword); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("disabled user: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	reg := register(t, svc)

	res, err := svc.Refresh(context.Background(), reg.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if res.RefreshToken == reg.RefreshToken {
		t.Error("refresh token not rotated")
	}
	if res.AccessToken == "" {
		t.Error("no access token")
	}

	// The rotated token keeps working.
	if _, err := svc.Refresh(context.Background(), res.RefreshToken); err != nil {
		t.Errorf("second refresh: %v", err)
	}
}

func TestRefresh_ReuseRevokesAllSessions(t *testing.T) {
	svc, _, sessions := newTestService(t)
	reg := register(t, svc)

	rotated, err := svc.Refresh(context.Background(), reg.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// Presenting the superseded token is treated as theft.
	_, err = svc.Refresh(context.Background(), reg.RefreshToken)
	if !errors.Is(err, ErrRefreshTokenReuse) {
		t.Fatalf("err = %v, want ErrRefreshTokenReuse", err)
	}

	// Even the fresh token is now dead.
	if _, err := svc.Refresh(context.Background(), rotated.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("post-revocation refresh: err = %v, want ErrInvalidRefreshToken", err)
	}
	sessions.mu.Lock()
	for id, s := range sessions.m {
		if s.RevokedAt == nil {
			t.Errorf("session %s still live after reuse", id)
		}
	}
	sessions.mu.Unlock()
}

func TestRefresh_GarbageToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.Refresh(context.Background(), "garbage"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("err = %v, want ErrInvalidRefreshToken", err)
	}
	if _, err := svc.Refresh(context.Background(), ""); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("empty: err = %v, want ErrInvalidRefreshToken", err)
	}
}

func TestValidateAccess(t *testing.T) {
	svc, _, _ := newTestService(t)
	reg := register(t, svc)

	res, err := svc.ValidateAccess(context.Background(), reg.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if res.UserID != reg.UserID || res.Role != string(userdomain.DefaultRole) {
		t.Errorf("got %s/%s", res.UserID, res.Role)
	}

	if _, err := svc.ValidateAccess(context.Background(), "garbage"); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("garbage token: err = %v, want ErrSessionExpired", err)
	}
}

func TestValidateAccess_RevokedSession(t *testing.T) {
	svc, _, _ := newTestService(t)
	reg := register(t, svc)

	if err := svc.Logout(context.Background(), reg.RefreshToken, ""); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	// JWT is still unexpired, but the session row is revoked.
	if _, err := svc.ValidateAccess(context.Background(), reg.AccessToken); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("err = %v, want ErrSessionExpired", err)
	}
}

func TestLogout_DeadTokenIsNoop(t *testing.T) {
	svc, _, _ := newTestService(t)
	if err := svc.Logout(context.Background(), "garbage", ""); err != nil {
		t.Errorf("Logout with garbage token: %v", err)
	}
	if err := svc.Logout(context.Background(), "", ""); err != nil {
		t.Errorf("Logout with nothing: %v", err)
	}
}

func TestProfile(t *testing.T) {
	svc, _, _ := newTestService(t)
	reg := register(t, svc)

	u, err := svc.Profile(context.Background(), reg.UserID)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if !strings.EqualFold(u.Email, "tech@shop.test") {
		t.Errorf("Email = %q", u.Email)
	}

	if _, err := svc.Profile(context.Background(), "deleted-user"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("err = %v, want ErrProfileNotFound", err)
	}
}
