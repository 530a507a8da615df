package httpapi

import (
	"errors"
	"net/http"

	"ppf-ops-platform/internal/authsvc"
	"ppf-ops-platform/internal/telemetry"
)

// AuthHandler serves the auth gateway contract: register, login, refresh,
// logout, validate, and profile.
type AuthHandler struct {
	svc     *authsvc.AuthService
	emitter telemetry.EventEmitter
}

// NewAuthHandler returns an AuthHandler. emitter may be nil.
func NewAuthHandler(svc *authsvc.AuthService, emitter telemetry.EventEmitter) *AuthHandler {
	return &AuthHandler{svc: svc, emitter: emitter}
}

func toSessionView(res *authsvc.AuthResult) sessionView {
	return sessionView{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    res.ExpiresAt,
		UserID:       res.UserID,
		Role:         res.Role,
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, authsvc.ErrEmailAlreadyRegistered) {
			writeError(w, http.StatusConflict, codeConflict, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	telemetry.EmitAsync(h.emitter, r.Context(), telemetry.NewEvent("register", res.UserID, "user:"+res.UserID, "server"))
	writeJSON(w, http.StatusCreated, toSessionView(res))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, authsvc.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, codeInternal, "login failed")
		return
	}
	telemetry.EmitAsync(h.emitter, r.Context(), telemetry.NewEvent("login", res.UserID, "user:"+res.UserID, "server"))
	writeJSON(w, http.StatusOK, toSessionView(res))
}

// Refresh handles POST /auth/refresh. Expired, revoked, and reused tokens all
// come back 401 so the client knows the session is gone.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, authsvc.ErrInvalidRefreshToken) || errors.Is(err, authsvc.ErrRefreshTokenReuse) {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid or expired refresh token")
			return
		}
		writeError(w, http.StatusInternalServerError, codeInternal, "refresh failed")
		return
	}
	writeJSON(w, http.StatusOK, toSessionView(res))
}

// Logout handles POST /auth/logout. Always 200: logging out a dead session is
// not an error from the client's point of view.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = decodeJSON(r, &req) // body is optional
	sessionID, _ := GetSessionID(r.Context())
	if err := h.svc.Logout(r.Context(), req.RefreshToken, sessionID); err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "logout failed")
		return
	}
	if userID, ok := GetUserID(r.Context()); ok {
		telemetry.EmitAsync(h.emitter, r.Context(), telemetry.NewEvent("logout", userID, "user:"+userID, "server"))
	}
	writeJSON(w, http.StatusOK, map[string]bool{"logged_out": true})
}

// Validate handles GET /auth/validate. Reaching here means the auth
// middleware already accepted the token; echo back who it belongs to.
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserID(r.Context())
	role, _ := GetRole(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{
		"user_id": userID,
		"role":    role,
	})
}

// Profile handles GET /auth/profile. A 404 here tells the client the account
// was deleted and the session should be discarded.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing auth context")
		return
	}
	u, err := h.svc.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, authsvc.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, codeNotFound, "profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, codeInternal, "profile lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, toUserView(u))
}
