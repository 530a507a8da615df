package httpapi

import (
	"context"
	"net/http"
)

// AccessValidator checks a Bearer access token and resolves the caller.
// Implemented by the auth service; split out so middleware tests can fake it.
type AccessValidator interface {
	ValidateAccessIdentity(ctx context.Context, accessToken string) (userID, role, sessionID string, err error)
}

// RequireAuth returns middleware that validates the Bearer token and stores
// the caller identity in the request context. Requests without a valid token
// get a 401 with the EXPIRED code so clients know to refresh or re-login.
func RequireAuth(validator AccessValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing or invalid authorization")
				return
			}
			userID, role, sessionID, err := validator.ValidateAccessIdentity(r.Context(), token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing or invalid authorization")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), userID, role, sessionID)))
		})
	}
}
