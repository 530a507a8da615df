package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ppf-ops-platform/internal/authsvc"
)

// authValidator adapts the auth service to the middleware's AccessValidator.
type authValidator struct {
	svc *authsvc.AuthService
}

func (v authValidator) ValidateAccessIdentity(ctx context.Context, accessToken string) (string, string, string, error) {
	res, err := v.svc.ValidateAccess(ctx, accessToken)
	if err != nil {
		return "", "", "", err
	}
	return res.UserID, res.Role, res.SessionID, nil
}

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth          *AuthHandler
	WorkOrders    *WorkOrderHandler
	Clients       *ClientHandler
	Notifications *NotificationHandler
	Reports       *ReportHandler
	Users         *UserHandler
	Audit         *AuditHandler
}

// NewRouter wires the full HTTP surface: public auth endpoints, the
// authenticated API, and a health probe.
func NewRouter(h Handlers, auth *authsvc.AuthService) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(WithClientIP(req.Context(), ClientIP(req))))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.Refresh)
			r.Post("/logout", h.Auth.Logout)

			r.Group(func(r chi.Router) {
				r.Use(RequireAuth(authValidator{svc: auth}))
				r.Get("/validate", h.Auth.Validate)
				r.Get("/profile", h.Auth.Profile)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(authValidator{svc: auth}))

			r.Route("/work-orders", func(r chi.Router) {
				r.Get("/", h.WorkOrders.List)
				r.Post("/", h.WorkOrders.Create)
				r.Get("/{id}", h.WorkOrders.Get)
				r.Patch("/{id}", h.WorkOrders.Update)
				r.Delete("/{id}", h.WorkOrders.Delete)
				r.Post("/{id}/assign", h.WorkOrders.Assign)
				r.Post("/{id}/status", h.WorkOrders.ChangeStatus)
			})

			r.Route("/clients", func(r chi.Router) {
				r.Get("/", h.Clients.List)
				r.Post("/", h.Clients.Create)
				r.Get("/{id}", h.Clients.Get)
				r.Patch("/{id}", h.Clients.Update)
				r.Delete("/{id}", h.Clients.Delete)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notifications.List)
				r.Post("/read-all", h.Notifications.MarkAllRead)
				r.Post("/{id}/read", h.Notifications.MarkRead)
				r.Delete("/{id}", h.Notifications.Delete)
			})

			r.Get("/technicians", h.Users.Technicians)

			r.Route("/reports", func(r chi.Router) {
				r.Post("/run", h.Reports.Run)
				r.Post("/export", h.Reports.Export)
			})

			r.Route("/audit-logs", func(r chi.Router) {
				r.Get("/", h.Audit.List)
				r.Get("/{id}", h.Audit.Get)
			})
		})
	})

	return r
}
