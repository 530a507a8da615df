package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	auditdomain "ppf-ops-platform/internal/audit/domain"
	auditrepo "ppf-ops-platform/internal/audit/repository"
	userdomain "ppf-ops-platform/internal/user/domain"
)

// AuditHandler exposes the audit trail to admins.
type AuditHandler struct {
	repo auditrepo.Repository
}

func NewAuditHandler(repo auditrepo.Repository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

type auditLogView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource,omitempty"`
	IP        string    `json:"ip,omitempty"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toAuditLogView(e *auditdomain.AuditLog) auditLogView {
	return auditLogView{
		ID:        e.ID,
		UserID:    e.UserID,
		Action:    e.Action,
		Resource:  e.Resource,
		IP:        e.IP,
		Metadata:  e.Metadata,
		CreatedAt: e.CreatedAt,
	}
}

func (h *AuditHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	role, _ := GetRole(r.Context())
	if userdomain.Role(role) == userdomain.RoleAdmin {
		return true
	}
	writeError(w, http.StatusForbidden, codeForbidden, "not allowed")
	return false
}

// List handles GET /audit-logs?limit=&offset=, newest first.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	limit, offset := paginationFromQuery(r)
	entries, err := h.repo.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "audit listing failed")
		return
	}
	out := make([]auditLogView, 0, len(entries))
	for _, e := range entries {
		out = append(out, toAuditLogView(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /audit-logs/{id}.
func (h *AuditHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	entry, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "audit lookup failed")
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "audit entry not found")
		return
	}
	writeJSON(w, http.StatusOK, toAuditLogView(entry))
}
