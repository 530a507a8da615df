package httpapi

import (
	"context"
	"net/http"

	userdomain "ppf-ops-platform/internal/user/domain"
)

// TechnicianLister returns the active technicians, for assignment pickers.
type TechnicianLister interface {
	ListTechnicians(ctx context.Context) ([]*userdomain.User, error)
}

// UserHandler serves user lookups that are not part of the auth surface.
type UserHandler struct {
	users TechnicianLister
}

func NewUserHandler(users TechnicianLister) *UserHandler {
	return &UserHandler{users: users}
}

// Technicians handles GET /technicians.
func (h *UserHandler) Technicians(w http.ResponseWriter, r *http.Request) {
	techs, err := h.users.ListTechnicians(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "technician listing failed")
		return
	}
	out := make([]userView, 0, len(techs))
	for _, t := range techs {
		out = append(out, toUserView(t))
	}
	writeJSON(w, http.StatusOK, out)
}
