package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	clientdomain "ppf-ops-platform/internal/clientrec/domain"
	clientservice "ppf-ops-platform/internal/clientrec/service"
	userdomain "ppf-ops-platform/internal/user/domain"
)

// ClientHandler serves client record CRUD. Everyone signed in can read;
// writes are limited to managers and admins.
type ClientHandler struct {
	svc *clientservice.Service
}

func NewClientHandler(svc *clientservice.Service) *ClientHandler {
	return &ClientHandler{svc: svc}
}

func (h *ClientHandler) requireWriter(w http.ResponseWriter, r *http.Request) bool {
	role, _ := GetRole(r.Context())
	switch userdomain.Role(role) {
	case userdomain.RoleAdmin, userdomain.RoleManager:
		return true
	}
	writeError(w, http.StatusForbidden, codeForbidden, "not allowed")
	return false
}

type clientRequest struct {
	Name     string        `json:"name"`
	Phone    string        `json:"phone"`
	Email    string        `json:"email"`
	Notes    string        `json:"notes"`
	Vehicles []vehicleView `json:"vehicles"`
}

func toVehicles(vs []vehicleView) []clientdomain.Vehicle {
	if vs == nil {
		return nil
	}
	out := make([]clientdomain.Vehicle, 0, len(vs))
	for _, v := range vs {
		out = append(out, clientdomain.Vehicle{ID: v.ID, Model: v.Model, Plate: v.Plate})
	}
	return out
}

// Create handles POST /clients.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.requireWriter(w, r) {
		return
	}
	var req clientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	c, err := h.svc.Create(r.Context(), clientservice.CreateInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Notes:    req.Notes,
		Vehicles: toVehicles(req.Vehicles),
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toClientView(c))
}

// Get handles GET /clients/{id}.
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientView(c))
}

// List handles GET /clients?search=&limit=&offset=.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationFromQuery(r)
	cs, err := h.svc.List(r.Context(), r.URL.Query().Get("search"), limit, offset)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientViews(cs))
}

type clientPatch struct {
	Name     *string       `json:"name"`
	Phone    *string       `json:"phone"`
	Email    *string       `json:"email"`
	Notes    *string       `json:"notes"`
	Vehicles []vehicleView `json:"vehicles"`
}

// Update handles PATCH /clients/{id}.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.requireWriter(w, r) {
		return
	}
	var req clientPatch
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	c, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), clientservice.UpdateInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Notes:    req.Notes,
		Vehicles: toVehicles(req.Vehicles),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientView(c))
}

// Delete handles DELETE /clients/{id}.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.requireWriter(w, r) {
		return
	}
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *ClientHandler) writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, clientservice.ErrNotFound) {
		writeError(w, http.StatusNotFound, codeNotFound, "client not found")
		return
	}
	writeError(w, http.StatusInternalServerError, codeInternal, "client operation failed")
}
