package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	notificationservice "ppf-ops-platform/internal/notification/service"
)

// NotificationHandler serves the signed-in user's notification feed.
type NotificationHandler struct {
	svc *notificationservice.Service
}

func NewNotificationHandler(svc *notificationservice.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List handles GET /notifications: the newest notifications for the caller
// plus their unread count.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserID(r.Context())
	res, err := h.svc.List(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "notification listing failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// MarkRead handles POST /notifications/{id}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserID(r.Context())
	if err := h.svc.MarkRead(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"read": true})
}

// MarkAllRead handles POST /notifications/read-all.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserID(r.Context())
	if err := h.svc.MarkAllRead(r.Context(), userID); err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "mark all read failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"read": true})
}

// Delete handles DELETE /notifications/{id}.
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserID(r.Context())
	if err := h.svc.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *NotificationHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, notificationservice.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "notification not found")
	case errors.Is(err, notificationservice.ErrForbidden):
		writeError(w, http.StatusForbidden, codeForbidden, "not allowed")
	default:
		writeError(w, http.StatusInternalServerError, codeInternal, "notification operation failed")
	}
}
