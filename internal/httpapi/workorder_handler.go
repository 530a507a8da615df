package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"ppf-ops-platform/internal/audit"
	auditdomain "ppf-ops-platform/internal/audit/domain"
	"ppf-ops-platform/internal/policy/engine"
	"ppf-ops-platform/internal/telemetry"
	userdomain "ppf-ops-platform/internal/user/domain"
	workorderdomain "ppf-ops-platform/internal/workorder/domain"
	workorderservice "ppf-ops-platform/internal/workorder/service"
)

// WorkOrderHandler serves work-order CRUD, assignment, and status changes,
// gated by the access policy.
type WorkOrderHandler struct {
	svc      *workorderservice.Service
	policy   engine.Evaluator
	auditLog audit.AuditLogger
	emitter  telemetry.EventEmitter
}

// NewWorkOrderHandler returns a WorkOrderHandler. auditLog and emitter may be nil.
func NewWorkOrderHandler(svc *workorderservice.Service, policy engine.Evaluator, auditLog audit.AuditLogger, emitter telemetry.EventEmitter) *WorkOrderHandler {
	return &WorkOrderHandler{svc: svc, policy: policy, auditLog: auditLog, emitter: emitter}
}

func (h *WorkOrderHandler) caller(r *http.Request) *userdomain.User {
	userID, _ := GetUserID(r.Context())
	role, _ := GetRole(r.Context())
	return &userdomain.User{ID: userID, Role: userdomain.Role(role)}
}

// authorize runs the policy and writes a 403 when denied. Returns true when
// the request may proceed.
func (h *WorkOrderHandler) authorize(w http.ResponseWriter, r *http.Request, action engine.Action, order *workorderdomain.WorkOrder) bool {
	d, err := h.policy.Authorize(r.Context(), h.caller(r), action, order)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "policy evaluation failed")
		return false
	}
	if !d.Allow {
		writeError(w, http.StatusForbidden, codeForbidden, "not allowed")
		return false
	}
	return true
}

func (h *WorkOrderHandler) record(r *http.Request, action, orderID string) {
	userID, _ := GetUserID(r.Context())
	if h.auditLog != nil {
		h.auditLog.LogEvent(r.Context(), userID, action, "work_order:"+orderID, "")
	}
	telemetry.EmitAsync(h.emitter, r.Context(), telemetry.NewEvent(action, userID, "work_order:"+orderID, "server"))
}

type workOrderRequest struct {
	ClientID     string     `json:"client_id"`
	TechnicianID string     `json:"technician_id"`
	VehicleModel string     `json:"vehicle_model"`
	PPFZones     []string   `json:"ppf_zones"`
	Priority     string     `json:"priority"`
	Notes        string     `json:"notes"`
	ScheduledAt  *time.Time `json:"scheduled_at"`
}

// Create handles POST /work-orders.
func (h *WorkOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, engine.ActionCreate, nil) {
		return
	}
	var req workOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	order, err := h.svc.Create(r.Context(), workorderservice.CreateInput{
		ClientID:     req.ClientID,
		TechnicianID: req.TechnicianID,
		VehicleModel: req.VehicleModel,
		PPFZones:     req.PPFZones,
		Priority:     workorderdomain.Priority(req.Priority),
		Notes:        req.Notes,
		ScheduledAt:  req.ScheduledAt,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.record(r, auditdomain.ActionWorkOrderCreate, order.ID)
	writeJSON(w, http.StatusCreated, toWorkOrderView(order))
}

// Get handles GET /work-orders/{id}.
func (h *WorkOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if !h.authorize(w, r, engine.ActionRead, order) {
		return
	}
	writeJSON(w, http.StatusOK, toWorkOrderView(order))
}

// List handles GET /work-orders. Technicians are pinned to their own orders
// regardless of the filter they send.
func (h *WorkOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := h.caller(r)
	f := filterFromQuery(r)
	if caller.Role == userdomain.RoleTechnician {
		f.TechnicianIDs = []string{caller.ID}
	}
	from, to, err := windowFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	limit, offset := paginationFromQuery(r)
	orders, err := h.svc.List(r.Context(), f, from, to, limit, offset)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkOrderViews(orders))
}

type workOrderPatch struct {
	VehicleModel *string    `json:"vehicle_model"`
	PPFZones     []string   `json:"ppf_zones"`
	Priority     *string    `json:"priority"`
	Notes        *string    `json:"notes"`
	ScheduledAt  *time.Time `json:"scheduled_at"`
}

// Update handles PATCH /work-orders/{id}.
func (h *WorkOrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if !h.authorize(w, r, engine.ActionUpdate, order) {
		return
	}
	var req workOrderPatch
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	in := workorderservice.UpdateInput{
		VehicleModel: req.VehicleModel,
		PPFZones:     req.PPFZones,
		Notes:        req.Notes,
		ScheduledAt:  req.ScheduledAt,
	}
	if req.Priority != nil {
		p := workorderdomain.Priority(*req.Priority)
		in.Priority = &p
	}
	updated, err := h.svc.UpdateDetails(r.Context(), id, in)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.record(r, auditdomain.ActionWorkOrderUpdate, id)
	writeJSON(w, http.StatusOK, toWorkOrderView(updated))
}

// Assign handles POST /work-orders/{id}/assign.
func (h *WorkOrderHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if !h.authorize(w, r, engine.ActionAssign, order) {
		return
	}
	var req struct {
		TechnicianID string `json:"technician_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	updated, err := h.svc.Assign(r.Context(), id, req.TechnicianID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.record(r, auditdomain.ActionWorkOrderAssign, id)
	writeJSON(w, http.StatusOK, toWorkOrderView(updated))
}

// ChangeStatus handles POST /work-orders/{id}/status.
func (h *WorkOrderHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if !h.authorize(w, r, engine.ActionChangeStatus, order) {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	updated, err := h.svc.ChangeStatus(r.Context(), id, workorderdomain.Status(req.Status))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.record(r, auditdomain.ActionWorkOrderStatus, id)
	writeJSON(w, http.StatusOK, toWorkOrderView(updated))
}

// Delete handles DELETE /work-orders/{id}.
func (h *WorkOrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if !h.authorize(w, r, engine.ActionDelete, order) {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.record(r, auditdomain.ActionWorkOrderDelete, id)
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *WorkOrderHandler) writeServiceError(w http.ResponseWriter, err error) {
	var ufe *workorderdomain.UnknownFilterValueError
	switch {
	case errors.Is(err, workorderservice.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "work order not found")
	case errors.Is(err, workorderservice.ErrUnknownClient),
		errors.Is(err, workorderservice.ErrNotATechnician),
		errors.As(err, &ufe):
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
	case errors.Is(err, workorderservice.ErrMissingTechnician),
		errors.Is(err, workorderdomain.ErrInvalidTransition):
		writeError(w, http.StatusConflict, codeConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternal, "work order operation failed")
	}
}

// filterFromQuery builds a work-order filter from comma-separated query params.
func filterFromQuery(r *http.Request) *workorderdomain.Filter {
	q := r.URL.Query()
	split := func(key string) []string {
		v := strings.TrimSpace(q.Get(key))
		if v == "" {
			return nil
		}
		parts := strings.Split(v, ",")
		out := parts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
	return &workorderdomain.Filter{
		TechnicianIDs: split("technician_ids"),
		ClientIDs:     split("client_ids"),
		Statuses:      split("statuses"),
		Priorities:    split("priorities"),
		PPFZones:      split("ppf_zones"),
		VehicleModels: split("vehicle_models"),
	}
}

func windowFromQuery(r *http.Request) (from, to *time.Time, err error) {
	parse := func(key string) (*time.Time, error) {
		v := strings.TrimSpace(r.URL.Query().Get(key))
		if v == "" {
			return nil, nil
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return &t, nil
		}
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return nil, errors.New(key + " must be an RFC3339 timestamp or ISO date")
		}
		return &t, nil
	}
	if from, err = parse("from"); err != nil {
		return nil, nil, err
	}
	if to, err = parse("to"); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func paginationFromQuery(r *http.Request) (limit, offset int32) {
	limit = 100
	if v, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 32); err == nil && v > 0 && v <= 500 {
		limit = int32(v)
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("offset"), 10, 32); err == nil && v >= 0 {
		offset = int32(v)
	}
	return limit, offset
}
