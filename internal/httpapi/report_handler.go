package httpapi

import (
	"errors"
	"net/http"
	"time"

	reportdomain "ppf-ops-platform/internal/report/domain"
	reportservice "ppf-ops-platform/internal/report/service"
	userdomain "ppf-ops-platform/internal/user/domain"
	workorderdomain "ppf-ops-platform/internal/workorder/domain"
)

// ReportHandler serves aggregate reports. Viewers and up may run them;
// reports never expose raw client contact data.
type ReportHandler struct {
	svc *reportservice.Service
}

func NewReportHandler(svc *reportservice.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Technicians only see aggregates over their own work.
func scopeRequest(r *http.Request, req *reportservice.Request) {
	role, _ := GetRole(r.Context())
	if userdomain.Role(role) != userdomain.RoleTechnician {
		return
	}
	userID, _ := GetUserID(r.Context())
	if req.Filter == nil {
		req.Filter = &workorderdomain.Filter{}
	}
	req.Filter.TechnicianIDs = []string{userID}
}

// Run handles POST /reports/run.
func (h *ReportHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req reportservice.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	scopeRequest(r, &req)
	result, err := h.svc.Run(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Export handles POST /reports/export: validates the request and hands back a
// download descriptor for the CSV.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req reportservice.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	scopeRequest(r, &req)
	export, err := h.svc.Export(r.Context(), req, time.Now())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, export)
}

func (h *ReportHandler) writeServiceError(w http.ResponseWriter, err error) {
	var ufe *workorderdomain.UnknownFilterValueError
	switch {
	case errors.Is(err, reportdomain.ErrUnknownType),
		errors.Is(err, reportdomain.ErrBadDate),
		errors.Is(err, reportdomain.ErrInvertedRange),
		errors.Is(err, reportdomain.ErrRangeTooWide),
		errors.As(err, &ufe):
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternal, "report failed")
	}
}
