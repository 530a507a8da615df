package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"ppf-ops-platform/internal/policy/engine"
	userdomain "ppf-ops-platform/internal/user/domain"
	workorderdomain "ppf-ops-platform/internal/workorder/domain"
	workorderservice "ppf-ops-platform/internal/workorder/service"
)

type memOrderRepo struct {
	mu         sync.Mutex
	orders     map[string]*workorderdomain.WorkOrder
	lastFilter *workorderdomain.Filter
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]*workorderdomain.WorkOrder)}
}

func (m *memOrderRepo) GetByID(_ context.Context, id string) (*workorderdomain.WorkOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (m *memOrderRepo) List(_ context.Context, f *workorderdomain.Filter, _, _ *time.Time, _, _ int32) ([]*workorderdomain.WorkOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = f
	out := []*workorderdomain.WorkOrder{}
	for _, w := range m.orders {
		cp := *w
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memOrderRepo) Create(_ context.Context, w *workorderdomain.WorkOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *w
	m.orders[w.ID] = &cp
	return nil
}

func (m *memOrderRepo) Update(_ context.Context, w *workorderdomain.WorkOrder) error {
	return m.Create(context.Background(), w)
}

func (m *memOrderRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, id)
	return nil
}

type fakeUsers struct{ users map[string]*userdomain.User }

func (f fakeUsers) GetByID(_ context.Context, id string) (*userdomain.User, error) {
	return f.users[id], nil
}

type fakeClients struct{ known map[string]bool }

func (f fakeClients) Exists(_ context.Context, id string) (bool, error) {
	return f.known[id], nil
}

type stubPolicy struct{ allow bool }

func (s stubPolicy) Authorize(_ context.Context, _ *userdomain.User, _ engine.Action, _ *workorderdomain.WorkOrder) (engine.Decision, error) {
	return engine.Decision{Allow: s.allow}, nil
}

func newWorkOrderTestServer(t *testing.T, repo *memOrderRepo, policy engine.Evaluator, userID, role string) http.Handler {
	t.Helper()
	users := fakeUsers{users: map[string]*userdomain.User{
		"tech-1": {ID: "tech-1", Role: userdomain.RoleTechnician, Status: userdomain.UserStatusActive},
	}}
	clients := fakeClients{known: map[string]bool{"client-1": true}}
	svc := workorderservice.NewService(repo, users, clients, nil)
	h := NewWorkOrderHandler(svc, policy, nil, nil)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(WithIdentity(req.Context(), userID, role, "sess-1")))
		})
	})
	r.Get("/work-orders", h.List)
	r.Post("/work-orders", h.Create)
	r.Get("/work-orders/{id}", h.Get)
	r.Post("/work-orders/{id}/status", h.ChangeStatus)
	return r
}

func seedOrder(t *testing.T, repo *memOrderRepo, id, technicianID string, status workorderdomain.Status) {
	t.Helper()
	now := time.Now().UTC()
	err := repo.Create(context.Background(), &workorderdomain.WorkOrder{
		ID:           id,
		ClientID:     "client-1",
		TechnicianID: technicianID,
		VehicleModel: "Porsche 911",
		PPFZones:     []string{"full_front"},
		Status:       status,
		Priority:     workorderdomain.PriorityNormal,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
}

func TestWorkOrderList_TechnicianPinnedToOwnOrders(t *testing.T) {
	repo := newMemOrderRepo()
	srv := newWorkOrderTestServer(t, repo, stubPolicy{allow: true}, "tech-1", "technician")

	req := httptest.NewRequest(http.MethodGet, "/work-orders?technician_ids=someone-else", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if repo.lastFilter == nil || len(repo.lastFilter.TechnicianIDs) != 1 || repo.lastFilter.TechnicianIDs[0] != "tech-1" {
		t.Errorf("filter technicians = %v, want [tech-1]", repo.lastFilter.TechnicianIDs)
	}
}

func TestWorkOrderCreate_PolicyDenied(t *testing.T) {
	srv := newWorkOrderTestServer(t, newMemOrderRepo(), stubPolicy{allow: false}, "viewer-1", "viewer")

	body := `{"client_id":"client-1","vehicle_model":"Porsche 911","ppf_zones":["full_front"]}`
	req := httptest.NewRequest(http.MethodPost, "/work-orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if env.Error == nil || env.Error.Code != codeForbidden {
		t.Errorf("error = %+v, want code %s", env.Error, codeForbidden)
	}
}

func TestWorkOrderCreate_UnknownClient(t *testing.T) {
	srv := newWorkOrderTestServer(t, newMemOrderRepo(), stubPolicy{allow: true}, "mgr-1", "manager")

	body := `{"client_id":"nope","vehicle_model":"Porsche 911","ppf_zones":["full_front"]}`
	req := httptest.NewRequest(http.MethodPost, "/work-orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}

func TestWorkOrderGet_NotFound(t *testing.T) {
	srv := newWorkOrderTestServer(t, newMemOrderRepo(), stubPolicy{allow: true}, "mgr-1", "manager")

	req := httptest.NewRequest(http.MethodGet, "/work-orders/missing", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if env.Error == nil || env.Error.Code != codeNotFound {
		t.Errorf("error = %+v, want code %s", env.Error, codeNotFound)
	}
}

func TestWorkOrderStatus_IllegalTransitionConflicts(t *testing.T) {
	repo := newMemOrderRepo()
	seedOrder(t, repo, "wo-1", "tech-1", workorderdomain.StatusScheduled)
	srv := newWorkOrderTestServer(t, repo, stubPolicy{allow: true}, "mgr-1", "manager")

	req := httptest.NewRequest(http.MethodPost, "/work-orders/wo-1/status", strings.NewReader(`{"status":"completed"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, http.StatusConflict, rec.Body.String())
	}
}

func TestWorkOrderStatus_InProgressNeedsTechnician(t *testing.T) {
	repo := newMemOrderRepo()
	seedOrder(t, repo, "wo-2", "", workorderdomain.StatusScheduled)
	srv := newWorkOrderTestServer(t, repo, stubPolicy{allow: true}, "mgr-1", "manager")

	req := httptest.NewRequest(http.MethodPost, "/work-orders/wo-2/status", strings.NewReader(`{"status":"in_progress"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, http.StatusConflict, rec.Body.String())
	}
}
