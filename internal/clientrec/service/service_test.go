package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ppf-ops-platform/internal/clientrec/domain"
)

type memRepo struct {
	mu      sync.Mutex
	clients map[string]*domain.Client
}

func newMemRepo() *memRepo {
	return &memRepo{clients: make(map[string]*domain.Client)}
}

func (m *memRepo) GetByID(_ context.Context, id string) (*domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) List(_ context.Context, search string, limit, offset int32) ([]*domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Client{}
	for _, c := range m.clients {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memRepo) Create(_ context.Context, c *domain.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.clients[c.ID] = &cp
	return nil
}

func (m *memRepo) Update(_ context.Context, c *domain.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.clients[c.ID] = &cp
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients, id)
	return nil
}

func TestCreate_AssignsVehicleIDs(t *testing.T) {
	svc := NewService(newMemRepo())

	c, err := svc.Create(context.Background(), CreateInput{
		Name:  "Aline Costa",
		Phone: "+55 11 98888-7777",
		Vehicles: []domain.Vehicle{
			{Model: "Porsche 911", Plate: "ABC1D23"},
			{Model: "BMW M3"},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID == "" {
		t.Fatal("expected client id to be set")
	}
	for i, v := range c.Vehicles {
		if v.ID == "" {
			t.Errorf("vehicle %d: expected id to be set", i)
		}
		if v.ClientID != c.ID {
			t.Errorf("vehicle %d: client id = %q, want %q", i, v.ClientID, c.ID)
		}
	}
}

func TestCreate_RequiresName(t *testing.T) {
	svc := NewService(newMemRepo())

	if _, err := svc.Create(context.Background(), CreateInput{}); err == nil {
		t.Fatal("expected error for nameless client")
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := NewService(newMemRepo())

	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate_PatchesOnlyGivenFields(t *testing.T) {
	svc := NewService(newMemRepo())
	c, err := svc.Create(context.Background(), CreateInput{Name: "Aline Costa", Phone: "+55 11 98888-7777"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newNotes := "prefers morning slots"
	updated, err := svc.Update(context.Background(), c.ID, UpdateInput{Notes: &newNotes})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Notes != newNotes {
		t.Errorf("notes = %q, want %q", updated.Notes, newNotes)
	}
	if updated.Name != "Aline Costa" || updated.Phone != "+55 11 98888-7777" {
		t.Errorf("untouched fields changed: %+v", updated)
	}
}

func TestUpdate_ReplacesVehicles(t *testing.T) {
	svc := NewService(newMemRepo())
	c, err := svc.Create(context.Background(), CreateInput{
		Name:     "Aline Costa",
		Vehicles: []domain.Vehicle{{Model: "Porsche 911"}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(context.Background(), c.ID, UpdateInput{
		Vehicles: []domain.Vehicle{{Model: "Audi RS6"}, {Model: "Tesla Model S"}},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(updated.Vehicles) != 2 {
		t.Fatalf("expected 2 vehicles, got %d", len(updated.Vehicles))
	}
	for i, v := range updated.Vehicles {
		if v.ID == "" || v.ClientID != c.ID {
			t.Errorf("vehicle %d not stamped: %+v", i, v)
		}
	}
}

func TestDelete(t *testing.T) {
	svc := NewService(newMemRepo())
	c, err := svc.Create(context.Background(), CreateInput{Name: "Aline Costa"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(context.Background(), c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(context.Background(), c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestExists(t *testing.T) {
	svc := NewService(newMemRepo())
	c, err := svc.Create(context.Background(), CreateInput{Name: "Aline Costa"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	ok, err := svc.Exists(context.Background(), c.ID)
	if err != nil || !ok {
		t.Fatalf("Exists(%s) = %v, %v; want true", c.ID, ok, err)
	}
	ok, err = svc.Exists(context.Background(), "missing")
	if err != nil || ok {
		t.Fatalf("Exists(missing) = %v, %v; want false", ok, err)
	}
}
