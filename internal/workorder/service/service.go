package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	userdomain "ppf-ops-platform/internal/user/domain"
	"ppf-ops-platform/internal/workorder/domain"
)

// Sentinel errors for the work-order service; the HTTP layer maps them to status codes.
var (
	ErrNotFound          = errors.New("work order not found")
	ErrNotATechnician    = errors.New("assignee is not an active technician")
	ErrUnknownClient     = errors.New("unknown client")
	ErrMissingTechnician = errors.New("work order has no technician assigned")
)

// Repo is the minimal work-order repository needed by the service.
type Repo interface {
	GetByID(ctx context.Context, id string) (*domain.WorkOrder, error)
	List(ctx context.Context, f *domain.Filter, from, to *time.Time, limit, offset int32) ([]*domain.WorkOrder, error)
	Create(ctx context.Context, w *domain.WorkOrder) error
	Update(ctx context.Context, w *domain.WorkOrder) error
	Delete(ctx context.Context, id string) error
}

// UserRepo is the minimal user repository needed by the service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// ClientChecker reports whether a client record exists.
type ClientChecker interface {
	Exists(ctx context.Context, clientID string) (bool, error)
}

// AssignmentNotifier is told when a technician gains a work order, so the
// notification service can surface it. Best-effort; implementations must not block.
type AssignmentNotifier interface {
	WorkOrderAssigned(ctx context.Context, technicianID string, w *domain.WorkOrder)
}

// Service implements work-order CRUD, assignment, and status transitions.
type Service struct {
	repo     Repo
	users    UserRepo
	clients  ClientChecker
	notifier AssignmentNotifier
}

// NewService returns a Service with the given dependencies. notifier may be nil.
func NewService(repo Repo, users UserRepo, clients ClientChecker, notifier AssignmentNotifier) *Service {
	return &Service{repo: repo, users: users, clients: clients, notifier: notifier}
}

// CreateInput carries the fields accepted when opening a work order.
type CreateInput struct {
	ClientID     string
	TechnicianID string
	VehicleModel string
	PPFZones     []string
	Priority     domain.Priority
	Notes        string
	ScheduledAt  *time.Time
}

// Create opens a new work order in the scheduled state. When a technician is
// given it is validated and notified like Assign.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.WorkOrder, error) {
	ok, err := s.clients.Exists(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownClient
	}
	if in.TechnicianID != "" {
		if err := s.checkTechnician(ctx, in.TechnicianID); err != nil {
			return nil, err
		}
	}
	now := time.Now().UTC()
	w := &domain.WorkOrder{
		ID:           uuid.New().String(),
		ClientID:     in.ClientID,
		TechnicianID: in.TechnicianID,
		VehicleModel: in.VehicleModel,
		PPFZones:     in.PPFZones,
		Status:       domain.StatusScheduled,
		Priority:     in.Priority,
		Notes:        in.Notes,
		ScheduledAt:  in.ScheduledAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	if w.TechnicianID != "" && s.notifier != nil {
		s.notifier.WorkOrderAssigned(ctx, w.TechnicianID, w)
	}
	return w, nil
}

// Get returns the work order for id, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*domain.WorkOrder, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrNotFound
	}
	return w, nil
}

// List returns work orders matching the filter and optional scheduled window.
func (s *Service) List(ctx context.Context, f *domain.Filter, from, to *time.Time, limit, offset int32) ([]*domain.WorkOrder, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, f, from, to, limit, offset)
}

// UpdateInput carries the detail fields an update may change. Status changes go
// through ChangeStatus; assignment goes through Assign.
type UpdateInput struct {
	VehicleModel *string
	PPFZones     []string
	Priority     *domain.Priority
	Notes        *string
	ScheduledAt  *time.Time
}

// UpdateDetails patches the given fields on the work order.
func (s *Service) UpdateDetails(ctx context.Context, id string, in UpdateInput) (*domain.WorkOrder, error) {
	w, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.VehicleModel != nil {
		w.VehicleModel = *in.VehicleModel
	}
	if in.PPFZones != nil {
		w.PPFZones = in.PPFZones
	}
	if in.Priority != nil {
		w.Priority = *in.Priority
	}
	if in.Notes != nil {
		w.Notes = *in.Notes
	}
	if in.ScheduledAt != nil {
		w.ScheduledAt = in.ScheduledAt
	}
	w.UpdatedAt = time.Now().UTC()
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Assign sets the technician on the work order and notifies them.
func (s *Service) Assign(ctx context.Context, id, technicianID string) (*domain.WorkOrder, error) {
	w, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkTechnician(ctx, technicianID); err != nil {
		return nil, err
	}
	w.TechnicianID = technicianID
	w.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.WorkOrderAssigned(ctx, technicianID, w)
	}
	return w, nil
}

// ChangeStatus moves the work order to target, enforcing transition legality.
// Moving to in_progress requires an assigned technician.
func (s *Service) ChangeStatus(ctx context.Context, id string, target domain.Status) (*domain.WorkOrder, error) {
	w, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if target == domain.StatusInProgress && w.TechnicianID == "" {
		return nil, ErrMissingTechnician
	}
	if err := w.Transition(target, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Delete removes the work order. Returns ErrNotFound if it does not exist.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) checkTechnician(ctx context.Context, technicianID string) error {
	u, err := s.users.GetByID(ctx, technicianID)
	if err != nil {
		return err
	}
	if u == nil || u.Status != userdomain.UserStatusActive || u.Role != userdomain.RoleTechnician {
		return fmt.Errorf("%w: %s", ErrNotATechnician, technicianID)
	}
	return nil
}
