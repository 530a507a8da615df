package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"ppf-ops-platform/internal/notification/domain"
	"ppf-ops-platform/internal/notification/repository"
	workorderdomain "ppf-ops-platform/internal/workorder/domain"
)

// MaxList caps how many notifications a single list call returns. Older
// entries stay in the table but are not surfaced to clients.
const MaxList = 50

var (
	ErrNotFound  = errors.New("notification not found")
	ErrForbidden = errors.New("notification belongs to another user")
)

// Service implements notification listing and read-state management.
type Service struct {
	repo repository.Repository
}

func NewService(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

// ListResult is a page of notifications plus the unread count over the
// user's full backing set, not just the returned window.
type ListResult struct {
	Notifications []*domain.Notification `json:"notifications"`
	UnreadCount   int                    `json:"unread_count"`
}

// List returns the newest MaxList notifications for the user.
func (s *Service) List(ctx context.Context, userID string) (*ListResult, error) {
	items, unread, err := s.repo.ListByUser(ctx, userID, MaxList)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.Notification{}
	}
	return &ListResult{Notifications: items, UnreadCount: unread}, nil
}

// Create persists a new notification for the given user.
func (s *Service) Create(ctx context.Context, n *domain.Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	return s.repo.Create(ctx, n)
}

// MarkRead marks a single notification read. The caller's userID must own it.
func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil {
		return ErrNotFound
	}
	if n.UserID != userID {
		return ErrForbidden
	}
	if n.Read {
		return nil
	}
	return s.repo.MarkRead(ctx, id)
}

// MarkAllRead marks every notification for the user read.
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// Delete removes a notification. The caller's userID must own it.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil {
		return ErrNotFound
	}
	if n.UserID != userID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

// WorkOrderAssigned records an assignment notification for the technician.
// Best-effort: failures are logged, never propagated, so a notification
// hiccup cannot fail the work-order write that triggered it.
func (s *Service) WorkOrderAssigned(ctx context.Context, technicianID string, w *workorderdomain.WorkOrder) {
	n := &domain.Notification{
		UserID:     technicianID,
		Type:       domain.TypeWorkOrderAssigned,
		Title:      "New work order assigned",
		Message:    "You have been assigned a " + w.VehicleModel + " installation",
		EntityType: "work_order",
		EntityID:   w.ID,
		EntityURL:  "/work-orders/" + w.ID,
	}
	if err := s.Create(ctx, n); err != nil {
		log.Printf("notification: assignment notice for %s failed: %v", technicianID, err)
	}
}
