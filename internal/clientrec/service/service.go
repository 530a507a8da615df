package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"ppf-ops-platform/internal/clientrec/domain"
)

// ErrNotFound is returned when a client record does not exist.
var ErrNotFound = errors.New("client not found")

// Repo is the minimal client repository needed by the service.
type Repo interface {
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	List(ctx context.Context, search string, limit, offset int32) ([]*domain.Client, error)
	Create(ctx context.Context, c *domain.Client) error
	Update(ctx context.Context, c *domain.Client) error
	Delete(ctx context.Context, id string) error
}

// Service implements client record CRUD.
type Service struct {
	repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

// CreateInput carries the fields accepted when registering a client.
type CreateInput struct {
	Name     string
	Phone    string
	Email    string
	Notes    string
	Vehicles []domain.Vehicle
}

// Create registers a new client with its vehicles.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Client, error) {
	now := time.Now().UTC()
	c := &domain.Client{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Phone:     in.Phone,
		Email:     in.Email,
		Notes:     in.Notes,
		Vehicles:  in.Vehicles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i := range c.Vehicles {
		c.Vehicles[i].ID = uuid.New().String()
		c.Vehicles[i].ClientID = c.ID
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns the client for id, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*domain.Client, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

// List returns clients matching the search term, newest first.
func (s *Service) List(ctx context.Context, search string, limit, offset int32) ([]*domain.Client, error) {
	cs, err := s.repo.List(ctx, search, limit, offset)
	if err != nil {
		return nil, err
	}
	if cs == nil {
		cs = []*domain.Client{}
	}
	return cs, nil
}

// UpdateInput carries the fields an update may change. Nil means unchanged.
type UpdateInput struct {
	Name     *string
	Phone    *string
	Email    *string
	Notes    *string
	Vehicles []domain.Vehicle
}

// Update patches the given fields on the client. Vehicles, when present,
// replace the full set.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Client, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Phone != nil {
		c.Phone = *in.Phone
	}
	if in.Email != nil {
		c.Email = *in.Email
	}
	if in.Notes != nil {
		c.Notes = *in.Notes
	}
	if in.Vehicles != nil {
		c.Vehicles = in.Vehicles
		for i := range c.Vehicles {
			if c.Vehicles[i].ID == "" {
				c.Vehicles[i].ID = uuid.New().String()
			}
			c.Vehicles[i].ClientID = c.ID
		}
	}
	c.UpdatedAt = time.Now().UTC()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the client. Returns ErrNotFound if it does not exist.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Exists reports whether a client record exists; the work-order service uses
// this to reject orders against unknown clients.
func (s *Service) Exists(ctx context.Context, clientID string) (bool, error) {
	c, err := s.repo.GetByID(ctx, clientID)
	if err != nil {
		return false, err
	}
	return c != nil, nil
}
