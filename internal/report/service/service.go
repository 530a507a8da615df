package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ppf-ops-platform/internal/report/domain"
	"ppf-ops-platform/internal/report/repository"
	workorderdomain "ppf-ops-platform/internal/workorder/domain"
)

// Service validates report requests and dispatches to the aggregate queries.
// Validation failures are returned before any database work happens.
type Service struct {
	repo          repository.Repository
	exportBaseURL string
}

// NewService returns a Service. exportBaseURL prefixes generated export
// download URLs, e.g. "https://files.example.com/exports".
func NewService(repo repository.Repository, exportBaseURL string) *Service {
	return &Service{repo: repo, exportBaseURL: strings.TrimRight(exportBaseURL, "/")}
}

// Request carries a report query as received from the dashboard.
type Request struct {
	Type   domain.Type             `json:"type"`
	From   string                  `json:"from"`
	To     string                  `json:"to"`
	Filter *workorderdomain.Filter `json:"filter,omitempty"`
}

func (s *Service) validate(req Request) (domain.DateRange, error) {
	if !req.Type.Valid() {
		return domain.DateRange{}, fmt.Errorf("%w: %q", domain.ErrUnknownType, req.Type)
	}
	dr, err := domain.ParseDateRange(req.From, req.To)
	if err != nil {
		return domain.DateRange{}, err
	}
	if err := req.Filter.Validate(); err != nil {
		return domain.DateRange{}, err
	}
	return dr, nil
}

// Run validates the request and returns the report rows for its type.
func (s *Service) Run(ctx context.Context, req Request) (interface{}, error) {
	dr, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	switch req.Type {
	case domain.TypeStatusBreakdown:
		return s.repo.StatusBreakdown(ctx, dr.From, dr.To, req.Filter)
	case domain.TypeTechnicianWorkload:
		return s.repo.TechnicianWorkload(ctx, dr.From, dr.To, req.Filter)
	case domain.TypeZoneVolume:
		return s.repo.ZoneVolume(ctx, dr.From, dr.To, req.Filter)
	}
	return nil, domain.ErrUnknownType
}

// Export validates the request and returns where the generated CSV will be
// served from. File generation itself is handled by the files service behind
// exportBaseURL; this endpoint only hands the client a stable location.
func (s *Service) Export(ctx context.Context, req Request, now time.Time) (*domain.Export, error) {
	if _, err := s.validate(req); err != nil {
		return nil, err
	}
	fileName := fmt.Sprintf("%s_%s_%s_%s.csv", req.Type, req.From, req.To, now.UTC().Format("20060102T150405"))
	return &domain.Export{
		DownloadURL: s.exportBaseURL + "/" + fileName,
		FileName:    fileName,
	}, nil
}
