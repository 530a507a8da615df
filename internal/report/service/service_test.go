package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ppf-ops-platform/internal/report/domain"
	workorderdomain "ppf-ops-platform/internal/workorder/domain"
)

type fakeRepo struct {
	calls int
}

func (r *fakeRepo) StatusBreakdown(ctx context.Context, from, to time.Time, f *workorderdomain.Filter) ([]domain.StatusCount, error) {
	r.calls++
	return []domain.StatusCount{{Status: "completed", Count: 3}}, nil
}

func (r *fakeRepo) TechnicianWorkload(ctx context.Context, from, to time.Time, f *workorderdomain.Filter) ([]domain.TechnicianWorkload, error) {
	r.calls++
	return nil, nil
}

func (r *fakeRepo) ZoneVolume(ctx context.Context, from, to time.Time, f *workorderdomain.Filter) ([]domain.ZoneCount, error) {
	r.calls++
	return nil, nil
}

func TestRun_ValidRequest(t *testing.T) {
	repo := &fakeRepo{}
	s := NewService(repo, "https://files.test/exports")

	got, err := s.Run(context.Background(), Request{
		Type: domain.TypeStatusBreakdown,
		From: "2026-01-01",
		To:   "2026-03-01",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	rows, ok := got.([]domain.StatusCount)
	if !ok || len(rows) != 1 {
		t.Fatalf("got %#v", got)
	}
	if repo.calls != 1 {
		t.Errorf("repo calls = %d, want 1", repo.calls)
	}
}

func TestRun_ValidationNeverReachesRepo(t *testing.T) {
	cases := []struct {
		name string
		req  Request
		want error
	}{
		{
			name: "unknown type",
			req:  Request{Type: "bogus", From: "2026-01-01", To: "2026-01-02"},
			want: domain.ErrUnknownType,
		},
		{
			name: "malformed from",
			req:  Request{Type: domain.TypeZoneVolume, From: "01/01/2026", To: "2026-01-02"},
			want: domain.ErrBadDate,
		},
		{
			name: "inverted range",
			req:  Request{Type: domain.TypeZoneVolume, From: "2026-02-01", To: "2026-01-01"},
			want: domain.ErrInvertedRange,
		},
		{
			name: "range too wide",
			req:  Request{Type: domain.TypeZoneVolume, From: "2025-01-01", To: "2026-06-01"},
			want: domain.ErrRangeTooWide,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeRepo{}
			s := NewService(repo, "https://files.test/exports")
			_, err := s.Run(context.Background(), tc.req)
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
			if repo.calls != 0 {
				t.Errorf("repo reached on invalid request")
			}
		})
	}
}

func TestRun_RejectsBadFilterValues(t *testing.T) {
	repo := &fakeRepo{}
	s := NewService(repo, "https://files.test/exports")
	_, err := s.Run(context.Background(), Request{
		Type:   domain.TypeStatusBreakdown,
		From:   "2026-01-01",
		To:     "2026-01-31",
		Filter: &workorderdomain.Filter{Priorities: []string{"asap"}},
	})
	var ufe *workorderdomain.UnknownFilterValueError
	if !errors.As(err, &ufe) {
		t.Fatalf("err = %v, want UnknownFilterValueError", err)
	}
	if repo.calls != 0 {
		t.Error("repo reached on invalid filter")
	}
}

func TestRun_MaxRangeBoundary(t *testing.T) {
	repo := &fakeRepo{}
	s := NewService(repo, "https://files.test/exports")
	// Exactly 365 days apart is allowed.
	_, err := s.Run(context.Background(), Request{
		Type: domain.TypeZoneVolume,
		From: "2025-01-01",
		To:   "2026-01-01",
	})
	if err != nil {
		t.Errorf("365-day range rejected: %v", err)
	}
}

func TestExport(t *testing.T) {
	s := NewService(&fakeRepo{}, "https://files.test/exports/")
	now := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	exp, err := s.Export(context.Background(), Request{
		Type: domain.TypeTechnicianWorkload,
		From: "2026-01-01",
		To:   "2026-02-01",
	}, now)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	wantName := "technician_workload_2026-01-01_2026-02-01_20260301T123000.csv"
	if exp.FileName != wantName {
		t.Errorf("FileName = %q, want %q", exp.FileName, wantName)
	}
	if exp.DownloadURL != "https://files.test/exports/"+wantName {
		t.Errorf("DownloadURL = %q", exp.DownloadURL)
	}
}

func TestExport_InvalidDateRange(t *testing.T) {
	s := NewService(&fakeRepo{}, "https://files.test/exports")
	_, err := s.Export(context.Background(), Request{
		Type: domain.TypeStatusBreakdown,
		From: "2026-05-01",
		To:   "2026-04-01",
	}, time.Now())
	if !errors.Is(err, domain.ErrInvertedRange) {
		t.Errorf("err = %v, want ErrInvertedRange", err)
	}
}
