package domain

import (
	"errors"
	"fmt"
	"time"
)

// Type names a report the dashboard can request.
type Type string

const (
	TypeStatusBreakdown    Type = "status_breakdown"
	TypeTechnicianWorkload Type = "technician_workload"
	TypeZoneVolume         Type = "ppf_zone_volume"
)

// Valid reports whether t names a known report type.
func (t Type) Valid() bool {
	switch t {
	case TypeStatusBreakdown, TypeTechnicianWorkload, TypeZoneVolume:
		return true
	}
	return false
}

// MaxRangeDays bounds the span a single report query may cover.
const MaxRangeDays = 365

// Validation sentinels; the HTTP layer maps all of them to a 400.
var (
	ErrUnknownType   = errors.New("unknown report type")
	ErrBadDate       = errors.New("date must be an ISO date (YYYY-MM-DD)")
	ErrInvertedRange = errors.New("from date is after to date")
	ErrRangeTooWide  = fmt.Errorf("date range exceeds %d days", MaxRangeDays)
)

// DateRange is a validated, inclusive-from exclusive-to day range.
type DateRange struct {
	From time.Time
	To   time.Time // exclusive: one day past the requested end date
}

// ParseDateRange validates ISO date strings and the range invariants
// (from <= to, span <= MaxRangeDays) before any query runs.
func ParseDateRange(from, to string) (DateRange, error) {
	f, err := time.Parse(time.DateOnly, from)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: %q", ErrBadDate, from)
	}
	t, err := time.Parse(time.DateOnly, to)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: %q", ErrBadDate, to)
	}
	if f.After(t) {
		return DateRange{}, ErrInvertedRange
	}
	if t.Sub(f) > MaxRangeDays*24*time.Hour {
		return DateRange{}, ErrRangeTooWide
	}
	return DateRange{From: f, To: t.AddDate(0, 0, 1)}, nil
}

// StatusCount is one row of the status-breakdown report.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// TechnicianWorkload is one row of the technician-workload report.
type TechnicianWorkload struct {
	TechnicianID   string `json:"technician_id"`
	TechnicianName string `json:"technician_name"`
	Total          int    `json:"total"`
	Completed      int    `json:"completed"`
}

// ZoneCount is one row of the ppf-zone-volume report.
type ZoneCount struct {
	Zone  string `json:"zone"`
	Count int    `json:"count"`
}

// Export points the caller at a generated report file.
type Export struct {
	DownloadURL string `json:"download_url"`
	FileName    string `json:"file_name"`
}
