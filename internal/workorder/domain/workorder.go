package domain

import (
	"errors"
	"fmt"
	"time"
)

// Status is the work-order lifecycle state.
type Status string

const (
	StatusScheduled    Status = "scheduled"
	StatusInProgress   Status = "in_progress"
	StatusQualityCheck Status = "quality_check"
	StatusCompleted    Status = "completed"
	StatusCancelled    Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusQualityCheck, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Priority orders work on the schedule board.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Known PPF coverage zones.
const (
	ZoneFullBody     = "full_body"
	ZoneFullFront    = "full_front"
	ZoneHood         = "hood"
	ZoneFenders      = "fenders"
	ZoneBumper       = "bumper"
	ZoneMirrors      = "mirrors"
	ZoneDoorEdges    = "door_edges"
	ZoneRockerPanels = "rocker_panels"
	ZoneHeadlights   = "headlights"
)

// WorkOrder is a PPF installation job: one vehicle, one coverage set, one technician.
type WorkOrder struct {
	ID           string
	ClientID     string
	TechnicianID string // empty until assigned
	VehicleModel string
	PPFZones     []string
	Status       Status
	Priority     Priority
	Notes        string
	ScheduledAt  *time.Time
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ErrInvalidTransition is returned when a status change is not allowed from the current state.
var ErrInvalidTransition = errors.New("invalid status transition")

// transitions maps each status to the set of statuses it may move to.
// Cancellation is allowed from any non-terminal state.
var transitions = map[Status][]Status{
	StatusScheduled:    {StatusInProgress, StatusCancelled},
	StatusInProgress:   {StatusQualityCheck, StatusCancelled},
	StatusQualityCheck: {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusCompleted:    {},
	StatusCancelled:    {},
}

// CanTransition reports whether the work order may move from its current status to target.
func (w *WorkOrder) CanTransition(target Status) bool {
	for _, next := range transitions[w.Status] {
		if next == target {
			return true
		}
	}
	return false
}

// Transition moves the work order to target, stamping CompletedAt when it
// reaches completed. Returns ErrInvalidTransition for illegal moves.
func (w *WorkOrder) Transition(target Status, now time.Time) error {
	if !target.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, target)
	}
	if !w.CanTransition(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, w.Status, target)
	}
	w.Status = target
	w.UpdatedAt = now
	if target == StatusCompleted {
		t := now
		w.CompletedAt = &t
	}
	return nil
}

// Validate validates the work order for persistence.
func (w *WorkOrder) Validate() error {
	if w.ClientID == "" {
		return errors.New("client id is required")
	}
	if w.Status == "" {
		w.Status = StatusScheduled
	}
	if !w.Status.Valid() {
		return fmt.Errorf("unknown status %q", w.Status)
	}
	if w.Priority == "" {
		w.Priority = PriorityNormal
	}
	if !w.Priority.Valid() {
		return fmt.Errorf("unknown priority %q", w.Priority)
	}
	return nil
}
