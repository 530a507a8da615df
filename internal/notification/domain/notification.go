package domain

import (
	"errors"
	"time"
)

// Notification is an alert surfaced to a dashboard user (e.g. a work-order
// assignment or a schedule change). EntityType/EntityID/EntityURL drive
// click-through to the referenced record.
type Notification struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	EntityType string    `json:"entity_type,omitempty"`
	EntityID   string    `json:"entity_id,omitempty"`
	EntityURL  string    `json:"entity_url,omitempty"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

// Well-known notification types.
const (
	TypeWorkOrderAssigned = "work_order_assigned"
	TypeWorkOrderStatus   = "work_order_status"
	TypeScheduleChange    = "schedule_change"
	TypeSystem            = "system"
)

// Validate validates the notification for persistence.
func (n *Notification) Validate() error {
	if n.UserID == "" {
		return errors.New("user id is required")
	}
	if n.Type == "" {
		return errors.New("type is required")
	}
	return nil
}
