package httpapi

import (
	"time"

	clientdomain "ppf-ops-platform/internal/clientrec/domain"
	userdomain "ppf-ops-platform/internal/user/domain"
	workorderdomain "ppf-ops-platform/internal/workorder/domain"
)

// Wire views decouple the JSON surface from the domain structs, the same way
// the storage layer keeps its own column mapping.

type sessionView struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	UserID       string    `json:"user_id"`
	Role         string    `json:"role"`
}

type userView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserView(u *userdomain.User) userView {
	return userView{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
	}
}

type workOrderView struct {
	ID           string     `json:"id"`
	ClientID     string     `json:"client_id"`
	TechnicianID string     `json:"technician_id,omitempty"`
	VehicleModel string     `json:"vehicle_model"`
	PPFZones     []string   `json:"ppf_zones"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	Notes        string     `json:"notes,omitempty"`
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func toWorkOrderView(w *workorderdomain.WorkOrder) workOrderView {
	return workOrderView{
		ID:           w.ID,
		ClientID:     w.ClientID,
		TechnicianID: w.TechnicianID,
		VehicleModel: w.VehicleModel,
		PPFZones:     w.PPFZones,
		Status:       string(w.Status),
		Priority:     string(w.Priority),
		Notes:        w.Notes,
		ScheduledAt:  w.ScheduledAt,
		CompletedAt:  w.CompletedAt,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}

func toWorkOrderViews(ws []*workorderdomain.WorkOrder) []workOrderView {
	out := make([]workOrderView, 0, len(ws))
	for _, w := range ws {
		out = append(out, toWorkOrderView(w))
	}
	return out
}

type vehicleView struct {
	ID    string `json:"id,omitempty"`
	Model string `json:"model"`
	Plate string `json:"plate,omitempty"`
}

type clientView struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Phone     string        `json:"phone,omitempty"`
	Email     string        `json:"email,omitempty"`
	Notes     string        `json:"notes,omitempty"`
	Vehicles  []vehicleView `json:"vehicles"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func toClientView(c *clientdomain.Client) clientView {
	vehicles := make([]vehicleView, 0, len(c.Vehicles))
	for _, v := range c.Vehicles {
		vehicles = append(vehicles, vehicleView{ID: v.ID, Model: v.Model, Plate: v.Plate})
	}
	return clientView{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		Notes:     c.Notes,
		Vehicles:  vehicles,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toClientViews(cs []*clientdomain.Client) []clientView {
	out := make([]clientView, 0, len(cs))
	for _, c := range cs {
		out = append(out, toClientView(c))
	}
	return out
}
