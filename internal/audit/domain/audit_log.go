package domain

import "time"

// AuditLog represents an audit event.
type AuditLog struct {
	ID        string
	UserID    string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}

// Actions recorded by the auth and work-order paths.
const (
	ActionLogin           = "login"
	ActionLoginFailure    = "login_failure"
	ActionLogout          = "logout"
	ActionRegister        = "register"
	ActionRefreshReuse    = "refresh_reuse"
	ActionWorkOrderCreate = "work_order_create"
	ActionWorkOrderUpdate = "work_order_update"
	ActionWorkOrderAssign = "work_order_assign"
	ActionWorkOrderStatus = "work_order_status"
	ActionWorkOrderDelete = "work_order_delete"
)
