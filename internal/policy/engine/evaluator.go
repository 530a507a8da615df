package engine

import (
	"context"

	userdomain "ppf-ops-platform/internal/user/domain"
	workorderdomain "ppf-ops-platform/internal/workorder/domain"
)

// Action names a work-order operation being authorized.
type Action string

const (
	ActionRead         Action = "read"
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionAssign       Action = "assign"
	ActionChangeStatus Action = "change_status"
	ActionDelete       Action = "delete"
)

// Decision is the outcome of an access evaluation.
type Decision struct {
	Allow bool
}

// Evaluator decides whether a user may perform an action on a work order.
type Evaluator interface {
	// Authorize evaluates access policy for the given user, action, and
	// target work order. w may be nil for collection-level actions (create,
	// list); role defaults apply.
	Authorize(ctx context.Context, user *userdomain.User, action Action, w *workorderdomain.WorkOrder) (Decision, error)
}
