package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	userdomain "ppf-ops-platform/internal/user/domain"
	workorderdomain "ppf-ops-platform/internal/workorder/domain"
)

const policyQuery = "data.ppfops.workorder_access.allow"

// Default Rego policy encoding the role model: admins and managers do
// anything, technicians read and move their own assigned orders, viewers
// read everything and write nothing.
const defaultRegoPolicy = `package ppfops.workorder_access

default allow = false

allow if {
	input.user.role == "admin"
}

allow if {
	input.user.role == "manager"
}

allow if {
	input.user.role == "technician"
	input.action == "read"
	input.workorder.technician_id == input.user.id
}

allow if {
	input.user.role == "technician"
	input.action == "change_status"
	input.workorder.technician_id == input.user.id
}

allow if {
	input.user.role == "viewer"
	input.action == "read"
}
`

// OPAEvaluator evaluates work-order access policies using OPA Rego.
// Custom modules, when provided, replace the built-in policy wholesale so an
// operator can ship a stricter or looser role model without a rebuild.
type OPAEvaluator struct {
	customPolicies []string
}

// NewOPAEvaluator returns an OPA-based access evaluator. customPolicies are
// complete Rego modules in the ppfops.workorder_access package.
func NewOPAEvaluator(customPolicies ...string) *OPAEvaluator {
	return &OPAEvaluator{customPolicies: customPolicies}
}

// HealthCheck verifies that the in-process OPA Rego engine can compile and
// evaluate the active policy. Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	compiler, err := e.compile()
	if err != nil {
		return fmt.Errorf("compile policy: %w", err)
	}
	input := buildInput(&userdomain.User{Role: userdomain.RoleViewer}, ActionRead, nil)
	rs, err := rego.New(
		rego.Query(policyQuery),
		rego.Compiler(compiler),
		rego.Input(input),
	).Eval(ctx)
	if err != nil {
		return fmt.Errorf("eval policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return fmt.Errorf("policy query returned no result")
	}
	return nil
}

// Authorize evaluates the access policy. Evaluation failures deny: a broken
// policy must never widen access.
func (e *OPAEvaluator) Authorize(ctx context.Context, user *userdomain.User, action Action, w *workorderdomain.WorkOrder) (Decision, error) {
	compiler, err := e.compile()
	if err != nil {
		log.Printf("policy: compile failed, denying: %v", err)
		return Decision{}, nil
	}
	rs, err := rego.New(
		rego.Query(policyQuery),
		rego.Compiler(compiler),
		rego.Input(buildInput(user, action, w)),
	).Eval(ctx)
	if err != nil {
		log.Printf("policy: evaluation failed, denying: %v", err)
		return Decision{}, nil
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return Decision{}, nil
	}
	allow, _ := rs[0].Expressions[0].Value.(bool)
	return Decision{Allow: allow}, nil
}

func (e *OPAEvaluator) compile() (*ast.Compiler, error) {
	modules := map[string]string{"policy_0.rego": defaultRegoPolicy}
	if len(e.customPolicies) > 0 {
		modules = make(map[string]string)
		for i, p := range e.customPolicies {
			modules[fmt.Sprintf("policy_%d.rego", i)] = p
		}
	}
	return ast.CompileModules(modules)
}

func buildInput(user *userdomain.User, action Action, w *workorderdomain.WorkOrder) map[string]interface{} {
	userMap := map[string]interface{}{
		"id":   "",
		"role": "",
	}
	if user != nil {
		userMap["id"] = user.ID
		userMap["role"] = string(user.Role)
	}
	workorderMap := map[string]interface{}{
		"id":            "",
		"technician_id": "",
		"status":        "",
	}
	if w != nil {
		workorderMap["id"] = w.ID
		workorderMap["technician_id"] = w.TechnicianID
		workorderMap["status"] = string(w.Status)
	}
	return map[string]interface{}{
		"user":      userMap,
		"action":    string(action),
		"workorder": workorderMap,
	}
}
