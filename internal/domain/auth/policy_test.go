package auth

import "testing"

func TestAdminAllowedEverywhere(t *testing.T) {
	ops := []Operation{
		OpEvaluationCreate, OpEvaluationRead, OpEvaluationUpdate,
		OpEvaluationDelete, OpEvaluationStart, OpEvaluationComplete,
		OpDirectoryWrite, OpAuditRead, OpMetricsRead,
	}
	for _, op := range ops {
		if !Allowed(op, RoleAdmin) {
			t.Fatalf("expected admin allowed for %s", op)
		}
	}
}

func TestEmployeeReadNeedsOwnership(t *testing.T) {
	if Allowed(OpEvaluationRead, RoleEmployee) {
		t.Fatal("employee without relationship must not read arbitrary evaluations")
	}
	if !Allowed(OpEvaluationRead, RoleEmployee, RelSubject) {
		t.Fatal("employee must read their own evaluation")
	}
	if !Allowed(OpEvaluationRead, RoleEmployee, RelEvaluator) {
		t.Fatal("assigned evaluator must read the evaluation")
	}
}

func TestSubmitRequiresEvaluatorForEveryRole(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleManager, RoleEmployee} {
		if Allowed(OpEvaluationSubmit, role) {
			t.Fatalf("%s must not submit without being an assigned evaluator", role)
		}
		if !Allowed(OpEvaluationSubmit, role, RelEvaluator) {
			t.Fatalf("%s assigned as evaluator must be able to submit", role)
		}
	}
}

func TestManagerMutationsRequireCreator(t *testing.T) {
	for _, op := range []Operation{OpEvaluationUpdate, OpEvaluationDelete, OpEvaluationStart, OpEvaluationComplete} {
		if Allowed(op, RoleManager, RelSubject) {
			t.Fatalf("manager who is not the creator must not perform %s", op)
		}
		if !Allowed(op, RoleManager, RelCreator) {
			t.Fatalf("creating manager must perform %s", op)
		}
	}
}

func TestEmployeeDeniedAdminSurfaces(t *testing.T) {
	if Allowed(OpAuditRead, RoleEmployee) || Allowed(OpDirectoryWrite, RoleManager) {
		t.Fatal("admin surfaces leaked to non-admin roles")
	}
	if Allowed(OpEvaluationCreate, RoleEmployee) {
		t.Fatal("employees must not create evaluations")
	}
}

func TestUnknownRoleDenied(t *testing.T) {
	if Allowed(OpEvaluationRead, "intern", RelSubject) {
		t.Fatal("unknown role must be denied")
	}
	if RoleKnown("intern") {
		t.Fatal("unknown role must not be recognized")
	}
	if !RoleKnown(RoleManager) {
		t.Fatal("manager role must be recognized")
	}
}
