package auth

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

type Operation string

const (
	OpEvaluationCreate   Operation = "evaluation.create"
	OpEvaluationRead     Operation = "evaluation.read"
	OpEvaluationUpdate   Operation = "evaluation.update"
	OpEvaluationDelete   Operation = "evaluation.delete"
	OpEvaluationStart    Operation = "evaluation.start"
	OpEvaluationSubmit   Operation = "evaluation.submit"
	OpEvaluationComplete Operation = "evaluation.complete"
	OpDashboardRead      Operation = "dashboard.read"
	OpDashboardReadOrg   Operation = "dashboard.read_org"
	OpDirectoryRead      Operation = "directory.read"
	OpDirectoryWrite     Operation = "directory.write"
	OpReportExport       Operation = "report.export"
	OpAuditRead          Operation = "audit.read"
	OpMetricsRead        Operation = "metrics.read"
)

// Relationship is the actor's standing toward the entity an operation
// touches. RelAny means no ownership requirement.
type Relationship string

const (
	RelAny       Relationship = "any"
	RelSubject   Relationship = "subject"
	RelEvaluator Relationship = "evaluator"
	RelCreator   Relationship = "creator"
)

// policy is the single allow table consulted once per operation:
// operation -> role -> relationships that permit it. A role absent from an
// operation's row is denied outright.
var policy = map[Operation]map[string][]Relationship{
	OpEvaluationCreate: {
		RoleAdmin:   {RelAny},
		RoleManager: {RelAny},
	},
	OpEvaluationRead: {
		RoleAdmin:    {RelAny},
		RoleManager:  {RelAny},
		RoleEmployee: {RelSubject, RelEvaluator},
	},
	OpEvaluationUpdate: {
		RoleAdmin:   {RelAny},
		RoleManager: {RelCreator},
	},
	OpEvaluationDelete: {
		RoleAdmin:   {RelAny},
		RoleManager: {RelCreator},
	},
	OpEvaluationStart: {
		RoleAdmin:   {RelAny},
		RoleManager: {RelCreator},
	},
	OpEvaluationSubmit: {
		RoleAdmin:    {RelEvaluator},
		RoleManager:  {RelEvaluator},
		RoleEmployee: {RelEvaluator},
	},
	OpEvaluationComplete: {
		RoleAdmin:   {RelAny},
		RoleManager: {RelCreator},
	},
	OpDashboardRead: {
		RoleAdmin:    {RelAny},
		RoleManager:  {RelAny},
		RoleEmployee: {RelAny},
	},
	OpDashboardReadOrg: {
		RoleAdmin:   {RelAny},
		RoleManager: {RelAny},
	},
	OpDirectoryRead: {
		RoleAdmin:    {RelAny},
		RoleManager:  {RelAny},
		RoleEmployee: {RelAny},
	},
	OpDirectoryWrite: {
		RoleAdmin: {RelAny},
	},
	OpReportExport: {
		RoleAdmin:   {RelAny},
		RoleManager: {RelAny},
	},
	OpAuditRead: {
		RoleAdmin: {RelAny},
	},
	OpMetricsRead: {
		RoleAdmin: {RelAny},
	},
}

// Allowed reports whether role may perform op given the relationships the
// actor holds toward the target entity.
func Allowed(op Operation, role string, held ...Relationship) bool {
	allowed, ok := policy[op][role]
	if !ok {
		return false
	}
	for _, need := range allowed {
		if need == RelAny {
			return true
		}
		for _, have := range held {
			if have == need {
				return true
			}
		}
	}
	return false
}

// MayAttempt reports whether role participates in op under any
// relationship. The transport layer uses it as a coarse gate; the service
// applies the relationship-specific rules afterward.
func MayAttempt(op Operation, role string) bool {
	_, ok := policy[op][role]
	return ok
}

// RoleKnown reports whether the role participates in any operation at all.
// Used by the HTTP layer to reject tokens carrying unknown roles early.
func RoleKnown(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}
