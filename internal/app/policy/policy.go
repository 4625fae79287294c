// Package policy is the single decision table for role-gated operations.
// Every call site asks this table instead of re-deriving role checks inline,
// so a permission rule exists in exactly one place.
package policy

import (
	"fmt"

	"github.com/rahul/acadcore/internal/app/models"
	"github.com/rahul/acadcore/internal/pkg/apperrors"
)

// Action enumerates the operations the policy gates.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionToggle Action = "toggle"
)

// Resource enumerates the record types the policy gates.
type Resource string

const (
	ResourceStudents   Resource = "students"
	ResourceSubjects   Resource = "subjects"
	ResourceMarks      Resource = "marks"
	ResourceAttendance Resource = "attendance"
)

// mutators maps each resource to the roles allowed to mutate it. Reads are
// open to every valid role; an unknown role is denied all mutations.
var mutators = map[Resource]map[models.Role]bool{
	ResourceStudents: {
		models.RoleAdmin: true,
	},
	ResourceSubjects: {
		models.RoleAdmin: true,
	},
	ResourceMarks: {
		models.RoleFaculty: true,
		models.RoleAdmin:   true,
	},
	ResourceAttendance: {
		models.RoleFaculty: true,
		models.RoleAdmin:   true,
	},
}

// CanPerform reports whether the role may perform the action on the resource.
// Pure and total over the enumerated roles, actions and resources.
func CanPerform(role models.Role, action Action, resource Resource) bool {
	if !role.Valid() {
		return false
	}
	if action == ActionRead {
		return true
	}
	return mutators[resource][role]
}

// Check returns nil if the action is permitted, otherwise the typed
// authorization error the repositories fail fast with before contacting the
// store.
func Check(role models.Role, action Action, resource Resource) error {
	if CanPerform(role, action, resource) {
		return nil
	}
	if !role.Valid() {
		return apperrors.NewAuthorizationError(
			fmt.Sprintf("an assigned role is required to %s %s", action, resource),
		)
	}
	return apperrors.NewAuthorizationError(
		fmt.Sprintf("role %s may not %s %s", role, action, resource),
	)
}
