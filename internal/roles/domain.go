package roles

import "github.com/protocolai/hireai/internal/rbac"

// Well-known role identifiers seeded at bootstrap.
const (
	SuperRoleID     = "role-super"
	RecruiterRoleID = "role-recruiter"
)

// RoleInput is the payload accepted when creating or updating a role.
// Permissions map module ids to action ids and are validated against the
// module catalogue.
type RoleInput struct {
	Name        string              `json:"name" validate:"required,max=120"`
	Description string              `json:"description" validate:"max=500"`
	Permissions map[string][]string `json:"permissions"`
}

// PermissionChange toggles a single module action on a role.
type PermissionChange struct {
	Module string `json:"moduleId" validate:"required"`
	Action string `json:"action" validate:"required"`
}

// Role is re-exported for callers that only depend on this package.
type Role = rbac.Role
