package users

import (
	"fmt"
	"time"

	"github.com/protocolai/hireai/internal/shared"
)

// ErrSelfDelete is returned when an administrator tries to remove their own account.
var ErrSelfDelete = fmt.Errorf("%w: administrators cannot delete their own account", shared.ErrForbidden)

// AdminUser represents a console administrator.
type AdminUser struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Position     string    `json:"position"`
	Phone        string    `json:"phone"`
	RoleID       string    `json:"roleId"`
	BranchID     string    `json:"branchId,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreateInput is the payload accepted when adding an administrator.
type CreateInput struct {
	FullName string `json:"fullName" validate:"required,max=160"`
	Email    string `json:"email" validate:"required,email"`
	Position string `json:"position" validate:"max=120"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	RoleID   string `json:"roleId" validate:"required"`
	BranchID string `json:"branchId"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// AssignRoleInput rebinds an administrator to another role.
type AssignRoleInput struct {
	RoleID string `json:"roleId" validate:"required"`
}
