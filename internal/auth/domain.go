package auth

import "github.com/protocolai/hireai/internal/rbac"

// Credentials is the slice of an administrator needed to verify a login.
type Credentials struct {
	UserID       string
	Email        string
	FullName     string
	PasswordHash string
}

// LoginInput is the JSON body of a login request.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Profile describes the signed-in administrator and what the console may show them.
type Profile struct {
	UserID      string                  `json:"userId"`
	Email       string                  `json:"email,omitempty"`
	Role        *rbac.Role              `json:"role,omitempty"`
	Permissions []rbac.ModulePermission `json:"permissions"`
	Navigation  []rbac.NavItem          `json:"navigation"`
}
