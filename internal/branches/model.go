package branches

import (
	"time"

	"github.com/protocolai/hireai/internal/users"
)

// DefaultBranchID identifies the branch seeded at bootstrap.
const DefaultBranchID = "main-hub"

// Branch represents an organisational unit that owns job posts and applications.
type Branch struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CompanyName string    `json:"companyName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ProvisionInput is the payload for creating a branch and its administrator.
type ProvisionInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	CompanyName string `json:"companyName" validate:"required,max=160"`
}

// Provisioned carries the created branch and the one-time credentials of
// its administrator. Password is never stored in plain text.
type Provisioned struct {
	Branch   Branch          `json:"branch"`
	Admin    users.AdminUser `json:"admin"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
}
