package branches

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/protocolai/hireai/internal/roles"
	"github.com/protocolai/hireai/internal/shared"
	"github.com/protocolai/hireai/internal/users"
)

// AuditRecorder persists audit entries for provisioning.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Options configures branch provisioning.
type Options struct {
	EmailDomain string
	AdminRoleID string
	BcryptCost  int
	Audit       AuditRecorder
}

// Service manages branches.
type Service struct {
	repo     Repository
	opts     Options
	validate *validator.Validate
}

// NewService builds a Service.
func NewService(repo Repository, opts Options) *Service {
	if opts.EmailDomain == "" {
		opts.EmailDomain = "company.com"
	}
	if opts.AdminRoleID == "" {
		opts.AdminRoleID = roles.RecruiterRoleID
	}
	return &Service{repo: repo, opts: opts, validate: validator.New()}
}

// List returns every branch.
func (s *Service) List(ctx context.Context) ([]Branch, error) {
	return s.repo.List(ctx)
}

// Get returns a single branch.
func (s *Service) Get(ctx context.Context, id string) (Branch, error) {
	return s.repo.Get(ctx, id)
}

// Provision creates a branch together with a branch administrator bound to
// the recruiter role. The generated password is only returned here.
func (s *Service) Provision(ctx context.Context, actorID string, in ProvisionInput) (Provisioned, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	if err := s.validate.Struct(in); err != nil {
		return Provisioned{}, err
	}
	password, err := GeneratePassword()
	if err != nil {
		return Provisioned{}, err
	}
	hash, err := users.HashPassword(password, s.cost())
	if err != nil {
		return Provisioned{}, err
	}
	branchID := "branch-" + uuid.NewString()[:8]
	email := AdminEmail(in.Name, s.opts.EmailDomain)
	branch, admin, err := s.repo.Provision(ctx,
		Branch{ID: branchID, Name: in.Name, CompanyName: in.CompanyName},
		users.AdminUser{
			ID:           users.NewID(),
			FullName:     in.Name + " Administrator",
			Email:        email,
			Position:     "Branch Manager",
			RoleID:       s.opts.AdminRoleID,
			BranchID:     branchID,
			PasswordHash: hash,
		})
	if err != nil {
		return Provisioned{}, err
	}
	if s.opts.Audit != nil {
		_ = s.opts.Audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "branch.provision",
			Entity:   "branch",
			EntityID: branch.ID,
			Meta:     map[string]any{"admin_id": admin.ID, "email": email},
		})
	}
	return Provisioned{Branch: branch, Admin: admin, Email: email, Password: password}, nil
}

func (s *Service) cost() int {
	if s.opts.BcryptCost > 0 {
		return s.opts.BcryptCost
	}
	return bcrypt.DefaultCost
}
