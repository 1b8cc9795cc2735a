package roles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/protocolai/hireai/internal/rbac"
	"github.com/protocolai/hireai/internal/shared"
)

// ErrSystemRole is returned when a mutation targets a system role.
var ErrSystemRole = fmt.Errorf("%w: system roles cannot be modified or deleted", shared.ErrForbidden)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id string) (Role, error)
	SaveRole(ctx context.Context, role Role) (Role, error)
	DeleteRole(ctx context.Context, id string) error
}

// AuditRecorder persists audit entries for role mutations.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles role business logic.
type Service struct {
	repo     RepositoryPort
	audit    AuditRecorder
	logger   *slog.Logger
	validate *validator.Validate
	newID    func() string
}

// NewService builds Service instance. audit may be nil.
func NewService(repo RepositoryPort, audit AuditRecorder) *Service {
	return &Service{
		repo:     repo,
		audit:    audit,
		logger:   slog.Default(),
		validate: validator.New(),
		newID:    func() string { return "role-" + uuid.NewString()[:8] },
	}
}

// WithLogger sets the logger used when an audit entry cannot be written.
func (s *Service) WithLogger(logger *slog.Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRole returns a single role.
func (s *Service) GetRole(ctx context.Context, id string) (Role, error) {
	return s.repo.GetRole(ctx, id)
}

// CreateRole validates input and stores a new, non-system role.
func (s *Service) CreateRole(ctx context.Context, actorID string, in RoleInput) (Role, error) {
	role, err := s.fromInput(in)
	if err != nil {
		return Role{}, err
	}
	role.ID = s.newID()
	created, err := s.repo.SaveRole(ctx, role)
	if err != nil {
		return Role{}, err
	}
	s.record(ctx, actorID, "role.create", created.ID, map[string]any{"name": created.Name})
	return created, nil
}

// UpdateRole replaces name, description and permissions of a role. The
// change takes effect on the next permission check of any actor bound to it.
func (s *Service) UpdateRole(ctx context.Context, actorID, id string, in RoleInput) (Role, error) {
	existing, err := s.mutable(ctx, id)
	if err != nil {
		return Role{}, err
	}
	next, err := s.fromInput(in)
	if err != nil {
		return Role{}, err
	}
	next.ID = existing.ID
	next.CreatedAt = existing.CreatedAt
	updated, err := s.repo.SaveRole(ctx, next)
	if err != nil {
		return Role{}, err
	}
	s.record(ctx, actorID, "role.update", id, map[string]any{"name": updated.Name})
	return updated, nil
}

// TogglePermission flips a single module action on a role.
func (s *Service) TogglePermission(ctx context.Context, actorID, id string, change PermissionChange) (Role, error) {
	if err := s.validate.Struct(change); err != nil {
		return Role{}, err
	}
	module, err := rbac.ParseModule(change.Module)
	if err != nil {
		return Role{}, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	action, err := rbac.ParseAction(change.Action)
	if err != nil {
		return Role{}, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	existing, err := s.mutable(ctx, id)
	if err != nil {
		return Role{}, err
	}
	updated, err := s.repo.SaveRole(ctx, existing.Toggle(module, action))
	if err != nil {
		return Role{}, err
	}
	s.record(ctx, actorID, "role.toggle", id, map[string]any{"module": module, "action": action})
	return updated, nil
}

// DeleteRole removes a role. System roles are rejected. Administrators still
// bound to the deleted role lose every permission until reassigned.
func (s *Service) DeleteRole(ctx context.Context, actorID, id string) error {
	if _, err := s.mutable(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteRole(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actorID, "role.delete", id, nil)
	return nil
}

func (s *Service) mutable(ctx context.Context, id string) (Role, error) {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return Role{}, err
	}
	if role.IsSystem {
		return Role{}, ErrSystemRole
	}
	return role, nil
}

func (s *Service) fromInput(in RoleInput) (Role, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := s.validate.Struct(in); err != nil {
		return Role{}, err
	}
	perms, err := rbac.ParsePermissions(in.Permissions)
	if err != nil {
		return Role{}, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	return Role{Name: in.Name, Description: in.Description, Permissions: perms}, nil
}

func (s *Service) record(ctx context.Context, actorID, action, roleID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{ActorID: actorID, Action: action, Entity: "role", EntityID: roleID, Meta: meta}); err != nil {
		s.logger.Warn("audit role", slog.String("action", action), slog.String("id", roleID), slog.Any("error", err))
	}
}

// IsSystemRole reports whether err signals a protected system role.
func IsSystemRole(err error) bool {
	return errors.Is(err, ErrSystemRole)
}
