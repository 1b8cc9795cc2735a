package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/protocolai/hireai/internal/rbac"
	"github.com/protocolai/hireai/internal/shared"
)

// RepositoryPort defines data access methods for administrators.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]AdminUser, error)
	GetUser(ctx context.Context, id string) (AdminUser, error)
	CreateUser(ctx context.Context, u AdminUser) (AdminUser, error)
	UpdateRole(ctx context.Context, id, roleID string) (AdminUser, error)
	DeleteUser(ctx context.Context, id string) error
}

// RoleLookup checks that a role exists before it is assigned.
type RoleLookup interface {
	GetRole(ctx context.Context, id string) (rbac.Role, error)
}

// AuditRecorder persists audit entries for team mutations.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// SessionRevoker terminates the live sessions of an administrator.
type SessionRevoker interface {
	RevokeUser(ctx context.Context, userID string) (int, error)
}

// Service handles administrator business logic.
type Service struct {
	repo       RepositoryPort
	roles      RoleLookup
	audit      AuditRecorder
	sessions   SessionRevoker
	logger     *slog.Logger
	validate   *validator.Validate
	bcryptCost int
}

// NewService builds Service instance. audit may be nil.
func NewService(repo RepositoryPort, roles RoleLookup, audit AuditRecorder) *Service {
	return &Service{
		repo:       repo,
		roles:      roles,
		audit:      audit,
		logger:     slog.Default(),
		validate:   validator.New(),
		bcryptCost: bcrypt.DefaultCost,
	}
}

// WithLogger sets the logger for best-effort side effects.
func (s *Service) WithLogger(logger *slog.Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithBcryptCost overrides the hashing cost.
func (s *Service) WithBcryptCost(cost int) *Service {
	s.bcryptCost = cost
	return s
}

// WithSessionRevoker signs deleted administrators out everywhere.
func (s *Service) WithSessionRevoker(r SessionRevoker) *Service {
	s.sessions = r
	return s
}

// ListUsers returns all administrators.
func (s *Service) ListUsers(ctx context.Context) ([]AdminUser, error) {
	return s.repo.ListUsers(ctx)
}

// CreateUser validates input, hashes the password and stores the administrator.
func (s *Service) CreateUser(ctx context.Context, actorID string, in CreateInput) (AdminUser, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return AdminUser{}, err
	}
	if err := s.ensureRole(ctx, in.RoleID); err != nil {
		return AdminUser{}, err
	}
	hash, err := HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return AdminUser{}, err
	}
	created, err := s.repo.CreateUser(ctx, AdminUser{
		ID:           NewID(),
		FullName:     in.FullName,
		Email:        in.Email,
		Position:     strings.TrimSpace(in.Position),
		Phone:        strings.TrimSpace(in.Phone),
		RoleID:       in.RoleID,
		BranchID:     in.BranchID,
		PasswordHash: hash,
	})
	if err != nil {
		return AdminUser{}, err
	}
	s.record(ctx, actorID, "user.create", created.ID, map[string]any{"email": created.Email, "role_id": created.RoleID})
	return created, nil
}

// AssignRole rebinds an administrator to another existing role.
func (s *Service) AssignRole(ctx context.Context, actorID, id string, in AssignRoleInput) (AdminUser, error) {
	if err := s.validate.Struct(in); err != nil {
		return AdminUser{}, err
	}
	if err := s.ensureRole(ctx, in.RoleID); err != nil {
		return AdminUser{}, err
	}
	updated, err := s.repo.UpdateRole(ctx, id, in.RoleID)
	if err != nil {
		return AdminUser{}, err
	}
	s.record(ctx, actorID, "user.assign_role", id, map[string]any{"role_id": in.RoleID})
	return updated, nil
}

// DeleteUser removes an administrator. Deleting oneself is rejected.
func (s *Service) DeleteUser(ctx context.Context, actorID, id string) error {
	if id == actorID {
		return ErrSelfDelete
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	revoked := 0
	if s.sessions != nil {
		// the row is gone, so leftover sessions no longer resolve to an actor
		n, err := s.sessions.RevokeUser(ctx, id)
		if err != nil {
			s.logger.Warn("revoke sessions of deleted user", slog.String("user_id", id), slog.Any("error", err))
		}
		revoked = n
	}
	s.record(ctx, actorID, "user.delete", id, map[string]any{"sessionsRevoked": revoked})
	return nil
}

func (s *Service) ensureRole(ctx context.Context, roleID string) error {
	if _, err := s.roles.GetRole(ctx, roleID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("%w: role %s does not exist", shared.ErrValidation, roleID)
		}
		return err
	}
	return nil
}

func (s *Service) record(ctx context.Context, actorID, action, userID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{ActorID: actorID, Action: action, Entity: "admin_user", EntityID: userID, Meta: meta}); err != nil {
		s.logger.Warn("audit admin user", slog.String("action", action), slog.String("id", userID), slog.Any("error", err))
	}
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("users: hash password: %w", err)
	}
	return string(hash), nil
}

// NewID returns a fresh administrator id.
func NewID() string {
	return "admin-" + uuid.NewString()
}
