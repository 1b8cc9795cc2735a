// Package bootstrap seeds the records the console cannot run without.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/protocolai/hireai/internal/branches"
	"github.com/protocolai/hireai/internal/rbac"
	"github.com/protocolai/hireai/internal/roles"
	"github.com/protocolai/hireai/internal/shared"
	"github.com/protocolai/hireai/internal/users"
)

// Seeded identifiers.
const (
	SuperRoleID     = roles.SuperRoleID
	RecruiterRoleID = roles.RecruiterRoleID
)

// RoleStore reads and writes roles.
type RoleStore interface {
	GetRole(ctx context.Context, id string) (rbac.Role, error)
	SaveRole(ctx context.Context, role rbac.Role) (rbac.Role, error)
}

// BranchStore creates branches when missing.
type BranchStore interface {
	Ensure(ctx context.Context, branch branches.Branch) error
}

// UserStore reads and writes administrators.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (users.AdminUser, error)
	CreateUser(ctx context.Context, u users.AdminUser) (users.AdminUser, error)
}

// Config carries the primary administrator credentials.
type Config struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
	BcryptCost    int
}

// Seeder performs the idempotent startup seed.
type Seeder struct {
	roles    RoleStore
	branches BranchStore
	users    UserStore
	cfg      Config
	logger   *slog.Logger
}

// New builds a Seeder.
func New(roles RoleStore, branchStore BranchStore, userStore UserStore, cfg Config, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{roles: roles, branches: branchStore, users: userStore, cfg: cfg, logger: logger}
}

// SuperRole is the system role granting the whole catalogue.
func SuperRole() rbac.Role {
	return rbac.Role{
		ID:          SuperRoleID,
		Name:        "Super Admin",
		Description: "Full access to every module",
		Permissions: rbac.FullAccess(),
		IsSystem:    true,
	}
}

// RecruiterRole is the default role bound to branch administrators.
func RecruiterRole() rbac.Role {
	return rbac.Role{
		ID:          RecruiterRoleID,
		Name:        "Recruiter",
		Description: "Manages jobs and candidates",
		Permissions: rbac.NormalizePermissions([]rbac.ModulePermission{
			{Module: rbac.ModuleJobs, Actions: []rbac.Action{rbac.ActionView, rbac.ActionCreate, rbac.ActionEdit}},
			{Module: rbac.ModuleCandidates, Actions: []rbac.Action{rbac.ActionView, rbac.ActionEdit, rbac.ActionExport}},
			{Module: rbac.ModuleCVParsing, Actions: []rbac.Action{rbac.ActionView, rbac.ActionExecute}},
			{Module: rbac.ModuleIntelligence, Actions: []rbac.Action{rbac.ActionView}},
			{Module: rbac.ModuleGuide, Actions: []rbac.Action{rbac.ActionView}},
		}),
	}
}

// Run seeds roles, the main branch and the primary administrator. The super
// role is rewritten on every run so new modules reach it; everything else is
// only created when missing.
func (s *Seeder) Run(ctx context.Context) error {
	if _, err := s.roles.SaveRole(ctx, SuperRole()); err != nil {
		return fmt.Errorf("bootstrap: super role: %w", err)
	}
	if err := s.ensureRole(ctx, RecruiterRole()); err != nil {
		return fmt.Errorf("bootstrap: recruiter role: %w", err)
	}
	if err := s.branches.Ensure(ctx, branches.Branch{ID: branches.DefaultBranchID, Name: "Main Hub", CompanyName: "Headquarters"}); err != nil {
		return fmt.Errorf("bootstrap: main branch: %w", err)
	}
	if err := s.ensureAdmin(ctx); err != nil {
		return fmt.Errorf("bootstrap: admin: %w", err)
	}
	return nil
}

func (s *Seeder) ensureRole(ctx context.Context, role rbac.Role) error {
	_, err := s.roles.GetRole(ctx, role.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	_, err = s.roles.SaveRole(ctx, role)
	return err
}

func (s *Seeder) ensureAdmin(ctx context.Context) error {
	email := strings.ToLower(strings.TrimSpace(s.cfg.AdminEmail))
	if email == "" || s.cfg.AdminPassword == "" {
		s.logger.Warn("bootstrap admin credentials not configured; skipping admin seed")
		return nil
	}
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	cost := s.cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := users.HashPassword(s.cfg.AdminPassword, cost)
	if err != nil {
		return err
	}
	name := s.cfg.AdminName
	if name == "" {
		name = "System Administrator"
	}
	admin, err := s.users.CreateUser(ctx, users.AdminUser{
		ID:           users.NewID(),
		FullName:     name,
		Email:        email,
		Position:     "Administrator",
		RoleID:       SuperRoleID,
		BranchID:     branches.DefaultBranchID,
		PasswordHash: hash,
	})
	if err != nil {
		return err
	}
	s.logger.Info("bootstrap admin created", slog.String("user_id", admin.ID), slog.String("email", email))
	return nil
}
