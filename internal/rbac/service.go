package rbac

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/text/language"

	"github.com/protocolai/hireai/internal/shared"
)

// RoleSource returns the current role snapshot.
type RoleSource interface {
	ListRoles(ctx context.Context) ([]Role, error)
}

// ActorSource resolves an administrator id into an Actor.
type ActorSource interface {
	FindActor(ctx context.Context, id string) (*Actor, error)
}

// Snapshot is the state a permission decision is evaluated against.
type Snapshot struct {
	Actor *Actor
	Roles []Role
}

// Allows evaluates HasPermission against the snapshot.
func (s Snapshot) Allows(module Module, action Action) bool {
	return HasPermission(s.Actor, s.Roles, module, action)
}

// Role returns the role the actor is bound to, if it still exists.
func (s Snapshot) Role() (Role, bool) {
	if s.Actor == nil {
		return Role{}, false
	}
	return FindRole(s.Roles, s.Actor.RoleID)
}

// Navigation derives the navigation surface for the snapshot.
func (s Snapshot) Navigation(lang language.Tag) []NavItem {
	return Navigation(s.Actor, s.Roles, lang)
}

// Service loads snapshots from persistence and answers permission checks.
type Service struct {
	roles  RoleSource
	actors ActorSource
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(roles RoleSource, actors ActorSource, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{roles: roles, actors: actors, logger: logger}
}

// Snapshot loads the actor identified by userID together with all roles. A
// missing actor is not an error; the snapshot simply carries a nil actor.
func (s *Service) Snapshot(ctx context.Context, userID string) (Snapshot, error) {
	roles, err := s.roles.ListRoles(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if userID == "" {
		return Snapshot{Roles: roles}, nil
	}
	actor, err := s.actors.FindActor(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Snapshot{Roles: roles}, nil
		}
		return Snapshot{}, err
	}
	return Snapshot{Actor: actor, Roles: roles}, nil
}

// Allowed reports whether userID may perform action on module. Lookup
// failures are logged and resolve to false.
func (s *Service) Allowed(ctx context.Context, userID string, module Module, action Action) bool {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		s.logger.Error("rbac snapshot", slog.String("user_id", userID), slog.Any("error", err))
		return false
	}
	return snap.Allows(module, action)
}

// EffectivePermissions returns the module permissions granted to userID. An
// unknown user or an unresolvable role yields an empty set.
func (s *Service) EffectivePermissions(ctx context.Context, userID string) ([]ModulePermission, error) {
	snap, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	role, ok := snap.Role()
	if !ok {
		return []ModulePermission{}, nil
	}
	return NormalizePermissions(role.Permissions), nil
}
