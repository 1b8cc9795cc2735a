package roles

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protocolai/hireai/internal/rbac"
	"github.com/protocolai/hireai/internal/shared"
)

type memoryRoleRepo struct {
	roles map[string]Role
}

func newMemoryRoleRepo(seed ...Role) *memoryRoleRepo {
	repo := &memoryRoleRepo{roles: make(map[string]Role)}
	for _, r := range seed {
		repo.roles[r.ID] = r
	}
	return repo
}

func (m *memoryRoleRepo) ListRoles(context.Context) ([]Role, error) {
	out := make([]Role, 0, len(m.roles))
	for _, r := range m.roles {
		out = append(out, r)
	}
	return out, nil
}

func (m *memoryRoleRepo) GetRole(_ context.Context, id string) (Role, error) {
	r, ok := m.roles[id]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	return r, nil
}

func (m *memoryRoleRepo) SaveRole(_ context.Context, role Role) (Role, error) {
	for id, existing := range m.roles {
		if id != role.ID && existing.Name == role.Name {
			return Role{}, shared.ErrDuplicate
		}
	}
	if prev, ok := m.roles[role.ID]; ok {
		role.IsSystem = prev.IsSystem
	}
	role.Permissions = rbac.NormalizePermissions(role.Permissions)
	m.roles[role.ID] = role
	return role, nil
}

func (m *memoryRoleRepo) DeleteRole(_ context.Context, id string) error {
	if _, ok := m.roles[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.roles, id)
	return nil
}

type memoryAudit struct {
	entries []shared.AuditLog
	err     error
}

func (m *memoryAudit) Record(_ context.Context, log shared.AuditLog) error {
	m.entries = append(m.entries, log)
	return m.err
}

func superRole() Role {
	return Role{ID: SuperRoleID, Name: "Super Admin", IsSystem: true, Permissions: rbac.FullAccess()}
}

func TestAuditFailureDoesNotFailMutation(t *testing.T) {
	audit := &memoryAudit{err: errors.New("audit table locked")}
	var buf bytes.Buffer
	svc := NewService(newMemoryRoleRepo(superRole()), audit).WithLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	role, err := svc.CreateRole(context.Background(), "u-admin", RoleInput{Name: "Interviewer"})
	require.NoError(t, err)
	require.NotEmpty(t, role.ID)
	require.Len(t, audit.entries, 1)
	require.Contains(t, buf.String(), "audit role")
	require.Contains(t, buf.String(), "audit table locked")
}

func TestCreateRole(t *testing.T) {
	audit := &memoryAudit{}
	svc := NewService(newMemoryRoleRepo(superRole()), audit)
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, "u-admin", RoleInput{
		Name:        "  Recruiter ",
		Permissions: map[string][]string{"jobs": {"view", "create"}},
	})
	require.NoError(t, err)
	require.Equal(t, "Recruiter", role.Name)
	require.Contains(t, role.ID, "role-")
	require.False(t, role.IsSystem)
	require.True(t, role.Allows(rbac.ModuleJobs, rbac.ActionCreate))
	require.Len(t, audit.entries, 1)
	require.Equal(t, "role.create", audit.entries[0].Action)
	require.Equal(t, "u-admin", audit.entries[0].ActorID)

	_, err = svc.CreateRole(ctx, "u-admin", RoleInput{Name: ""})
	require.Error(t, err)

	_, err = svc.CreateRole(ctx, "u-admin", RoleInput{Name: "Bad", Permissions: map[string][]string{"JOBS": {"FLY"}}})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreateRole(ctx, "u-admin", RoleInput{Name: "Super Admin"})
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestSystemRoleIsProtected(t *testing.T) {
	repo := newMemoryRoleRepo(superRole())
	svc := NewService(repo, nil)
	ctx := context.Background()

	err := svc.DeleteRole(ctx, "u-admin", SuperRoleID)
	require.ErrorIs(t, err, ErrSystemRole)
	require.ErrorIs(t, err, shared.ErrForbidden)
	require.True(t, IsSystemRole(err))

	_, err = svc.TogglePermission(ctx, "u-admin", SuperRoleID, PermissionChange{Module: "JOBS", Action: "VIEW"})
	require.ErrorIs(t, err, ErrSystemRole)

	_, err = svc.UpdateRole(ctx, "u-admin", SuperRoleID, RoleInput{Name: "Renamed"})
	require.ErrorIs(t, err, ErrSystemRole)

	stored, err := svc.GetRole(ctx, SuperRoleID)
	require.NoError(t, err)
	require.Equal(t, "Super Admin", stored.Name)
}

func TestTogglePermissionRoundTrip(t *testing.T) {
	repo := newMemoryRoleRepo(Role{ID: "role-x", Name: "X", Permissions: []rbac.ModulePermission{
		{Module: rbac.ModuleCandidates, Actions: []rbac.Action{rbac.ActionView}},
	}})
	svc := NewService(repo, nil)
	ctx := context.Background()
	change := PermissionChange{Module: "candidates", Action: "export"}

	once, err := svc.TogglePermission(ctx, "u", "role-x", change)
	require.NoError(t, err)
	require.True(t, once.Allows(rbac.ModuleCandidates, rbac.ActionExport))

	twice, err := svc.TogglePermission(ctx, "u", "role-x", change)
	require.NoError(t, err)
	require.Equal(t, []rbac.ModulePermission{
		{Module: rbac.ModuleCandidates, Actions: []rbac.Action{rbac.ActionView}},
	}, twice.Permissions)

	_, err = svc.TogglePermission(ctx, "u", "role-x", PermissionChange{Module: "NOPE", Action: "VIEW"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeleteRole(t *testing.T) {
	repo := newMemoryRoleRepo(superRole(), Role{ID: "role-x", Name: "X"})
	svc := NewService(repo, nil)
	ctx := context.Background()

	require.NoError(t, svc.DeleteRole(ctx, "u", "role-x"))
	_, err := svc.GetRole(ctx, "role-x")
	require.ErrorIs(t, err, shared.ErrNotFound)

	require.ErrorIs(t, svc.DeleteRole(ctx, "u", "role-x"), shared.ErrNotFound)
}

func TestUpdateRoleKeepsIdentity(t *testing.T) {
	repo := newMemoryRoleRepo(Role{ID: "role-x", Name: "X"})
	svc := NewService(repo, nil)

	updated, err := svc.UpdateRole(context.Background(), "u", "role-x", RoleInput{
		Name:        "Hiring Lead",
		Description: "leads hiring",
		Permissions: map[string][]string{"INTELLIGENCE": {"VIEW"}},
	})
	require.NoError(t, err)
	require.Equal(t, "role-x", updated.ID)
	require.Equal(t, "Hiring Lead", updated.Name)
	require.True(t, updated.Allows(rbac.ModuleIntelligence, rbac.ActionView))
}
