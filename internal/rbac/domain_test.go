package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseModuleAndAction(t *testing.T) {
	m, err := ParseModule(" intelligence ")
	require.NoError(t, err)
	require.Equal(t, ModuleIntelligence, m)

	_, err = ParseModule("PAYROLL")
	require.ErrorIs(t, err, ErrUnknownModule)

	a, err := ParseAction("export")
	require.NoError(t, err)
	require.Equal(t, ActionExport, a)

	_, err = ParseAction("APPROVE")
	require.ErrorIs(t, err, ErrUnknownAction)
}

func TestRoleGrantRevoke(t *testing.T) {
	base := Role{ID: "role-a", Permissions: []ModulePermission{
		{Module: ModuleJobs, Actions: []Action{ActionView}},
	}}

	granted := base.Grant(ModuleJobs, ActionEdit)
	require.True(t, granted.Allows(ModuleJobs, ActionEdit))
	require.False(t, base.Allows(ModuleJobs, ActionEdit), "grant must not mutate the receiver")

	again := granted.Grant(ModuleJobs, ActionEdit)
	p, ok := again.Permission(ModuleJobs)
	require.True(t, ok)
	require.Equal(t, []Action{ActionView, ActionEdit}, p.Actions)

	newModule := base.Grant(ModuleTeam, ActionView)
	require.True(t, newModule.Allows(ModuleTeam, ActionView))
	require.Len(t, newModule.Permissions, 2)

	revoked := base.Revoke(ModuleJobs, ActionView)
	_, ok = revoked.Permission(ModuleJobs)
	require.False(t, ok, "module entry is dropped with its last action")

	untouched := base.Revoke(ModuleRoles, ActionDelete)
	require.Equal(t, base.Permissions, untouched.Permissions)
}

func TestRoleToggleRoundTrip(t *testing.T) {
	base := Role{ID: "role-a", Permissions: []ModulePermission{
		{Module: ModuleCandidates, Actions: []Action{ActionView, ActionExport}},
		{Module: ModuleRoles, Actions: []Action{ActionView}},
	}}
	for _, info := range Catalogue() {
		for _, action := range info.Actions {
			twice := base.Toggle(info.ID, action).Toggle(info.ID, action)
			require.Equal(t, NormalizePermissions(base.Permissions), NormalizePermissions(twice.Permissions), "%s:%s", info.ID, action)
		}
	}
}

func TestNormalizePermissions(t *testing.T) {
	got := NormalizePermissions([]ModulePermission{
		{Module: ModuleRoles, Actions: []Action{ActionEdit, ActionView, ActionEdit}},
		{Module: ModuleJobs, Actions: nil},
		{Module: ModuleRoles, Actions: []Action{ActionDelete}},
		{Module: ModuleJobs, Actions: []Action{ActionView}},
	})
	require.Equal(t, []ModulePermission{
		{Module: ModuleJobs, Actions: []Action{ActionView}},
		{Module: ModuleRoles, Actions: []Action{ActionView, ActionEdit, ActionDelete}},
	}, got)
}

func TestParsePermissions(t *testing.T) {
	perms, err := ParsePermissions(map[string][]string{
		"jobs":       {"view", "create"},
		"CANDIDATES": {"EXPORT"},
	})
	require.NoError(t, err)
	require.Equal(t, []ModulePermission{
		{Module: ModuleJobs, Actions: []Action{ActionView, ActionCreate}},
		{Module: ModuleCandidates, Actions: []Action{ActionExport}},
	}, perms)

	_, err = ParsePermissions(map[string][]string{"JOBS": {"FLY"}})
	require.ErrorIs(t, err, ErrUnknownAction)

	_, err = ParsePermissions(map[string][]string{"MOON": {"VIEW"}})
	require.ErrorIs(t, err, ErrUnknownModule)
}

func TestFullAccessCoversCatalogue(t *testing.T) {
	role := Role{ID: "role-super", Permissions: FullAccess()}
	for _, info := range Catalogue() {
		for _, action := range info.Actions {
			require.True(t, role.Allows(info.ID, action), "%s:%s", info.ID, action)
		}
	}
}
