package roles

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protocolai/hireai/internal/rbac"
)

func TestDecodePermissionsSkipsUnknownEntries(t *testing.T) {
	raw := []byte(`[
		{"moduleId": "JOBS", "actions": ["VIEW", "TELEPORT", "CREATE"]},
		{"moduleId": "PAYROLL", "actions": ["VIEW"]},
		{"moduleId": "jobs", "actions": ["view"]}
	]`)
	var buf bytes.Buffer
	perms, err := decodePermissions(slog.New(slog.NewTextHandler(&buf, nil)), "role-legacy", raw)
	require.NoError(t, err)
	require.Equal(t, []rbac.ModulePermission{
		{Module: rbac.ModuleJobs, Actions: []rbac.Action{rbac.ActionView, rbac.ActionCreate}},
	}, perms)
	require.Contains(t, buf.String(), "PAYROLL")
	require.Contains(t, buf.String(), "TELEPORT")
	require.Contains(t, buf.String(), "role-legacy")
}

func TestDecodePermissionsRejectsMalformedJSON(t *testing.T) {
	_, err := decodePermissions(slog.Default(), "role-broken", []byte(`{"moduleId":`))
	require.Error(t, err)

	perms, err := decodePermissions(slog.Default(), "role-empty", nil)
	require.NoError(t, err)
	require.Empty(t, perms)
}
