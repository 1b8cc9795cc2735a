package rbac

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/protocolai/hireai/internal/shared"
)

type stubRoles struct {
	roles []Role
	err   error
}

func (s *stubRoles) ListRoles(context.Context) ([]Role, error) { return s.roles, s.err }

type stubActors map[string]*Actor

func (s stubActors) FindActor(_ context.Context, id string) (*Actor, error) {
	if a, ok := s[id]; ok {
		return a, nil
	}
	return nil, shared.ErrNotFound
}

func newTestSessions(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func requestAs(t *testing.T, sessions *shared.SessionManager, userID string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	sess, err := sessions.Load(req.Context(), req)
	require.NoError(t, err)
	if userID != "" {
		sess.SetUser(userID)
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestMiddlewareRequire(t *testing.T) {
	sessions := newTestSessions(t)
	roles := &stubRoles{roles: sampleRoles()}
	mw := Middleware{Service: NewService(roles, stubActors{
		"u-viewer":   {ID: "u-viewer", RoleID: "role-viewer"},
		"u-dangling": {ID: "u-dangling", RoleID: "role-gone"},
	}, nil)}

	var seen *Actor
	protected := mw.Require(ModuleJobs, ActionView)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name string
		user string
		want int
	}{
		{name: "anonymous", user: "", want: http.StatusUnauthorized},
		{name: "unknown user", user: "u-ghost", want: http.StatusUnauthorized},
		{name: "dangling role", user: "u-dangling", want: http.StatusForbidden},
		{name: "granted", user: "u-viewer", want: http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			res := httptest.NewRecorder()
			protected.ServeHTTP(res, requestAs(t, sessions, tc.user))
			require.Equal(t, tc.want, res.Code)
			if tc.want == http.StatusOK {
				require.NotNil(t, seen)
				require.Equal(t, tc.user, seen.ID)
			}
		})
	}
}

func TestMiddlewareRoleSourceFailureDenies(t *testing.T) {
	sessions := newTestSessions(t)
	mw := Middleware{Service: NewService(&stubRoles{err: errors.New("db down")}, stubActors{
		"u-viewer": {ID: "u-viewer", RoleID: "role-viewer"},
	}, nil)}
	handler := mw.Require(ModuleJobs, ActionView)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestAs(t, sessions, "u-viewer"))
	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestServiceEffectivePermissions(t *testing.T) {
	svc := NewService(&stubRoles{roles: sampleRoles()}, stubActors{
		"u-viewer":   {ID: "u-viewer", RoleID: "role-viewer"},
		"u-dangling": {ID: "u-dangling", RoleID: "role-gone"},
	}, nil)
	ctx := context.Background()

	perms, err := svc.EffectivePermissions(ctx, "u-viewer")
	require.NoError(t, err)
	require.Equal(t, []ModulePermission{
		{Module: ModuleJobs, Actions: []Action{ActionView}},
		{Module: ModuleCandidates, Actions: []Action{ActionEdit}},
	}, perms)

	perms, err = svc.EffectivePermissions(ctx, "u-dangling")
	require.NoError(t, err)
	require.Empty(t, perms)

	require.True(t, svc.Allowed(ctx, "u-viewer", ModuleJobs, ActionView))
	require.False(t, svc.Allowed(ctx, "nobody", ModuleJobs, ActionView))
}
