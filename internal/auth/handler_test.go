package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/protocolai/hireai/internal/auth"
	"github.com/protocolai/hireai/internal/rbac"
	"github.com/protocolai/hireai/internal/shared"
	_ "github.com/protocolai/hireai/testing"
)

type stubRepo struct {
	creds    *auth.Credentials
	sessions map[string]string
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.Credentials, error) {
	if s.creds == nil || !strings.EqualFold(s.creds.Email, email) {
		return nil, shared.ErrNotFound
	}
	return s.creds, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id, userID string, expiresAt time.Time, ip, ua string) error {
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

type stubRoles []rbac.Role

func (s stubRoles) ListRoles(context.Context) ([]rbac.Role, error) { return s, nil }

type stubActors map[string]*rbac.Actor

func (s stubActors) FindActor(_ context.Context, id string) (*rbac.Actor, error) {
	if a, ok := s[id]; ok {
		return a, nil
	}
	return nil, shared.ErrNotFound
}

type harness struct {
	router   http.Handler
	sessions *shared.SessionManager
	repo     *stubRepo
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")

	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &stubRepo{
		creds:    &auth.Credentials{UserID: "admin-1", Email: "admin@protocol.ai", FullName: "Root", PasswordHash: string(hashed)},
		sessions: map[string]string{},
	}
	roles := stubRoles{{ID: "role-super", Name: "Super Admin", IsSystem: true, Permissions: rbac.FullAccess()}}
	access := rbac.NewService(roles, stubActors{"admin-1": {ID: "admin-1", RoleID: "role-super"}}, nil)
	handler := auth.NewHandler(nil, auth.NewService(repo), access, sessionManager, csrfManager)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sessionManager.Load(req.Context(), req)
			require.NoError(t, err)
			ctx := shared.ContextWithSession(req.Context(), sess)
			rec := httptest.NewRecorder()
			next.ServeHTTP(rec, req.WithContext(ctx))
			require.NoError(t, sessionManager.Commit(ctx, w, req, sess))
			for k, v := range rec.Header() {
				w.Header()[k] = v
			}
			w.WriteHeader(rec.Code)
			_, _ = w.Write(rec.Body.Bytes())
		})
	})
	r.Route("/auth", handler.MountRoutes)
	return &harness{router: r, sessions: sessionManager, repo: repo}
}

func (h *harness) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	res := httptest.NewRecorder()
	h.router.ServeHTTP(res, req)
	return res
}

func sessionCookie(t *testing.T, res *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range res.Result().Cookies() {
		if c.Name == name && c.Value != "" {
			return c
		}
	}
	t.Fatalf("session cookie %s not set", name)
	return nil
}

func TestLoginInvalidCredentials(t *testing.T) {
	h := newHarness(t)
	res := h.do(http.MethodPost, "/auth/login", `{"email":"admin@protocol.ai","password":"wrongpass"}`)
	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Empty(t, h.repo.sessions)
}

func TestLoginValidation(t *testing.T) {
	h := newHarness(t)
	res := h.do(http.MethodPost, "/auth/login", `{"email":"not-an-email","password":"x"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &problem))
	require.Contains(t, problem, "fields")
}

func TestLoginThenMe(t *testing.T) {
	h := newHarness(t)

	res := h.do(http.MethodGet, "/auth/me", "")
	require.Equal(t, http.StatusUnauthorized, res.Code)

	res = h.do(http.MethodPost, "/auth/login", `{"email":"Admin@Protocol.ai","password":"correctpass"}`)
	require.Equal(t, http.StatusOK, res.Code)
	var login map[string]string
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &login))
	require.Equal(t, "admin-1", login["userId"])
	require.NotEmpty(t, login["csrfToken"])
	require.Len(t, h.repo.sessions, 1)

	cookie := sessionCookie(t, res, h.sessions.CookieName())
	res = h.do(http.MethodGet, "/auth/me", "", cookie)
	require.Equal(t, http.StatusOK, res.Code)

	var profile auth.Profile
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &profile))
	require.Equal(t, "admin-1", profile.UserID)
	require.NotNil(t, profile.Role)
	require.Equal(t, "role-super", profile.Role.ID)
	require.Len(t, profile.Navigation, 3)

	res = h.do(http.MethodPost, "/auth/logout", "", cookie)
	require.Equal(t, http.StatusNoContent, res.Code)
	require.Empty(t, h.repo.sessions)

	res = h.do(http.MethodGet, "/auth/me", "", cookie)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestNavigationForAnonymous(t *testing.T) {
	h := newHarness(t)
	res := h.do(http.MethodGet, "/auth/navigation?lang=en", "")
	require.Equal(t, http.StatusOK, res.Code)

	var body struct {
		Items []rbac.NavItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Equal(t, []rbac.NavItem{{Path: "/", Label: "Portal"}, {Path: "/admin/login", Label: "Login"}}, body.Items)
}
