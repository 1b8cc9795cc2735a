package rbac

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/protocolai/hireai/internal/platform/httpx"
	"github.com/protocolai/hireai/internal/shared"
)

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

type snapshotContextKey struct{}

// ContextWithSnapshot stores the evaluated snapshot for downstream handlers.
func ContextWithSnapshot(ctx context.Context, snap Snapshot) context.Context {
	return context.WithValue(ctx, snapshotContextKey{}, snap)
}

// SnapshotFromContext returns the snapshot stored by the middleware.
func SnapshotFromContext(ctx context.Context) (Snapshot, bool) {
	snap, ok := ctx.Value(snapshotContextKey{}).(Snapshot)
	return snap, ok
}

// ActorFromContext returns the authenticated actor, or nil.
func ActorFromContext(ctx context.Context) *Actor {
	snap, ok := SnapshotFromContext(ctx)
	if !ok {
		return nil
	}
	return snap.Actor
}

// RequireActor ensures the session is bound to a known administrator and
// exposes the snapshot on the request context.
func (m Middleware) RequireActor() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap, ok := m.load(w, r)
			if !ok {
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithSnapshot(r.Context(), snap)))
		})
	}
}

// Require ensures the current administrator holds action on module.
func (m Middleware) Require(module Module, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap, ok := m.load(w, r)
			if !ok {
				return
			}
			if !snap.Allows(module, action) {
				m.logger().Warn("rbac denied",
					slog.String("user_id", snap.Actor.ID),
					slog.String("module", string(module)),
					slog.String("action", string(action)))
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing "+string(module)+":"+string(action))
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithSnapshot(r.Context(), snap)))
		})
	}
}

func (m Middleware) load(w http.ResponseWriter, r *http.Request) (Snapshot, bool) {
	userID, ok := currentUserID(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return Snapshot{}, false
	}
	snap, err := m.Service.Snapshot(r.Context(), userID)
	if err != nil {
		m.logger().Error("rbac snapshot", slog.Any("error", err))
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
		return Snapshot{}, false
	}
	if snap.Actor == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return Snapshot{}, false
	}
	return snap, true
}

func (m Middleware) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

func currentUserID(r *http.Request) (string, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return "", false
	}
	id := strings.TrimSpace(sess.User())
	return id, id != ""
}
