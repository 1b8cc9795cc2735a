package roles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/protocolai/hireai/internal/platform/db"
	"github.com/protocolai/hireai/internal/rbac"
	"github.com/protocolai/hireai/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, logger: slog.Default()}
}

// WithLogger sets the logger that reports stale permission entries.
func (r *Repository) WithLogger(logger *slog.Logger) *Repository {
	if logger != nil {
		r.logger = logger
	}
	return r
}

const roleColumns = `id, name, description, permissions, is_system, created_at, updated_at`

// storedPermission is the JSONB representation of a module grant.
type storedPermission struct {
	ModuleID string   `json:"moduleId"`
	Actions  []string `json:"actions"`
}

// ListRoles returns all roles ordered by name.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Role
	for rows.Next() {
		role, err := r.scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRole fetches a role by id.
func (r *Repository) GetRole(ctx context.Context, id string) (Role, error) {
	role, err := r.scanRole(r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Role{}, shared.ErrNotFound
	}
	return role, err
}

// SaveRole upserts a role.
func (r *Repository) SaveRole(ctx context.Context, role Role) (Role, error) {
	perms, err := encodePermissions(role.Permissions)
	if err != nil {
		return Role{}, err
	}
	saved, err := r.scanRole(r.pool.QueryRow(ctx, `
INSERT INTO roles (id, name, description, permissions, is_system, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	description = EXCLUDED.description,
	permissions = EXCLUDED.permissions,
	updated_at = NOW()
RETURNING `+roleColumns, role.ID, role.Name, role.Description, perms, role.IsSystem))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Role{}, fmt.Errorf("%w: role name %q already exists", shared.ErrDuplicate, role.Name)
		}
		return Role{}, err
	}
	return saved, nil
}

// DeleteRole removes a role by id. Users referencing it are left untouched.
func (r *Repository) DeleteRole(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *Repository) scanRole(row pgx.Row) (Role, error) {
	var (
		role Role
		raw  []byte
	)
	if err := row.Scan(&role.ID, &role.Name, &role.Description, &raw, &role.IsSystem, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return Role{}, err
	}
	perms, err := decodePermissions(r.logger, role.ID, raw)
	if err != nil {
		return Role{}, fmt.Errorf("roles: decode permissions for %s: %w", role.ID, err)
	}
	role.Permissions = perms
	return role, nil
}

func encodePermissions(perms []rbac.ModulePermission) ([]byte, error) {
	stored := make([]storedPermission, 0, len(perms))
	for _, p := range rbac.NormalizePermissions(perms) {
		actions := make([]string, len(p.Actions))
		for i, a := range p.Actions {
			actions[i] = string(a)
		}
		stored = append(stored, storedPermission{ModuleID: string(p.Module), Actions: actions})
	}
	return json.Marshal(stored)
}

// decodePermissions drops grants on modules or actions the catalogue no longer
// knows so that one stale role cannot fail every permission lookup.
func decodePermissions(logger *slog.Logger, roleID string, raw []byte) ([]rbac.ModulePermission, error) {
	if len(raw) == 0 {
		return []rbac.ModulePermission{}, nil
	}
	var stored []storedPermission
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	perms := make([]rbac.ModulePermission, 0, len(stored))
	for _, s := range stored {
		module, err := rbac.ParseModule(s.ModuleID)
		if err != nil {
			logger.Warn("skip unknown permission module", slog.String("role_id", roleID), slog.String("module", s.ModuleID))
			continue
		}
		entry := rbac.ModulePermission{Module: module}
		for _, ra := range s.Actions {
			action, err := rbac.ParseAction(ra)
			if err != nil {
				logger.Warn("skip unknown permission action",
					slog.String("role_id", roleID),
					slog.String("module", s.ModuleID),
					slog.String("action", ra))
				continue
			}
			entry.Actions = append(entry.Actions, action)
		}
		perms = append(perms, entry)
	}
	return rbac.NormalizePermissions(perms), nil
}
