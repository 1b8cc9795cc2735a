package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/protocolai/hireai/internal/platform/db"
	"github.com/protocolai/hireai/internal/rbac"
	"github.com/protocolai/hireai/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, full_name, email, position, phone, role_id, COALESCE(branch_id, ''), password_hash, created_at`

// ListUsers returns all administrators ordered by name.
func (r *Repository) ListUsers(ctx context.Context) ([]AdminUser, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM admin_users ORDER BY full_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AdminUser
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// GetUser fetches an administrator by id.
func (r *Repository) GetUser(ctx context.Context, id string) (AdminUser, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM admin_users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return AdminUser{}, shared.ErrNotFound
	}
	return u, err
}

// FindByEmail fetches an administrator by e-mail, case-insensitively.
func (r *Repository) FindByEmail(ctx context.Context, email string) (AdminUser, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM admin_users WHERE lower(email) = lower($1)`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return AdminUser{}, shared.ErrNotFound
	}
	return u, err
}

// CreateUser inserts an administrator.
func (r *Repository) CreateUser(ctx context.Context, u AdminUser) (AdminUser, error) {
	return InsertUser(ctx, r.pool, u)
}

// QueryRower is satisfied by both *pgxpool.Pool and pgx.Tx.
type QueryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// InsertUser inserts u using q, which may be a pool or a transaction.
func InsertUser(ctx context.Context, q QueryRower, u AdminUser) (AdminUser, error) {
	created, err := scanUser(q.QueryRow(ctx, `
INSERT INTO admin_users (id, full_name, email, position, phone, role_id, branch_id, password_hash, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, NOW())
RETURNING `+userColumns,
		u.ID, u.FullName, u.Email, u.Position, u.Phone, u.RoleID, u.BranchID, u.PasswordHash))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return AdminUser{}, fmt.Errorf("%w: e-mail %s already registered", shared.ErrDuplicate, u.Email)
		}
		return AdminUser{}, err
	}
	return created, nil
}

// UpdateRole rebinds an administrator to roleID.
func (r *Repository) UpdateRole(ctx context.Context, id, roleID string) (AdminUser, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `UPDATE admin_users SET role_id = $2 WHERE id = $1 RETURNING `+userColumns, id, roleID))
	if errors.Is(err, pgx.ErrNoRows) {
		return AdminUser{}, shared.ErrNotFound
	}
	return u, err
}

// DeleteUser removes an administrator.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM admin_users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindActor resolves an administrator into the actor used for permission checks.
func (r *Repository) FindActor(ctx context.Context, id string) (*rbac.Actor, error) {
	var actor rbac.Actor
	err := r.pool.QueryRow(ctx, `SELECT id, role_id, COALESCE(branch_id, '') FROM admin_users WHERE id = $1`, id).
		Scan(&actor.ID, &actor.RoleID, &actor.BranchID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &actor, nil
}

func scanUser(row pgx.Row) (AdminUser, error) {
	var u AdminUser
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Position, &u.Phone, &u.RoleID, &u.BranchID, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

var _ rbac.ActorSource = (*Repository)(nil)
