package branches

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/protocolai/hireai/internal/platform/db"
	"github.com/protocolai/hireai/internal/shared"
	"github.com/protocolai/hireai/internal/users"
)

// Repository defines branch persistence.
type Repository interface {
	List(ctx context.Context) ([]Branch, error)
	Get(ctx context.Context, id string) (Branch, error)
	Ensure(ctx context.Context, branch Branch) error
	Provision(ctx context.Context, branch Branch, admin users.AdminUser) (Branch, users.AdminUser, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context) ([]Branch, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, company_name, created_at FROM branches ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Branch
	for rows.Next() {
		var b Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.CompanyName, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (Branch, error) {
	var b Branch
	err := r.pool.QueryRow(ctx, `SELECT id, name, company_name, created_at FROM branches WHERE id = $1`, id).
		Scan(&b.ID, &b.Name, &b.CompanyName, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Branch{}, shared.ErrNotFound
	}
	return b, err
}

func (r *repository) Ensure(ctx context.Context, branch Branch) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO branches (id, name, company_name, created_at) VALUES ($1, $2, $3, NOW()) ON CONFLICT (id) DO NOTHING`,
		branch.ID, branch.Name, branch.CompanyName)
	return err
}

// Provision stores the branch and its administrator atomically.
func (r *repository) Provision(ctx context.Context, branch Branch, admin users.AdminUser) (Branch, users.AdminUser, error) {
	var (
		createdBranch Branch
		createdAdmin  users.AdminUser
	)
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO branches (id, name, company_name, created_at) VALUES ($1, $2, $3, NOW()) RETURNING id, name, company_name, created_at`,
			branch.ID, branch.Name, branch.CompanyName).
			Scan(&createdBranch.ID, &createdBranch.Name, &createdBranch.CompanyName, &createdBranch.CreatedAt)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return shared.ErrDuplicate
			}
			return err
		}
		createdAdmin, err = users.InsertUser(ctx, tx, admin)
		return err
	})
	if err != nil {
		return Branch{}, users.AdminUser{}, err
	}
	return createdBranch, createdAdmin, nil
}
