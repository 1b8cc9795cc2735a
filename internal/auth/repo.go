package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/protocolai/hireai/internal/shared"
)

// Repository defines persistence operations for auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Credentials, error)
	CreateSession(ctx context.Context, id, userID string, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByEmail fetches login credentials by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Credentials, error) {
	var c Credentials
	err := r.pool.QueryRow(ctx, `SELECT id, email, full_name, password_hash FROM admin_users WHERE lower(email) = lower($1)`, email).
		Scan(&c.UserID, &c.Email, &c.FullName, &c.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// CreateSession persists a new login session in the database for auditing.
func (r *PGRepository) CreateSession(ctx context.Context, id, userID string, expiresAt time.Time, ip, ua string) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO admin_sessions (id, user_id, created_at, expires_at, ip, user_agent)
VALUES ($1, $2, NOW(), $3, NULLIF($4, ''), NULLIF($5, ''))
ON CONFLICT (id) DO UPDATE SET user_id = EXCLUDED.user_id, expires_at = EXCLUDED.expires_at`,
		id, userID, expiresAt.UTC(), ip, ua)
	return err
}

// DeleteSession removes a session record from the database.
func (r *PGRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM admin_sessions WHERE id = $1`, id)
	return err
}

// Cleanup removes session rows that expired more than olderThan ago.
func (r *PGRepository) Cleanup(ctx context.Context, olderThan time.Duration) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM admin_sessions WHERE expires_at < $1`, time.Now().Add(-olderThan).UTC())
	return err
}

var _ Repository = (*PGRepository)(nil)
