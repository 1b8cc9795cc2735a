package notifications

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/protocolai/hireai/internal/shared"
)

// Repository defines notification persistence.
type Repository interface {
	Create(ctx context.Context, n Notification) (Notification, error)
	List(ctx context.Context, unreadOnly bool, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) (int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n Notification) (Notification, error) {
	err := r.db.QueryRow(ctx, `
INSERT INTO notifications (id, title, message, type, read, created_at)
VALUES ($1, $2, $3, $4, FALSE, NOW())
RETURNING created_at`, n.ID, n.Title, n.Message, string(n.Type)).Scan(&n.CreatedAt)
	return n, err
}

func (r *repository) List(ctx context.Context, unreadOnly bool, limit int) ([]Notification, error) {
	query := `SELECT id, title, message, type, read, created_at FROM notifications`
	if unreadOnly {
		query += ` WHERE read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var (
			n   Notification
			typ string
		)
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &typ, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Type = Type(typ)
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *repository) MarkRead(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) MarkAllRead(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE read = FALSE`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
