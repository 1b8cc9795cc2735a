package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads audit entries.
type Repository interface {
	Window(ctx context.Context, filters TimelineFilters, limit, offset int) ([]Entry, error)
	All(ctx context.Context, filters TimelineFilters) ([]Entry, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// exportCap bounds unpaged reads.
const exportCap = 10000

func (r *repository) Window(ctx context.Context, filters TimelineFilters, limit, offset int) ([]Entry, error) {
	return r.query(ctx, filters, limit, offset)
}

func (r *repository) All(ctx context.Context, filters TimelineFilters) ([]Entry, error) {
	return r.query(ctx, filters, exportCap, 0)
}

func (r *repository) query(ctx context.Context, f TimelineFilters, limit, offset int) ([]Entry, error) {
	query := `SELECT id, occurred_at, COALESCE(actor_id, ''), action, entity, entity_id, meta FROM audit_logs WHERE 1=1`
	args := []any{}
	argCount := 1
	add := func(clause string, value any) {
		query += " AND " + clause + " $" + strconv.Itoa(argCount)
		args = append(args, value)
		argCount++
	}
	if !f.From.IsZero() {
		add("occurred_at >=", f.From)
	}
	if !f.To.IsZero() {
		add("occurred_at <", f.To)
	}
	if f.Actor != "" {
		add("actor_id =", f.Actor)
	}
	if f.Entity != "" {
		add("entity =", f.Entity)
	}
	if f.EntityID != "" {
		add("entity_id =", f.EntityID)
	}
	if f.Action != "" {
		add("action =", f.Action)
	}
	query += fmt.Sprintf(" ORDER BY occurred_at DESC, id DESC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var (
			e   Entry
			raw []byte
		)
		if err := rows.Scan(&e.ID, &e.At, &e.ActorID, &e.Action, &e.Entity, &e.EntityID, &raw); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &e.Meta); err != nil {
				return nil, fmt.Errorf("audit: decode meta for %d: %w", e.ID, err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
