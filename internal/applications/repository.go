package applications

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/protocolai/hireai/internal/shared"
)

// Repository defines application persistence.
type Repository interface {
	Create(ctx context.Context, app Application) (Application, error)
	Get(ctx context.Context, id string) (Application, error)
	List(ctx context.Context, filters ListFilters, limit, offset int) ([]Application, int, error)
	ListByJob(ctx context.Context, jobID string) ([]Application, error)
	// Update persists app when the stored version still equals prevVersion.
	Update(ctx context.Context, app Application, prevVersion int) (Application, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const appColumns = `id, job_id, branch_id,
	full_name, email, phone, current_salary, expected_salary, notice_period, source,
	skills, experience_years, education, summary, current_title,
	match_score, match_reasoning, strengths, skill_gaps,
	status, archived, version, applied_at, hired_at, last_email_type`

func (r *repository) Create(ctx context.Context, a Application) (Application, error) {
	row := r.db.QueryRow(ctx, `
INSERT INTO applications (id, job_id, branch_id,
	full_name, email, phone, current_salary, expected_salary, notice_period, source,
	skills, experience_years, education, summary, current_title,
	match_score, match_reasoning, strengths, skill_gaps,
	status, archived, version, applied_at, hired_at, last_email_type)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,NOW(),NULL,$23)
RETURNING `+appColumns,
		a.ID, a.JobID, a.BranchID,
		a.Candidate.FullName, a.Candidate.Email, a.Candidate.Phone, a.Candidate.CurrentSalary,
		a.Candidate.ExpectedSalary, a.Candidate.NoticePeriod, a.Candidate.Source,
		a.Extracted.Skills, a.Extracted.ExperienceYears, a.Extracted.Education, a.Extracted.Summary, a.Extracted.CurrentTitle,
		a.MatchScore, a.MatchReasoning, a.Strengths, a.SkillGaps,
		string(a.Status), a.Archived, a.Version, a.LastEmailType)
	return scanApplication(row)
}

func (r *repository) Get(ctx context.Context, id string) (Application, error) {
	app, err := scanApplication(r.db.QueryRow(ctx, `SELECT `+appColumns+` FROM applications WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Application{}, shared.ErrNotFound
	}
	return app, err
}

func (r *repository) List(ctx context.Context, filters ListFilters, limit, offset int) ([]Application, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.JobID != "" {
		argCount++
		where += ` AND job_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.JobID)
	}
	if filters.BranchID != "" {
		argCount++
		where += ` AND branch_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.BranchID)
	}
	if filters.Status != "" {
		argCount++
		where += ` AND status = $` + strconv.Itoa(argCount)
		args = append(args, string(filters.Status))
	}
	if filters.Search != "" {
		argCount++
		where += ` AND (full_name ILIKE $` + strconv.Itoa(argCount) + ` OR email ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if !filters.IncludeArchived {
		where += ` AND archived = FALSE`
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM applications`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + appColumns + ` FROM applications` + where + ` ORDER BY applied_at DESC`
	if limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, offset)
	}
	apps, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *repository) ListByJob(ctx context.Context, jobID string) ([]Application, error) {
	return r.query(ctx, `SELECT `+appColumns+` FROM applications WHERE job_id = $1 ORDER BY applied_at`, jobID)
}

func (r *repository) Update(ctx context.Context, a Application, prevVersion int) (Application, error) {
	row := r.db.QueryRow(ctx, `
UPDATE applications SET status = $2, archived = $3, version = $4, hired_at = $5, last_email_type = $6
WHERE id = $1 AND version = $7
RETURNING `+appColumns,
		a.ID, string(a.Status), a.Archived, a.Version, a.HiredAt, a.LastEmailType, prevVersion)
	updated, err := scanApplication(row)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.Get(ctx, a.ID); getErr != nil {
			return Application{}, getErr
		}
		return Application{}, ErrVersionConflict
	}
	return updated, err
}

func (r *repository) query(ctx context.Context, sql string, args ...any) ([]Application, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

func scanApplication(row pgx.Row) (Application, error) {
	var (
		a      Application
		status string
		hired  *time.Time
	)
	err := row.Scan(&a.ID, &a.JobID, &a.BranchID,
		&a.Candidate.FullName, &a.Candidate.Email, &a.Candidate.Phone, &a.Candidate.CurrentSalary,
		&a.Candidate.ExpectedSalary, &a.Candidate.NoticePeriod, &a.Candidate.Source,
		&a.Extracted.Skills, &a.Extracted.ExperienceYears, &a.Extracted.Education, &a.Extracted.Summary, &a.Extracted.CurrentTitle,
		&a.MatchScore, &a.MatchReasoning, &a.Strengths, &a.SkillGaps,
		&status, &a.Archived, &a.Version, &a.AppliedAt, &hired, &a.LastEmailType)
	if err != nil {
		return Application{}, err
	}
	a.Status = Status(status)
	a.HiredAt = hired
	return a, nil
}
