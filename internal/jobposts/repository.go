package jobposts

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/protocolai/hireai/internal/shared"
)

// Repository defines job post persistence.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]JobPost, error)
	Get(ctx context.Context, id string) (JobPost, error)
	Save(ctx context.Context, post JobPost) (JobPost, error)
	SetArchived(ctx context.Context, id string, archived bool) (JobPost, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const postColumns = `id, branch_id, title, department, location, description, type, experience_level,
	required_skills, min_years_experience, education_level, keywords, matching_rules, salary_budget,
	status, archived, created_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]JobPost, error) {
	query := `SELECT ` + postColumns + ` FROM job_posts WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.BranchID != "" {
		argCount++
		query += ` AND branch_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.BranchID)
	}
	if filters.Status != "" {
		argCount++
		query += ` AND status = $` + strconv.Itoa(argCount)
		args = append(args, string(filters.Status))
	}
	if filters.Search != "" {
		argCount++
		query += ` AND (title ILIKE $` + strconv.Itoa(argCount) + ` OR department ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if !filters.IncludeArchived {
		query += ` AND archived = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []JobPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (JobPost, error) {
	p, err := scanPost(r.db.QueryRow(ctx, `SELECT `+postColumns+` FROM job_posts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return JobPost{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repository) Save(ctx context.Context, p JobPost) (JobPost, error) {
	rules, err := json.Marshal(p.MatchingRules)
	if err != nil {
		return JobPost{}, err
	}
	saved, err := scanPost(r.db.QueryRow(ctx, `
INSERT INTO job_posts (id, branch_id, title, department, location, description, type, experience_level,
	required_skills, min_years_experience, education_level, keywords, matching_rules, salary_budget,
	status, archived, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW())
ON CONFLICT (id) DO UPDATE SET
	branch_id = EXCLUDED.branch_id,
	title = EXCLUDED.title,
	department = EXCLUDED.department,
	location = EXCLUDED.location,
	description = EXCLUDED.description,
	type = EXCLUDED.type,
	experience_level = EXCLUDED.experience_level,
	required_skills = EXCLUDED.required_skills,
	min_years_experience = EXCLUDED.min_years_experience,
	education_level = EXCLUDED.education_level,
	keywords = EXCLUDED.keywords,
	matching_rules = EXCLUDED.matching_rules,
	salary_budget = EXCLUDED.salary_budget,
	status = EXCLUDED.status
RETURNING `+postColumns,
		p.ID, p.BranchID, p.Title, p.Department, p.Location, p.Description, p.Type, p.ExperienceLevel,
		p.RequiredSkills, p.MinYearsExperience, p.EducationLevel, p.Keywords, rules, p.SalaryBudget,
		string(p.Status), p.Archived))
	return saved, err
}

func (r *repository) SetArchived(ctx context.Context, id string, archived bool) (JobPost, error) {
	p, err := scanPost(r.db.QueryRow(ctx, `UPDATE job_posts SET archived = $2 WHERE id = $1 RETURNING `+postColumns, id, archived))
	if errors.Is(err, pgx.ErrNoRows) {
		return JobPost{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM job_posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanPost(row pgx.Row) (JobPost, error) {
	var (
		p      JobPost
		status string
		rules  []byte
	)
	err := row.Scan(&p.ID, &p.BranchID, &p.Title, &p.Department, &p.Location, &p.Description, &p.Type, &p.ExperienceLevel,
		&p.RequiredSkills, &p.MinYearsExperience, &p.EducationLevel, &p.Keywords, &rules, &p.SalaryBudget,
		&status, &p.Archived, &p.CreatedAt)
	if err != nil {
		return JobPost{}, err
	}
	p.Status = Status(status)
	if len(rules) > 0 {
		if err := json.Unmarshal(rules, &p.MatchingRules); err != nil {
			return JobPost{}, err
		}
	}
	return p, nil
}
