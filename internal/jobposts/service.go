package jobposts

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// DefaultMatchingRules applies when a post is created without matching rules.
func DefaultMatchingRules() MatchingRules {
	return MatchingRules{SkillWeight: 40, ExperienceWeight: 30, EducationWeight: 10, KeywordsWeight: 20, Threshold: 50}
}

// Service manages job posts.
type Service struct {
	repo          Repository
	defaultBranch string
	validate      *validator.Validate
}

// NewService builds the service. defaultBranch is used when neither the
// payload nor the acting administrator name a branch.
func NewService(repo Repository, defaultBranch string) *Service {
	return &Service{repo: repo, defaultBranch: defaultBranch, validate: validator.New()}
}

// List returns posts matching filters.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]JobPost, error) {
	return s.repo.List(ctx, filters)
}

// Get returns a single post.
func (s *Service) Get(ctx context.Context, id string) (JobPost, error) {
	return s.repo.Get(ctx, id)
}

// ListOpen returns the posts shown on the public portal.
func (s *Service) ListOpen(ctx context.Context) ([]JobPost, error) {
	return s.repo.List(ctx, ListFilters{Status: StatusOpen})
}

// GetOpen returns a post for the public portal. Archived posts are hidden.
func (s *Service) GetOpen(ctx context.Context, id string) (JobPost, error) {
	post, err := s.repo.Get(ctx, id)
	if err != nil {
		return JobPost{}, err
	}
	if post.Archived {
		return JobPost{}, ErrNotFoundPublic
	}
	return post, nil
}

// Create validates and stores a new post.
func (s *Service) Create(ctx context.Context, actorBranch string, in Input) (JobPost, error) {
	post, err := s.fromInput(in)
	if err != nil {
		return JobPost{}, err
	}
	post.ID = "job-" + uuid.NewString()[:8]
	if post.BranchID == "" {
		post.BranchID = actorBranch
	}
	if post.BranchID == "" {
		post.BranchID = s.defaultBranch
	}
	if post.MatchingRules == (MatchingRules{}) {
		post.MatchingRules = DefaultMatchingRules()
	}
	return s.repo.Save(ctx, post)
}

// Update replaces the editable fields of a post. Archive state and creation
// time are preserved.
func (s *Service) Update(ctx context.Context, id string, in Input) (JobPost, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return JobPost{}, err
	}
	post, err := s.fromInput(in)
	if err != nil {
		return JobPost{}, err
	}
	post.ID = existing.ID
	post.Archived = existing.Archived
	post.CreatedAt = existing.CreatedAt
	if post.BranchID == "" {
		post.BranchID = existing.BranchID
	}
	return s.repo.Save(ctx, post)
}

// ToggleArchive flips the archived flag.
func (s *Service) ToggleArchive(ctx context.Context, id string) (JobPost, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return JobPost{}, err
	}
	return s.repo.SetArchived(ctx, id, !existing.Archived)
}

// Delete removes a post.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) fromInput(in Input) (JobPost, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := s.validate.Struct(in); err != nil {
		return JobPost{}, err
	}
	post := JobPost{
		BranchID:           in.BranchID,
		Title:              in.Title,
		Department:         strings.TrimSpace(in.Department),
		Location:           strings.TrimSpace(in.Location),
		Description:        in.Description,
		Type:               in.Type,
		ExperienceLevel:    in.ExperienceLevel,
		RequiredSkills:     cleanList(in.RequiredSkills),
		MinYearsExperience: in.MinYearsExperience,
		EducationLevel:     in.EducationLevel,
		Keywords:           cleanList(in.Keywords),
		MatchingRules:      in.MatchingRules,
		SalaryBudget:       in.SalaryBudget,
		Status:             in.Status,
	}
	if post.Type == "" {
		post.Type = "Full-time"
	}
	if post.ExperienceLevel == "" {
		post.ExperienceLevel = "Mid Level"
	}
	if post.Status == "" {
		post.Status = StatusOpen
	}
	return post, nil
}

// cleanList trims entries and drops blanks and case-insensitive duplicates.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
