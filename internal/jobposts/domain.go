package jobposts

import (
	"fmt"
	"time"

	"github.com/protocolai/hireai/internal/shared"
)

// Status of a job post.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

var (
	// ErrNotAccepting is returned when a post is closed or archived.
	ErrNotAccepting = fmt.Errorf("%w: job post is not accepting applications", shared.ErrValidation)
	// ErrNotFoundPublic hides archived posts from the portal.
	ErrNotFoundPublic = fmt.Errorf("%w: job post", shared.ErrNotFound)
)

// MatchingRules configures candidate matching for a post. Weights are in the
// 0-100 range and are not required to sum to 100.
type MatchingRules struct {
	SkillWeight      int `json:"skillWeight" validate:"min=0,max=100"`
	ExperienceWeight int `json:"experienceWeight" validate:"min=0,max=100"`
	EducationWeight  int `json:"educationWeight" validate:"min=0,max=100"`
	KeywordsWeight   int `json:"keywordsWeight" validate:"min=0,max=100"`
	Threshold        int `json:"threshold" validate:"min=0,max=100"`
}

// JobPost is an open or closed position published by a branch.
type JobPost struct {
	ID                 string        `json:"id"`
	BranchID           string        `json:"branchId"`
	Title              string        `json:"title"`
	Department         string        `json:"department"`
	Location           string        `json:"location"`
	Description        string        `json:"description"`
	Type               string        `json:"type"`
	ExperienceLevel    string        `json:"experienceLevel"`
	RequiredSkills     []string      `json:"requiredSkills"`
	MinYearsExperience int           `json:"minYearsExperience"`
	EducationLevel     string        `json:"requiredEducationLevel"`
	Keywords           []string      `json:"keywords"`
	MatchingRules      MatchingRules `json:"matchingRules"`
	SalaryBudget       float64       `json:"salaryBudget"`
	Status             Status        `json:"status"`
	Archived           bool          `json:"archived"`
	CreatedAt          time.Time     `json:"createdAt"`
}

// AcceptingApplications reports whether candidates may apply.
func (j JobPost) AcceptingApplications() bool {
	return j.Status == StatusOpen && !j.Archived
}

// Input is the admin payload for creating or updating a post.
type Input struct {
	BranchID           string        `json:"branchId"`
	Title              string        `json:"title" validate:"required,max=200"`
	Department         string        `json:"department" validate:"max=120"`
	Location           string        `json:"location" validate:"max=120"`
	Description        string        `json:"description" validate:"max=20000"`
	Type               string        `json:"type" validate:"omitempty,oneof=Full-time Part-time Contract"`
	ExperienceLevel    string        `json:"experienceLevel" validate:"omitempty,oneof='Entry Level' 'Mid Level' 'Senior Level' Lead/Director"`
	RequiredSkills     []string      `json:"requiredSkills" validate:"dive,max=80"`
	MinYearsExperience int           `json:"minYearsExperience" validate:"min=0,max=60"`
	EducationLevel     string        `json:"requiredEducationLevel" validate:"max=80"`
	Keywords           []string      `json:"keywords" validate:"dive,max=80"`
	MatchingRules      MatchingRules `json:"matchingRules"`
	SalaryBudget       float64       `json:"salaryBudget" validate:"min=0"`
	Status             Status        `json:"status" validate:"omitempty,oneof=OPEN CLOSED"`
}

// ListFilters narrows admin listings.
type ListFilters struct {
	BranchID        string
	Status          Status
	Search          string
	IncludeArchived bool
}
