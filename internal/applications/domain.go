package applications

import (
	"fmt"
	"time"

	"github.com/protocolai/hireai/internal/shared"
)

// Status is the pipeline stage of an application.
type Status string

const (
	StatusPending            Status = "PENDING"
	StatusRejected           Status = "REJECTED"
	StatusApprovedForTest    Status = "APPROVED_FOR_TEST"
	StatusTestCompleted      Status = "TEST_COMPLETED"
	StatusInterviewScheduled Status = "INTERVIEW_SCHEDULED"
	StatusOfferSent          Status = "OFFER_SENT"
	StatusHired              Status = "HIRED"
)

var statuses = []Status{
	StatusPending, StatusRejected, StatusApprovedForTest, StatusTestCompleted,
	StatusInterviewScheduled, StatusOfferSent, StatusHired,
}

// ErrVersionConflict is returned when an application changed since it was read.
var ErrVersionConflict = fmt.Errorf("%w: application was modified concurrently", shared.ErrDuplicate)

// ParseStatus validates a status identifier.
func ParseStatus(raw string) (Status, error) {
	for _, s := range statuses {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", shared.ErrValidation, raw)
}

// CandidateInfo is what the candidate declares on the application form.
type CandidateInfo struct {
	FullName       string `json:"fullName" validate:"required,max=160"`
	Email          string `json:"email" validate:"required,email,max=254"`
	Phone          string `json:"phone" validate:"required,phone"`
	CurrentSalary  string `json:"currentSalary" validate:"max=60"`
	ExpectedSalary string `json:"expectedSalary" validate:"required,salary,max=60"`
	NoticePeriod   string `json:"noticePeriod" validate:"required,max=60"`
	Source         string `json:"source" validate:"max=60"`
}

// ExtractedData holds the profile fields produced by CV analysis.
type ExtractedData struct {
	Skills          []string `json:"skills"`
	ExperienceYears float64  `json:"experienceYears" validate:"min=0,max=80"`
	Education       string   `json:"education"`
	Summary         string   `json:"summary"`
	CurrentTitle    string   `json:"currentTitle"`
}

// Application is a candidate's submission against a job post.
type Application struct {
	ID             string        `json:"id"`
	JobID          string        `json:"jobId"`
	BranchID       string        `json:"branchId"`
	Candidate      CandidateInfo `json:"candidateData"`
	Extracted      ExtractedData `json:"extractedData"`
	MatchScore     int           `json:"matchScore"`
	MatchReasoning string        `json:"matchReasoning"`
	Strengths      []string      `json:"strengths"`
	SkillGaps      []string      `json:"skillGaps"`
	Status         Status        `json:"status"`
	Archived       bool          `json:"archived"`
	Version        int           `json:"version"`
	AppliedAt      time.Time     `json:"appliedAt"`
	HiredAt        *time.Time    `json:"hiredAt,omitempty"`
	LastEmailType  string        `json:"lastEmailType,omitempty"`
}

// IntakeInput is the public application payload. The match fields are
// computed by the CV analysis service before submission.
type IntakeInput struct {
	Candidate      CandidateInfo `json:"candidateData"`
	Extracted      ExtractedData `json:"extractedData"`
	MatchScore     int           `json:"matchScore" validate:"min=0,max=100"`
	MatchReasoning string        `json:"matchReasoning" validate:"max=4000"`
	Strengths      []string      `json:"strengths"`
	SkillGaps      []string      `json:"skillGaps"`
}

// StatusChange moves an application through the pipeline.
type StatusChange struct {
	Status        string `json:"status" validate:"required"`
	InterviewDate string `json:"interviewDate" validate:"required_if=Status INTERVIEW_SCHEDULED,max=120"`
	Note          string `json:"note" validate:"max=2000"`
}

// ListFilters narrows the admin listing.
type ListFilters struct {
	JobID           string
	BranchID        string
	Status          Status
	Search          string
	IncludeArchived bool
	Page            int
	PerPage         int
}

// Page is a paginated listing.
type Page struct {
	Items      []Application     `json:"items"`
	Pagination shared.Pagination `json:"pagination"`
}
