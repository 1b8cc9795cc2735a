package ranking

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/protocolai/hireai/internal/applications"
	"github.com/protocolai/hireai/internal/jobposts"
	"github.com/protocolai/hireai/internal/shared"
)

// JobSource loads job posts.
type JobSource interface {
	Get(ctx context.Context, id string) (jobposts.JobPost, error)
}

// ApplicationSource loads the applications of a job.
type ApplicationSource interface {
	ForJob(ctx context.Context, jobID string) ([]applications.Application, error)
}

// Observer records ranking sizes.
type Observer interface {
	ObserveRanking(candidates int)
}

// Result is a computed ranking for one job.
type Result struct {
	Job        *Job     `json:"job"`
	Weights    Weights  `json:"weights"`
	Candidates []Ranked `json:"candidates"`
	Summary    Summary  `json:"summary"`
}

// Service loads a fresh snapshot of a job and its applicants and ranks them.
type Service struct {
	jobs     JobSource
	apps     ApplicationSource
	opts     Options
	observer Observer
}

// NewService builds the service. observer may be nil.
func NewService(jobs JobSource, apps ApplicationSource, opts Options, observer Observer) *Service {
	return &Service{jobs: jobs, apps: apps, opts: opts, observer: observer}
}

// Rank computes the ranking of jobID. An unknown job yields an empty ranking.
func (s *Service) Rank(ctx context.Context, jobID string, w Weights) (Result, error) {
	var (
		post jobposts.JobPost
		apps []applications.Application
		miss bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.jobs.Get(gctx, jobID)
		if errors.Is(err, shared.ErrNotFound) {
			miss = true
			return nil
		}
		post = p
		return err
	})
	g.Go(func() error {
		var err error
		apps, err = s.apps.ForJob(gctx, jobID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var job *Job
	if !miss {
		job = JobFromPost(post)
	}
	ranked := Rank(job, CandidatesFrom(apps), w, s.opts)
	if s.observer != nil && job != nil {
		s.observer.ObserveRanking(len(ranked))
	}
	return Result{Job: job, Weights: w, Candidates: ranked, Summary: Summarize(ranked)}, nil
}

// JobFromPost projects a job post onto the engine's view.
func JobFromPost(p jobposts.JobPost) *Job {
	return &Job{
		ID:                 p.ID,
		Title:              p.Title,
		MinYearsExperience: p.MinYearsExperience,
		Threshold:          p.MatchingRules.Threshold,
		SalaryBudget:       p.SalaryBudget,
	}
}

// CandidatesFrom projects applications onto the engine's view, preserving order.
func CandidatesFrom(apps []applications.Application) []Candidate {
	out := make([]Candidate, 0, len(apps))
	for _, a := range apps {
		out = append(out, Candidate{
			ID:              a.ID,
			JobID:           a.JobID,
			FullName:        a.Candidate.FullName,
			Email:           a.Candidate.Email,
			Status:          string(a.Status),
			MatchScore:      a.MatchScore,
			ExperienceYears: a.Extracted.ExperienceYears,
			ExpectedSalary:  a.Candidate.ExpectedSalary,
			NoticePeriod:    a.Candidate.NoticePeriod,
			Archived:        a.Archived,
		})
	}
	return out
}
