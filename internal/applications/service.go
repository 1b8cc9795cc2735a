package applications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/protocolai/hireai/internal/jobposts"
	"github.com/protocolai/hireai/internal/mailer"
	"github.com/protocolai/hireai/internal/notifications"
	"github.com/protocolai/hireai/internal/shared"
)

const idempotencyModule = "applications.intake"

var (
	phonePattern = regexp.MustCompile(`^[\d\s\-+]{7,15}$`)
	digitPattern = regexp.MustCompile(`\d`)
)

// JobLookup resolves the job an application targets.
type JobLookup interface {
	Get(ctx context.Context, id string) (jobposts.JobPost, error)
}

// EmailQueue schedules candidate e-mails for delivery.
type EmailQueue interface {
	EnqueueSendEmail(ctx context.Context, msg mailer.Message) error
}

// Notifier raises console notifications.
type Notifier interface {
	Notify(ctx context.Context, in notifications.Input) (notifications.Notification, error)
}

// IdempotencyStore claims request keys of public submissions.
type IdempotencyStore interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Options carries the optional collaborators of Service.
type Options struct {
	PortalURL   string
	Emails      EmailQueue
	Notifier    Notifier
	Idempotency IdempotencyStore
	Audit       AuditRecorder
	Logger      *slog.Logger
}

// Service implements candidate intake and pipeline management.
type Service struct {
	repo     Repository
	jobs     JobLookup
	opts     Options
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewService builds the service.
func NewService(repo Repository, jobs JobLookup, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		jobs:     jobs,
		opts:     opts,
		logger:   logger,
		validate: newValidator(),
		now:      time.Now,
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("salary", func(fl validator.FieldLevel) bool {
		return digitPattern.MatchString(fl.Field().String())
	})
	return v
}

// Apply records a public application against jobID. A non-empty key makes the
// submission idempotent: replaying it yields shared.ErrDuplicate.
func (s *Service) Apply(ctx context.Context, jobID, key string, in IntakeInput) (Application, error) {
	in.Candidate.FullName = strings.TrimSpace(in.Candidate.FullName)
	in.Candidate.Email = strings.ToLower(strings.TrimSpace(in.Candidate.Email))
	in.Candidate.Phone = strings.TrimSpace(in.Candidate.Phone)
	if err := s.validate.Struct(in); err != nil {
		return Application{}, err
	}

	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return Application{}, err
	}
	if !job.AcceptingApplications() {
		return Application{}, jobposts.ErrNotAccepting
	}

	if key != "" && s.opts.Idempotency != nil {
		if err := s.opts.Idempotency.CheckAndInsert(ctx, key, idempotencyModule); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return Application{}, fmt.Errorf("%w: application already submitted", shared.ErrDuplicate)
			}
			return Application{}, err
		}
	}

	app := Application{
		ID:             "app-" + uuid.NewString()[:8],
		JobID:          job.ID,
		BranchID:       job.BranchID,
		Candidate:      in.Candidate,
		Extracted:      in.Extracted,
		MatchScore:     in.MatchScore,
		MatchReasoning: in.MatchReasoning,
		Strengths:      in.Strengths,
		SkillGaps:      in.SkillGaps,
		Status:         StatusPending,
		Version:        1,
	}
	if s.opts.Emails != nil {
		app.LastEmailType = string(mailer.KindConfirmation)
	}
	created, err := s.repo.Create(ctx, app)
	if err != nil {
		if key != "" && s.opts.Idempotency != nil {
			if delErr := s.opts.Idempotency.Delete(ctx, key); delErr != nil {
				s.logger.Warn("release idempotency key", slog.String("key", key), slog.Any("error", delErr))
			}
		}
		return Application{}, err
	}

	s.notify(ctx, notifications.Input{
		Title:   "New Application",
		Message: fmt.Sprintf("%s applied for %s", created.Candidate.FullName, job.Title),
		Type:    notifications.TypeNewApp,
	})
	s.sendEmail(ctx, mailer.KindConfirmation, created, job.Title, "", "")
	return created, nil
}

// List returns a page of applications.
func (s *Service) List(ctx context.Context, filters ListFilters) (Page, error) {
	pg := shared.NewPagination(filters.Page, filters.PerPage, 0)
	items, total, err := s.repo.List(ctx, filters, pg.PerPage, pg.Offset())
	if err != nil {
		return Page{}, err
	}
	if items == nil {
		items = []Application{}
	}
	return Page{Items: items, Pagination: shared.NewPagination(pg.Page, pg.PerPage, total)}, nil
}

// Get returns one application.
func (s *Service) Get(ctx context.Context, id string) (Application, error) {
	return s.repo.Get(ctx, id)
}

// ForJob returns every application filed against jobID, archived included.
func (s *Service) ForJob(ctx context.Context, jobID string) ([]Application, error) {
	return s.repo.ListByJob(ctx, jobID)
}

// ChangeStatus moves an application to a new stage. Stages that notify the
// candidate enqueue the matching e-mail.
func (s *Service) ChangeStatus(ctx context.Context, actorID, id string, in StatusChange) (Application, error) {
	if err := s.validate.Struct(in); err != nil {
		return Application{}, err
	}
	status, err := ParseStatus(strings.ToUpper(strings.TrimSpace(in.Status)))
	if err != nil {
		return Application{}, err
	}
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return Application{}, err
	}

	prev := app.Version
	prevStatus := app.Status
	app.Status = status
	app.Version++
	if status == StatusHired && app.HiredAt == nil {
		at := s.now().UTC()
		app.HiredAt = &at
	}
	kind := emailKind(status)
	if kind != "" && s.opts.Emails != nil {
		app.LastEmailType = string(kind)
	}

	updated, err := s.repo.Update(ctx, app, prev)
	if err != nil {
		return Application{}, err
	}
	s.record(ctx, actorID, "application.status", id, map[string]any{"from": prevStatus, "to": status})

	if status == StatusTestCompleted {
		s.notify(ctx, notifications.Input{
			Title:   "Assessment Completed",
			Message: updated.Candidate.FullName + " finished the technical assessment",
			Type:    notifications.TypeTestComplete,
		})
	}
	if kind != "" {
		title := ""
		if job, err := s.jobs.Get(ctx, updated.JobID); err == nil {
			title = job.Title
		}
		s.sendEmail(ctx, kind, updated, title, in.InterviewDate, in.Note)
	}
	return updated, nil
}

// ToggleArchive flips the archived flag.
func (s *Service) ToggleArchive(ctx context.Context, actorID, id string) (Application, error) {
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return Application{}, err
	}
	prev := app.Version
	app.Archived = !app.Archived
	app.Version++
	updated, err := s.repo.Update(ctx, app, prev)
	if err != nil {
		return Application{}, err
	}
	s.record(ctx, actorID, "application.archive", id, map[string]any{"archived": updated.Archived})
	return updated, nil
}

func emailKind(status Status) mailer.Kind {
	switch status {
	case StatusApprovedForTest:
		return mailer.KindTest
	case StatusInterviewScheduled:
		return mailer.KindInterview
	case StatusRejected:
		return mailer.KindRejection
	}
	return ""
}

func (s *Service) sendEmail(ctx context.Context, kind mailer.Kind, app Application, jobTitle, interviewDate, note string) {
	if s.opts.Emails == nil {
		return
	}
	msg := mailer.Compose(kind, mailer.Recipient{
		ApplicationID: app.ID,
		Email:         app.Candidate.Email,
		Name:          app.Candidate.FullName,
		JobID:         app.JobID,
		JobTitle:      jobTitle,
	}, s.opts.PortalURL, interviewDate, note)
	if err := s.opts.Emails.EnqueueSendEmail(ctx, msg); err != nil {
		s.logger.Error("enqueue candidate email",
			slog.String("application_id", app.ID),
			slog.String("kind", string(kind)),
			slog.Any("error", err))
	}
}

func (s *Service) notify(ctx context.Context, in notifications.Input) {
	if s.opts.Notifier == nil {
		return
	}
	if _, err := s.opts.Notifier.Notify(ctx, in); err != nil {
		s.logger.Warn("raise notification", slog.String("type", string(in.Type)), slog.Any("error", err))
	}
}

func (s *Service) record(ctx context.Context, actorID, action, id string, meta map[string]any) {
	if s.opts.Audit == nil {
		return
	}
	if err := s.opts.Audit.Record(ctx, shared.AuditLog{ActorID: actorID, Action: action, Entity: "application", EntityID: id, Meta: meta}); err != nil {
		s.logger.Warn("audit application", slog.String("id", id), slog.Any("error", err))
	}
}
