package notifications

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const defaultListLimit = 50

// Service raises and lists notifications.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService builds the service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// Notify stores a new unread notification.
func (s *Service) Notify(ctx context.Context, in Input) (Notification, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := s.validate.Struct(in); err != nil {
		return Notification{}, err
	}
	return s.repo.Create(ctx, Notification{
		ID:      "ntf-" + uuid.NewString()[:8],
		Title:   in.Title,
		Message: in.Message,
		Type:    in.Type,
	})
}

// List returns the newest notifications first.
func (s *Service) List(ctx context.Context, unreadOnly bool, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}
	return s.repo.List(ctx, unreadOnly, limit)
}

// MarkRead flags one notification as read.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	return s.repo.MarkRead(ctx, id)
}

// MarkAllRead flags every unread notification and returns how many changed.
func (s *Service) MarkAllRead(ctx context.Context) (int64, error) {
	return s.repo.MarkAllRead(ctx)
}
