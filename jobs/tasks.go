package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/protocolai/hireai/internal/jobs"
	"github.com/protocolai/hireai/internal/mailer"
)

const (
	// QueueMail carries candidate e-mails.
	QueueMail = "mail"
	// QueueMaintenance carries periodic housekeeping.
	QueueMaintenance = "maintenance"
	// TaskTypeSendEmail is the task type for candidate e-mails.
	TaskTypeSendEmail = "mail:send"
)

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(msg mailer.Message) (*asynq.Task, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// MailJob processes TaskTypeSendEmail tasks.
type MailJob struct {
	Sender  Sender
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// Handle delivers the e-mail carried by t. Malformed payloads and missing
// mailer configuration are not retried.
func (j *MailJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Sender == nil {
		return errors.New("mail job: sender not configured")
	}
	tracker := j.Metrics.Track(TaskTypeSendEmail)
	defer func() {
		err = tracker.End(err)
	}()

	var msg mailer.Message
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		j.logger().Error("decode mail payload", slog.Any("error", err))
		return fmt.Errorf("decode mail payload: %w", asynq.SkipRetry)
	}
	logger := j.logger().With(slog.String("kind", string(msg.Kind)), slog.String("application_id", msg.ApplicationID))

	if err := j.Sender.Send(ctx, msg); err != nil {
		if errors.Is(err, mailer.ErrNotConfigured) {
			logger.Warn("mailer not configured, skipping e-mail")
			j.Metrics.CountEmail(string(msg.Kind), "skipped")
			return nil
		}
		logger.Error("send e-mail", slog.Any("error", err))
		j.Metrics.CountEmail(string(msg.Kind), "failed")
		return err
	}
	j.Metrics.CountEmail(string(msg.Kind), "sent")
	return nil
}

func (j *MailJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
