package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/protocolai/hireai/internal/jobs"
	"github.com/protocolai/hireai/internal/mailer"
)

type fakeSender struct {
	sent []mailer.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func newMailJob(sender Sender) *MailJob {
	return &MailJob{Sender: sender, Metrics: jobmetrics.NewMetrics(prometheus.NewRegistry())}
}

func TestMailJobDelivers(t *testing.T) {
	sender := &fakeSender{}
	task, err := NewSendEmailTask(mailer.Message{Kind: mailer.KindTest, ToEmail: "a@example.com", ApplicationID: "app-1"})
	require.NoError(t, err)
	require.Equal(t, TaskTypeSendEmail, task.Type())

	require.NoError(t, newMailJob(sender).Handle(context.Background(), task))
	require.Len(t, sender.sent, 1)
	require.Equal(t, "a@example.com", sender.sent[0].ToEmail)
}

func TestMailJobSkipsWhenNotConfigured(t *testing.T) {
	task, err := NewSendEmailTask(mailer.Message{Kind: mailer.KindRejection})
	require.NoError(t, err)
	require.NoError(t, newMailJob(&fakeSender{err: mailer.ErrNotConfigured}).Handle(context.Background(), task))
}

func TestMailJobRetriesTransportErrors(t *testing.T) {
	task, err := NewSendEmailTask(mailer.Message{Kind: mailer.KindInterview})
	require.NoError(t, err)
	boom := errors.New("connection reset")
	require.ErrorIs(t, newMailJob(&fakeSender{err: boom}).Handle(context.Background(), task), boom)
}

func TestMailJobRejectsMalformedPayload(t *testing.T) {
	task := asynq.NewTask(TaskTypeSendEmail, []byte("{"))
	err := newMailJob(&fakeSender{}).Handle(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

type fakePruner struct {
	calls []time.Duration
	err   error
}

func (f *fakePruner) Cleanup(_ context.Context, olderThan time.Duration) error {
	f.calls = append(f.calls, olderThan)
	return f.err
}

func TestCleanupJob(t *testing.T) {
	keys, sessions := &fakePruner{}, &fakePruner{}
	job := &CleanupJob{Idempotency: keys, Sessions: sessions, Logger: discardLogger(), Metrics: jobmetrics.NewMetrics(prometheus.NewRegistry())}
	require.NoError(t, job.Handle(context.Background(), NewCleanupTask()))
	require.Equal(t, []time.Duration{72 * time.Hour}, keys.calls)
	require.Equal(t, []time.Duration{72 * time.Hour}, sessions.calls)

	failing := &CleanupJob{Idempotency: &fakePruner{err: errors.New("db")}, Logger: discardLogger()}
	require.Error(t, failing.Handle(context.Background(), NewCleanupTask()))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
