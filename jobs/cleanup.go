package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/protocolai/hireai/internal/jobs"
)

// TaskTypeCleanup prunes expired idempotency keys and admin session rows.
const TaskTypeCleanup = "maintenance:cleanup"

// Pruner removes rows older than a retention window.
type Pruner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) error
}

// CleanupJob runs the periodic maintenance sweep.
type CleanupJob struct {
	Idempotency Pruner
	Sessions    Pruner
	Retention   time.Duration
	Logger      *slog.Logger
	Metrics     *jobmetrics.Metrics
}

// NewCleanupTask builds the cron task.
func NewCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskTypeCleanup, nil)
}

// Handle executes the sweep. The first failing pruner aborts the run.
func (j *CleanupJob) Handle(ctx context.Context, _ *asynq.Task) (err error) {
	tracker := j.Metrics.Track(TaskTypeCleanup)
	defer func() {
		err = tracker.End(err)
	}()
	retention := j.Retention
	if retention <= 0 {
		retention = 72 * time.Hour
	}
	for name, p := range map[string]Pruner{"idempotency_keys": j.Idempotency, "admin_sessions": j.Sessions} {
		if p == nil {
			continue
		}
		if err := p.Cleanup(ctx, retention); err != nil {
			j.logger().Error("cleanup failed", slog.String("table", name), slog.Any("error", err))
			return err
		}
	}
	j.logger().Info("cleanup finished", slog.Duration("retention", retention))
	return nil
}

func (j *CleanupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
