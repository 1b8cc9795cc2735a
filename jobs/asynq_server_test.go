package jobs

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

func TestHealthWithoutInspector(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(nil, slog.New(slog.NewTextHandler(io.Discard, nil))).MountRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Queues []queueHealth `json:"queues"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Queues, 2)
	require.Equal(t, QueueMail, body.Queues[0].Queue)
	require.Equal(t, QueueMaintenance, body.Queues[1].Queue)
}

func TestNewWorkerSkipsIncompleteRegistrations(t *testing.T) {
	w, err := NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"},
		Handlers: []TaskHandler{
			{Type: TaskTypeSendEmail, Handler: (&MailJob{}).Handle},
			{Type: "", Handler: nil},
		},
		Cron: []CronRegistration{{Spec: "", Task: nil}},
	})
	require.NoError(t, err)
	require.NotNil(t, w.scheduler)
	require.NotNil(t, w.logger)
}
