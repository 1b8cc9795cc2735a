package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose(t *testing.T) {
	r := Recipient{ApplicationID: "app-1", Email: "sara@example.com", Name: "Sara", JobID: "job-9", JobTitle: "Data Engineer"}

	test := Compose(KindTest, r, "https://careers.example", "", "")
	assert.Equal(t, "https://careers.example/test/job-9", test.AssessmentLink)
	assert.Contains(t, test.Body, test.AssessmentLink)
	assert.Equal(t, "Technical Assessment Request: Data Engineer", test.Subject)

	interview := Compose(KindInterview, r, "", "2026-11-02 10:00", "bring a laptop")
	assert.Equal(t, "2026-11-02 10:00", interview.InterviewDate)
	assert.Contains(t, interview.Body, "Additional Notes: bring a laptop")

	rejection := Compose(KindRejection, Recipient{Email: "x@example.com", JobTitle: "QA"}, "", "", "")
	assert.Equal(t, "Candidate", rejection.CandidateName)
	assert.Contains(t, rejection.Body, "QA")
}

func TestSendNotConfigured(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:0"}, nil)
	err := c.Send(context.Background(), Message{Kind: KindTest})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestSendPostsTemplateParams(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1.0/email/send", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, ServiceID: "svc", TemplateID: "tpl", PublicKey: "pub", ReplyTo: "hr@example.com"}, nil)
	msg := Compose(KindConfirmation, Recipient{Email: "sara@example.com", Name: "Sara", JobTitle: "Data Engineer"}, "", "", "")
	require.NoError(t, c.Send(context.Background(), msg))

	assert.Equal(t, "svc", got.ServiceID)
	assert.Equal(t, "tpl", got.TemplateID)
	assert.Equal(t, "pub", got.UserID)
	assert.Equal(t, "sara@example.com", got.TemplateParams["to_email"])
	assert.Equal(t, "Data Engineer", got.TemplateParams["job_title"])
	assert.Equal(t, "hr@example.com", got.TemplateParams["reply_to"])
	assert.True(t, strings.HasPrefix(got.TemplateParams["subject"], "Application Received"))
}

func TestSendSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("The template ID is invalid"))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, ServiceID: "svc", TemplateID: "bad", PublicKey: "pub"}, nil)
	err := c.Send(context.Background(), Message{Kind: KindTest, ToEmail: "a@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
