package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNotConfigured is returned when EmailJS credentials are missing.
var ErrNotConfigured = errors.New("mailer: emailjs configuration missing")

// DefaultBaseURL is the public EmailJS REST endpoint.
const DefaultBaseURL = "https://api.emailjs.com"

// Config holds EmailJS credentials.
type Config struct {
	BaseURL    string
	ServiceID  string
	TemplateID string
	PublicKey  string
	PrivateKey string
	ReplyTo    string
}

// Configured reports whether the service, template and public key are set.
func (c Config) Configured() bool {
	return c.ServiceID != "" && c.TemplateID != "" && c.PublicKey != ""
}

type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// Client delivers messages through EmailJS.
type Client struct {
	http   *resty.Client
	cfg    Config
	logger *slog.Logger
}

// NewClient constructs an EmailJS client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(15*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(3*time.Second).
		SetHeader("Content-Type", "application/json")
	return &Client{http: client, cfg: cfg, logger: logger}
}

// Send delivers msg. It returns ErrNotConfigured without contacting the API
// when credentials are missing.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if !c.cfg.Configured() {
		return ErrNotConfigured
	}
	req := sendRequest{
		ServiceID:      c.cfg.ServiceID,
		TemplateID:     c.cfg.TemplateID,
		UserID:         c.cfg.PublicKey,
		AccessToken:    c.cfg.PrivateKey,
		TemplateParams: templateParams(msg, c.cfg.ReplyTo),
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post("/api/v1.0/email/send")
	if err != nil {
		return fmt.Errorf("mailer: emailjs request: %w", err)
	}
	if resp.IsError() {
		c.logger.Error("emailjs rejected message",
			slog.Int("status", resp.StatusCode()),
			slog.String("kind", string(msg.Kind)),
			slog.String("body", resp.String()))
		return fmt.Errorf("mailer: emailjs status %d: %s", resp.StatusCode(), resp.String())
	}
	c.logger.Info("email dispatched", slog.String("kind", string(msg.Kind)), slog.String("application_id", msg.ApplicationID))
	return nil
}

// templateParams fans the message out under every variable name the
// shared EmailJS templates reference.
func templateParams(msg Message, replyTo string) map[string]string {
	title := msg.JobTitle
	if title == "" {
		title = msg.Subject
	}
	params := map[string]string{
		"to_email":        msg.ToEmail,
		"candidate_email": msg.ToEmail,
		"email":           msg.ToEmail,
		"candidate_name":  msg.CandidateName,
		"to_name":         msg.CandidateName,
		"user_name":       msg.CandidateName,
		"from_name":       msg.FromName,
		"sender_name":     msg.FromName,
		"name":            msg.FromName,
		"title":           title,
		"job_title":       title,
		"subject":         msg.Subject,
		"message":         msg.Body,
		"content":         msg.Body,
		"body":            msg.Body,
		"assessment_link": msg.AssessmentLink,
		"interview_date":  msg.InterviewDate,
	}
	if replyTo != "" {
		params["reply_to"] = replyTo
	}
	return params
}
