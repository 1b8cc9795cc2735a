// Package mailer composes candidate e-mails and delivers them through the
// EmailJS REST API.
package mailer

import "fmt"

// Kind identifies the template family of a candidate e-mail.
type Kind string

const (
	KindConfirmation Kind = "confirmation"
	KindTest         Kind = "test"
	KindInterview    Kind = "interview"
	KindRejection    Kind = "rejection"
)

// Message is a rendered candidate e-mail.
type Message struct {
	Kind           Kind   `json:"kind"`
	ToEmail        string `json:"toEmail"`
	CandidateName  string `json:"candidateName"`
	FromName       string `json:"fromName"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	JobTitle       string `json:"jobTitle"`
	AssessmentLink string `json:"assessmentLink,omitempty"`
	InterviewDate  string `json:"interviewDate,omitempty"`
	ApplicationID  string `json:"applicationId,omitempty"`
}

// Recipient carries what a template needs about the candidate and the job.
type Recipient struct {
	ApplicationID string
	Email         string
	Name          string
	JobID         string
	JobTitle      string
}

// Compose renders the message of kind for r. portalURL is used to build the
// assessment link; interviewDate and note only apply to interview invitations.
func Compose(kind Kind, r Recipient, portalURL, interviewDate, note string) Message {
	name := r.Name
	if name == "" {
		name = "Candidate"
	}
	msg := Message{Kind: kind, ToEmail: r.Email, CandidateName: name, JobTitle: r.JobTitle, ApplicationID: r.ApplicationID}
	switch kind {
	case KindConfirmation:
		msg.FromName = "HR Platform Careers"
		msg.Subject = "Application Received: " + r.JobTitle
		msg.Body = fmt.Sprintf("Dear %s,\n\nThank you for applying for the %s position. Our system has processed your profile. We will review your match rating and technical background shortly.\n\nBest regards,\nThe Recruitment Team", name, r.JobTitle)
	case KindTest:
		link := portalURL + "/test/" + r.JobID
		msg.FromName = "HR Platform Assessment Center"
		msg.Subject = "Technical Assessment Request: " + r.JobTitle
		msg.AssessmentLink = link
		msg.Body = fmt.Sprintf("Hello %s,\n\nTo move forward in our process, we require a technical skills validation. Please complete the assessment using the link below:\n\n%s\n\nNote: The test is timed. Ensure you have a stable connection.", name, link)
	case KindInterview:
		msg.FromName = "HR Platform Talent Acquisition"
		msg.Subject = "Interview Invitation: " + r.JobTitle
		msg.InterviewDate = interviewDate
		body := fmt.Sprintf("Dear %s,\n\nWe were impressed by your technical evaluation. We would like to invite you for a formal interview.\n\nScheduled Date/Time: %s\n\n", name, interviewDate)
		if note != "" {
			body += "Additional Notes: " + note + "\n"
		}
		msg.Body = body + "\nPlease confirm your availability by replying to this email."
	case KindRejection:
		msg.FromName = "HR Platform Recruitment"
		msg.Subject = "Application Update: " + r.JobTitle
		msg.Body = fmt.Sprintf("Dear %s,\n\nThank you for your interest in the %s position. After careful review we have decided to move forward with other candidates. We wish you the best in your search.\n\nBest regards,\nThe Recruitment Team", name, r.JobTitle)
	}
	return msg
}
