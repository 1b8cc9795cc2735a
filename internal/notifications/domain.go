package notifications

import "time"

// Type classifies a notification.
type Type string

const (
	TypeTestComplete Type = "test_complete"
	TypeNewApp       Type = "new_app"
	TypeInfo         Type = "info"
)

// Notification is an admin-console alert.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      Type      `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"timestamp"`
}

// Input describes a notification to raise.
type Input struct {
	Title   string `validate:"required,max=200"`
	Message string `validate:"max=2000"`
	Type    Type   `validate:"required,oneof=test_complete new_app info"`
}
