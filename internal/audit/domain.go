// Package audit exposes the audit trail written by role, user and application
// mutations as a filterable timeline.
package audit

import "time"

// TimelineFilters narrows the timeline. Zero values are ignored.
type TimelineFilters struct {
	From     time.Time
	To       time.Time
	Actor    string
	Entity   string
	EntityID string
	Action   string
	Page     int
	PageSize int
}

// Entry is one audit_logs row.
type Entry struct {
	ID       int64          `json:"id"`
	At       time.Time      `json:"at"`
	ActorID  string         `json:"actorId,omitempty"`
	Action   string         `json:"action"`
	Entity   string         `json:"entity"`
	EntityID string         `json:"entityId"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// Paging describes window-style pagination where only the presence of a next
// page is known.
type Paging struct {
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
	HasNext  bool `json:"hasNext"`
	PrevPage int  `json:"prevPage,omitempty"`
	NextPage int  `json:"nextPage,omitempty"`
}

// Result wraps one timeline page.
type Result struct {
	Entries []Entry `json:"entries"`
	Paging  Paging  `json:"paging"`
}
