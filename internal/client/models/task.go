// Package models holds the client-side view of server responses.
package models

import "time"

type Task struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Urgency     string    `json:"urgency"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Profile struct {
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Tasks       []Task    `json:"tasks"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Completion is the server's answer to a completion query. Urgency is empty
// when the percentage covers all tasks.
type Completion struct {
	Urgency    string  `json:"urgency"`
	Percentage float64 `json:"percentage"`
	Summary    struct {
		All       float64            `json:"all"`
		ByUrgency map[string]float64 `json:"byUrgency"`
	} `json:"summary"`
}

// Session is what the CLI keeps between runs.
type Session struct {
	Username    string
	AccessToken string
	ExpiresAt   time.Time
}

// Expired reports whether the session is past its expiry at now. A zero
// ExpiresAt never expires.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
