// Package tasks holds the to-do item owned by an account and the completion
// metrics computed over a list of them.
package tasks

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/google/uuid"
)

// Urgency buckets tasks for completion reporting.
type Urgency string

const (
	UrgencyYearly  Urgency = "yearly"
	UrgencyMonthly Urgency = "monthly"
	UrgencyWeekly  Urgency = "weekly"
	UrgencyDaily   Urgency = "daily"
)

// Urgencies lists every valid urgency, longest horizon first.
var Urgencies = []Urgency{UrgencyYearly, UrgencyMonthly, UrgencyWeekly, UrgencyDaily}

// ParseUrgency validates s (case-insensitive, surrounding spaces ignored).
func ParseUrgency(s string) (Urgency, error) {
	u := Urgency(strings.ToLower(strings.TrimSpace(s)))
	if !u.Valid() {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidUrgency, s)
	}
	return u, nil
}

// Valid reports whether u is one of the known urgencies.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyYearly, UrgencyMonthly, UrgencyWeekly, UrgencyDaily:
		return true
	}
	return false
}

func (u Urgency) String() string { return string(u) }

// Task is a single to-do item. ID and CreatedAt never change after New.
type Task struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Urgency     Urgency   `json:"urgency"`
	CreatedAt   time.Time `json:"createdAt"`
}

// New returns an incomplete task with a fresh id.
func New(description string, urgency Urgency) Task {
	return Task{
		ID:          uuid.NewString(),
		Description: description,
		Urgency:     urgency,
		CreatedAt:   time.Now().UTC(),
	}
}

// Clone copies a task list so callers can't alias the owner's slice.
// A nil list clones to an empty, non-nil one.
func Clone(list []Task) []Task {
	out := make([]Task, len(list))
	copy(out, list)
	return out
}

// IndexOf returns the position of the task with id, or -1.
func IndexOf(list []Task, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
