// Package models contains the documents persisted by the server repositories.
package models

import (
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/server/tasks"
)

// AccountDocument is the stored form of an account: credentials, display
// name and the whole task list kept together as one document.
type AccountDocument struct {
	ID           string
	UserName     string
	PasswordHash string
	DisplayName  string
	Tasks        []tasks.Task
	CreatedAt    time.Time
}
