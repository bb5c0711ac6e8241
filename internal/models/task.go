package models

import "time"

const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// ValidStatus reports whether s is one of the three task states.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

type Task struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskWithOwner is the admin aggregate view: a task joined with the
// name and email of the user that owns it.
type TaskWithOwner struct {
	Task
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}
