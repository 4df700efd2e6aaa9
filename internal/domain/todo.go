package domain

import "time"

// Status is the lifecycle state of a todo. It only moves forward:
// PENDING -> REMINDER_DUE -> DONE, with PENDING -> DONE allowed directly.
// DONE is terminal.
type Status string

const (
	StatusPending     Status = "PENDING"
	StatusReminderDue Status = "REMINDER_DUE"
	StatusDone        Status = "DONE"
)

// Domain entity: the business object (source of truth).
// Does not depend on Gin, Postgres or Redis.
type Todo struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Status      Status
	RemindAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Deleted reports whether the todo has been soft-deleted.
func (t Todo) Deleted() bool { return t.DeletedAt != nil }
