package repo

import (
	"context"
	"errors"
	"time"

	dom "reminder/internal/domain"
)

// ErrNotFound is returned when a record id does not resolve.
var ErrNotFound = errors.New("record not found")

// ErrStaleStatus is returned by Update when an IfStatus guard no longer
// matches the stored record.
var ErrStaleStatus = errors.New("status changed since read")

// NewTodo carries the caller-supplied fields for Create. The repository
// assigns the id and both timestamps.
type NewTodo struct {
	UserID      string
	Title       string
	Description string
	Status      dom.Status
	RemindAt    *time.Time
}

// TodoPatch is a partial update. Nil fields are left untouched. RemindAt is
// applied only when RemindAtSet is true, so the reminder can be cleared by
// setting the flag with a nil value. The id, owner and creation time are not
// patchable.
//
// IfStatus, when non-nil, makes the whole patch conditional: it is applied
// only while the stored record still has that status, checked inside the
// store's per-record critical section. A mismatch fails with ErrStaleStatus
// and changes nothing. Status transitions derived from a read (the reminder
// pass promoting PENDING records) use this so a write racing in between
// cannot be overwritten backward.
type TodoPatch struct {
	Title       *string
	Description *string
	Status      *dom.Status
	RemindAtSet bool
	RemindAt    *time.Time
	IfStatus    *dom.Status
}

// TodoRepo provides todo persistence.
type TodoRepo interface {
	Create(ctx context.Context, t NewTodo) (dom.Todo, error)
	// Update applies patch and bumps UpdatedAt strictly past its previous
	// value. It returns ErrNotFound for an unknown id; it never fabricates
	// a record on a miss.
	Update(ctx context.Context, id string, patch TodoPatch) (dom.Todo, error)
	// GetByID resolves any record, soft-deleted ones included.
	GetByID(ctx context.Context, id string) (dom.Todo, error)
	// ListByUser returns the user's non-deleted todos in insertion order,
	// skipping offset records and then capping at limit. Zero or negative
	// values disable the corresponding bound.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]dom.Todo, error)
	// DueReminders returns non-deleted PENDING todos with RemindAt <= now.
	DueReminders(ctx context.Context, now time.Time) ([]dom.Todo, error)
	// SoftDelete marks the record deleted and reports whether it was found.
	SoftDelete(ctx context.Context, id string) (bool, error)
	// ListAll returns every record in insertion order, soft-deleted included.
	ListAll(ctx context.Context) ([]dom.Todo, error)
}
