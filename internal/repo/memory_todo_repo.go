package repo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	dom "reminder/internal/domain"
)

// todoEntry is one stored record. Its mutex serializes read-modify-write
// cycles for this id, so two concurrent mutations cannot lose updates.
type todoEntry struct {
	mu   sync.Mutex
	todo dom.Todo
}

// MemoryTodoRepo is the in-memory TodoRepo. Records live in a map keyed by
// id with a secondary insertion-ordered index per owner; the outer lock
// guards the maps only, mutation of a record goes through its entry lock.
type MemoryTodoRepo struct {
	mu     sync.RWMutex
	todos  map[string]*todoEntry
	order  []string            // all ids in insertion order
	byUser map[string][]string // ids in insertion order, per owner
}

// NewMemoryTodoRepo returns an empty in-memory store.
func NewMemoryTodoRepo() *MemoryTodoRepo {
	return &MemoryTodoRepo{
		todos:  make(map[string]*todoEntry),
		byUser: make(map[string][]string),
	}
}

func (r *MemoryTodoRepo) Create(_ context.Context, t NewTodo) (dom.Todo, error) {
	now := time.Now().UTC()
	todo := dom.Todo{
		ID:          uuid.NewString(),
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		RemindAt:    t.RemindAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	r.mu.Lock()
	r.todos[todo.ID] = &todoEntry{todo: todo}
	r.order = append(r.order, todo.ID)
	r.byUser[todo.UserID] = append(r.byUser[todo.UserID], todo.ID)
	r.mu.Unlock()

	return todo, nil
}

func (r *MemoryTodoRepo) Update(_ context.Context, id string, patch TodoPatch) (dom.Todo, error) {
	e, ok := r.entry(id)
	if !ok {
		return dom.Todo{}, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if patch.IfStatus != nil && e.todo.Status != *patch.IfStatus {
		return dom.Todo{}, ErrStaleStatus
	}

	t := e.todo
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.RemindAtSet {
		t.RemindAt = patch.RemindAt
	}
	t.UpdatedAt = bumpClock(e.todo.UpdatedAt)
	e.todo = t
	return t, nil
}

func (r *MemoryTodoRepo) GetByID(_ context.Context, id string) (dom.Todo, error) {
	e, ok := r.entry(id)
	if !ok {
		return dom.Todo{}, ErrNotFound
	}
	e.mu.Lock()
	t := e.todo
	e.mu.Unlock()
	return t, nil
}

func (r *MemoryTodoRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]dom.Todo, error) {
	r.mu.RLock()
	ids := append([]string(nil), r.byUser[userID]...)
	r.mu.RUnlock()

	active := make([]dom.Todo, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.snapshot(id); ok && t.DeletedAt == nil {
			active = append(active, t)
		}
	}
	return paginate(active, limit, offset), nil
}

func (r *MemoryTodoRepo) DueReminders(_ context.Context, now time.Time) ([]dom.Todo, error) {
	r.mu.RLock()
	ids := append([]string(nil), r.order...)
	r.mu.RUnlock()

	var due []dom.Todo
	for _, id := range ids {
		t, ok := r.snapshot(id)
		if !ok || t.DeletedAt != nil {
			continue
		}
		if t.Status == dom.StatusPending && t.RemindAt != nil && !t.RemindAt.After(now) {
			due = append(due, t)
		}
	}
	return due, nil
}

func (r *MemoryTodoRepo) SoftDelete(_ context.Context, id string) (bool, error) {
	e, ok := r.entry(id)
	if !ok {
		return false, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.todo.DeletedAt != nil {
		// Already deleted; keep the original deletion mark.
		return true, nil
	}
	now := bumpClock(e.todo.UpdatedAt)
	e.todo.DeletedAt = &now
	e.todo.UpdatedAt = now
	return true, nil
}

func (r *MemoryTodoRepo) ListAll(_ context.Context) ([]dom.Todo, error) {
	r.mu.RLock()
	ids := append([]string(nil), r.order...)
	r.mu.RUnlock()

	out := make([]dom.Todo, 0, len(ids))
	for _, id := range ids {
		if t, ok := r.snapshot(id); ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *MemoryTodoRepo) entry(id string) (*todoEntry, bool) {
	r.mu.RLock()
	e, ok := r.todos[id]
	r.mu.RUnlock()
	return e, ok
}

// snapshot returns a copy of the record under its entry lock.
func (r *MemoryTodoRepo) snapshot(id string) (dom.Todo, bool) {
	e, ok := r.entry(id)
	if !ok {
		return dom.Todo{}, false
	}
	e.mu.Lock()
	t := e.todo
	e.mu.Unlock()
	return t, true
}

// bumpClock returns a timestamp strictly after prev, even when the wall
// clock has not advanced since the previous write of the same record.
func bumpClock(prev time.Time) time.Time {
	now := time.Now().UTC()
	if !now.After(prev) {
		return prev.Add(time.Nanosecond)
	}
	return now
}

// paginate applies offset-then-limit slicing over an already ordered list.
func paginate(list []dom.Todo, limit, offset int) []dom.Todo {
	if offset > 0 {
		if offset >= len(list) {
			return []dom.Todo{}
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
