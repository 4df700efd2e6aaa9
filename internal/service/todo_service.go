package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"reminder/internal/cache"
	dom "reminder/internal/domain"
	"reminder/internal/repo"
)

var (
	ErrEmptyTitle   = errors.New("title is required and cannot be empty")
	ErrTodoNotFound = errors.New("todo not found")
	ErrUserNotFound = errors.New("user not found")
	ErrSelfShare    = errors.New("cannot share a todo with its owner")
)

// CreateTodo is the input for Create.
type CreateTodo struct {
	UserID      string
	Title       string
	Description string
	RemindAt    *time.Time
}

// UpdateTodo is a partial update. Nil fields are left as they are. RemindAt
// is applied only when RemindAtSet is true, so a nil value with the flag
// clears the reminder.
type UpdateTodo struct {
	Title       *string
	Description *string
	RemindAtSet bool
	RemindAt    *time.Time
}

// TodoService orchestrates validation, state transitions, pagination and
// sharing on top of the repositories. It holds no storage of its own.
type TodoService struct {
	todos repo.TodoRepo
	users repo.UserRepo
	cache *cache.TodoCache
	sf    singleflight.Group
}

// NewTodoService creates a TodoService. If c is nil, caching is disabled.
func NewTodoService(todos repo.TodoRepo, users repo.UserRepo, c *cache.TodoCache) *TodoService {
	return &TodoService{todos: todos, users: users, cache: c}
}

// Create validates the title and the owner, then stores a new PENDING todo.
func (s *TodoService) Create(ctx context.Context, in CreateTodo) (dom.Todo, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return dom.Todo{}, ErrEmptyTitle
	}
	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.Todo{}, ErrUserNotFound
		}
		return dom.Todo{}, err
	}

	t, err := s.todos.Create(ctx, repo.NewTodo{
		UserID:      in.UserID,
		Title:       title,
		Description: in.Description,
		Status:      dom.StatusPending,
		RemindAt:    in.RemindAt,
	})
	if err != nil {
		return dom.Todo{}, err
	}
	s.invalidateCache(ctx, in.UserID)
	return t, nil
}

// Complete marks the todo DONE. Completing an already DONE todo returns it
// unchanged with no timestamp bump.
func (s *TodoService) Complete(ctx context.Context, id string) (dom.Todo, error) {
	t, err := s.todos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.Todo{}, ErrTodoNotFound
		}
		return dom.Todo{}, err
	}
	if t.Status == dom.StatusDone {
		return t, nil
	}

	done := dom.StatusDone
	updated, err := s.todos.Update(ctx, id, repo.TodoPatch{Status: &done})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.Todo{}, ErrTodoNotFound
		}
		return dom.Todo{}, err
	}
	s.invalidateCache(ctx, t.UserID)
	return updated, nil
}

// ListByUser returns the user's active todos in insertion order, with
// offset applied before limit.
func (s *TodoService) ListByUser(ctx context.Context, userID string, limit, offset int) ([]dom.Todo, error) {
	if s.cache != nil {
		key := "list:" + userID + ":" + strconv.Itoa(limit) + ":" + strconv.Itoa(offset)
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if list, err := s.cache.GetList(ctx, userID, limit, offset); err == nil && list != nil {
				return list, nil
			}
			list, err := s.todos.ListByUser(ctx, userID, limit, offset)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetList(ctx, userID, limit, offset, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.Todo), nil
	}
	return s.todos.ListByUser(ctx, userID, limit, offset)
}

// ListAll returns active todos across all users. The repository exposes an
// unfiltered bulk read, so soft-deleted records are dropped and the
// offset-then-limit window is applied here.
func (s *TodoService) ListAll(ctx context.Context, limit, offset int) ([]dom.Todo, error) {
	all, err := s.todos.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]dom.Todo, 0, len(all))
	for _, t := range all {
		if !t.Deleted() {
			active = append(active, t)
		}
	}
	if offset > 0 {
		if offset >= len(active) {
			return []dom.Todo{}, nil
		}
		active = active[offset:]
	}
	if limit > 0 && limit < len(active) {
		active = active[:limit]
	}
	return active, nil
}

// ProcessReminders promotes PENDING todos whose remind time has passed to
// REMINDER_DUE and returns how many were promoted. Only PENDING records are
// selected, so a second pass over the same data set is a no-op.
func (s *TodoService) ProcessReminders(ctx context.Context, now time.Time) (int, error) {
	due, err := s.todos.DueReminders(ctx, now)
	if err != nil {
		return 0, err
	}

	reminderDue := dom.StatusReminderDue
	pending := dom.StatusPending
	processed := 0
	for _, t := range due {
		if t.Status != dom.StatusPending {
			continue
		}
		// The IfStatus guard runs inside the store's critical section, so a
		// completion landing after the DueReminders read cannot be pulled
		// back to REMINDER_DUE; such records are skipped.
		patch := repo.TodoPatch{Status: &reminderDue, IfStatus: &pending}
		if _, err := s.todos.Update(ctx, t.ID, patch); err != nil {
			if errors.Is(err, repo.ErrNotFound) || errors.Is(err, repo.ErrStaleStatus) {
				continue
			}
			return processed, err
		}
		s.invalidateCache(ctx, t.UserID)
		processed++
	}
	return processed, nil
}

// GetByID resolves a todo by id; soft-deleted records stay reachable here
// even though they never show up in listings.
func (s *TodoService) GetByID(ctx context.Context, id string) (dom.Todo, error) {
	t, err := s.todos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.Todo{}, ErrTodoNotFound
		}
		return dom.Todo{}, err
	}
	return t, nil
}

// Update applies a partial update. A supplied title must be non-empty after
// trimming.
func (s *TodoService) Update(ctx context.Context, id string, in UpdateTodo) (dom.Todo, error) {
	patch := repo.TodoPatch{
		Description: in.Description,
		RemindAtSet: in.RemindAtSet,
		RemindAt:    in.RemindAt,
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return dom.Todo{}, ErrEmptyTitle
		}
		patch.Title = &title
	}

	t, err := s.todos.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.Todo{}, ErrTodoNotFound
		}
		return dom.Todo{}, err
	}
	s.invalidateCache(ctx, t.UserID)
	return t, nil
}

// Delete soft-deletes the todo and reports whether it was found.
func (s *TodoService) Delete(ctx context.Context, id string) (bool, error) {
	t, err := s.todos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	found, err := s.todos.SoftDelete(ctx, id)
	if err != nil {
		return false, err
	}
	if found {
		s.invalidateCache(ctx, t.UserID)
	}
	return found, nil
}

// Share creates an independent copy of the todo for another user. The copy
// gets a fresh id and starts PENDING; the source record is untouched.
func (s *TodoService) Share(ctx context.Context, id, targetUserID string) (dom.Todo, error) {
	src, err := s.todos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.Todo{}, ErrTodoNotFound
		}
		return dom.Todo{}, err
	}
	if src.UserID == targetUserID {
		return dom.Todo{}, ErrSelfShare
	}
	if _, err := s.users.GetByID(ctx, targetUserID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.Todo{}, ErrUserNotFound
		}
		return dom.Todo{}, err
	}

	t, err := s.todos.Create(ctx, repo.NewTodo{
		UserID:      targetUserID,
		Title:       src.Title,
		Description: src.Description,
		Status:      dom.StatusPending,
		RemindAt:    src.RemindAt,
	})
	if err != nil {
		return dom.Todo{}, err
	}
	s.invalidateCache(ctx, targetUserID)
	return t, nil
}

func (s *TodoService) invalidateCache(ctx context.Context, userID string) {
	if s.cache != nil {
		_ = s.cache.InvalidateUser(ctx, userID)
	}
}
