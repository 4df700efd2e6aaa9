package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	dom "reminder/internal/domain"
)

// RemindAt parses remindAt from JSON as either date-only ("2006-01-02") or
// RFC3339. Date-only is stored as start of that day in UTC. A null or empty
// value is valid and means "no reminder"; on update requests it clears an
// existing one. Set reports whether the key was present at all, which is
// how an absent field is told apart from an explicit clear.
type RemindAt struct {
	t   *time.Time
	set bool
}

func (r *RemindAt) UnmarshalJSON(data []byte) error {
	r.set = true
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		r.t = nil
		return nil
	}
	s := strings.TrimSpace(*raw)
	layouts := []string{
		"2006-01-02", // date only
		time.RFC3339, // 2006-01-02T15:04:05Z07:00
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			// Date-only input has no time component: use start of day UTC.
			if layout == "2006-01-02" {
				parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
			}
			r.t = &parsed
			return nil
		}
	}
	return fmt.Errorf("remindAt: use date (YYYY-MM-DD) or RFC3339 datetime")
}

// Ptr returns *time.Time for use in service/domain.
func (r RemindAt) Ptr() *time.Time { return r.t }

// Set reports whether the field appeared in the request body.
func (r RemindAt) Set() bool { return r.set }

// CreateTodoRequest is the JSON body for POST /todos.
type CreateTodoRequest struct {
	UserID      string   `json:"userId" binding:"required"`
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	RemindAt    RemindAt `json:"remindAt"`
}

// UpdateTodoRequest is the JSON body for PATCH /todos/:id. Absent fields are
// left untouched; a null or empty remindAt clears the reminder.
type UpdateTodoRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	RemindAt    RemindAt `json:"remindAt"`
}

// ShareTodoRequest is the JSON body for POST /todos/:id/share.
type ShareTodoRequest struct {
	TargetUserID string `json:"targetUserId" binding:"required"`
}

// TodoResponse is the JSON representation of a todo.
type TodoResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	RemindAt    *time.Time `json:"remindAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ListTodosResponse wraps a todo listing.
type ListTodosResponse struct {
	Items []TodoResponse `json:"items"`
}

// FromTodo maps a domain todo to its response shape.
func FromTodo(t dom.Todo) TodoResponse {
	return TodoResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		RemindAt:    t.RemindAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// FromTodos maps a todo slice to response shapes.
func FromTodos(list []dom.Todo) []TodoResponse {
	out := make([]TodoResponse, len(list))
	for i := range list {
		out[i] = FromTodo(list[i])
	}
	return out
}
