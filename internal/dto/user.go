package dto

import (
	"time"

	dom "reminder/internal/domain"
)

// CreateUserRequest is the JSON body for POST /users.
type CreateUserRequest struct {
	Email string `json:"email" binding:"required"`
	Name  string `json:"name" binding:"required"`
}

// UserResponse is the JSON representation of a user.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListUsersResponse wraps a user listing.
type ListUsersResponse struct {
	Items []UserResponse `json:"items"`
}

// FromUser maps a domain user to its response shape.
func FromUser(u dom.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

// FromUsers maps a user slice to response shapes.
func FromUsers(list []dom.User) []UserResponse {
	out := make([]UserResponse, len(list))
	for i := range list {
		out[i] = FromUser(list[i])
	}
	return out
}
