package repo

import (
	"context"
	"errors"

	dom "reminder/internal/domain"
)

// ErrDuplicateEmail is returned by Create when the email is already taken.
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepo provides user persistence.
type UserRepo interface {
	Create(ctx context.Context, email, name string) (dom.User, error)
	GetByID(ctx context.Context, id string) (dom.User, error)
	List(ctx context.Context) ([]dom.User, error)
}
