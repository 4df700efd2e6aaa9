package service

import (
	"context"
	"errors"
	"strings"

	dom "reminder/internal/domain"
	"reminder/internal/repo"
)

var (
	ErrInvalidUser = errors.New("email and name are required")
	ErrEmailTaken  = errors.New("email already registered")
)

// UserService handles user creation and lookup.
type UserService struct {
	repo repo.UserRepo
}

// NewUserService returns a new UserService.
func NewUserService(repo repo.UserRepo) *UserService {
	return &UserService{repo: repo}
}

// Create stores a new user. Email and name must be non-empty after trimming.
func (s *UserService) Create(ctx context.Context, email, name string) (dom.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || name == "" {
		return dom.User{}, ErrInvalidUser
	}

	u, err := s.repo.Create(ctx, email, name)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return dom.User{}, ErrEmailTaken
		}
		return dom.User{}, err
	}
	return u, nil
}

// GetByID returns the user by id.
func (s *UserService) GetByID(ctx context.Context, id string) (dom.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.User{}, ErrUserNotFound
		}
		return dom.User{}, err
	}
	return u, nil
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]dom.User, error) {
	return s.repo.List(ctx)
}
