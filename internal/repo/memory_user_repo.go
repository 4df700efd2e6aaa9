package repo

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	dom "reminder/internal/domain"
)

// MemoryUserRepo is the in-memory UserRepo.
type MemoryUserRepo struct {
	mu      sync.RWMutex
	users   map[string]dom.User
	byEmail map[string]string // lowercased email -> id
	order   []string
}

// NewMemoryUserRepo returns an empty in-memory user store.
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		users:   make(map[string]dom.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepo) Create(_ context.Context, email, name string) (dom.User, error) {
	key := strings.ToLower(email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[key]; taken {
		return dom.User{}, ErrDuplicateEmail
	}
	u := dom.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	r.users[u.ID] = u
	r.byEmail[key] = u.ID
	r.order = append(r.order, u.ID)
	return u, nil
}

func (r *MemoryUserRepo) GetByID(_ context.Context, id string) (dom.User, error) {
	r.mu.RLock()
	u, ok := r.users[id]
	r.mu.RUnlock()
	if !ok {
		return dom.User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryUserRepo) List(_ context.Context) ([]dom.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]dom.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.users[id])
	}
	return out, nil
}
