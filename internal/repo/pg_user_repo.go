package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	dom "reminder/internal/domain"
	"reminder/internal/utils"
)

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *pgxpool.Pool
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db *pgxpool.Pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

// Create inserts a new user and returns it.
func (r *PGUserRepo) Create(ctx context.Context, email, name string) (dom.User, error) {
	query := `
		INSERT INTO users (id, email, name)
		VALUES ($1, $2, $3)
		RETURNING id, email, name, created_at`
	var u dom.User
	err := r.db.QueryRow(ctx, query, uuid.NewString(), email, name).Scan(
		&u.ID, &u.Email, &u.Name, &u.CreatedAt,
	)
	if utils.IsPGUniqueViolation(err) {
		return dom.User{}, ErrDuplicateEmail
	}
	return u, err
}

// GetByID returns the user by id.
func (r *PGUserRepo) GetByID(ctx context.Context, id string) (dom.User, error) {
	var u dom.User
	err := r.db.QueryRow(ctx,
		`SELECT id, email, name, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.User{}, ErrNotFound
	}
	return u, err
}

// List returns all users in insertion order.
func (r *PGUserRepo) List(ctx context.Context) ([]dom.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, email, name, created_at FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.User
	for rows.Next() {
		var u dom.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}
