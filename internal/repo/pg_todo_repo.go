package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	dom "reminder/internal/domain"
)

const todoColumns = `id, user_id, title, description, status, remind_at, created_at, updated_at, deleted_at`

// PGTodoRepo implements TodoRepo with Postgres. The seq column preserves
// insertion order; updated_at is advanced with GREATEST so it stays strictly
// increasing even when two writes land on the same clock reading.
type PGTodoRepo struct {
	db *pgxpool.Pool
}

// NewPGTodoRepo returns a new PGTodoRepo.
func NewPGTodoRepo(db *pgxpool.Pool) *PGTodoRepo {
	return &PGTodoRepo{db: db}
}

func (r *PGTodoRepo) Create(ctx context.Context, t NewTodo) (dom.Todo, error) {
	query := `
		INSERT INTO todos (id, user_id, title, description, status, remind_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + todoColumns
	row := r.db.QueryRow(ctx, query,
		uuid.NewString(), t.UserID, t.Title, t.Description, t.Status, t.RemindAt)
	return scanTodo(row)
}

func (r *PGTodoRepo) Update(ctx context.Context, id string, patch TodoPatch) (dom.Todo, error) {
	query := `
		UPDATE todos SET
			title       = COALESCE($2, title),
			description = COALESCE($3, description),
			status      = COALESCE($4, status),
			remind_at   = CASE WHEN $5 THEN $6 ELSE remind_at END,
			updated_at  = GREATEST(clock_timestamp(), updated_at + interval '1 microsecond')
		WHERE id = $1 AND ($7::text IS NULL OR status = $7)
		RETURNING ` + todoColumns
	row := r.db.QueryRow(ctx, query,
		id, patch.Title, patch.Description, patch.Status, patch.RemindAtSet, patch.RemindAt,
		patch.IfStatus)
	t, err := scanTodo(row)
	if errors.Is(err, pgx.ErrNoRows) {
		if patch.IfStatus != nil {
			// The row may exist with a status the guard no longer matches.
			var exists bool
			if qerr := r.db.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM todos WHERE id = $1)`, id).Scan(&exists); qerr != nil {
				return dom.Todo{}, qerr
			}
			if exists {
				return dom.Todo{}, ErrStaleStatus
			}
		}
		return dom.Todo{}, ErrNotFound
	}
	return t, err
}

func (r *PGTodoRepo) GetByID(ctx context.Context, id string) (dom.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1`
	t, err := scanTodo(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.Todo{}, ErrNotFound
	}
	return t, err
}

func (r *PGTodoRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]dom.Todo, error) {
	query := `
		SELECT ` + todoColumns + `
		FROM todos WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY seq ASC
		LIMIT NULLIF(GREATEST($2, 0), 0) OFFSET GREATEST($3, 0)`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTodos(rows)
}

func (r *PGTodoRepo) DueReminders(ctx context.Context, now time.Time) ([]dom.Todo, error) {
	query := `
		SELECT ` + todoColumns + `
		FROM todos
		WHERE deleted_at IS NULL AND status = $1 AND remind_at IS NOT NULL AND remind_at <= $2
		ORDER BY remind_at ASC`
	rows, err := r.db.Query(ctx, query, dom.StatusPending, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTodos(rows)
}

func (r *PGTodoRepo) SoftDelete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE todos SET
			deleted_at = now(),
			updated_at = GREATEST(clock_timestamp(), updated_at + interval '1 microsecond')
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}
	// Nothing changed: the record is either missing or already deleted.
	var exists bool
	err = r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM todos WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *PGTodoRepo) ListAll(ctx context.Context) ([]dom.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos ORDER BY seq ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTodos(rows)
}

func scanTodo(row pgx.Row) (dom.Todo, error) {
	var t dom.Todo
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status,
		&t.RemindAt, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt)
	return t, err
}

func collectTodos(rows pgx.Rows) ([]dom.Todo, error) {
	// Never nil: an empty result must stay distinguishable from "no data"
	// once it has been through the JSON round-trip of the listing cache.
	list := []dom.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
