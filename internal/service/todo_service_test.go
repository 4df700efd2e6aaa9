package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dom "reminder/internal/domain"
	"reminder/internal/repo"
)

func newService(t *testing.T) (*TodoService, *repo.MemoryTodoRepo, *repo.MemoryUserRepo) {
	t.Helper()
	todos := repo.NewMemoryTodoRepo()
	users := repo.NewMemoryUserRepo()
	return NewTodoService(todos, users, nil), todos, users
}

func mustUser(t *testing.T, users *repo.MemoryUserRepo, email, name string) dom.User {
	t.Helper()
	u, err := users.Create(context.Background(), email, name)
	require.NoError(t, err)
	return u
}

func TestCreate_EmptyTitle(t *testing.T) {
	svc, todos, users := newService(t)
	ctx := context.Background()
	u := mustUser(t, users, "a@example.com", "Alice")

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := svc.Create(ctx, CreateTodo{UserID: u.ID, Title: title})
		assert.ErrorIs(t, err, ErrEmptyTitle, "title %q", title)
	}

	// No storage write happened.
	all, err := todos.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreate_UnknownUser(t *testing.T) {
	svc, todos, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateTodo{UserID: "ghost", Title: "Buy milk"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	all, err := todos.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreate_TrimsTitle(t *testing.T) {
	svc, _, users := newService(t)
	ctx := context.Background()
	u := mustUser(t, users, "a@example.com", "Alice")

	todo, err := svc.Create(ctx, CreateTodo{UserID: u.ID, Title: "  Buy milk  "})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", todo.Title)
	assert.Equal(t, dom.StatusPending, todo.Status)
	assert.Equal(t, u.ID, todo.UserID)
}

func TestComplete_Idempotent(t *testing.T) {
	svc, _, users := newService(t)
	ctx := context.Background()
	u := mustUser(t, users, "a@example.com", "Alice")

	todo, err := svc.Create(ctx, CreateTodo{UserID: u.ID, Title: "Buy milk"})
	require.NoError(t, err)

	first, err := svc.Complete(ctx, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, dom.StatusDone, first.Status)
	assert.True(t, first.UpdatedAt.After(todo.UpdatedAt))

	second, err := svc.Complete(ctx, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, dom.StatusDone, second.Status)
	assert.True(t, second.UpdatedAt.Equal(first.UpdatedAt), "second completion bumped UpdatedAt")
}

func TestComplete_NotFound(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Complete(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrTodoNotFound)
}

func TestProcessReminders_Idempotent(t *testing.T) {
	svc, _, users := newService(t)
	ctx := context.Background()
	u := mustUser(t, users, "a@example.com", "Alice")
	now := time.Now().UTC()

	past := now.Add(-time.Second)
	future := now.Add(time.Hour)

	due, err := svc.Create(ctx, CreateTodo{UserID: u.ID, Title: "due", RemindAt: &past})
	require.NoError(t, err)
	notDue, err := svc.Create(ctx, CreateTodo{UserID: u.ID, Title: "not due", RemindAt: &future})
	require.NoError(t, err)

	n, err := svc.ProcessReminders(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := svc.GetByID(ctx, due.ID)
	require.NoError(t, err)
	assert.Equal(t, dom.StatusReminderDue, got.Status)

	untouched, err := svc.GetByID(ctx, notDue.ID)
	require.NoError(t, err)
	assert.Equal(t, dom.StatusPending, untouched.Status)

	// Second pass over the same data set performs no further transitions.
	n, err = svc.ProcessReminders(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)

	after, err := svc.GetByID(ctx, due.ID)
	require.NoError(t, err)
	assert.Equal(t, dom.StatusReminderDue, after.Status)
	assert.True(t, after.UpdatedAt.Equal(got.UpdatedAt))
}

func TestProcessReminders_SkipsDone(t *testing.T) {
	svc, _, users := newService(t)
	ctx := context.Background()
	u := mustUser(t, users, "a@example.com", "Alice")
	now := time.Now().UTC()
	past := now.Add(-time.Minute)

	todo, err := svc.Create(ctx, CreateTodo{UserID: u.ID, Title: "done early", RemindAt: &past})
	require.NoError(t, err)
	_, err = svc.Complete(ctx, todo.ID)
	require.NoError(t, err)

	n, err := svc.ProcessReminders(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := svc.GetByID(ctx, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, dom.StatusDone, got.Status)
}

// completeBetween delegates to the wrapped store but runs a callback after
// every due scan, simulating a write that lands between the scan and the
// reminder pass's status update.
type completeBetween struct {
	repo.TodoRepo
	afterScan func()
}

func (r *completeBetween) DueReminders(ctx context.Context, now time.Time) ([]dom.Todo, error) {
	due, err := r.TodoRepo.DueReminders(ctx, now)
	if r.afterScan != nil {
		r.afterScan()
	}
	return due, err
}

func TestProcessReminders_DoesNotUndoConcurrentCompletion(t *testing.T) {
	store := &completeBetween{TodoRepo: repo.NewMemoryTodoRepo()}
	users := repo.NewMemoryUserRepo()
	svc := NewTodoService(store, users, nil)
	ctx := context.Background()
	u := mustUser(t, users, "a@example.com", "Alice")
	now := time.Now().UTC()
	past := now.Add(-time.Second)

	todo, err := svc.Create(ctx, CreateTodo{UserID: u.ID, Title: "Buy milk", RemindAt: &past})
	require.NoError(t, err)

	store.afterScan = func() {
		_, err := svc.Complete(ctx, todo.ID)
		require.NoError(t, err)
	}

	n, err := svc.ProcessReminders(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n, "a record completed mid-pass must not count as promoted")

	got, err := svc.GetByID(ctx, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, dom.StatusDone, got.Status, "DONE must never move back to REMINDER_DUE")
}

func TestUpdate(t *testing.T) {
	svc, _, users := newService(t)
	ctx := context.Background()
	u := mustUser(t, users, "a@example.com", "Alice")
	remind := time.Now().UTC().Add(time.Hour)

	todo, err := svc.Create(ctx, CreateTodo{UserID: u.ID, Title: "Buy milk", RemindAt: &remind})
	require.NoError(t, err)

	empty := "   "
	_, err = svc.Update(ctx, todo.ID, UpdateTodo{Title: &empty})
	assert.ErrorIs(t, err, ErrEmptyTitle)

	title := "  Buy oat milk "
	updated, err := svc.Update(ctx, todo.ID, UpdateTodo{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", updated.Title)
	assert.NotNil(t, updated.RemindAt)

	// Explicitly clearing the reminder.
	cleared, err := svc.Update(ctx, todo.ID, UpdateTodo{RemindAtSet: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.RemindAt)

	_, err = svc.Update(ctx, "no-such-id", UpdateTodo{Title: &title})
	assert.ErrorIs(t, err, ErrTodoNotFound)
}

func TestDelete_HidesFromListings(t *testing.T) {
	svc, _, users := newService(t)
	ctx := context.Background()
	u := mustUser(t, users, "a@example.com", "Alice")

	keep, err := svc.Create(ctx, CreateTodo{UserID: u.ID, Title: "keep"})
	require.NoError(t, err)
	drop, err := svc.Create(ctx, CreateTodo{UserID: u.ID, Title: "drop"})
	require.NoError(t, err)

	found, err := svc.Delete(ctx, drop.ID)
	require.NoError(t, err)
	assert.True(t, found)

	byUser, err := svc.ListByUser(ctx, u.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, keep.ID, byUser[0].ID)

	all, err := svc.ListAll(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, keep.ID, all[0].ID)

	// Direct id lookup still resolves the deleted record.
	got, err := svc.GetByID(ctx, drop.ID)
	require.NoError(t, err)
	assert.True(t, got.Deleted())

	found, err = svc.Delete(ctx, "no-such-id")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestShare(t *testing.T) {
	svc, _, users := newService(t)
	ctx := context.Background()
	owner := mustUser(t, users, "a@example.com", "Alice")
	target := mustUser(t, users, "b@example.com", "Bob")
	remind := time.Now().UTC().Add(time.Hour)

	src, err := svc.Create(ctx, CreateTodo{
		UserID:      owner.ID,
		Title:       "Buy milk",
		Description: "2 liters",
		RemindAt:    &remind,
	})
	require.NoError(t, err)
	_, err = svc.Complete(ctx, src.ID)
	require.NoError(t, err)

	// Self-share is a conflict and creates nothing.
	_, err = svc.Share(ctx, src.ID, owner.ID)
	assert.ErrorIs(t, err, ErrSelfShare)
	ownerList, err := svc.ListByUser(ctx, owner.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, ownerList, 1)

	_, err = svc.Share(ctx, src.ID, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Share(ctx, "no-such-id", target.ID)
	assert.ErrorIs(t, err, ErrTodoNotFound)

	copied, err := svc.Share(ctx, src.ID, target.ID)
	require.NoError(t, err)
	assert.NotEqual(t, src.ID, copied.ID)
	assert.Equal(t, target.ID, copied.UserID)
	assert.Equal(t, src.Title, copied.Title)
	assert.Equal(t, src.Description, copied.Description)
	require.NotNil(t, copied.RemindAt)
	assert.True(t, copied.RemindAt.Equal(remind))
	// The copy starts PENDING no matter the source status.
	assert.Equal(t, dom.StatusPending, copied.Status)

	// The source record is untouched.
	after, err := svc.GetByID(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, dom.StatusDone, after.Status)
	assert.Equal(t, owner.ID, after.UserID)
}

func TestListAll_Pagination(t *testing.T) {
	svc, _, users := newService(t)
	ctx := context.Background()
	a := mustUser(t, users, "a@example.com", "Alice")
	b := mustUser(t, users, "b@example.com", "Bob")

	var ids []string
	for i, owner := range []string{a.ID, b.ID, a.ID, b.ID, a.ID} {
		todo, err := svc.Create(ctx, CreateTodo{UserID: owner, Title: "todo " + string(rune('0'+i))})
		require.NoError(t, err)
		ids = append(ids, todo.ID)
	}

	window, err := svc.ListAll(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, ids[1], window[0].ID)
	assert.Equal(t, ids[2], window[1].ID)

	empty, err := svc.ListAll(ctx, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

// TestLifecycleScenario walks the full create -> remind -> complete -> share
// sequence end to end.
func TestLifecycleScenario(t *testing.T) {
	svc, _, users := newService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	u1 := mustUser(t, users, "u1@example.com", "User One")
	past := now.Add(-time.Second)

	t1, err := svc.Create(ctx, CreateTodo{UserID: u1.ID, Title: "Buy milk", RemindAt: &past})
	require.NoError(t, err)
	assert.Equal(t, dom.StatusPending, t1.Status)

	n, err := svc.ProcessReminders(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	t1After, err := svc.GetByID(ctx, t1.ID)
	require.NoError(t, err)
	assert.Equal(t, dom.StatusReminderDue, t1After.Status)

	done, err := svc.Complete(ctx, t1.ID)
	require.NoError(t, err)
	assert.Equal(t, dom.StatusDone, done.Status)

	again, err := svc.Complete(ctx, t1.ID)
	require.NoError(t, err)
	assert.Equal(t, dom.StatusDone, again.Status)

	_, err = svc.Share(ctx, t1.ID, u1.ID)
	assert.ErrorIs(t, err, ErrSelfShare)

	u2 := mustUser(t, users, "u2@example.com", "User Two")
	t2, err := svc.Share(ctx, t1.ID, u2.ID)
	require.NoError(t, err)
	assert.Equal(t, u2.ID, t2.UserID)
	assert.Equal(t, dom.StatusPending, t2.Status)
	assert.Equal(t, "Buy milk", t2.Title)

	t1Final, err := svc.GetByID(ctx, t1.ID)
	require.NoError(t, err)
	assert.Equal(t, dom.StatusDone, t1Final.Status)
	assert.Equal(t, u1.ID, t1Final.UserID)
}
