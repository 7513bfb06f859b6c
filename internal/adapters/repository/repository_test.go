package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrangemylist/planner/internal/adapters/repository"
	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/infrastructure/database/databasetest"
	"github.com/arrangemylist/planner/internal/ports"
)

func createUser(t *testing.T, users ports.UserRepository, name string) *entities.User {
	t.Helper()
	u := &entities.User{Username: name, Email: name + "@example.com", PasswordHash: "hash", DisplayName: name}
	require.NoError(t, users.Create(context.Background(), u))
	require.NotZero(t, u.ID)
	return u
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := databasetest.NewSQLite(t)
	users := repository.NewUserRepository(db.DB)

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	byName, err := users.GetByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	byEmail, err := users.GetByLogin(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, byEmail.ID)

	_, err = users.GetByLogin(ctx, "carol")
	assert.ErrorIs(t, err, entities.ErrNotFound)

	exists, err := users.ExistsByUsernameOrEmail(ctx, "someone", "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	err = users.Create(ctx, &entities.User{Username: "alice", Email: "other@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, entities.ErrConflict)

	taken, err := users.EmailTakenByOther(ctx, "bob@example.com", alice.ID)
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = users.EmailTakenByOther(ctx, "alice@example.com", alice.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	img := "https://img.example.com/a.png"
	alice.DisplayName = "Alice A."
	alice.ProfileImage = &img
	require.NoError(t, users.Update(ctx, alice))

	got, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", got.DisplayName)
	require.NotNil(t, got.ProfileImage)
	assert.Equal(t, img, *got.ProfileImage)

	require.NoError(t, users.UpdatePassword(ctx, alice.ID, "new-hash"))
	got, err = users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)

	assert.ErrorIs(t, users.UpdatePassword(ctx, 9999, "x"), entities.ErrNotFound)
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	db := databasetest.NewSQLite(t)
	users := repository.NewUserRepository(db.DB)
	sessions := repository.NewSessionRepository(db.DB)
	user := createUser(t, users, "alice")

	now := time.Now().UTC()
	live := &entities.Session{UserID: user.ID, ExpiresAt: now.Add(time.Hour)}
	stale := &entities.Session{UserID: user.ID, ExpiresAt: now.Add(-time.Minute)}
	require.NoError(t, sessions.Create(ctx, live))
	require.NoError(t, sessions.Create(ctx, stale))
	assert.NotEqual(t, uuid.Nil, live.ID)

	got, err := sessions.GetByID(ctx, live.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)
	assert.WithinDuration(t, live.ExpiresAt, got.ExpiresAt, time.Millisecond)

	removed, err := sessions.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = sessions.GetByID(ctx, stale.ID)
	assert.ErrorIs(t, err, entities.ErrUnauthorized)

	require.NoError(t, sessions.Delete(ctx, live.ID))
	_, err = sessions.GetByID(ctx, live.ID)
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
}

func TestTaskRepository(t *testing.T) {
	ctx := context.Background()
	db := databasetest.NewSQLite(t)
	users := repository.NewUserRepository(db.DB)
	tasks := repository.NewTaskRepository(db.DB)
	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	top, err := tasks.MaxPosition(ctx, alice.ID, entities.TaskStatusTodo)
	require.NoError(t, err)
	assert.Equal(t, 0, top)

	due := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	first := &entities.Task{UserID: alice.ID, Title: "first", Status: entities.TaskStatusTodo, Priority: entities.PriorityHigh, Position: 1, DueDate: &due}
	second := &entities.Task{UserID: alice.ID, Title: "second", Status: entities.TaskStatusTodo, Priority: entities.PriorityLow, Position: 2}
	doing := &entities.Task{UserID: alice.ID, Title: "doing", Status: entities.TaskStatusInProgress, Priority: entities.PriorityMedium, Position: 1}
	other := &entities.Task{UserID: bob.ID, Title: "bob's", Status: entities.TaskStatusTodo, Priority: entities.PriorityMedium, Position: 1}
	for _, task := range []*entities.Task{first, second, doing, other} {
		require.NoError(t, tasks.Create(ctx, task))
	}

	top, err = tasks.MaxPosition(ctx, alice.ID, entities.TaskStatusTodo)
	require.NoError(t, err)
	assert.Equal(t, 2, top)

	list, err := tasks.List(ctx, alice.ID)
	require.NoError(t, err)
	groups := entities.GroupTasks(list)
	require.Len(t, groups.Todo, 2)
	assert.Equal(t, "first", groups.Todo[0].Title)
	assert.Equal(t, "second", groups.Todo[1].Title)
	require.Len(t, groups.InProgress, 1)
	assert.Empty(t, groups.Done)
	require.NotNil(t, groups.Todo[0].DueDate)
	assert.True(t, due.Equal(*groups.Todo[0].DueDate))

	// Other users' rows behave as absent.
	_, err = tasks.GetByID(ctx, alice.ID, other.ID)
	assert.ErrorIs(t, err, entities.ErrNotFound)
	assert.ErrorIs(t, tasks.Delete(ctx, alice.ID, other.ID), entities.ErrNotFound)
	assert.ErrorIs(t, tasks.Reorder(ctx, alice.ID, other.ID, entities.TaskStatusDone, 1), entities.ErrNotFound)

	require.NoError(t, tasks.Reorder(ctx, alice.ID, first.ID, entities.TaskStatusDone, 1))
	got, err := tasks.GetByID(ctx, alice.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusDone, got.Status)
	assert.Equal(t, 1, got.Position)

	got.Title = "renamed"
	got.DueDate = nil
	require.NoError(t, tasks.Update(ctx, got))
	got, err = tasks.GetByID(ctx, alice.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Nil(t, got.DueDate)

	require.NoError(t, tasks.Delete(ctx, alice.ID, second.ID))
	list, err = tasks.List(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestNoteRepository(t *testing.T) {
	ctx := context.Background()
	db := databasetest.NewSQLite(t)
	users := repository.NewUserRepository(db.DB)
	notes := repository.NewNoteRepository(db.DB)
	alice := createUser(t, users, "alice")

	older := &entities.Note{UserID: alice.ID, Title: "older", Color: entities.NoteColorDefault}
	require.NoError(t, notes.Create(ctx, older))
	time.Sleep(5 * time.Millisecond)
	newer := &entities.Note{UserID: alice.ID, Title: "newer", Color: entities.NoteColorBlue}
	require.NoError(t, notes.Create(ctx, newer))

	list, err := notes.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].Title)

	pinned, err := notes.TogglePin(ctx, alice.ID, older.ID)
	require.NoError(t, err)
	assert.True(t, pinned)

	list, err = notes.List(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "older", list[0].Title)
	assert.True(t, list[0].IsPinned)

	pinned, err = notes.TogglePin(ctx, alice.ID, older.ID)
	require.NoError(t, err)
	assert.False(t, pinned)

	_, err = notes.TogglePin(ctx, alice.ID, 4242)
	assert.ErrorIs(t, err, entities.ErrNotFound)

	newer.Content = "body"
	require.NoError(t, notes.Update(ctx, newer))
	got, err := notes.GetByID(ctx, alice.ID, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, "body", got.Content)
	assert.Equal(t, entities.NoteColorBlue, got.Color)

	require.NoError(t, notes.Delete(ctx, alice.ID, newer.ID))
	assert.ErrorIs(t, notes.Delete(ctx, alice.ID, newer.ID), entities.ErrNotFound)
}

func TestEventRepositoryFilters(t *testing.T) {
	ctx := context.Background()
	db := databasetest.NewSQLite(t)
	users := repository.NewUserRepository(db.DB)
	events := repository.NewEventRepository(db.DB)
	alice := createUser(t, users, "alice")

	at := func(month time.Month, day, hour int) time.Time {
		return time.Date(2024, month, day, hour, 0, 0, 0, time.UTC)
	}
	spanning := &entities.CalendarEvent{UserID: alice.ID, Title: "spanning", StartTime: at(2, 28, 9), EndTime: at(3, 2, 17), Color: entities.DefaultEventColor}
	inside := &entities.CalendarEvent{UserID: alice.ID, Title: "inside", StartTime: at(3, 10, 9), EndTime: at(3, 10, 10), Color: "#123456"}
	april := &entities.CalendarEvent{UserID: alice.ID, Title: "april", StartTime: at(4, 1, 9), EndTime: at(4, 1, 10), Color: entities.DefaultEventColor}
	for _, e := range []*entities.CalendarEvent{april, inside, spanning} {
		require.NoError(t, events.Create(ctx, e))
	}

	march := ports.MonthRange(2024, time.March, time.UTC)

	overlapping, err := events.List(ctx, alice.ID, ports.EventFilter{Overlapping: &march})
	require.NoError(t, err)
	require.Len(t, overlapping, 2)
	assert.Equal(t, "spanning", overlapping[0].Title)
	assert.Equal(t, "inside", overlapping[1].Title)

	within, err := events.List(ctx, alice.ID, ports.EventFilter{Within: &march})
	require.NoError(t, err)
	require.Len(t, within, 1)
	assert.Equal(t, "inside", within[0].Title)

	all, err := events.List(ctx, alice.ID, ports.EventFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	inside.AllDay = true
	inside.EndTime = at(3, 11, 0)
	require.NoError(t, events.Update(ctx, inside))
	got, err := events.GetByID(ctx, alice.ID, inside.ID)
	require.NoError(t, err)
	assert.True(t, got.AllDay)
	assert.True(t, at(3, 11, 0).Equal(got.EndTime))

	require.NoError(t, events.Delete(ctx, alice.ID, april.ID))
	_, err = events.GetByID(ctx, alice.ID, april.ID)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}
