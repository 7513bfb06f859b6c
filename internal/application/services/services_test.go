package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/arrangemylist/planner/internal/adapters/repository"
	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/infrastructure/config"
	"github.com/arrangemylist/planner/internal/infrastructure/database/databasetest"
	"github.com/arrangemylist/planner/internal/infrastructure/logger"
	"github.com/arrangemylist/planner/internal/ports"
)

type fixture struct {
	auth     *AuthService
	profile  *ProfileService
	tasks    *TaskService
	notes    *NoteService
	calendar *CalendarService
	janitor  *SessionJanitor
	sessions ports.SessionRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := databasetest.NewSQLite(t)
	log := logger.NewNop()

	users := repository.NewUserRepository(db.DB)
	sessions := repository.NewSessionRepository(db.DB)
	auth := NewAuthService(users, sessions, config.SessionConfig{
		CookieName: "arrange_my_list_session",
		Secret:     "test-secret",
		TTL:        24 * time.Hour,
		Issuer:     "test",
	}, bcrypt.MinCost, log)

	return &fixture{
		auth:     auth,
		profile:  NewProfileService(users, auth, log),
		tasks:    NewTaskService(repository.NewTaskRepository(db.DB), log),
		notes:    NewNoteService(repository.NewNoteRepository(db.DB), log),
		calendar: NewCalendarService(repository.NewEventRepository(db.DB), time.UTC, log),
		janitor:  NewSessionJanitor(sessions, time.Minute, log),
		sessions: sessions,
	}
}

func (f *fixture) register(t *testing.T, username string) (*entities.User, *IssuedSession) {
	t.Helper()
	user, issued, err := f.auth.Register(context.Background(), ports.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return user, issued
}

func TestAuthRegisterLoginLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, issued := f.register(t, "alice")
	assert.Equal(t, "alice", user.DisplayName)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEmpty(t, issued.Token)

	me, err := f.auth.Authenticate(ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)

	_, _, err = f.auth.Register(ctx, ports.RegisterRequest{Username: "alice", Email: "new@example.com", Password: "x"})
	assert.ErrorIs(t, err, entities.ErrUserExists)

	_, _, err = f.auth.Register(ctx, ports.RegisterRequest{Username: "bob"})
	assert.ErrorIs(t, err, entities.ErrValidation)

	_, byEmail, err := f.auth.Login(ctx, ports.LoginRequest{Username: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEqual(t, issued.SessionID, byEmail.SessionID)

	_, _, err = f.auth.Login(ctx, ports.LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, entities.ErrInvalidCredentials)
	_, _, err = f.auth.Login(ctx, ports.LoginRequest{Username: "nobody", Password: "password123"})
	assert.ErrorIs(t, err, entities.ErrInvalidCredentials)

	require.NoError(t, f.auth.Logout(ctx, issued.Token))
	_, err = f.auth.Authenticate(ctx, issued.Token)
	assert.ErrorIs(t, err, entities.ErrUnauthorized)

	// The other session is untouched and a second logout is harmless.
	_, err = f.auth.Authenticate(ctx, byEmail.Token)
	assert.NoError(t, err)
	assert.NoError(t, f.auth.Logout(ctx, issued.Token))
	assert.NoError(t, f.auth.Logout(ctx, "garbage"))
}

func TestAuthenticateRejectsTamperedAndExpired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, issued := f.register(t, "alice")

	_, err := f.auth.Authenticate(ctx, "")
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
	_, err = f.auth.Authenticate(ctx, issued.Token+"x")
	assert.ErrorIs(t, err, entities.ErrUnauthorized)

	f.auth.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	_, err = f.auth.Authenticate(ctx, issued.Token)
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
}

func TestSessionJanitorSweep(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, issued := f.register(t, "alice")

	assert.Equal(t, int64(0), f.janitor.Sweep(ctx))

	f.janitor.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	assert.Equal(t, int64(1), f.janitor.Sweep(ctx))

	_, err := f.sessions.GetByID(ctx, issued.SessionID)
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
}

func TestSessionJanitorRunStopsWithContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		f.janitor.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestProfileUpdateAndPassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice, _ := f.register(t, "alice")
	f.register(t, "bob")

	name := "Alice Liddell"
	img := "https://img.example.com/alice.png"
	updated, err := f.profile.Update(ctx, alice.ID, ports.UpdateProfileRequest{
		DisplayName:  &name,
		ProfileImage: ports.Some(img),
	})
	require.NoError(t, err)
	assert.Equal(t, name, updated.DisplayName)
	require.NotNil(t, updated.ProfileImage)
	assert.Equal(t, img, *updated.ProfileImage)
	assert.Equal(t, "alice@example.com", updated.Email)

	cleared, err := f.profile.Update(ctx, alice.ID, ports.UpdateProfileRequest{ProfileImage: ports.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, cleared.ProfileImage)

	taken := "bob@example.com"
	_, err = f.profile.Update(ctx, alice.ID, ports.UpdateProfileRequest{Email: &taken})
	assert.ErrorIs(t, err, entities.ErrEmailInUse)

	err = f.profile.ChangePassword(ctx, alice.ID, ports.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "next-pass"})
	assert.ErrorIs(t, err, entities.ErrWrongPassword)

	require.NoError(t, f.profile.ChangePassword(ctx, alice.ID, ports.ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "next-pass"}))
	_, _, err = f.auth.Login(ctx, ports.LoginRequest{Username: "alice", Password: "next-pass"})
	assert.NoError(t, err)
}

func TestTaskServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice, _ := f.register(t, "alice")
	bob, _ := f.register(t, "bob")

	_, err := f.tasks.Create(ctx, alice.ID, ports.CreateTaskRequest{Title: "   "})
	assert.ErrorIs(t, err, entities.ErrTitleRequired)

	a, err := f.tasks.Create(ctx, alice.ID, ports.CreateTaskRequest{Title: "A"})
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusTodo, a.Status)
	assert.Equal(t, entities.PriorityMedium, a.Priority)
	assert.Equal(t, 1, a.Position)

	b, err := f.tasks.Create(ctx, alice.ID, ports.CreateTaskRequest{Title: "B", Priority: entities.PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, 2, b.Position)

	_, err = f.tasks.Create(ctx, alice.ID, ports.CreateTaskRequest{Title: "C", Status: "blocked"})
	assert.ErrorIs(t, err, entities.ErrValidation)

	_, err = f.tasks.Update(ctx, alice.ID, a.ID, ports.UpdateTaskRequest{})
	assert.ErrorIs(t, err, entities.ErrNothingToUpdate)

	desc := "details"
	edited, err := f.tasks.Update(ctx, alice.ID, a.ID, ports.UpdateTaskRequest{Description: ports.Some(desc)})
	require.NoError(t, err)
	require.NotNil(t, edited.Description)
	assert.Equal(t, desc, *edited.Description)
	assert.Equal(t, "A", edited.Title)

	require.NoError(t, f.tasks.Reorder(ctx, alice.ID, a.ID, ports.ReorderTaskRequest{Status: entities.TaskStatusDone, Position: 1}))
	assert.ErrorIs(t, f.tasks.Reorder(ctx, bob.ID, a.ID, ports.ReorderTaskRequest{Status: entities.TaskStatusDone, Position: 1}), entities.ErrNotFound)

	groups, err := f.tasks.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, groups.Todo, 1)
	assert.Equal(t, "B", groups.Todo[0].Title)
	require.Len(t, groups.Done, 1)
	assert.Equal(t, a.ID, groups.Done[0].ID)
	assert.Empty(t, groups.InProgress)

	bobGroups, err := f.tasks.List(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobGroups.All())

	require.NoError(t, f.tasks.Delete(ctx, alice.ID, b.ID))
	assert.ErrorIs(t, f.tasks.Delete(ctx, alice.ID, b.ID), entities.ErrNotFound)
}

func TestNoteServiceDefaultsAndPin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice, _ := f.register(t, "alice")

	note, err := f.notes.Create(ctx, alice.ID, ports.CreateNoteRequest{Title: "Groceries"})
	require.NoError(t, err)
	assert.Equal(t, entities.NoteColorDefault, note.Color)
	assert.Equal(t, "", note.Content)
	assert.False(t, note.IsPinned)

	pinned, err := f.notes.TogglePin(ctx, alice.ID, note.ID)
	require.NoError(t, err)
	assert.True(t, pinned)

	color := entities.NoteColorPink
	updated, err := f.notes.Update(ctx, alice.ID, note.ID, ports.UpdateNoteRequest{Color: &color})
	require.NoError(t, err)
	assert.Equal(t, color, updated.Color)
	assert.True(t, updated.IsPinned)

	_, err = f.notes.Update(ctx, alice.ID, note.ID, ports.UpdateNoteRequest{})
	assert.ErrorIs(t, err, entities.ErrNothingToUpdate)
}

func TestCalendarServiceValidationAndQueries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice, _ := f.register(t, "alice")

	at := func(month time.Month, day, hour int) *ports.FlexTime {
		return ports.At(time.Date(2024, month, day, hour, 0, 0, 0, time.UTC))
	}

	_, err := f.calendar.Create(ctx, alice.ID, ports.CreateEventRequest{Title: "x", StartTime: at(3, 1, 9)})
	assert.ErrorIs(t, err, entities.ErrEventFieldsRequired)

	_, err = f.calendar.Create(ctx, alice.ID, ports.CreateEventRequest{Title: "x", StartTime: at(3, 1, 10), EndTime: at(3, 1, 9)})
	assert.ErrorIs(t, err, entities.ErrEventTimesInverted)

	trip, err := f.calendar.Create(ctx, alice.ID, ports.CreateEventRequest{Title: "Trip", StartTime: at(2, 28, 9), EndTime: at(3, 2, 17)})
	require.NoError(t, err)
	assert.Equal(t, entities.DefaultEventColor, trip.Color)
	assert.False(t, trip.AllDay)

	_, err = f.calendar.Create(ctx, alice.ID, ports.CreateEventRequest{Title: "Dentist", StartTime: at(3, 12, 9), EndTime: at(3, 12, 10), Color: "#ff0000"})
	require.NoError(t, err)

	march, err := f.calendar.List(ctx, alice.ID, ports.CalendarQuery{Month: 3, Year: 2024})
	require.NoError(t, err)
	assert.Len(t, march, 2)

	start, end := at(3, 1, 0).Time, at(3, 31, 23).Time
	within, err := f.calendar.List(ctx, alice.ID, ports.CalendarQuery{Start: &start, End: &end})
	require.NoError(t, err)
	require.Len(t, within, 1)
	assert.Equal(t, "Dentist", within[0].Title)

	_, err = f.calendar.List(ctx, alice.ID, ports.CalendarQuery{Month: 13, Year: 2024})
	assert.ErrorIs(t, err, entities.ErrValidation)

	_, err = f.calendar.Update(ctx, alice.ID, trip.ID, ports.UpdateEventRequest{EndTime: at(2, 1, 0)})
	assert.ErrorIs(t, err, entities.ErrEventTimesInverted)

	allDay := true
	updated, err := f.calendar.Update(ctx, alice.ID, trip.ID, ports.UpdateEventRequest{AllDay: &allDay})
	require.NoError(t, err)
	assert.True(t, updated.AllDay)

	require.NoError(t, f.calendar.Delete(ctx, alice.ID, trip.ID))
	_, err = f.calendar.Get(ctx, alice.ID, trip.ID)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}
