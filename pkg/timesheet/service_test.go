package timesheet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apontei/apontei/internal/utils"
	"github.com/apontei/apontei/pkg/audit"
	"github.com/apontei/apontei/pkg/user"
)

var errGateDenied = errors.New("gate denied")

type allowAllGate struct{}

func (allowAllGate) CanLog(context.Context, string, string, string, time.Time) error {
	return nil
}

type denyGate struct{ err error }

func (g denyGate) CanLog(context.Context, string, string, string, time.Time) error {
	return g.err
}

type serviceFixture struct {
	service  *ServiceImpl
	repo     *StubRepo
	users    *user.StubRepo
	recorder *audit.MemoryRecorder
	clock    *utils.MockClock

	collaborator user.User
	teammate     user.User
	manager      user.User
	director     user.User
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	repo := NewStubRepo()
	users := user.NewStubRepo()
	recorder := &audit.MemoryRecorder{}
	clock := &utils.MockClock{FixedNow: time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)}

	f := &serviceFixture{
		repo:     repo,
		users:    users,
		recorder: recorder,
		clock:    clock,
		collaborator: user.User{
			ID: "collab-1", FullName: "Ana Souza", Email: "ana@example.com",
			Role: user.RoleCollaborator, Status: user.StatusActive, ManagerID: "manager-1",
		},
		teammate: user.User{
			ID: "collab-2", FullName: "Bruno Lima", Email: "bruno@example.com",
			Role: user.RoleCollaborator, Status: user.StatusActive, ManagerID: "manager-1",
		},
		manager: user.User{
			ID: "manager-1", FullName: "Carla Mendes", Email: "carla@example.com",
			Role: user.RoleManager, Status: user.StatusActive,
		},
		director: user.User{
			ID: "director-1", FullName: "Davi Rocha", Email: "davi@example.com",
			Role: user.RoleDirector, Status: user.StatusActive,
		},
	}
	for _, u := range []user.User{f.collaborator, f.teammate, f.manager, f.director} {
		_, err := users.Create(context.Background(), u)
		require.NoError(t, err)
	}
	f.service = NewService(repo, allowAllGate{}, users, recorder, clock, time.Sunday)
	return f
}

func (f *serviceFixture) as(u user.User) context.Context {
	return user.WithUser(context.Background(), u)
}

func (f *serviceFixture) seedEntry(id string, userID string, day string, h string, status Status) Entry {
	e := Entry{
		ID:            id,
		UserID:        userID,
		ProjectID:     "proj-1",
		ActivityID:    "act-1",
		EntryDate:     date(day),
		Hours:         hours(h),
		WeekStartDate: WeekStart(date(day), time.Sunday),
		Status:        status,
		CreatedAt:     f.clock.FixedNow,
		UpdatedAt:     f.clock.FixedNow,
	}
	f.repo.Entries[id] = e
	return e
}

func TestCreateEntry(t *testing.T) {
	f := newServiceFixture(t)

	entry, err := f.service.CreateEntry(f.as(f.collaborator), EntryInput{
		ProjectID:   "proj-1",
		ActivityID:  "act-1",
		EntryDate:   date("2025-03-12"),
		Hours:       hours("7.5"),
		Description: "API integration work",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "collab-1", entry.UserID)
	assert.Equal(t, StatusDraft, entry.Status)
	assert.Equal(t, date("2025-03-09"), entry.WeekStartDate)
	assert.Len(t, f.recorder.Events, 1)
	assert.Equal(t, audit.ActionCreate, f.recorder.Events[0].Action)
}

func TestCreateEntryRejectsOffGridHours(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.CreateEntry(f.as(f.collaborator), EntryInput{
		ProjectID: "proj-1", ActivityID: "act-1",
		EntryDate: date("2025-03-12"), Hours: hours("0.2"),
	})
	assert.ErrorIs(t, err, ErrInvalidHours)

	_, err = f.service.CreateEntry(f.as(f.collaborator), EntryInput{
		ProjectID: "proj-1", ActivityID: "act-1",
		EntryDate: date("2025-03-12"), Hours: hours("1.1"),
	})
	assert.ErrorIs(t, err, ErrNotQuarterHour)
}

func TestCreateEntryDayOverflow(t *testing.T) {
	f := newServiceFixture(t)
	f.seedEntry("e-1", "collab-1", "2025-03-12", "10", StatusDraft)

	_, err := f.service.CreateEntry(f.as(f.collaborator), EntryInput{
		ProjectID: "proj-1", ActivityID: "act-1",
		EntryDate: date("2025-03-12"), Hours: hours("20"),
	})

	assert.ErrorIs(t, err, ErrDayOverflow)
	assert.Len(t, f.repo.Entries, 1)
}

func TestCreateEntryExactlyFillsTheDay(t *testing.T) {
	f := newServiceFixture(t)
	f.seedEntry("e-1", "collab-1", "2025-03-12", "10", StatusDraft)

	_, err := f.service.CreateEntry(f.as(f.collaborator), EntryInput{
		ProjectID: "proj-1", ActivityID: "act-1",
		EntryDate: date("2025-03-12"), Hours: hours("14"),
	})

	assert.NoError(t, err)
}

func TestCreateEntryBlockedByGate(t *testing.T) {
	f := newServiceFixture(t)
	f.service = NewService(f.repo, denyGate{err: errGateDenied}, f.users, f.recorder, f.clock, time.Sunday)

	_, err := f.service.CreateEntry(f.as(f.collaborator), EntryInput{
		ProjectID: "proj-1", ActivityID: "act-1",
		EntryDate: date("2025-03-12"), Hours: hours("8"),
	})

	assert.ErrorIs(t, err, errGateDenied)
	assert.Empty(t, f.repo.Entries)
}

func TestUpdateEntry(t *testing.T) {
	f := newServiceFixture(t)
	f.seedEntry("e-1", "collab-1", "2025-03-12", "4", StatusDraft)
	newHours := hours("6")

	updated, err := f.service.UpdateEntry(f.as(f.collaborator), "e-1", EntryUpdate{Hours: &newHours})

	require.NoError(t, err)
	assert.True(t, updated.Hours.Equal(hours("6")))
	assert.Equal(t, StatusDraft, updated.Status)
}

func TestUpdateEntryMovingDateMovesWeek(t *testing.T) {
	f := newServiceFixture(t)
	f.seedEntry("e-1", "collab-1", "2025-03-12", "4", StatusDraft)
	newDate := date("2025-03-17")

	updated, err := f.service.UpdateEntry(f.as(f.collaborator), "e-1", EntryUpdate{EntryDate: &newDate})

	require.NoError(t, err)
	assert.Equal(t, date("2025-03-16"), updated.WeekStartDate)
}

func TestUpdateRejectedEntryFails(t *testing.T) {
	f := newServiceFixture(t)
	e := f.seedEntry("e-1", "collab-1", "2025-03-12", "4", StatusManagerRejected)
	e.RejectionReason = "Hours do not match the sprint log"
	f.repo.Entries["e-1"] = e
	newHours := hours("3")

	// Rejected entries are history; the owner logs fresh drafts instead.
	_, err := f.service.UpdateEntry(f.as(f.collaborator), "e-1", EntryUpdate{Hours: &newHours})

	assert.ErrorIs(t, err, ErrEntryNotEditable)
	assert.Equal(t, StatusManagerRejected, f.repo.Entries["e-1"].Status)
	assert.Equal(t, "Hours do not match the sprint log", f.repo.Entries["e-1"].RejectionReason)
}

func TestUpdateSubmittedEntryFails(t *testing.T) {
	f := newServiceFixture(t)
	f.seedEntry("e-1", "collab-1", "2025-03-12", "4", StatusSubmitted)
	newHours := hours("6")

	_, err := f.service.UpdateEntry(f.as(f.collaborator), "e-1", EntryUpdate{Hours: &newHours})

	assert.ErrorIs(t, err, ErrEntryNotEditable)
}

func TestUpdateEntryOfAnotherUserForbidden(t *testing.T) {
	f := newServiceFixture(t)
	f.seedEntry("e-1", "collab-2", "2025-03-12", "4", StatusDraft)
	newHours := hours("6")

	_, err := f.service.UpdateEntry(f.as(f.collaborator), "e-1", EntryUpdate{Hours: &newHours})

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateEntryWithoutChangesFails(t *testing.T) {
	f := newServiceFixture(t)
	f.seedEntry("e-1", "collab-1", "2025-03-12", "4", StatusDraft)

	_, err := f.service.UpdateEntry(f.as(f.collaborator), "e-1", EntryUpdate{})

	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)
}

func TestDeleteEntry(t *testing.T) {
	f := newServiceFixture(t)
	f.seedEntry("e-1", "collab-1", "2025-03-12", "4", StatusDraft)

	err := f.service.DeleteEntry(f.as(f.collaborator), "e-1")

	require.NoError(t, err)
	assert.Empty(t, f.repo.Entries)
}

func TestDeleteApprovedEntryFails(t *testing.T) {
	f := newServiceFixture(t)
	f.seedEntry("e-1", "collab-1", "2025-03-12", "4", StatusManagerApproved)

	err := f.service.DeleteEntry(f.as(f.collaborator), "e-1")

	assert.ErrorIs(t, err, ErrEntryNotEditable)
	assert.Len(t, f.repo.Entries, 1)
}

func TestGetWeekFullWeekScenario(t *testing.T) {
	f := newServiceFixture(t)
	for _, day := range []string{"2025-03-10", "2025-03-11", "2025-03-12", "2025-03-13", "2025-03-14"} {
		f.seedEntry("e-"+day, "collab-1", day, "8", StatusDraft)
	}

	week, err := f.service.GetWeek(f.as(f.collaborator), "collab-1", date("2025-03-12"))

	require.NoError(t, err)
	assert.True(t, week.TotalHours.Equal(hours("40")))
	assert.Equal(t, StatusDraft, week.Status)
	assert.Len(t, week.Entries, 5)
	assert.Equal(t, date("2025-03-09"), week.WeekStartDate)
}

func TestGetWeekOfTeammateForbidden(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.GetWeek(f.as(f.collaborator), "collab-2", date("2025-03-12"))

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetWeekManagerSeesReport(t *testing.T) {
	f := newServiceFixture(t)
	f.seedEntry("e-1", "collab-1", "2025-03-12", "8", StatusSubmitted)

	week, err := f.service.GetWeek(f.as(f.manager), "collab-1", date("2025-03-12"))

	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, week.Status)
}

func TestGetWeekDirectorSeesAnyone(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.GetWeek(f.as(f.director), "collab-1", date("2025-03-12"))

	assert.NoError(t, err)
}
