package template

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apontei/apontei/internal/utils"
	"github.com/apontei/apontei/pkg/audit"
	"github.com/apontei/apontei/pkg/timesheet"
	"github.com/apontei/apontei/pkg/user"
)

type allowAllGate struct{}

func (allowAllGate) CanLog(context.Context, string, string, string, time.Time) error {
	return nil
}

func date(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

type fixture struct {
	service *ServiceImpl
	repo    *StubRepo
	entries *timesheet.StubRepo
	ctx     context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := NewStubRepo()
	entries := timesheet.NewStubRepo()
	users := user.NewStubRepo()
	clock := &utils.MockClock{FixedNow: time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)}
	collaborator := user.User{ID: "collab-1", Role: user.RoleCollaborator, Status: user.StatusActive}
	_, err := users.Create(context.Background(), collaborator)
	require.NoError(t, err)

	sheets := timesheet.NewService(entries, allowAllGate{}, users, audit.NopRecorder{}, clock, time.Sunday)
	return &fixture{
		service: NewService(repo, entries, sheets, clock, time.Sunday),
		repo:    repo,
		entries: entries,
		ctx:     user.WithUser(context.Background(), collaborator),
	}
}

func (f *fixture) seedEntry(id string, day string, h string) {
	d := date(day)
	f.entries.Entries[id] = timesheet.Entry{
		ID:            id,
		UserID:        "collab-1",
		ProjectID:     "proj-1",
		ActivityID:    "act-1",
		EntryDate:     d,
		Hours:         decimal.RequireFromString(h),
		WeekStartDate: timesheet.WeekStart(d, time.Sunday),
		Status:        timesheet.StatusDraft,
	}
}

func TestSnapshotCapturesWeekLayout(t *testing.T) {
	f := newFixture(t)
	f.seedEntry("e-1", "2025-03-10", "8")
	f.seedEntry("e-2", "2025-03-11", "6")

	tpl, err := f.service.Snapshot(f.ctx, "Standard week", date("2025-03-12"), false)

	require.NoError(t, err)
	require.Len(t, tpl.Items, 2)
	// 2025-03-10 is one day after the Sunday week start.
	assert.Equal(t, 1, tpl.Items[0].DayOffset)
	assert.Equal(t, 2, tpl.Items[1].DayOffset)
	assert.True(t, tpl.Items[0].Hours.Equal(decimal.RequireFromString("8")))
}

func TestSnapshotEmptyWeekFails(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Snapshot(f.ctx, "Standard week", date("2025-03-12"), false)

	assert.ErrorIs(t, err, ErrEmptySource)
}

func TestSnapshotAsDefaultReplacesPreviousDefault(t *testing.T) {
	f := newFixture(t)
	f.repo.Templates["old"] = Template{ID: "old", UserID: "collab-1", Name: "Old", IsDefault: true}
	f.seedEntry("e-1", "2025-03-10", "8")

	tpl, err := f.service.Snapshot(f.ctx, "New default", date("2025-03-12"), true)

	require.NoError(t, err)
	assert.True(t, tpl.IsDefault)
	assert.False(t, f.repo.Templates["old"].IsDefault)
}

func TestApplyStampsEntriesOntoTargetWeek(t *testing.T) {
	f := newFixture(t)
	f.repo.Templates["t-1"] = Template{
		ID: "t-1", UserID: "collab-1", Name: "Standard week",
		Items: []Item{
			{ProjectID: "proj-1", ActivityID: "act-1", DayOffset: 1, Hours: decimal.RequireFromString("8")},
			{ProjectID: "proj-1", ActivityID: "act-1", DayOffset: 2, Hours: decimal.RequireFromString("6")},
		},
	}

	result, err := f.service.Apply(f.ctx, "t-1", date("2025-03-19"))

	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Skipped)
	for _, e := range result.Entries {
		assert.Equal(t, date("2025-03-16"), e.WeekStartDate)
		assert.Equal(t, timesheet.StatusDraft, e.Status)
	}
}

func TestApplySkipsItemsThatFailValidation(t *testing.T) {
	f := newFixture(t)
	// 20h already logged on the target Monday leaves no room for 8h more.
	f.seedEntry("e-1", "2025-03-17", "20")
	f.repo.Templates["t-1"] = Template{
		ID: "t-1", UserID: "collab-1", Name: "Standard week",
		Items: []Item{
			{ProjectID: "proj-1", ActivityID: "act-1", DayOffset: 1, Hours: decimal.RequireFromString("8")},
			{ProjectID: "proj-1", ActivityID: "act-1", DayOffset: 2, Hours: decimal.RequireFromString("6")},
		},
	}

	result, err := f.service.Apply(f.ctx, "t-1", date("2025-03-19"))

	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
}

func TestApplyTemplateOfAnotherUserForbidden(t *testing.T) {
	f := newFixture(t)
	f.repo.Templates["t-1"] = Template{
		ID: "t-1", UserID: "collab-2", Name: "Not yours",
		Items: []Item{{ProjectID: "proj-1", ActivityID: "act-1", Hours: decimal.RequireFromString("8")}},
	}

	_, err := f.service.Apply(f.ctx, "t-1", date("2025-03-19"))

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteTemplate(t *testing.T) {
	f := newFixture(t)
	f.repo.Templates["t-1"] = Template{ID: "t-1", UserID: "collab-1", Name: "Standard week"}

	err := f.service.Delete(f.ctx, "t-1")

	require.NoError(t, err)
	assert.Empty(t, f.repo.Templates)
}

func TestDeleteTemplateOfAnotherUserForbidden(t *testing.T) {
	f := newFixture(t)
	f.repo.Templates["t-1"] = Template{ID: "t-1", UserID: "collab-2", Name: "Not yours"}

	err := f.service.Delete(f.ctx, "t-1")

	assert.ErrorIs(t, err, ErrForbidden)
	assert.Len(t, f.repo.Templates, 1)
}
