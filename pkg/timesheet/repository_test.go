package timesheet

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apontei/apontei/internal/test_utils"
)

func seedDatabase(t *testing.T, db *sql.DB) {
	t.Helper()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC).Format(time.RFC3339)

	statements := []struct {
		query string
		args  []any
	}{
		{
			`INSERT INTO users (id, full_name, email, cpf, matricula, password_hash, role, status, manager_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			[]any{"manager-1", "Carla Mendes", "carla@example.com", "52998224725", "M-001", "x", "GESTOR", "ATIVO", nil, now, now},
		},
		{
			`INSERT INTO users (id, full_name, email, cpf, matricula, password_hash, role, status, manager_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			[]any{"collab-1", "Ana Souza", "ana@example.com", "15350946056", "C-001", "x", "COLABORADOR", "ATIVO", "manager-1", now, now},
		},
		{
			`INSERT INTO projects (id, name, code, manager_id, start_date, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			[]any{"proj-1", "Billing", "PRJ-01", "manager-1", "2025-01-01", "ATIVO", now, now},
		},
		{
			`INSERT INTO activities (id, project_id, name, type, status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			[]any{"act-1", "proj-1", "Development", "DESENVOLVIMENTO", "ATIVA", now, now},
		},
	}
	for _, s := range statements {
		_, err := db.Exec(s.query, s.args...)
		require.NoError(t, err)
	}
}

func newTestRepository(t *testing.T) (*RepositoryImpl, *sql.DB) {
	t.Helper()
	db := test_utils.NewDB(t)
	seedDatabase(t, db)
	return NewRepository(db), db
}

func testEntry(id string, day string, h string, status Status) Entry {
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return Entry{
		ID:            id,
		UserID:        "collab-1",
		ProjectID:     "proj-1",
		ActivityID:    "act-1",
		EntryDate:     date(day),
		Hours:         hours(h),
		Description:   "work",
		WeekStartDate: WeekStart(date(day), time.Sunday),
		Status:        status,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func TestRepositoryCreateAndFind(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, testEntry("e-1", "2025-03-10", "7.75", StatusDraft))
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, "e-1")
	require.NoError(t, err)
	assert.True(t, found.Hours.Equal(hours("7.75")))
	assert.Equal(t, StatusDraft, found.Status)
	assert.Equal(t, date("2025-03-09"), found.WeekStartDate)
	assert.Equal(t, "Billing", found.ProjectName)
	assert.Equal(t, "PRJ-01", found.ProjectCode)
	assert.Equal(t, "Development", found.ActivityName)
}

func TestRepositoryFindMissing(t *testing.T) {
	repo, _ := newTestRepository(t)

	_, err := repo.FindByID(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestRepositorySumDayQuarters(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	_, err := repo.Create(ctx, testEntry("e-1", "2025-03-10", "8", StatusDraft))
	require.NoError(t, err)
	_, err = repo.Create(ctx, testEntry("e-2", "2025-03-10", "1.5", StatusDraft))
	require.NoError(t, err)
	_, err = repo.Create(ctx, testEntry("e-3", "2025-03-11", "4", StatusDraft))
	require.NoError(t, err)

	total, err := repo.SumDayQuarters(ctx, "collab-1", date("2025-03-10"), "")
	require.NoError(t, err)
	assert.Equal(t, 38, total)

	excluding, err := repo.SumDayQuarters(ctx, "collab-1", date("2025-03-10"), "e-1")
	require.NoError(t, err)
	assert.Equal(t, 6, excluding)
}

func TestRepositorySubmitApproveCycle(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)
	_, err := repo.Create(ctx, testEntry("e-1", "2025-03-10", "8", StatusDraft))
	require.NoError(t, err)
	_, err = repo.Create(ctx, testEntry("e-2", "2025-03-11", "8", StatusDraft))
	require.NoError(t, err)

	submitted, err := repo.SubmitWeek(ctx, "collab-1", date("2025-03-09"), now)
	require.NoError(t, err)
	assert.Equal(t, 2, submitted)

	again, err := repo.SubmitWeek(ctx, "collab-1", date("2025-03-09"), now)
	require.NoError(t, err)
	assert.Equal(t, 0, again)

	approved, err := repo.ApproveWeek(ctx, "collab-1", date("2025-03-09"), "manager-1", now)
	require.NoError(t, err)
	assert.Equal(t, 2, approved)

	e, err := repo.FindByID(ctx, "e-1")
	require.NoError(t, err)
	assert.Equal(t, StatusManagerApproved, e.Status)
	assert.Equal(t, "manager-1", e.ApprovedBy)
	require.NotNil(t, e.SubmittedAt)
}

func TestRepositorySubmitIgnoresRejectedEntries(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)
	_, err := repo.Create(ctx, testEntry("e-1", "2025-03-10", "8", StatusManagerRejected))
	require.NoError(t, err)
	_, err = repo.Create(ctx, testEntry("e-2", "2025-03-11", "8", StatusDraft))
	require.NoError(t, err)

	submitted, err := repo.SubmitWeek(ctx, "collab-1", date("2025-03-09"), now)
	require.NoError(t, err)
	assert.Equal(t, 1, submitted)

	e, err := repo.FindByID(ctx, "e-1")
	require.NoError(t, err)
	assert.Equal(t, StatusManagerRejected, e.Status)
}

func TestRepositoryRejectCoversApprovedEntries(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)
	_, err := repo.Create(ctx, testEntry("e-1", "2025-03-10", "8", StatusSubmitted))
	require.NoError(t, err)
	_, err = repo.Create(ctx, testEntry("e-2", "2025-03-11", "8", StatusSubmitted))
	require.NoError(t, err)

	approved, err := repo.ApproveWeek(ctx, "collab-1", date("2025-03-09"), "manager-1", now)
	require.NoError(t, err)
	require.Equal(t, 2, approved)

	rejected, err := repo.RejectWeek(ctx, "collab-1", date("2025-03-09"), "manager-1", "Hours do not match the sprint log", now)
	require.NoError(t, err)
	assert.Equal(t, 2, rejected)

	e, err := repo.FindByID(ctx, "e-1")
	require.NoError(t, err)
	assert.Equal(t, StatusManagerRejected, e.Status)
	assert.Equal(t, "Hours do not match the sprint log", e.RejectionReason)
}

func TestRepositoryRejectStoresReason(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)
	_, err := repo.Create(ctx, testEntry("e-1", "2025-03-10", "8", StatusSubmitted))
	require.NoError(t, err)

	rejected, err := repo.RejectWeek(ctx, "collab-1", date("2025-03-09"), "manager-1", "Hours do not match the sprint log", now)
	require.NoError(t, err)
	assert.Equal(t, 1, rejected)

	e, err := repo.FindByID(ctx, "e-1")
	require.NoError(t, err)
	assert.Equal(t, StatusManagerRejected, e.Status)
	assert.Equal(t, "Hours do not match the sprint log", e.RejectionReason)
}

func TestRepositoryPendingApprovals(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)
	_, err := repo.Create(ctx, testEntry("e-1", "2025-03-10", "8", StatusDraft))
	require.NoError(t, err)
	_, err = repo.Create(ctx, testEntry("e-2", "2025-03-11", "4.5", StatusDraft))
	require.NoError(t, err)
	_, err = repo.SubmitWeek(ctx, "collab-1", date("2025-03-09"), now)
	require.NoError(t, err)

	pending, err := repo.PendingApprovals(ctx, "manager-1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "collab-1", pending[0].UserID)
	assert.Equal(t, "Ana Souza", pending[0].FullName)
	assert.Equal(t, 2, pending[0].EntriesCount)
	assert.Equal(t, 50, pending[0].TotalQuarters)
	assert.Equal(t, date("2025-03-09"), pending[0].WeekStartDate)

	none, err := repo.PendingApprovals(ctx, "manager-2")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepositoryWithTxRollsBackOnError(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	sentinel := errors.New("boom")

	err := repo.WithTx(ctx, func(tx Repository) error {
		if _, err := tx.Create(ctx, testEntry("e-1", "2025-03-10", "8", StatusDraft)); err != nil {
			return err
		}
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	_, err = repo.FindByID(ctx, "e-1")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestRepositoryListForUserRange(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	_, err := repo.Create(ctx, testEntry("e-1", "2025-03-10", "8", StatusDraft))
	require.NoError(t, err)
	_, err = repo.Create(ctx, testEntry("e-2", "2025-03-20", "8", StatusDraft))
	require.NoError(t, err)

	entries, err := repo.ListForUserRange(ctx, "collab-1", date("2025-03-09"), date("2025-03-15"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "e-1", entries[0].ID)
}
