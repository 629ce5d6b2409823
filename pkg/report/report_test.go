package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apontei/apontei/pkg/timesheet"
	"github.com/apontei/apontei/pkg/user"
)

type stubRepo struct {
	rows         []Row
	managerScope string
}

func (s *stubRepo) RowsForUser(_ context.Context, userID string, _ time.Time, _ time.Time) ([]Row, error) {
	var result []Row
	for _, r := range s.rows {
		if r.UserID == userID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (s *stubRepo) RowsForManager(_ context.Context, managerID string, _ time.Time, _ time.Time) ([]Row, error) {
	s.managerScope = managerID
	return s.rows, nil
}

func (s *stubRepo) RowsForProject(context.Context, string, time.Time, time.Time) ([]Row, error) {
	return s.rows, nil
}

func date(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

func sampleRows() []Row {
	return []Row{
		{
			UserID: "collab-1", FullName: "Ana Souza",
			ProjectCode: "PRJ-01", ProjectName: "Billing",
			ActivityName: "Development", EntryDate: date("2025-03-10"),
			Quarters: 32, Status: timesheet.StatusManagerApproved,
		},
		{
			UserID: "collab-1", FullName: "Ana Souza",
			ProjectCode: "PRJ-02", ProjectName: "Onboarding",
			ActivityName: "Review", EntryDate: date("2025-03-11"),
			Quarters: 6, Status: timesheet.StatusSubmitted,
		},
		{
			UserID: "collab-2", FullName: "Bruno Lima",
			ProjectCode: "PRJ-01", ProjectName: "Billing",
			ActivityName: "Development", EntryDate: date("2025-03-10"),
			Quarters: 24, Status: timesheet.StatusManagerApproved,
		},
	}
}

func newService(rows []Row) (*ServiceImpl, *user.StubRepo) {
	users := user.NewStubRepo()
	return NewService(&stubRepo{rows: rows}, users), users
}

func asUser(u user.User) context.Context {
	return user.WithUser(context.Background(), u)
}

func TestBuildComputesTotals(t *testing.T) {
	r := Build(date("2025-03-10"), date("2025-03-14"), sampleRows())

	assert.True(t, r.TotalHours.Equal(decimal.RequireFromString("15.5")))
	assert.True(t, r.ByUser["Ana Souza"].Equal(decimal.RequireFromString("9.5")))
	assert.True(t, r.ByUser["Bruno Lima"].Equal(decimal.RequireFromString("6")))
	assert.True(t, r.ByProject["PRJ-01"].Equal(decimal.RequireFromString("14")))
	assert.True(t, r.ByProject["PRJ-02"].Equal(decimal.RequireFromString("1.5")))
}

func TestIndividualReportForSelf(t *testing.T) {
	service, _ := newService(sampleRows())
	collaborator := user.User{ID: "collab-1", Role: user.RoleCollaborator, Status: user.StatusActive}

	r, err := service.Individual(asUser(collaborator), "collab-1", date("2025-03-10"), date("2025-03-14"))

	require.NoError(t, err)
	assert.Len(t, r.Rows, 2)
	assert.True(t, r.TotalHours.Equal(decimal.RequireFromString("9.5")))
}

func TestIndividualReportOfTeammateForbidden(t *testing.T) {
	service, users := newService(sampleRows())
	_, err := users.Create(context.Background(), user.User{
		ID: "collab-2", Role: user.RoleCollaborator, ManagerID: "manager-9",
	})
	require.NoError(t, err)
	collaborator := user.User{ID: "collab-1", Role: user.RoleCollaborator}

	_, err = service.Individual(asUser(collaborator), "collab-2", date("2025-03-10"), date("2025-03-14"))

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestIndividualReportManagerSeesReport(t *testing.T) {
	service, users := newService(sampleRows())
	_, err := users.Create(context.Background(), user.User{
		ID: "collab-1", Role: user.RoleCollaborator, ManagerID: "manager-1",
	})
	require.NoError(t, err)
	manager := user.User{ID: "manager-1", Role: user.RoleManager}

	r, err := service.Individual(asUser(manager), "collab-1", date("2025-03-10"), date("2025-03-14"))

	require.NoError(t, err)
	assert.Len(t, r.Rows, 2)
}

func TestTeamReportRequiresApprover(t *testing.T) {
	service, _ := newService(sampleRows())
	collaborator := user.User{ID: "collab-1", Role: user.RoleCollaborator}

	_, err := service.Team(asUser(collaborator), date("2025-03-10"), date("2025-03-14"))

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestTeamReportManagerScopedToOwnTeam(t *testing.T) {
	repo := &stubRepo{rows: sampleRows()}
	service := NewService(repo, user.NewStubRepo())
	manager := user.User{ID: "manager-1", Role: user.RoleManager}

	_, err := service.Team(asUser(manager), date("2025-03-10"), date("2025-03-14"))

	require.NoError(t, err)
	assert.Equal(t, "manager-1", repo.managerScope)
}

func TestTeamReportDirectorSeesAllTeams(t *testing.T) {
	repo := &stubRepo{rows: sampleRows()}
	service := NewService(repo, user.NewStubRepo())
	director := user.User{ID: "director-1", Role: user.RoleDirector}

	r, err := service.Team(asUser(director), date("2025-03-10"), date("2025-03-14"))

	require.NoError(t, err)
	assert.Empty(t, repo.managerScope)
	assert.Len(t, r.Rows, 3)
}

func TestInvalidRange(t *testing.T) {
	service, _ := newService(nil)
	manager := user.User{ID: "manager-1", Role: user.RoleManager}

	_, err := service.Team(asUser(manager), date("2025-03-14"), date("2025-03-10"))

	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestRenderCSV(t *testing.T) {
	r := Build(date("2025-03-10"), date("2025-03-14"), sampleRows())

	data, err := RenderCSV(r)

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Date,Collaborator,Project,Activity,Hours,Status,Description", lines[0])
	assert.Contains(t, lines[1], "2025-03-10")
	assert.Contains(t, lines[1], "Ana Souza")
	assert.Contains(t, lines[1], "PRJ-01 - Billing")
	assert.Contains(t, lines[1], "8")
	assert.Equal(t, "Total,,,,15.5,,", lines[4])
}

func TestCSVAndJSONAgreeOnTotals(t *testing.T) {
	r := Build(date("2025-03-10"), date("2025-03-14"), sampleRows())

	data, err := RenderCSV(r)
	require.NoError(t, err)
	dto := toDTO(r)

	assert.Contains(t, string(data), "Total,,,,"+dto.TotalHours.String())
}
