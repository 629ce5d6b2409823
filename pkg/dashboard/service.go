package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/apontei/apontei/internal/utils"
	"github.com/apontei/apontei/pkg/timesheet"
	"github.com/apontei/apontei/pkg/user"
)

var ErrForbidden = errors.New("user is not allowed to view this dashboard")

type Service interface {
	Personal(ctx context.Context) (PersonalStats, error)
	Team(ctx context.Context) (TeamStats, error)
	Executive(ctx context.Context) (ExecutiveStats, error)
}

type ServiceImpl struct {
	repo     Repository
	entries  timesheet.Repository
	clock    utils.Clock
	firstDay time.Weekday
}

func NewService(repo Repository, entries timesheet.Repository, clock utils.Clock, firstDay time.Weekday) *ServiceImpl {
	return &ServiceImpl{repo: repo, entries: entries, clock: clock, firstDay: firstDay}
}

func (s *ServiceImpl) Personal(ctx context.Context) (PersonalStats, error) {
	currentID, err := user.CurrentID(ctx)
	if err != nil {
		return PersonalStats{}, err
	}
	now := s.clock.Now().UTC()
	weekStart := timesheet.WeekStart(now, s.firstDay)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	weekEntries, err := s.entries.ListForWeek(ctx, currentID, weekStart)
	if err != nil {
		return PersonalStats{}, err
	}
	monthEntries, err := s.entries.ListForUserRange(ctx, currentID, monthStart, monthEnd)
	if err != nil {
		return PersonalStats{}, err
	}

	week := timesheet.BuildWeek(currentID, weekStart, weekEntries)
	stats := PersonalStats{
		WeekStartDate: weekStart.Format(time.DateOnly),
		WeekHours:     week.TotalHours,
		WeekStatus:    week.Status,
		MonthHours:    timesheet.TotalHours(monthEntries),
	}
	for _, e := range monthEntries {
		switch e.Status {
		case timesheet.StatusDraft:
			stats.DraftEntries++
		case timesheet.StatusManagerRejected:
			stats.RejectedEntries++
		}
	}
	return stats, nil
}

func (s *ServiceImpl) Team(ctx context.Context) (TeamStats, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return TeamStats{}, err
	}
	if !current.CanApprove() {
		return TeamStats{}, ErrForbidden
	}
	weekStart := timesheet.WeekStart(s.clock.Now().UTC(), s.firstDay)

	members, err := s.repo.TeamWeek(ctx, current.ID, weekStart)
	if err != nil {
		return TeamStats{}, err
	}
	pending, err := s.entries.PendingApprovals(ctx, current.ID)
	if err != nil {
		return TeamStats{}, err
	}
	return TeamStats{
		WeekStartDate: weekStart.Format(time.DateOnly),
		Members:       members,
		PendingWeeks:  len(pending),
	}, nil
}

func (s *ServiceImpl) Executive(ctx context.Context) (ExecutiveStats, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return ExecutiveStats{}, err
	}
	if !current.IsDirector() {
		return ExecutiveStats{}, ErrForbidden
	}
	now := s.clock.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	totals, err := s.repo.ProjectTotals(ctx, monthStart, monthEnd)
	if err != nil {
		return ExecutiveStats{}, err
	}
	departments, err := s.repo.DepartmentTotals(ctx, monthStart, monthEnd)
	if err != nil {
		return ExecutiveStats{}, err
	}
	counts, err := s.repo.StatusCounts(ctx, monthStart, monthEnd)
	if err != nil {
		return ExecutiveStats{}, err
	}
	active, err := s.repo.ActiveCollaborators(ctx)
	if err != nil {
		return ExecutiveStats{}, err
	}

	stats := ExecutiveStats{
		MonthStart:          monthStart.Format(time.DateOnly),
		ActiveCollaborators: active,
		ProjectTotals:       totals,
		DepartmentTotals:    departments,
		StatusCounts:        counts,
	}
	for _, t := range totals {
		stats.TotalHours = stats.TotalHours.Add(t.Hours())
	}
	return stats, nil
}
