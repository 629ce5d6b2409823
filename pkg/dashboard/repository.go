package dashboard

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/apontei/apontei/pkg/timesheet"
)

type Repository interface {
	ProjectTotals(ctx context.Context, from time.Time, to time.Time) ([]ProjectTotal, error)
	DepartmentTotals(ctx context.Context, from time.Time, to time.Time) ([]DepartmentTotal, error)
	StatusCounts(ctx context.Context, from time.Time, to time.Time) (map[timesheet.Status]int, error)
	ActiveCollaborators(ctx context.Context) (int, error)
	TeamWeek(ctx context.Context, managerID string, weekStart time.Time) ([]TeamMemberStats, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) ProjectTotals(ctx context.Context, from time.Time, to time.Time) ([]ProjectTotal, error) {
	query := `SELECT p.code, p.name, SUM(e.quarter_hours)
		FROM timesheet_entries e
		JOIN projects p ON p.id = e.project_id
		WHERE e.entry_date >= ? AND e.entry_date <= ?
		GROUP BY p.code, p.name
		ORDER BY SUM(e.quarter_hours) DESC`
	rows, err := r.db.QueryContext(ctx, query, from.Format(time.DateOnly), to.Format(time.DateOnly))
	if err != nil {
		err := fmt.Errorf("could not query project totals: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var totals []ProjectTotal
	for rows.Next() {
		var t ProjectTotal
		if err := rows.Scan(&t.ProjectCode, &t.ProjectName, &t.Quarters); err != nil {
			err := fmt.Errorf("could not scan project total: %w", err)
			log.Error(err)
			return nil, err
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return totals, nil
}

func (r *RepositoryImpl) DepartmentTotals(ctx context.Context, from time.Time, to time.Time) ([]DepartmentTotal, error) {
	query := `SELECT COALESCE(d.name, 'Sem departamento'), SUM(e.quarter_hours)
		FROM timesheet_entries e
		JOIN users u ON u.id = e.user_id
		LEFT JOIN departments d ON d.id = u.department_id
		WHERE e.entry_date >= ? AND e.entry_date <= ?
		GROUP BY d.name
		ORDER BY SUM(e.quarter_hours) DESC`
	rows, err := r.db.QueryContext(ctx, query, from.Format(time.DateOnly), to.Format(time.DateOnly))
	if err != nil {
		err := fmt.Errorf("could not query department totals: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var totals []DepartmentTotal
	for rows.Next() {
		var t DepartmentTotal
		if err := rows.Scan(&t.DepartmentName, &t.Quarters); err != nil {
			err := fmt.Errorf("could not scan department total: %w", err)
			log.Error(err)
			return nil, err
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return totals, nil
}

func (r *RepositoryImpl) StatusCounts(ctx context.Context, from time.Time, to time.Time) (map[timesheet.Status]int, error) {
	query := `SELECT status, COUNT(*)
		FROM timesheet_entries
		WHERE entry_date >= ? AND entry_date <= ?
		GROUP BY status`
	rows, err := r.db.QueryContext(ctx, query, from.Format(time.DateOnly), to.Format(time.DateOnly))
	if err != nil {
		err := fmt.Errorf("could not query status counts: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	counts := make(map[timesheet.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			err := fmt.Errorf("could not scan status count: %w", err)
			log.Error(err)
			return nil, err
		}
		counts[timesheet.Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return counts, nil
}

func (r *RepositoryImpl) ActiveCollaborators(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE status = 'ATIVO' AND deleted_at IS NULL`
	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		err := fmt.Errorf("could not count active users: %w", err)
		log.Error(err)
		return 0, err
	}
	return count, nil
}

func (r *RepositoryImpl) TeamWeek(ctx context.Context, managerID string, weekStart time.Time) ([]TeamMemberStats, error) {
	// Includes reports with no entries this week so the manager sees who
	// has not started yet.
	query := `SELECT u.id, u.full_name,
			COALESCE(SUM(e.quarter_hours), 0),
			COALESCE(GROUP_CONCAT(DISTINCT e.status), '')
		FROM users u
		LEFT JOIN timesheet_entries e ON e.user_id = u.id AND e.week_start_date = ?
		WHERE u.manager_id = ? AND u.deleted_at IS NULL
		GROUP BY u.id, u.full_name
		ORDER BY u.full_name`
	rows, err := r.db.QueryContext(ctx, query, weekStart.Format(time.DateOnly), managerID)
	if err != nil {
		err := fmt.Errorf("could not query team week: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var members []TeamMemberStats
	for rows.Next() {
		var m TeamMemberStats
		var quarters int
		var statusList string
		if err := rows.Scan(&m.UserID, &m.FullName, &quarters, &statusList); err != nil {
			err := fmt.Errorf("could not scan team member: %w", err)
			log.Error(err)
			return nil, err
		}
		m.WeekHours = timesheet.HoursFromQuarters(quarters)
		m.WeekStatus = deriveFromList(statusList)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return members, nil
}

func deriveFromList(statusList string) timesheet.Status {
	if statusList == "" {
		return timesheet.StatusDraft
	}
	parts := strings.Split(statusList, ",")
	statuses := make([]timesheet.Status, 0, len(parts))
	for _, p := range parts {
		statuses = append(statuses, timesheet.Status(p))
	}
	return timesheet.DeriveWeekStatus(statuses)
}
