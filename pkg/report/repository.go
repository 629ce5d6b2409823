package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/apontei/apontei/pkg/timesheet"
)

type Repository interface {
	RowsForUser(ctx context.Context, userID string, from time.Time, to time.Time) ([]Row, error)
	RowsForManager(ctx context.Context, managerID string, from time.Time, to time.Time) ([]Row, error)
	RowsForProject(ctx context.Context, projectID string, from time.Time, to time.Time) ([]Row, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const rowSelect = `SELECT e.user_id, u.full_name, p.code, p.name, a.name,
		e.entry_date, e.quarter_hours, e.status, COALESCE(e.description, '')
	FROM timesheet_entries e
	JOIN users u ON u.id = e.user_id
	JOIN projects p ON p.id = e.project_id
	JOIN activities a ON a.id = e.activity_id
	WHERE e.entry_date >= ? AND e.entry_date <= ?`

const rowOrder = ` ORDER BY e.entry_date, u.full_name, p.code`

func (r *RepositoryImpl) RowsForUser(ctx context.Context, userID string, from time.Time, to time.Time) ([]Row, error) {
	query := rowSelect + ` AND e.user_id = ?` + rowOrder
	return r.queryRows(ctx, query, from.Format(time.DateOnly), to.Format(time.DateOnly), userID)
}

// RowsForManager scopes to the manager's direct reports. An empty
// managerID drops the filter and returns everyone's rows.
func (r *RepositoryImpl) RowsForManager(ctx context.Context, managerID string, from time.Time, to time.Time) ([]Row, error) {
	query := rowSelect
	args := []any{from.Format(time.DateOnly), to.Format(time.DateOnly)}
	if managerID != "" {
		query += ` AND u.manager_id = ?`
		args = append(args, managerID)
	}
	query += rowOrder
	return r.queryRows(ctx, query, args...)
}

func (r *RepositoryImpl) RowsForProject(ctx context.Context, projectID string, from time.Time, to time.Time) ([]Row, error) {
	query := rowSelect + ` AND e.project_id = ?` + rowOrder
	return r.queryRows(ctx, query, from.Format(time.DateOnly), to.Format(time.DateOnly), projectID)
}

func (r *RepositoryImpl) queryRows(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query report rows: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var result []Row
	for rows.Next() {
		var row Row
		var entryDate, status string
		err := rows.Scan(
			&row.UserID,
			&row.FullName,
			&row.ProjectCode,
			&row.ProjectName,
			&row.ActivityName,
			&entryDate,
			&row.Quarters,
			&status,
			&row.Description,
		)
		if err != nil {
			err := fmt.Errorf("could not scan report row: %w", err)
			log.Error(err)
			return nil, err
		}
		row.Status = timesheet.Status(status)
		if row.EntryDate, err = time.Parse(time.DateOnly, entryDate); err != nil {
			return nil, fmt.Errorf("could not parse entry date: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return result, nil
}
