package assignment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrAssignmentNotFound = errors.New("assignment not found")

type Repository interface {
	Create(ctx context.Context, a Assignment) (Assignment, error)
	FindByID(ctx context.Context, id string) (Assignment, error)
	// FindCovering returns an assignment of the user to the project whose
	// window includes the given date.
	FindCovering(ctx context.Context, userID string, projectID string, date time.Time) (Assignment, error)
	ListForUser(ctx context.Context, userID string) ([]Assignment, error)
	ListForProject(ctx context.Context, projectID string) ([]Assignment, error)
	End(ctx context.Context, id string, endDate time.Time, now time.Time) (bool, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const assignmentColumns = `id, user_id, project_id, start_date, end_date, created_at, updated_at`

func (r *RepositoryImpl) Create(ctx context.Context, a Assignment) (Assignment, error) {
	query := `INSERT INTO user_project_assignments (` + assignmentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return Assignment{}, err
	}
	defer stmt.Close()

	var endDate any
	if a.EndDate != nil {
		endDate = a.EndDate.Format(time.DateOnly)
	}
	_, err = stmt.ExecContext(ctx,
		a.ID,
		a.UserID,
		a.ProjectID,
		a.StartDate.Format(time.DateOnly),
		endDate,
		a.CreatedAt.Format(time.RFC3339),
		a.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Assignment{}, err
	}
	return a, nil
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id string) (Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM user_project_assignments WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return Assignment{}, ErrAssignmentNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not scan assignment: %w", err)
		log.Error(err)
		return Assignment{}, err
	}
	return a, nil
}

func (r *RepositoryImpl) FindCovering(ctx context.Context, userID string, projectID string, date time.Time) (Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM user_project_assignments
		WHERE user_id = ? AND project_id = ?
			AND start_date <= ?
			AND (end_date IS NULL OR end_date >= ?)
		LIMIT 1`
	day := date.Format(time.DateOnly)
	row := r.db.QueryRowContext(ctx, query, userID, projectID, day, day)
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return Assignment{}, ErrAssignmentNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not scan assignment: %w", err)
		log.Error(err)
		return Assignment{}, err
	}
	return a, nil
}

func (r *RepositoryImpl) ListForUser(ctx context.Context, userID string) ([]Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM user_project_assignments
		WHERE user_id = ? ORDER BY start_date DESC`
	return r.queryAssignments(ctx, query, userID)
}

func (r *RepositoryImpl) ListForProject(ctx context.Context, projectID string) ([]Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM user_project_assignments
		WHERE project_id = ? ORDER BY start_date DESC`
	return r.queryAssignments(ctx, query, projectID)
}

func (r *RepositoryImpl) End(ctx context.Context, id string, endDate time.Time, now time.Time) (bool, error) {
	query := `UPDATE user_project_assignments SET end_date = ?, updated_at = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, endDate.Format(time.DateOnly), now.Format(time.RFC3339), id)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *RepositoryImpl) queryAssignments(ctx context.Context, query string, args ...any) ([]Assignment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query assignments: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var assignments []Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			err := fmt.Errorf("could not scan assignment: %w", err)
			log.Error(err)
			return nil, err
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return assignments, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssignment(row rowScanner) (Assignment, error) {
	var a Assignment
	var startDate, createdAt, updatedAt string
	var endDate sql.NullString

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.ProjectID,
		&startDate,
		&endDate,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return Assignment{}, err
	}
	if a.StartDate, err = time.Parse(time.DateOnly, startDate); err != nil {
		return Assignment{}, fmt.Errorf("could not parse start date: %w", err)
	}
	if endDate.Valid {
		d, err := time.Parse(time.DateOnly, endDate.String)
		if err != nil {
			return Assignment{}, fmt.Errorf("could not parse end date: %w", err)
		}
		a.EndDate = &d
	}
	if a.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return Assignment{}, fmt.Errorf("could not parse created_at: %w", err)
	}
	if a.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return Assignment{}, fmt.Errorf("could not parse updated_at: %w", err)
	}
	return a, nil
}
