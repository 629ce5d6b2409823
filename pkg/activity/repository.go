package activity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrActivityNotFound = errors.New("activity not found")

type Repository interface {
	Create(ctx context.Context, a Activity) (Activity, error)
	FindByID(ctx context.Context, id string) (Activity, error)
	ListForProject(ctx context.Context, projectID string) ([]Activity, error)
	Update(ctx context.Context, a Activity) (bool, error)
	SoftDelete(ctx context.Context, id string, now time.Time) (bool, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const activityColumns = `id, project_id, name, code, type, description, status, display_order, created_at, updated_at`

func (r *RepositoryImpl) Create(ctx context.Context, a Activity) (Activity, error) {
	query := `INSERT INTO activities (` + activityColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return Activity{}, err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		a.ID,
		a.ProjectID,
		a.Name,
		nullable(a.Code),
		a.Type,
		nullable(a.Description),
		string(a.Status),
		a.DisplayOrder,
		a.CreatedAt.Format(time.RFC3339),
		a.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Activity{}, err
	}
	return a, nil
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id string) (Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = ? AND deleted_at IS NULL`
	row := r.db.QueryRowContext(ctx, query, id)
	a, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return Activity{}, ErrActivityNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not scan activity: %w", err)
		log.Error(err)
		return Activity{}, err
	}
	return a, nil
}

func (r *RepositoryImpl) ListForProject(ctx context.Context, projectID string) ([]Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities
		WHERE project_id = ? AND deleted_at IS NULL
		ORDER BY display_order, name`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		err := fmt.Errorf("could not query activities: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			err := fmt.Errorf("could not scan activity: %w", err)
			log.Error(err)
			return nil, err
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return activities, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, a Activity) (bool, error) {
	query := `UPDATE activities SET
			name = ?,
			code = ?,
			type = ?,
			description = ?,
			status = ?,
			display_order = ?,
			updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query,
		a.Name,
		nullable(a.Code),
		a.Type,
		nullable(a.Description),
		string(a.Status),
		a.DisplayOrder,
		a.UpdatedAt.Format(time.RFC3339),
		a.ID,
	)
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

func (r *RepositoryImpl) SoftDelete(ctx context.Context, id string, now time.Time) (bool, error) {
	query := `UPDATE activities SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, now.Format(time.RFC3339), now.Format(time.RFC3339), id)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (Activity, error) {
	var a Activity
	var code, description sql.NullString
	var displayOrder sql.NullInt64
	var status, createdAt, updatedAt string

	err := row.Scan(
		&a.ID,
		&a.ProjectID,
		&a.Name,
		&code,
		&a.Type,
		&description,
		&status,
		&displayOrder,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return Activity{}, err
	}
	a.Code = code.String
	a.Description = description.String
	a.DisplayOrder = int(displayOrder.Int64)
	a.Status = Status(status)
	if a.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return Activity{}, fmt.Errorf("could not parse created_at: %w", err)
	}
	if a.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return Activity{}, fmt.Errorf("could not parse updated_at: %w", err)
	}
	return a, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
