package department

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrDepartmentNotFound = errors.New("department not found")

type Repository interface {
	Create(ctx context.Context, d Department) (Department, error)
	FindByID(ctx context.Context, id string) (Department, error)
	List(ctx context.Context) ([]Department, error)
	Update(ctx context.Context, d Department) (bool, error)
	SoftDelete(ctx context.Context, id string, now time.Time) (bool, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const departmentColumns = `id, name, code, description, manager_id, created_at, updated_at`

func (r *RepositoryImpl) Create(ctx context.Context, d Department) (Department, error) {
	query := `INSERT INTO departments (` + departmentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return Department{}, err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		d.ID,
		d.Name,
		nullable(d.Code),
		nullable(d.Description),
		nullable(d.ManagerID),
		d.CreatedAt.Format(time.RFC3339),
		d.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Department{}, err
	}
	return d, nil
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id string) (Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments WHERE id = ? AND deleted_at IS NULL`
	row := r.db.QueryRowContext(ctx, query, id)
	d, err := scanDepartment(row)
	if err == sql.ErrNoRows {
		return Department{}, ErrDepartmentNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not scan department: %w", err)
		log.Error(err)
		return Department{}, err
	}
	return d, nil
}

func (r *RepositoryImpl) List(ctx context.Context) ([]Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments WHERE deleted_at IS NULL ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query departments: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var departments []Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			err := fmt.Errorf("could not scan department: %w", err)
			log.Error(err)
			return nil, err
		}
		departments = append(departments, d)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return departments, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, d Department) (bool, error) {
	query := `UPDATE departments SET
			name = ?,
			code = ?,
			description = ?,
			manager_id = ?,
			updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query,
		d.Name,
		nullable(d.Code),
		nullable(d.Description),
		nullable(d.ManagerID),
		d.UpdatedAt.Format(time.RFC3339),
		d.ID,
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
	query := `UPDATE departments SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`
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

func scanDepartment(row rowScanner) (Department, error) {
	var d Department
	var code, description, managerID sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&d.ID,
		&d.Name,
		&code,
		&description,
		&managerID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return Department{}, err
	}
	d.Code = code.String
	d.Description = description.String
	d.ManagerID = managerID.String
	if d.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return Department{}, fmt.Errorf("could not parse created_at: %w", err)
	}
	if d.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return Department{}, fmt.Errorf("could not parse updated_at: %w", err)
	}
	return d, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
