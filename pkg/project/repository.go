package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrProjectNotFound = errors.New("project not found")

type Repository interface {
	Create(ctx context.Context, p Project) (Project, error)
	FindByID(ctx context.Context, id string) (Project, error)
	List(ctx context.Context) ([]Project, error)
	Update(ctx context.Context, p Project) (bool, error)
	SoftDelete(ctx context.Context, id string, now time.Time) (bool, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const projectColumns = `id, name, code, description, manager_id, client, cost_center,
		start_date, end_date, status, budget_hours, created_at, updated_at`

func (r *RepositoryImpl) Create(ctx context.Context, p Project) (Project, error) {
	query := `INSERT INTO projects (` + projectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return Project{}, err
	}
	defer stmt.Close()

	var endDate any
	if p.EndDate != nil {
		endDate = p.EndDate.Format(time.DateOnly)
	}
	_, err = stmt.ExecContext(ctx,
		p.ID,
		p.Name,
		p.Code,
		nullable(p.Description),
		p.ManagerID,
		nullable(p.Client),
		nullable(p.CostCenter),
		p.StartDate.Format(time.DateOnly),
		endDate,
		string(p.Status),
		p.BudgetHours,
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Project{}, err
	}
	return p, nil
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id string) (Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ? AND deleted_at IS NULL`
	row := r.db.QueryRowContext(ctx, query, id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return Project{}, ErrProjectNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not scan project: %w", err)
		log.Error(err)
		return Project{}, err
	}
	return p, nil
}

func (r *RepositoryImpl) List(ctx context.Context) ([]Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE deleted_at IS NULL ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query projects: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			err := fmt.Errorf("could not scan project: %w", err)
			log.Error(err)
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return projects, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, p Project) (bool, error) {
	query := `UPDATE projects SET
			name = ?,
			code = ?,
			description = ?,
			manager_id = ?,
			client = ?,
			cost_center = ?,
			start_date = ?,
			end_date = ?,
			status = ?,
			budget_hours = ?,
			updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`

	var endDate any
	if p.EndDate != nil {
		endDate = p.EndDate.Format(time.DateOnly)
	}
	result, err := r.db.ExecContext(ctx, query,
		p.Name,
		p.Code,
		nullable(p.Description),
		p.ManagerID,
		nullable(p.Client),
		nullable(p.CostCenter),
		p.StartDate.Format(time.DateOnly),
		endDate,
		string(p.Status),
		p.BudgetHours,
		p.UpdatedAt.Format(time.RFC3339),
		p.ID,
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
	query := `UPDATE projects SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`
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

func scanProject(row rowScanner) (Project, error) {
	var p Project
	var description, client, costCenter, endDate sql.NullString
	var budgetHours sql.NullInt64
	var status, startDate, createdAt, updatedAt string

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Code,
		&description,
		&p.ManagerID,
		&client,
		&costCenter,
		&startDate,
		&endDate,
		&status,
		&budgetHours,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return Project{}, err
	}
	p.Description = description.String
	p.Client = client.String
	p.CostCenter = costCenter.String
	p.Status = Status(status)
	p.BudgetHours = int(budgetHours.Int64)
	if p.StartDate, err = time.Parse(time.DateOnly, startDate); err != nil {
		return Project{}, fmt.Errorf("could not parse start date: %w", err)
	}
	if endDate.Valid {
		d, err := time.Parse(time.DateOnly, endDate.String)
		if err != nil {
			return Project{}, fmt.Errorf("could not parse end date: %w", err)
		}
		p.EndDate = &d
	}
	if p.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return Project{}, fmt.Errorf("could not parse created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return Project{}, fmt.Errorf("could not parse updated_at: %w", err)
	}
	return p, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
