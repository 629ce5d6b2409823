package user

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

type Repo interface {
	Create(ctx context.Context, u User) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	Update(ctx context.Context, u User) (User, error)
	SoftDelete(ctx context.Context, id string, now time.Time) (bool, error)
	List(ctx context.Context, managerID string) ([]User, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

const userColumns = `id, full_name, email, cpf, matricula, password_hash, role, status,
		department_id, manager_id, timezone, weekly_hours, admission_date, termination_date,
		created_at, updated_at`

func (r *RepoImpl) Create(ctx context.Context, u User) (User, error) {
	query := `INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return User{}, err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		u.ID,
		u.FullName,
		u.Email,
		u.CPF,
		u.Matricula,
		u.PasswordHash,
		string(u.Role),
		string(u.Status),
		nullString(u.DepartmentID),
		nullString(u.ManagerID),
		u.Timezone,
		u.WeeklyHours,
		nullDate(u.AdmissionDate),
		nullDate(u.TerminationDate),
		u.CreatedAt.Format(time.RFC3339),
		u.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return User{}, err
	}
	return u, nil
}

func (r *RepoImpl) FindByID(ctx context.Context, id string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ? AND deleted_at IS NULL`
	return r.findOne(ctx, query, id)
}

func (r *RepoImpl) FindByEmail(ctx context.Context, email string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? AND deleted_at IS NULL`
	return r.findOne(ctx, query, email)
}

func (r *RepoImpl) findOne(ctx context.Context, query string, arg any) (User, error) {
	row := r.db.QueryRowContext(ctx, query, arg)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return User{}, ErrNoUser
	}
	if err != nil {
		err := fmt.Errorf("could not scan user: %w", err)
		log.Error(err)
		return User{}, err
	}
	return u, nil
}

func (r *RepoImpl) Update(ctx context.Context, u User) (User, error) {
	query := `UPDATE users SET
			full_name = ?,
			email = ?,
			cpf = ?,
			matricula = ?,
			password_hash = ?,
			role = ?,
			status = ?,
			department_id = ?,
			manager_id = ?,
			timezone = ?,
			weekly_hours = ?,
			admission_date = ?,
			termination_date = ?,
			updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return User{}, err
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx,
		u.FullName,
		u.Email,
		u.CPF,
		u.Matricula,
		u.PasswordHash,
		string(u.Role),
		string(u.Status),
		nullString(u.DepartmentID),
		nullString(u.ManagerID),
		u.Timezone,
		u.WeeklyHours,
		nullDate(u.AdmissionDate),
		nullDate(u.TerminationDate),
		u.UpdatedAt.Format(time.RFC3339),
		u.ID,
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return User{}, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return User{}, err
	}
	if rowsAffected == 0 {
		return User{}, ErrNoUser
	}
	return u, nil
}

func (r *RepoImpl) SoftDelete(ctx context.Context, id string, now time.Time) (bool, error) {
	query := `UPDATE users SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`
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

// List returns all active users, optionally restricted to one manager's team.
func (r *RepoImpl) List(ctx context.Context, managerID string) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE deleted_at IS NULL`
	args := []any{}
	if managerID != "" {
		query += ` AND manager_id = ?`
		args = append(args, managerID)
	}
	query += ` ORDER BY full_name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query users: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			err := fmt.Errorf("could not scan user: %w", err)
			log.Error(err)
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	var role, status string
	var departmentID, managerID, admissionDate, terminationDate sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&u.CPF,
		&u.Matricula,
		&u.PasswordHash,
		&role,
		&status,
		&departmentID,
		&managerID,
		&u.Timezone,
		&u.WeeklyHours,
		&admissionDate,
		&terminationDate,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return User{}, err
	}
	u.Role = Role(role)
	u.Status = Status(status)
	u.DepartmentID = departmentID.String
	u.ManagerID = managerID.String
	if admissionDate.Valid {
		d, err := time.Parse(time.DateOnly, admissionDate.String)
		if err != nil {
			return User{}, fmt.Errorf("could not parse admission date: %w", err)
		}
		u.AdmissionDate = &d
	}
	if terminationDate.Valid {
		d, err := time.Parse(time.DateOnly, terminationDate.String)
		if err != nil {
			return User{}, fmt.Errorf("could not parse termination date: %w", err)
		}
		u.TerminationDate = &d
	}
	if u.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return User{}, fmt.Errorf("could not parse created_at: %w", err)
	}
	if u.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return User{}, fmt.Errorf("could not parse updated_at: %w", err)
	}
	return u, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.DateOnly)
}
