package template

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrTemplateNotFound = errors.New("template not found")

type Repository interface {
	Create(ctx context.Context, t Template) (Template, error)
	FindByID(ctx context.Context, id string) (Template, error)
	ListForUser(ctx context.Context, userID string) ([]Template, error)
	Delete(ctx context.Context, id string) (bool, error)
	// ClearDefault unsets the default flag on all of the user's templates.
	ClearDefault(ctx context.Context, userID string, now time.Time) error
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const templateColumns = `id, user_id, name, is_default, template_data, created_at, updated_at`

func (r *RepositoryImpl) Create(ctx context.Context, t Template) (Template, error) {
	data, err := json.Marshal(t.Items)
	if err != nil {
		err := fmt.Errorf("could not marshal template items: %w", err)
		log.Error(err)
		return Template{}, err
	}
	query := `INSERT INTO weekly_templates (` + templateColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		t.ID,
		t.UserID,
		t.Name,
		boolToInt(t.IsDefault),
		string(data),
		t.CreatedAt.Format(time.RFC3339),
		t.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Template{}, err
	}
	return t, nil
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id string) (Template, error) {
	query := `SELECT ` + templateColumns + ` FROM weekly_templates WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return Template{}, ErrTemplateNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not scan template: %w", err)
		log.Error(err)
		return Template{}, err
	}
	return t, nil
}

func (r *RepositoryImpl) ListForUser(ctx context.Context, userID string) ([]Template, error) {
	query := `SELECT ` + templateColumns + ` FROM weekly_templates WHERE user_id = ? ORDER BY is_default DESC, name`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		err := fmt.Errorf("could not query templates: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var templates []Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			err := fmt.Errorf("could not scan template: %w", err)
			log.Error(err)
			return nil, err
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return templates, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM weekly_templates WHERE id = ?`, id)
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

func (r *RepositoryImpl) ClearDefault(ctx context.Context, userID string, now time.Time) error {
	query := `UPDATE weekly_templates SET is_default = 0, updated_at = ? WHERE user_id = ? AND is_default = 1`
	if _, err := r.db.ExecContext(ctx, query, now.Format(time.RFC3339), userID); err != nil {
		err := fmt.Errorf("could not clear default template: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (Template, error) {
	var t Template
	var isDefault int
	var data, createdAt, updatedAt string

	err := row.Scan(&t.ID, &t.UserID, &t.Name, &isDefault, &data, &createdAt, &updatedAt)
	if err != nil {
		return Template{}, err
	}
	t.IsDefault = isDefault == 1
	if err := json.Unmarshal([]byte(data), &t.Items); err != nil {
		return Template{}, fmt.Errorf("could not unmarshal template items: %w", err)
	}
	if t.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return Template{}, fmt.Errorf("could not parse created_at: %w", err)
	}
	if t.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return Template{}, fmt.Errorf("could not parse updated_at: %w", err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
