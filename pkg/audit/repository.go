package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Insert(ctx context.Context, e Event) error
	Query(ctx context.Context, filter Filter) ([]Event, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const auditColumns = `id, timestamp, user_id, affected_user_id, entity_type, entity_id, action, old_values, new_values, justification`

func (r *RepositoryImpl) Insert(ctx context.Context, e Event) error {
	query := `INSERT INTO audit_logs (` + auditColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.Timestamp.Format(time.RFC3339),
		e.UserID,
		nullable(e.AffectedUserID),
		e.EntityType,
		e.EntityID,
		e.Action,
		nullable(e.OldValues),
		nullable(e.NewValues),
		nullable(e.Justification),
	)
	if err != nil {
		err := fmt.Errorf("could not insert audit event: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) Query(ctx context.Context, filter Filter) ([]Event, error) {
	var conditions []string
	var args []any
	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.EntityType != "" {
		conditions = append(conditions, "entity_type = ?")
		args = append(args, filter.EntityType)
	}
	if filter.EntityID != "" {
		conditions = append(conditions, "entity_id = ?")
		args = append(args, filter.EntityID)
	}
	if filter.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, filter.Action)
	}
	if !filter.From.IsZero() {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, filter.From.Format(time.RFC3339))
	}
	if !filter.To.IsZero() {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, filter.To.Format(time.RFC3339))
	}

	query := `SELECT ` + auditColumns + ` FROM audit_logs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY timestamp DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	query += " LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query audit events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var affectedUserID, oldValues, newValues, justification sql.NullString
		var timestamp string
		err := rows.Scan(
			&e.ID,
			&timestamp,
			&e.UserID,
			&affectedUserID,
			&e.EntityType,
			&e.EntityID,
			&e.Action,
			&oldValues,
			&newValues,
			&justification,
		)
		if err != nil {
			err := fmt.Errorf("could not scan audit event: %w", err)
			log.Error(err)
			return nil, err
		}
		e.AffectedUserID = affectedUserID.String
		e.OldValues = oldValues.String
		e.NewValues = newValues.String
		e.Justification = justification.String
		if e.Timestamp, err = time.Parse(time.RFC3339, timestamp); err != nil {
			return nil, fmt.Errorf("could not parse timestamp: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return events, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
