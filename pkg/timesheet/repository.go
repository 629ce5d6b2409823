package timesheet

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// PendingWeek is one submitted week awaiting a manager's decision.
type PendingWeek struct {
	UserID        string
	FullName      string
	Email         string
	WeekStartDate time.Time
	EntriesCount  int
	TotalQuarters int
	SubmittedAt   time.Time
}

type Repository interface {
	// WithTx runs fn against a repository bound to a single transaction.
	// fn returning an error rolls the transaction back.
	WithTx(ctx context.Context, fn func(Repository) error) error

	Create(ctx context.Context, e Entry) (Entry, error)
	FindByID(ctx context.Context, id string) (Entry, error)
	Update(ctx context.Context, e Entry) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListForUserRange(ctx context.Context, userID string, from time.Time, to time.Time) ([]Entry, error)
	ListForWeek(ctx context.Context, userID string, weekStart time.Time) ([]Entry, error)
	// SumDayQuarters totals the stored quarter hours of a user's entries on
	// one day, skipping excludeEntryID when non-empty.
	SumDayQuarters(ctx context.Context, userID string, date time.Time, excludeEntryID string) (int, error)

	// SubmitWeek moves the week's draft and rejected entries to submitted
	// and returns how many rows changed.
	SubmitWeek(ctx context.Context, userID string, weekStart time.Time, now time.Time) (int, error)
	// ApproveWeek moves the week's submitted entries to approved.
	ApproveWeek(ctx context.Context, userID string, weekStart time.Time, approverID string, now time.Time) (int, error)
	// RejectWeek moves the week's submitted entries to rejected with a reason.
	RejectWeek(ctx context.Context, userID string, weekStart time.Time, approverID string, reason string, now time.Time) (int, error)
	// PendingApprovals lists submitted weeks of the manager's reports. An
	// empty managerID returns every submitted week.
	PendingApprovals(ctx context.Context, managerID string) ([]PendingWeek, error)
}

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type RepositoryImpl struct {
	// db is nil when the repository is already bound to a transaction.
	db *sql.DB
	q  dbtx
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db, q: db}
}

func (r *RepositoryImpl) WithTx(ctx context.Context, fn func(Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return err
	}
	if err := fn(&RepositoryImpl{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Errorf("could not roll back transaction: %v", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		err := fmt.Errorf("could not commit transaction: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

const entrySelect = `SELECT e.id, e.user_id, e.project_id, e.activity_id, e.entry_date,
		e.quarter_hours, e.description, e.week_start_date, e.status, e.submitted_at,
		e.manager_approved_at, e.manager_approved_by, e.manager_rejection_reason,
		e.created_at, e.updated_at,
		p.name, p.code, a.name, a.type
	FROM timesheet_entries e
	JOIN projects p ON p.id = e.project_id
	JOIN activities a ON a.id = e.activity_id`

func (r *RepositoryImpl) Create(ctx context.Context, e Entry) (Entry, error) {
	query := `INSERT INTO timesheet_entries (id, user_id, project_id, activity_id, entry_date,
			quarter_hours, description, week_start_date, status, submitted_at,
			manager_approved_at, manager_approved_by, manager_rejection_reason,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.q.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return Entry{}, err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		e.ID,
		e.UserID,
		e.ProjectID,
		e.ActivityID,
		e.EntryDate.Format(time.DateOnly),
		QuarterHours(e.Hours),
		nullable(e.Description),
		e.WeekStartDate.Format(time.DateOnly),
		string(e.Status),
		nullTime(e.SubmittedAt),
		nullTime(e.ApprovedAt),
		nullable(e.ApprovedBy),
		nullable(e.RejectionReason),
		e.CreatedAt.Format(time.RFC3339),
		e.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return Entry{}, err
	}
	return e, nil
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id string) (Entry, error) {
	query := entrySelect + ` WHERE e.id = ?`
	row := r.q.QueryRowContext(ctx, query, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return Entry{}, ErrEntryNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not scan entry: %w", err)
		log.Error(err)
		return Entry{}, err
	}
	return e, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, e Entry) (bool, error) {
	query := `UPDATE timesheet_entries SET
			project_id = ?,
			activity_id = ?,
			entry_date = ?,
			quarter_hours = ?,
			description = ?,
			week_start_date = ?,
			status = ?,
			manager_approved_at = ?,
			manager_approved_by = ?,
			manager_rejection_reason = ?,
			updated_at = ?
		WHERE id = ?`
	result, err := r.q.ExecContext(ctx, query,
		e.ProjectID,
		e.ActivityID,
		e.EntryDate.Format(time.DateOnly),
		QuarterHours(e.Hours),
		nullable(e.Description),
		e.WeekStartDate.Format(time.DateOnly),
		string(e.Status),
		nullTime(e.ApprovedAt),
		nullable(e.ApprovedBy),
		nullable(e.RejectionReason),
		e.UpdatedAt.Format(time.RFC3339),
		e.ID,
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

func (r *RepositoryImpl) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.q.ExecContext(ctx, `DELETE FROM timesheet_entries WHERE id = ?`, id)
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

func (r *RepositoryImpl) ListForUserRange(ctx context.Context, userID string, from time.Time, to time.Time) ([]Entry, error) {
	query := entrySelect + `
		WHERE e.user_id = ? AND e.entry_date >= ? AND e.entry_date <= ?
		ORDER BY e.entry_date, e.created_at`
	return r.queryEntries(ctx, query, userID, from.Format(time.DateOnly), to.Format(time.DateOnly))
}

func (r *RepositoryImpl) ListForWeek(ctx context.Context, userID string, weekStart time.Time) ([]Entry, error) {
	query := entrySelect + `
		WHERE e.user_id = ? AND e.week_start_date = ?
		ORDER BY e.entry_date, e.created_at`
	return r.queryEntries(ctx, query, userID, weekStart.Format(time.DateOnly))
}

func (r *RepositoryImpl) SumDayQuarters(ctx context.Context, userID string, date time.Time, excludeEntryID string) (int, error) {
	query := `SELECT COALESCE(SUM(quarter_hours), 0) FROM timesheet_entries
		WHERE user_id = ? AND entry_date = ? AND id != ?`
	var total int
	err := r.q.QueryRowContext(ctx, query, userID, date.Format(time.DateOnly), excludeEntryID).Scan(&total)
	if err != nil {
		err := fmt.Errorf("could not sum day hours: %w", err)
		log.Error(err)
		return 0, err
	}
	return total, nil
}

func (r *RepositoryImpl) SubmitWeek(ctx context.Context, userID string, weekStart time.Time, now time.Time) (int, error) {
	query := `UPDATE timesheet_entries SET
			status = ?,
			submitted_at = ?,
			updated_at = ?
		WHERE user_id = ? AND week_start_date = ? AND status = ?`
	return r.execCounting(ctx, query,
		string(StatusSubmitted),
		now.Format(time.RFC3339),
		now.Format(time.RFC3339),
		userID,
		weekStart.Format(time.DateOnly),
		string(StatusDraft),
	)
}

func (r *RepositoryImpl) ApproveWeek(ctx context.Context, userID string, weekStart time.Time, approverID string, now time.Time) (int, error) {
	query := `UPDATE timesheet_entries SET
			status = ?,
			manager_approved_at = ?,
			manager_approved_by = ?,
			updated_at = ?
		WHERE user_id = ? AND week_start_date = ? AND status = ?`
	return r.execCounting(ctx, query,
		string(StatusManagerApproved),
		now.Format(time.RFC3339),
		approverID,
		now.Format(time.RFC3339),
		userID,
		weekStart.Format(time.DateOnly),
		string(StatusSubmitted),
	)
}

func (r *RepositoryImpl) RejectWeek(ctx context.Context, userID string, weekStart time.Time, approverID string, reason string, now time.Time) (int, error) {
	query := `UPDATE timesheet_entries SET
			status = ?,
			manager_approved_at = ?,
			manager_approved_by = ?,
			manager_rejection_reason = ?,
			updated_at = ?
		WHERE user_id = ? AND week_start_date = ? AND status IN (?, ?)`
	return r.execCounting(ctx, query,
		string(StatusManagerRejected),
		now.Format(time.RFC3339),
		approverID,
		reason,
		now.Format(time.RFC3339),
		userID,
		weekStart.Format(time.DateOnly),
		string(StatusSubmitted),
		string(StatusManagerApproved),
	)
}

func (r *RepositoryImpl) PendingApprovals(ctx context.Context, managerID string) ([]PendingWeek, error) {
	query := `SELECT e.user_id, u.full_name, u.email, e.week_start_date,
			COUNT(*), SUM(e.quarter_hours), MIN(e.submitted_at)
		FROM timesheet_entries e
		JOIN users u ON u.id = e.user_id
		WHERE e.status = ?`
	args := []any{string(StatusSubmitted)}
	if managerID != "" {
		query += ` AND u.manager_id = ?`
		args = append(args, managerID)
	}
	query += ` GROUP BY e.user_id, u.full_name, u.email, e.week_start_date
		ORDER BY e.week_start_date, u.full_name`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query pending approvals: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var pending []PendingWeek
	for rows.Next() {
		var p PendingWeek
		var weekStart, submittedAt string
		err := rows.Scan(&p.UserID, &p.FullName, &p.Email, &weekStart, &p.EntriesCount, &p.TotalQuarters, &submittedAt)
		if err != nil {
			err := fmt.Errorf("could not scan pending week: %w", err)
			log.Error(err)
			return nil, err
		}
		if p.WeekStartDate, err = time.Parse(time.DateOnly, weekStart); err != nil {
			return nil, fmt.Errorf("could not parse week start date: %w", err)
		}
		if p.SubmittedAt, err = time.Parse(time.RFC3339, submittedAt); err != nil {
			return nil, fmt.Errorf("could not parse submitted_at: %w", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return pending, nil
}

func (r *RepositoryImpl) execCounting(ctx context.Context, query string, args ...any) (int, error) {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return 0, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return 0, err
	}
	return int(rowsAffected), nil
}

func (r *RepositoryImpl) queryEntries(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query entries: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			err := fmt.Errorf("could not scan entry: %w", err)
			log.Error(err)
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var e Entry
	var quarters int
	var description, submittedAt, approvedAt, approvedBy, rejectionReason sql.NullString
	var entryDate, weekStart, status, createdAt, updatedAt string

	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.ProjectID,
		&e.ActivityID,
		&entryDate,
		&quarters,
		&description,
		&weekStart,
		&status,
		&submittedAt,
		&approvedAt,
		&approvedBy,
		&rejectionReason,
		&createdAt,
		&updatedAt,
		&e.ProjectName,
		&e.ProjectCode,
		&e.ActivityName,
		&e.ActivityType,
	)
	if err != nil {
		return Entry{}, err
	}
	e.Hours = HoursFromQuarters(quarters)
	e.Description = description.String
	e.Status = Status(status)
	e.ApprovedBy = approvedBy.String
	e.RejectionReason = rejectionReason.String
	if e.EntryDate, err = time.Parse(time.DateOnly, entryDate); err != nil {
		return Entry{}, fmt.Errorf("could not parse entry date: %w", err)
	}
	if e.WeekStartDate, err = time.Parse(time.DateOnly, weekStart); err != nil {
		return Entry{}, fmt.Errorf("could not parse week start date: %w", err)
	}
	if e.SubmittedAt, err = parseNullTime(submittedAt); err != nil {
		return Entry{}, fmt.Errorf("could not parse submitted_at: %w", err)
	}
	if e.ApprovedAt, err = parseNullTime(approvedAt); err != nil {
		return Entry{}, fmt.Errorf("could not parse manager_approved_at: %w", err)
	}
	if e.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return Entry{}, fmt.Errorf("could not parse created_at: %w", err)
	}
	if e.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return Entry{}, fmt.Errorf("could not parse updated_at: %w", err)
	}
	return e, nil
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
