package timesheet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/apontei/apontei/internal/utils"
	"github.com/apontei/apontei/pkg/assignment"
	"github.com/apontei/apontei/pkg/audit"
	"github.com/apontei/apontei/pkg/user"
)

// UserDirectory is the slice of the user repository the timesheet layer
// needs to resolve approval authority.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (user.User, error)
}

type EntryInput struct {
	ProjectID   string
	ActivityID  string
	EntryDate   time.Time
	Hours       decimal.Decimal
	Description string
}

// EntryUpdate carries optional changes. Nil fields are left untouched.
type EntryUpdate struct {
	ProjectID   *string
	ActivityID  *string
	EntryDate   *time.Time
	Hours       *decimal.Decimal
	Description *string
}

type Service interface {
	CreateEntry(ctx context.Context, input EntryInput) (Entry, error)
	UpdateEntry(ctx context.Context, entryID string, update EntryUpdate) (Entry, error)
	DeleteEntry(ctx context.Context, entryID string) error
	ListEntries(ctx context.Context, userID string, from time.Time, to time.Time) ([]Entry, error)
	GetWeek(ctx context.Context, userID string, date time.Time) (Week, error)
}

type ServiceImpl struct {
	repo     Repository
	gate     assignment.Gate
	users    UserDirectory
	recorder audit.Recorder
	clock    utils.Clock
	firstDay time.Weekday
}

func NewService(
	repo Repository,
	gate assignment.Gate,
	users UserDirectory,
	recorder audit.Recorder,
	clock utils.Clock,
	firstDay time.Weekday,
) *ServiceImpl {
	return &ServiceImpl{
		repo:     repo,
		gate:     gate,
		users:    users,
		recorder: recorder,
		clock:    clock,
		firstDay: firstDay,
	}
}

func (s *ServiceImpl) CreateEntry(ctx context.Context, input EntryInput) (Entry, error) {
	currentID, err := user.CurrentID(ctx)
	if err != nil {
		return Entry{}, err
	}
	if err := ValidateHours(input.Hours); err != nil {
		return Entry{}, err
	}
	if err := s.gate.CanLog(ctx, currentID, input.ProjectID, input.ActivityID, input.EntryDate); err != nil {
		return Entry{}, err
	}

	now := s.clock.Now().UTC()
	entry := Entry{
		ID:            uuid.NewString(),
		UserID:        currentID,
		ProjectID:     input.ProjectID,
		ActivityID:    input.ActivityID,
		EntryDate:     input.EntryDate,
		Hours:         input.Hours,
		Description:   input.Description,
		WeekStartDate: WeekStart(input.EntryDate, s.firstDay),
		Status:        StatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// The day-total check and the insert share a transaction so two
	// concurrent writes cannot both pass the 24h cap.
	err = s.repo.WithTx(ctx, func(tx Repository) error {
		dayQuarters, err := tx.SumDayQuarters(ctx, currentID, input.EntryDate, "")
		if err != nil {
			return err
		}
		if exceedsDayCap(dayQuarters, input.Hours) {
			return ErrDayOverflow
		}
		_, err = tx.Create(ctx, entry)
		return err
	})
	if err != nil {
		return Entry{}, err
	}

	s.recorder.Record(ctx, audit.Event{
		UserID:     currentID,
		EntityType: audit.EntityTimesheetEntry,
		EntityID:   entry.ID,
		Action:     audit.ActionCreate,
		NewValues:  audit.Snapshot(entrySnapshot(entry)),
	})
	return entry, nil
}

func (s *ServiceImpl) UpdateEntry(ctx context.Context, entryID string, update EntryUpdate) (Entry, error) {
	currentID, err := user.CurrentID(ctx)
	if err != nil {
		return Entry{}, err
	}
	entry, err := s.repo.FindByID(ctx, entryID)
	if err != nil {
		return Entry{}, err
	}
	if entry.UserID != currentID {
		return Entry{}, ErrForbidden
	}
	if !entry.Status.Editable() {
		return Entry{}, ErrEntryNotEditable
	}
	if update.ProjectID == nil && update.ActivityID == nil && update.EntryDate == nil &&
		update.Hours == nil && update.Description == nil {
		return Entry{}, ErrNoFieldsToUpdate
	}

	before := entrySnapshot(entry)
	if update.ProjectID != nil {
		entry.ProjectID = *update.ProjectID
	}
	if update.ActivityID != nil {
		entry.ActivityID = *update.ActivityID
	}
	if update.EntryDate != nil {
		entry.EntryDate = *update.EntryDate
		entry.WeekStartDate = WeekStart(*update.EntryDate, s.firstDay)
	}
	if update.Hours != nil {
		entry.Hours = *update.Hours
	}
	if update.Description != nil {
		entry.Description = *update.Description
	}

	if err := ValidateHours(entry.Hours); err != nil {
		return Entry{}, err
	}
	if err := s.gate.CanLog(ctx, currentID, entry.ProjectID, entry.ActivityID, entry.EntryDate); err != nil {
		return Entry{}, err
	}

	entry.UpdatedAt = s.clock.Now().UTC()

	err = s.repo.WithTx(ctx, func(tx Repository) error {
		dayQuarters, err := tx.SumDayQuarters(ctx, currentID, entry.EntryDate, entry.ID)
		if err != nil {
			return err
		}
		if exceedsDayCap(dayQuarters, entry.Hours) {
			return ErrDayOverflow
		}
		ok, err := tx.Update(ctx, entry)
		if err != nil {
			return err
		}
		if !ok {
			return ErrEntryNotFound
		}
		return nil
	})
	if err != nil {
		return Entry{}, err
	}

	s.recorder.Record(ctx, audit.Event{
		UserID:     currentID,
		EntityType: audit.EntityTimesheetEntry,
		EntityID:   entry.ID,
		Action:     audit.ActionUpdate,
		OldValues:  audit.Snapshot(before),
		NewValues:  audit.Snapshot(entrySnapshot(entry)),
	})
	return entry, nil
}

func (s *ServiceImpl) DeleteEntry(ctx context.Context, entryID string) error {
	currentID, err := user.CurrentID(ctx)
	if err != nil {
		return err
	}
	entry, err := s.repo.FindByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.UserID != currentID {
		return ErrForbidden
	}
	if !entry.Status.Editable() {
		return ErrEntryNotEditable
	}

	ok, err := s.repo.Delete(ctx, entryID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrEntryNotFound
	}

	s.recorder.Record(ctx, audit.Event{
		UserID:     currentID,
		EntityType: audit.EntityTimesheetEntry,
		EntityID:   entryID,
		Action:     audit.ActionDelete,
		OldValues:  audit.Snapshot(entrySnapshot(entry)),
	})
	return nil
}

func (s *ServiceImpl) ListEntries(ctx context.Context, userID string, from time.Time, to time.Time) ([]Entry, error) {
	if err := s.authorizeRead(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.ListForUserRange(ctx, userID, from, to)
}

func (s *ServiceImpl) GetWeek(ctx context.Context, userID string, date time.Time) (Week, error) {
	if err := s.authorizeRead(ctx, userID); err != nil {
		return Week{}, err
	}
	weekStart := WeekStart(date, s.firstDay)
	entries, err := s.repo.ListForWeek(ctx, userID, weekStart)
	if err != nil {
		return Week{}, err
	}
	return BuildWeek(userID, weekStart, entries), nil
}

func (s *ServiceImpl) authorizeRead(ctx context.Context, targetID string) error {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if current.ID == targetID {
		return nil
	}
	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if !user.CanActOn(current, target) {
		return ErrForbidden
	}
	return nil
}

func exceedsDayCap(existingQuarters int, added decimal.Decimal) bool {
	total := HoursFromQuarters(existingQuarters).Add(added)
	return total.GreaterThan(MaxDayHours)
}

type entryValues struct {
	ProjectID   string `json:"projectId"`
	ActivityID  string `json:"activityId"`
	EntryDate   string `json:"entryDate"`
	Hours       string `json:"hours"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
}

func entrySnapshot(e Entry) entryValues {
	return entryValues{
		ProjectID:   e.ProjectID,
		ActivityID:  e.ActivityID,
		EntryDate:   e.EntryDate.Format(time.DateOnly),
		Hours:       e.Hours.String(),
		Description: e.Description,
		Status:      string(e.Status),
	}
}
