package template

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/apontei/apontei/internal/utils"
	"github.com/apontei/apontei/pkg/timesheet"
	"github.com/apontei/apontei/pkg/user"
)

var (
	ErrForbidden     = errors.New("template belongs to another user")
	ErrEmptyTemplate = errors.New("template has no items")
	ErrEmptySource   = errors.New("week has no entries to snapshot")
)

// ApplyResult reports what happened when a template was stamped onto a week.
// Items that fail validation (day caps, closed assignments, inactive
// activities) are skipped, not fatal.
type ApplyResult struct {
	Created int
	Skipped int
	Entries []timesheet.Entry
}

type Service interface {
	// Snapshot captures the caller's entries of the given week as a named
	// template.
	Snapshot(ctx context.Context, name string, weekDate time.Time, isDefault bool) (Template, error)
	// Apply stamps the template onto the week containing weekDate, creating
	// draft entries through the normal entry pipeline.
	Apply(ctx context.Context, templateID string, weekDate time.Time) (ApplyResult, error)
	List(ctx context.Context) ([]Template, error)
	Delete(ctx context.Context, templateID string) error
}

type ServiceImpl struct {
	repo     Repository
	entries  timesheet.Repository
	sheets   timesheet.Service
	clock    utils.Clock
	firstDay time.Weekday
}

func NewService(
	repo Repository,
	entries timesheet.Repository,
	sheets timesheet.Service,
	clock utils.Clock,
	firstDay time.Weekday,
) *ServiceImpl {
	return &ServiceImpl{
		repo:     repo,
		entries:  entries,
		sheets:   sheets,
		clock:    clock,
		firstDay: firstDay,
	}
}

func (s *ServiceImpl) Snapshot(ctx context.Context, name string, weekDate time.Time, isDefault bool) (Template, error) {
	currentID, err := user.CurrentID(ctx)
	if err != nil {
		return Template{}, err
	}
	weekStart := timesheet.WeekStart(weekDate, s.firstDay)
	entries, err := s.entries.ListForWeek(ctx, currentID, weekStart)
	if err != nil {
		return Template{}, err
	}
	if len(entries) == 0 {
		return Template{}, ErrEmptySource
	}

	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, Item{
			ProjectID:   e.ProjectID,
			ActivityID:  e.ActivityID,
			DayOffset:   int(e.EntryDate.Sub(weekStart).Hours() / 24),
			Hours:       e.Hours,
			Description: e.Description,
		})
	}

	now := s.clock.Now().UTC()
	if isDefault {
		if err := s.repo.ClearDefault(ctx, currentID, now); err != nil {
			return Template{}, err
		}
	}
	t := Template{
		ID:        uuid.NewString(),
		UserID:    currentID,
		Name:      name,
		IsDefault: isDefault,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.repo.Create(ctx, t)
}

func (s *ServiceImpl) Apply(ctx context.Context, templateID string, weekDate time.Time) (ApplyResult, error) {
	currentID, err := user.CurrentID(ctx)
	if err != nil {
		return ApplyResult{}, err
	}
	t, err := s.repo.FindByID(ctx, templateID)
	if err != nil {
		return ApplyResult{}, err
	}
	if t.UserID != currentID {
		return ApplyResult{}, ErrForbidden
	}
	if len(t.Items) == 0 {
		return ApplyResult{}, ErrEmptyTemplate
	}

	weekStart := timesheet.WeekStart(weekDate, s.firstDay)
	var result ApplyResult
	for _, item := range t.Items {
		entry, err := s.sheets.CreateEntry(ctx, timesheet.EntryInput{
			ProjectID:   item.ProjectID,
			ActivityID:  item.ActivityID,
			EntryDate:   weekStart.AddDate(0, 0, item.DayOffset),
			Hours:       item.Hours,
			Description: item.Description,
		})
		if err != nil {
			log.Infof("skipping template item for %s: %v", item.ProjectID, err)
			result.Skipped++
			continue
		}
		result.Created++
		result.Entries = append(result.Entries, entry)
	}
	return result, nil
}

func (s *ServiceImpl) List(ctx context.Context) ([]Template, error) {
	currentID, err := user.CurrentID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListForUser(ctx, currentID)
}

func (s *ServiceImpl) Delete(ctx context.Context, templateID string) error {
	currentID, err := user.CurrentID(ctx)
	if err != nil {
		return err
	}
	t, err := s.repo.FindByID(ctx, templateID)
	if err != nil {
		return err
	}
	if t.UserID != currentID {
		return ErrForbidden
	}
	ok, err := s.repo.Delete(ctx, templateID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTemplateNotFound
	}
	return nil
}
