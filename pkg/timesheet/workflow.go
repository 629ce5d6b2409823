package timesheet

import (
	"context"
	"fmt"
	"time"

	"github.com/apontei/apontei/internal/utils"
	"github.com/apontei/apontei/pkg/audit"
	"github.com/apontei/apontei/pkg/user"
)

// Workflow drives the week-level approval state machine. Transitions are
// bulk updates over the week's entries keyed on their current status, so a
// lost race simply affects zero rows.
type Workflow interface {
	Submit(ctx context.Context, weekStart time.Time) (Week, int, error)
	Approve(ctx context.Context, targetUserID string, weekStart time.Time) (int, error)
	Reject(ctx context.Context, targetUserID string, weekStart time.Time, reason string) (int, error)
	PendingApprovals(ctx context.Context) ([]PendingWeek, error)
}

type WorkflowImpl struct {
	repo     Repository
	users    UserDirectory
	recorder audit.Recorder
	clock    utils.Clock
	firstDay time.Weekday
}

func NewWorkflow(
	repo Repository,
	users UserDirectory,
	recorder audit.Recorder,
	clock utils.Clock,
	firstDay time.Weekday,
) *WorkflowImpl {
	return &WorkflowImpl{
		repo:     repo,
		users:    users,
		recorder: recorder,
		clock:    clock,
		firstDay: firstDay,
	}
}

// Submit moves the caller's draft entries of the week to submitted and
// returns how many it moved. Entries in other states stay untouched. A week
// with no drafts is an error, which also covers submitting the same week
// twice.
func (w *WorkflowImpl) Submit(ctx context.Context, weekStart time.Time) (Week, int, error) {
	currentID, err := user.CurrentID(ctx)
	if err != nil {
		return Week{}, 0, err
	}
	weekStart = WeekStart(weekStart, w.firstDay)
	now := w.clock.Now().UTC()

	var count int
	var entries []Entry
	err = w.repo.WithTx(ctx, func(tx Repository) error {
		count, err = tx.SubmitWeek(ctx, currentID, weekStart, now)
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrEmptyWeek
		}
		entries, err = tx.ListForWeek(ctx, currentID, weekStart)
		return err
	})
	if err != nil {
		return Week{}, 0, err
	}

	w.recorder.Record(ctx, audit.Event{
		UserID:     currentID,
		EntityType: audit.EntityTimesheetWeek,
		EntityID:   weekKey(currentID, weekStart),
		Action:     audit.ActionSubmit,
		NewValues:  audit.Snapshot(map[string]any{"entries": count}),
	})
	return BuildWeek(currentID, weekStart, entries), count, nil
}

// Approve moves the target week's submitted entries to approved and returns
// how many entries the decision covered. Approving a week with no submitted
// entries is a no-op, not an error.
func (w *WorkflowImpl) Approve(ctx context.Context, targetUserID string, weekStart time.Time) (int, error) {
	actor, err := w.authorizeDecision(ctx, targetUserID)
	if err != nil {
		return 0, err
	}
	weekStart = WeekStart(weekStart, w.firstDay)
	now := w.clock.Now().UTC()

	count, err := w.repo.ApproveWeek(ctx, targetUserID, weekStart, actor.ID, now)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		w.recorder.Record(ctx, audit.Event{
			UserID:         actor.ID,
			AffectedUserID: targetUserID,
			EntityType:     audit.EntityTimesheetWeek,
			EntityID:       weekKey(targetUserID, weekStart),
			Action:         audit.ActionApprove,
			NewValues:      audit.Snapshot(map[string]any{"entries": count}),
		})
	}
	return count, nil
}

// Reject moves the target week's submitted and approved entries to rejected
// with a mandatory reason. Covering approved entries lets a manager revoke a
// decision made by mistake.
func (w *WorkflowImpl) Reject(ctx context.Context, targetUserID string, weekStart time.Time, reason string) (int, error) {
	if err := ValidateRejectionReason(reason); err != nil {
		return 0, err
	}
	actor, err := w.authorizeDecision(ctx, targetUserID)
	if err != nil {
		return 0, err
	}
	weekStart = WeekStart(weekStart, w.firstDay)
	now := w.clock.Now().UTC()

	count, err := w.repo.RejectWeek(ctx, targetUserID, weekStart, actor.ID, reason, now)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		w.recorder.Record(ctx, audit.Event{
			UserID:         actor.ID,
			AffectedUserID: targetUserID,
			EntityType:     audit.EntityTimesheetWeek,
			EntityID:       weekKey(targetUserID, weekStart),
			Action:         audit.ActionReject,
			Justification:  reason,
			NewValues:      audit.Snapshot(map[string]any{"entries": count}),
		})
	}
	return count, nil
}

// PendingApprovals lists submitted weeks the caller may decide on: a
// manager sees their reports, a director sees everyone.
func (w *WorkflowImpl) PendingApprovals(ctx context.Context) ([]PendingWeek, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	switch {
	case current.IsDirector():
		return w.repo.PendingApprovals(ctx, "")
	case current.IsManager():
		return w.repo.PendingApprovals(ctx, current.ID)
	default:
		return nil, ErrForbidden
	}
}

// authorizeDecision checks that the caller may approve or reject the target
// user's week. Nobody decides on their own hours.
func (w *WorkflowImpl) authorizeDecision(ctx context.Context, targetUserID string) (user.User, error) {
	actor, err := user.CurrentUser(ctx)
	if err != nil {
		return user.User{}, err
	}
	if !actor.CanApprove() || actor.ID == targetUserID {
		return user.User{}, ErrForbidden
	}
	target, err := w.users.FindByID(ctx, targetUserID)
	if err != nil {
		return user.User{}, err
	}
	if !user.CanActOn(actor, target) {
		return user.User{}, ErrForbidden
	}
	return actor, nil
}

func weekKey(userID string, weekStart time.Time) string {
	return fmt.Sprintf("%s:%s", userID, weekStart.Format(time.DateOnly))
}
