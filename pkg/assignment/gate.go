package assignment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apontei/apontei/pkg/activity"
)

var (
	ErrNotAssigned         = errors.New("user is not assigned to the project on this date")
	ErrActivityUnavailable = errors.New("activity is not available for logging")
)

// Gate decides whether a user may log hours against a project activity on a
// given date. Every entry write goes through it.
type Gate interface {
	CanLog(ctx context.Context, userID string, projectID string, activityID string, date time.Time) error
}

type GateImpl struct {
	assignments Repository
	activities  ActivityReader
}

// ActivityReader is the slice of the activity repository the gate needs.
type ActivityReader interface {
	FindByID(ctx context.Context, id string) (activity.Activity, error)
}

func NewGate(assignments Repository, activities ActivityReader) *GateImpl {
	return &GateImpl{assignments: assignments, activities: activities}
}

func (g *GateImpl) CanLog(ctx context.Context, userID string, projectID string, activityID string, date time.Time) error {
	if _, err := g.assignments.FindCovering(ctx, userID, projectID, date); err != nil {
		if errors.Is(err, ErrAssignmentNotFound) {
			return ErrNotAssigned
		}
		return fmt.Errorf("could not check assignment: %w", err)
	}

	a, err := g.activities.FindByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, activity.ErrActivityNotFound) {
			return ErrActivityUnavailable
		}
		return fmt.Errorf("could not check activity: %w", err)
	}
	if a.ProjectID != projectID || a.Status != activity.StatusActive {
		return ErrActivityUnavailable
	}
	return nil
}
