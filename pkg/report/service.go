package report

import (
	"context"
	"errors"
	"time"

	"github.com/apontei/apontei/pkg/timesheet"
	"github.com/apontei/apontei/pkg/user"
)

var (
	ErrForbidden    = errors.New("user is not allowed to view this report")
	ErrInvalidRange = errors.New("from must not be after to")
)

type Service interface {
	Individual(ctx context.Context, userID string, from time.Time, to time.Time) (Report, error)
	Team(ctx context.Context, from time.Time, to time.Time) (Report, error)
	Project(ctx context.Context, projectID string, from time.Time, to time.Time) (Report, error)
}

type ServiceImpl struct {
	repo  Repository
	users timesheet.UserDirectory
}

func NewService(repo Repository, users timesheet.UserDirectory) *ServiceImpl {
	return &ServiceImpl{repo: repo, users: users}
}

func (s *ServiceImpl) Individual(ctx context.Context, userID string, from time.Time, to time.Time) (Report, error) {
	if from.After(to) {
		return Report{}, ErrInvalidRange
	}
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return Report{}, err
	}
	if current.ID != userID {
		target, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return Report{}, err
		}
		if !user.CanActOn(current, target) {
			return Report{}, ErrForbidden
		}
	}

	rows, err := s.repo.RowsForUser(ctx, userID, from, to)
	if err != nil {
		return Report{}, err
	}
	return Build(from, to, rows), nil
}

func (s *ServiceImpl) Team(ctx context.Context, from time.Time, to time.Time) (Report, error) {
	if from.After(to) {
		return Report{}, ErrInvalidRange
	}
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return Report{}, err
	}
	if !current.CanApprove() {
		return Report{}, ErrForbidden
	}

	// Directors see every team; an empty manager scope means unfiltered.
	scope := current.ID
	if current.IsDirector() {
		scope = ""
	}
	rows, err := s.repo.RowsForManager(ctx, scope, from, to)
	if err != nil {
		return Report{}, err
	}
	return Build(from, to, rows), nil
}

func (s *ServiceImpl) Project(ctx context.Context, projectID string, from time.Time, to time.Time) (Report, error) {
	if from.After(to) {
		return Report{}, ErrInvalidRange
	}
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return Report{}, err
	}
	if !current.CanApprove() {
		return Report{}, ErrForbidden
	}

	rows, err := s.repo.RowsForProject(ctx, projectID, from, to)
	if err != nil {
		return Report{}, err
	}
	return Build(from, to, rows), nil
}
