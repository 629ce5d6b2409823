package assignment

import (
	"context"
	"time"
)

// StubRepo is an in-memory Repository for tests.
type StubRepo struct {
	Assignments map[string]Assignment
}

func NewStubRepo() *StubRepo {
	return &StubRepo{Assignments: make(map[string]Assignment)}
}

func (s *StubRepo) Create(_ context.Context, a Assignment) (Assignment, error) {
	s.Assignments[a.ID] = a
	return a, nil
}

func (s *StubRepo) FindByID(_ context.Context, id string) (Assignment, error) {
	a, ok := s.Assignments[id]
	if !ok {
		return Assignment{}, ErrAssignmentNotFound
	}
	return a, nil
}

func (s *StubRepo) FindCovering(_ context.Context, userID string, projectID string, date time.Time) (Assignment, error) {
	for _, a := range s.Assignments {
		if a.UserID == userID && a.ProjectID == projectID && a.Covers(date) {
			return a, nil
		}
	}
	return Assignment{}, ErrAssignmentNotFound
}

func (s *StubRepo) ListForUser(_ context.Context, userID string) ([]Assignment, error) {
	var result []Assignment
	for _, a := range s.Assignments {
		if a.UserID == userID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (s *StubRepo) ListForProject(_ context.Context, projectID string) ([]Assignment, error) {
	var result []Assignment
	for _, a := range s.Assignments {
		if a.ProjectID == projectID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (s *StubRepo) End(_ context.Context, id string, endDate time.Time, now time.Time) (bool, error) {
	a, ok := s.Assignments[id]
	if !ok {
		return false, nil
	}
	a.EndDate = &endDate
	a.UpdatedAt = now
	s.Assignments[id] = a
	return true, nil
}
