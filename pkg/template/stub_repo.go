package template

import (
	"context"
	"time"
)

// StubRepo is an in-memory Repository for tests.
type StubRepo struct {
	Templates map[string]Template
}

func NewStubRepo() *StubRepo {
	return &StubRepo{Templates: make(map[string]Template)}
}

func (s *StubRepo) Create(_ context.Context, t Template) (Template, error) {
	s.Templates[t.ID] = t
	return t, nil
}

func (s *StubRepo) FindByID(_ context.Context, id string) (Template, error) {
	t, ok := s.Templates[id]
	if !ok {
		return Template{}, ErrTemplateNotFound
	}
	return t, nil
}

func (s *StubRepo) ListForUser(_ context.Context, userID string) ([]Template, error) {
	var result []Template
	for _, t := range s.Templates {
		if t.UserID == userID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (s *StubRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := s.Templates[id]; !ok {
		return false, nil
	}
	delete(s.Templates, id)
	return true, nil
}

func (s *StubRepo) ClearDefault(_ context.Context, userID string, now time.Time) error {
	for id, t := range s.Templates {
		if t.UserID == userID && t.IsDefault {
			t.IsDefault = false
			t.UpdatedAt = now
			s.Templates[id] = t
		}
	}
	return nil
}
