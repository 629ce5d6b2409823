package timesheet

import (
	"context"
	"sort"
	"time"
)

// StubRepo is an in-memory Repository for service and workflow tests. Its
// WithTx runs the callback directly; transactional behavior is covered by
// the database-backed tests.
type StubRepo struct {
	Entries map[string]Entry
	Users   map[string]StubUser
}

// StubUser feeds PendingApprovals joins.
type StubUser struct {
	FullName  string
	Email     string
	ManagerID string
}

func NewStubRepo() *StubRepo {
	return &StubRepo{
		Entries: make(map[string]Entry),
		Users:   make(map[string]StubUser),
	}
}

func (s *StubRepo) WithTx(_ context.Context, fn func(Repository) error) error {
	return fn(s)
}

func (s *StubRepo) Create(_ context.Context, e Entry) (Entry, error) {
	s.Entries[e.ID] = e
	return e, nil
}

func (s *StubRepo) FindByID(_ context.Context, id string) (Entry, error) {
	e, ok := s.Entries[id]
	if !ok {
		return Entry{}, ErrEntryNotFound
	}
	return e, nil
}

func (s *StubRepo) Update(_ context.Context, e Entry) (bool, error) {
	if _, ok := s.Entries[e.ID]; !ok {
		return false, nil
	}
	s.Entries[e.ID] = e
	return true, nil
}

func (s *StubRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := s.Entries[id]; !ok {
		return false, nil
	}
	delete(s.Entries, id)
	return true, nil
}

func (s *StubRepo) ListForUserRange(_ context.Context, userID string, from time.Time, to time.Time) ([]Entry, error) {
	var result []Entry
	for _, e := range s.Entries {
		if e.UserID == userID && !e.EntryDate.Before(from) && !e.EntryDate.After(to) {
			result = append(result, e)
		}
	}
	sortEntries(result)
	return result, nil
}

func (s *StubRepo) ListForWeek(_ context.Context, userID string, weekStart time.Time) ([]Entry, error) {
	var result []Entry
	for _, e := range s.Entries {
		if e.UserID == userID && e.WeekStartDate.Equal(weekStart) {
			result = append(result, e)
		}
	}
	sortEntries(result)
	return result, nil
}

func (s *StubRepo) SumDayQuarters(_ context.Context, userID string, date time.Time, excludeEntryID string) (int, error) {
	total := 0
	for _, e := range s.Entries {
		if e.ID == excludeEntryID {
			continue
		}
		if e.UserID == userID && e.EntryDate.Equal(date) {
			total += QuarterHours(e.Hours)
		}
	}
	return total, nil
}

func (s *StubRepo) SubmitWeek(_ context.Context, userID string, weekStart time.Time, now time.Time) (int, error) {
	count := 0
	for id, e := range s.Entries {
		if e.UserID != userID || !e.WeekStartDate.Equal(weekStart) {
			continue
		}
		if e.Status != StatusDraft {
			continue
		}
		e.Status = StatusSubmitted
		submitted := now
		e.SubmittedAt = &submitted
		e.UpdatedAt = now
		s.Entries[id] = e
		count++
	}
	return count, nil
}

func (s *StubRepo) ApproveWeek(_ context.Context, userID string, weekStart time.Time, approverID string, now time.Time) (int, error) {
	count := 0
	for id, e := range s.Entries {
		if e.UserID != userID || !e.WeekStartDate.Equal(weekStart) || e.Status != StatusSubmitted {
			continue
		}
		e.Status = StatusManagerApproved
		decided := now
		e.ApprovedAt = &decided
		e.ApprovedBy = approverID
		e.UpdatedAt = now
		s.Entries[id] = e
		count++
	}
	return count, nil
}

func (s *StubRepo) RejectWeek(_ context.Context, userID string, weekStart time.Time, approverID string, reason string, now time.Time) (int, error) {
	count := 0
	for id, e := range s.Entries {
		if e.UserID != userID || !e.WeekStartDate.Equal(weekStart) {
			continue
		}
		if e.Status != StatusSubmitted && e.Status != StatusManagerApproved {
			continue
		}
		e.Status = StatusManagerRejected
		decided := now
		e.ApprovedAt = &decided
		e.ApprovedBy = approverID
		e.RejectionReason = reason
		e.UpdatedAt = now
		s.Entries[id] = e
		count++
	}
	return count, nil
}

func (s *StubRepo) PendingApprovals(_ context.Context, managerID string) ([]PendingWeek, error) {
	type key struct {
		userID string
		week   string
	}
	grouped := make(map[key]*PendingWeek)
	for _, e := range s.Entries {
		if e.Status != StatusSubmitted {
			continue
		}
		u := s.Users[e.UserID]
		if managerID != "" && u.ManagerID != managerID {
			continue
		}
		k := key{userID: e.UserID, week: e.WeekStartDate.Format(time.DateOnly)}
		p, ok := grouped[k]
		if !ok {
			p = &PendingWeek{
				UserID:        e.UserID,
				FullName:      u.FullName,
				Email:         u.Email,
				WeekStartDate: e.WeekStartDate,
			}
			grouped[k] = p
		}
		p.EntriesCount++
		p.TotalQuarters += QuarterHours(e.Hours)
		if e.SubmittedAt != nil && (p.SubmittedAt.IsZero() || e.SubmittedAt.Before(p.SubmittedAt)) {
			p.SubmittedAt = *e.SubmittedAt
		}
	}

	var result []PendingWeek
	for _, p := range grouped {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].WeekStartDate.Equal(result[j].WeekStartDate) {
			return result[i].WeekStartDate.Before(result[j].WeekStartDate)
		}
		return result[i].FullName < result[j].FullName
	})
	return result, nil
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].EntryDate.Equal(entries[j].EntryDate) {
			return entries[i].EntryDate.Before(entries[j].EntryDate)
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}
