package assignment

import "time"

// Assignment grants a user permission to log hours against a project for a
// date range. A nil EndDate means the assignment is open ended.
type Assignment struct {
	ID        string
	UserID    string
	ProjectID string
	StartDate time.Time
	EndDate   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Covers reports whether the assignment window includes the given date.
func (a Assignment) Covers(date time.Time) bool {
	day := date.Format(time.DateOnly)
	if day < a.StartDate.Format(time.DateOnly) {
		return false
	}
	if a.EndDate != nil && day > a.EndDate.Format(time.DateOnly) {
		return false
	}
	return true
}
