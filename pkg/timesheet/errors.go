package timesheet

import "errors"

var (
	ErrEntryNotFound    = errors.New("timesheet entry not found")
	ErrEntryNotEditable = errors.New("entry is not in an editable status")
	ErrInvalidHours     = errors.New("hours must be between 0.25 and 24")
	ErrNotQuarterHour   = errors.New("hours must be a multiple of 0.25")
	ErrInvalidDate      = errors.New("date must be in YYYY-MM-DD format")
	ErrDayOverflow      = errors.New("total hours for the day would exceed 24")
	ErrEmptyWeek        = errors.New("week has no submittable entries")
	ErrInvalidReason    = errors.New("rejection reason must have at least 10 characters")
	ErrForbidden        = errors.New("user is not allowed to perform this action")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
)
