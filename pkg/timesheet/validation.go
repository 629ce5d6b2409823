package timesheet

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	minHours = decimal.NewFromFloat(0.25)
	maxHours = decimal.NewFromInt(24)
	// MaxDayHours caps the sum of all entries on one calendar day.
	MaxDayHours = decimal.NewFromInt(24)

	minReasonLength = 10
)

// ValidateHours checks the range and the quarter-hour grid in one pass.
func ValidateHours(hours decimal.Decimal) error {
	if hours.LessThan(minHours) || hours.GreaterThan(maxHours) {
		return ErrInvalidHours
	}
	if !hours.Mul(decimal.NewFromInt(4)).IsInteger() {
		return ErrNotQuarterHour
	}
	return nil
}

// ParseEntryDate accepts only strict YYYY-MM-DD dates.
func ParseEntryDate(s string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// ValidateRejectionReason enforces the minimum length on the reason as given.
func ValidateRejectionReason(reason string) error {
	if len(reason) < minReasonLength {
		return ErrInvalidReason
	}
	return nil
}
