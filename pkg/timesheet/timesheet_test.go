package timesheet

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

func hours(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestWeekStartSundayBased(t *testing.T) {
	// 2025-03-12 is a Wednesday.
	assert.Equal(t, date("2025-03-09"), WeekStart(date("2025-03-12"), time.Sunday))
	// A Sunday is its own week start.
	assert.Equal(t, date("2025-03-09"), WeekStart(date("2025-03-09"), time.Sunday))
	// A Saturday belongs to the week that started six days earlier.
	assert.Equal(t, date("2025-03-09"), WeekStart(date("2025-03-15"), time.Sunday))
}

func TestWeekStartMondayBased(t *testing.T) {
	assert.Equal(t, date("2025-03-10"), WeekStart(date("2025-03-12"), time.Monday))
	// A Sunday falls at the end of a Monday-based week.
	assert.Equal(t, date("2025-03-10"), WeekStart(date("2025-03-16"), time.Monday))
}

func TestWeekEndIsSixDaysLater(t *testing.T) {
	assert.Equal(t, date("2025-03-15"), WeekEnd(date("2025-03-09")))
}

func TestDeriveWeekStatusEmptyWeekIsDraft(t *testing.T) {
	assert.Equal(t, StatusDraft, DeriveWeekStatus(nil))
}

func TestDeriveWeekStatusLeastAdvancedWins(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"all submitted", []Status{StatusSubmitted, StatusSubmitted}, StatusSubmitted},
		{"draft among submitted", []Status{StatusSubmitted, StatusDraft}, StatusDraft},
		{"rejected among approved", []Status{StatusManagerApproved, StatusManagerRejected}, StatusManagerRejected},
		{"submitted among approved", []Status{StatusManagerApproved, StatusSubmitted}, StatusSubmitted},
		{"all approved", []Status{StatusManagerApproved, StatusManagerApproved}, StatusManagerApproved},
		{"new draft next to rejected", []Status{StatusManagerRejected, StatusDraft}, StatusDraft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveWeekStatus(tt.statuses))
		})
	}
}

func TestValidateHours(t *testing.T) {
	assert.NoError(t, ValidateHours(hours("0.25")))
	assert.NoError(t, ValidateHours(hours("8")))
	assert.NoError(t, ValidateHours(hours("24")))

	assert.ErrorIs(t, ValidateHours(hours("0")), ErrInvalidHours)
	assert.ErrorIs(t, ValidateHours(hours("0.2")), ErrInvalidHours)
	assert.ErrorIs(t, ValidateHours(hours("24.25")), ErrInvalidHours)
	assert.ErrorIs(t, ValidateHours(hours("-1")), ErrInvalidHours)

	assert.ErrorIs(t, ValidateHours(hours("1.1")), ErrNotQuarterHour)
	assert.ErrorIs(t, ValidateHours(hours("7.33")), ErrNotQuarterHour)
}

func TestParseEntryDateStrictFormat(t *testing.T) {
	_, err := ParseEntryDate("2025-03-12")
	assert.NoError(t, err)

	for _, bad := range []string{"12/03/2025", "2025-3-12", "2025-03-12T00:00:00Z", ""} {
		_, err := ParseEntryDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestTotalHoursIsExact(t *testing.T) {
	entries := []Entry{
		{Hours: hours("0.25")}, {Hours: hours("0.25")}, {Hours: hours("0.25")},
		{Hours: hours("0.25")}, {Hours: hours("0.25")}, {Hours: hours("0.25")},
	}
	assert.True(t, TotalHours(entries).Equal(hours("1.5")))
}

func TestQuarterHoursRoundTrip(t *testing.T) {
	for _, h := range []string{"0.25", "0.5", "8", "23.75", "24"} {
		d := hours(h)
		assert.True(t, HoursFromQuarters(QuarterHours(d)).Equal(d), h)
	}
}

func TestBuildWeekAggregates(t *testing.T) {
	weekStart := date("2025-03-09")
	entries := []Entry{
		{EntryDate: date("2025-03-10"), Hours: hours("8"), Status: StatusDraft},
		{EntryDate: date("2025-03-10"), Hours: hours("1.5"), Status: StatusDraft},
		{EntryDate: date("2025-03-11"), Hours: hours("6"), Status: StatusDraft},
	}

	week := BuildWeek("user-1", weekStart, entries)

	assert.Equal(t, StatusDraft, week.Status)
	assert.True(t, week.TotalHours.Equal(hours("15.5")))
	assert.True(t, week.DayTotals["2025-03-10"].Equal(hours("9.5")))
	assert.True(t, week.DayTotals["2025-03-11"].Equal(hours("6")))
	assert.Equal(t, date("2025-03-15"), week.WeekEndDate)
}
