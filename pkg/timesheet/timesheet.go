package timesheet

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the approval state of a single entry. A week's status is derived
// from its entries, never stored.
type Status string

const (
	StatusDraft           Status = "RASCUNHO"
	StatusSubmitted       Status = "ENVIADO"
	StatusManagerApproved Status = "APROVADO_GESTOR"
	StatusManagerRejected Status = "REPROVADO_GESTOR"

	// Director tier states exist in the data model for a second approval
	// level that is not wired to any transition yet.
	StatusDirectorApproved Status = "APROVADO_DIRETOR"
	StatusDirectorRejected Status = "REPROVADO_DIRETOR"
)

// Editable reports whether an entry in this status may be changed or deleted
// by its owner. Only drafts are. A rejected entry stays rejected as history;
// the owner logs fresh draft entries under the same week and resubmits.
func (s Status) Editable() bool {
	return s == StatusDraft
}

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusManagerApproved, StatusManagerRejected,
		StatusDirectorApproved, StatusDirectorRejected:
		return true
	}
	return false
}

// statusRank orders statuses for week derivation: the least advanced state
// present among a week's entries wins.
var statusRank = map[Status]int{
	StatusDraft:            0,
	StatusSubmitted:        1,
	StatusManagerRejected:  2,
	StatusManagerApproved:  3,
	StatusDirectorRejected: 4,
	StatusDirectorApproved: 5,
}

// DeriveWeekStatus reduces the statuses of a week's entries to a single week
// status. An empty week is a draft.
func DeriveWeekStatus(statuses []Status) Status {
	if len(statuses) == 0 {
		return StatusDraft
	}
	result := statuses[0]
	for _, s := range statuses[1:] {
		if statusRank[s] < statusRank[result] {
			result = s
		}
	}
	return result
}

// Entry is one logged block of work: a user, a project activity, a date and
// a duration in hours. Hours are kept as exact decimals; storage uses integer
// quarter hours.
type Entry struct {
	ID          string
	UserID      string
	ProjectID   string
	ActivityID  string
	EntryDate   time.Time
	Hours       decimal.Decimal
	Description string
	// WeekStartDate anchors the entry to its approval week. Set on write,
	// never edited directly.
	WeekStartDate   time.Time
	Status          Status
	SubmittedAt     *time.Time
	ApprovedAt      *time.Time
	ApprovedBy      string
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Denormalized for read endpoints, populated by list queries.
	ProjectName  string
	ProjectCode  string
	ActivityName string
	ActivityType string
}

// Week is the aggregated view of a user's entries for one approval week.
type Week struct {
	UserID        string
	WeekStartDate time.Time
	WeekEndDate   time.Time
	Status        Status
	TotalHours    decimal.Decimal
	DayTotals     map[string]decimal.Decimal
	Entries       []Entry
}

// WeekStart returns the start of the approval week containing date, for a
// configurable first day of the week.
func WeekStart(date time.Time, firstDay time.Weekday) time.Time {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) - int(firstDay) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekEnd is the last day of the approval week starting at weekStart.
func WeekEnd(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, 6)
}

// TotalHours sums entry hours exactly.
func TotalHours(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Hours)
	}
	return total
}

// BuildWeek assembles the aggregated week view from its entries.
func BuildWeek(userID string, weekStart time.Time, entries []Entry) Week {
	statuses := make([]Status, 0, len(entries))
	dayTotals := make(map[string]decimal.Decimal)
	for _, e := range entries {
		statuses = append(statuses, e.Status)
		day := e.EntryDate.Format(time.DateOnly)
		dayTotals[day] = dayTotals[day].Add(e.Hours)
	}
	return Week{
		UserID:        userID,
		WeekStartDate: weekStart,
		WeekEndDate:   WeekEnd(weekStart),
		Status:        DeriveWeekStatus(statuses),
		TotalHours:    TotalHours(entries),
		DayTotals:     dayTotals,
		Entries:       entries,
	}
}

// QuarterHours converts exact decimal hours to the integer quarter-hour
// representation used by storage. Callers validate quarter alignment first.
func QuarterHours(hours decimal.Decimal) int {
	return int(hours.Mul(decimal.NewFromInt(4)).IntPart())
}

// HoursFromQuarters is the inverse of QuarterHours.
func HoursFromQuarters(quarters int) decimal.Decimal {
	return decimal.NewFromInt(int64(quarters)).Div(decimal.NewFromInt(4))
}
