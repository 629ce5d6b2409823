package dashboard

import (
	"github.com/shopspring/decimal"

	"github.com/apontei/apontei/pkg/timesheet"
)

// PersonalStats is what a collaborator sees when they open the app: the
// state of the current week and the month so far.
type PersonalStats struct {
	WeekStartDate   string
	WeekHours       decimal.Decimal
	WeekStatus      timesheet.Status
	MonthHours      decimal.Decimal
	DraftEntries    int
	RejectedEntries int
}

// TeamMemberStats summarizes one report's current week for a manager.
type TeamMemberStats struct {
	UserID     string
	FullName   string
	WeekHours  decimal.Decimal
	WeekStatus timesheet.Status
}

type TeamStats struct {
	WeekStartDate string
	Members       []TeamMemberStats
	PendingWeeks  int
}

// ProjectTotal is hours accumulated by one project in a period.
type ProjectTotal struct {
	ProjectCode string
	ProjectName string
	Quarters    int
}

func (p ProjectTotal) Hours() decimal.Decimal {
	return timesheet.HoursFromQuarters(p.Quarters)
}

// DepartmentTotal is hours accumulated by one department in a period.
// Collaborators without a department land in a single unassigned bucket.
type DepartmentTotal struct {
	DepartmentName string
	Quarters       int
}

func (d DepartmentTotal) Hours() decimal.Decimal {
	return timesheet.HoursFromQuarters(d.Quarters)
}

// ExecutiveStats is the director view: the whole company for the current
// month.
type ExecutiveStats struct {
	MonthStart          string
	TotalHours          decimal.Decimal
	ActiveCollaborators int
	ProjectTotals       []ProjectTotal
	DepartmentTotals    []DepartmentTotal
	StatusCounts        map[timesheet.Status]int
}
