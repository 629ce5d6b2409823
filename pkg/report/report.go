package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/apontei/apontei/pkg/timesheet"
)

// Row is one reported entry line, denormalized for rendering.
type Row struct {
	UserID       string
	FullName     string
	ProjectCode  string
	ProjectName  string
	ActivityName string
	EntryDate    time.Time
	Quarters     int
	Status       timesheet.Status
	Description  string
}

func (r Row) Hours() decimal.Decimal {
	return timesheet.HoursFromQuarters(r.Quarters)
}

// Report is the aggregated result for a period: the detail rows plus totals
// computed once, so JSON and CSV render the same numbers.
type Report struct {
	From       time.Time
	To         time.Time
	Rows       []Row
	TotalHours decimal.Decimal
	ByUser     map[string]decimal.Decimal
	ByProject  map[string]decimal.Decimal
}

// Build assembles a report from its rows.
func Build(from time.Time, to time.Time, rows []Row) Report {
	r := Report{
		From:      from,
		To:        to,
		Rows:      rows,
		ByUser:    make(map[string]decimal.Decimal),
		ByProject: make(map[string]decimal.Decimal),
	}
	total := decimal.Zero
	for _, row := range rows {
		h := row.Hours()
		total = total.Add(h)
		r.ByUser[row.FullName] = r.ByUser[row.FullName].Add(h)
		r.ByProject[row.ProjectCode] = r.ByProject[row.ProjectCode].Add(h)
	}
	r.TotalHours = total
	return r
}
