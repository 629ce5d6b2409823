package template

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is one planned entry inside a template. DayOffset counts days from
// the start of the week the template is applied to.
type Item struct {
	ProjectID   string          `json:"projectId"`
	ActivityID  string          `json:"activityId"`
	DayOffset   int             `json:"dayOffset"`
	Hours       decimal.Decimal `json:"hours"`
	Description string          `json:"description,omitempty"`
}

// Template is a reusable week layout a collaborator stamps onto a new week.
type Template struct {
	ID        string
	UserID    string
	Name      string
	IsDefault bool
	Items     []Item
	CreatedAt time.Time
	UpdatedAt time.Time
}
