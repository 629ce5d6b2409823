package audit

import "time"

const (
	EntityTimesheetEntry = "TIMESHEET_ENTRY"
	EntityTimesheetWeek  = "TIMESHEET_WEEK"
	EntityUser           = "USER"

	ActionCreate  = "CREATE"
	ActionUpdate  = "UPDATE"
	ActionDelete  = "DELETE"
	ActionSubmit  = "SUBMIT"
	ActionApprove = "APPROVE"
	ActionReject  = "REJECT"
)

// Event is an append-only record of a state change. OldValues and NewValues
// carry JSON snapshots when the caller has them.
type Event struct {
	ID             string
	Timestamp      time.Time
	UserID         string
	AffectedUserID string
	EntityType     string
	EntityID       string
	Action         string
	OldValues      string
	NewValues      string
	Justification  string
}

// Filter narrows an audit query. Zero fields are ignored.
type Filter struct {
	UserID     string
	EntityType string
	EntityID   string
	Action     string
	From       time.Time
	To         time.Time
	Limit      int
}
