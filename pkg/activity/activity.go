package activity

import "time"

type Status string

const (
	StatusActive   Status = "ATIVA"
	StatusInactive Status = "INATIVA"
)

type Activity struct {
	ID           string
	ProjectID    string
	Name         string
	Code         string
	Type         string
	Description  string
	Status       Status
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
