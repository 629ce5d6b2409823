package department

import "time"

type Department struct {
	ID          string
	Name        string
	Code        string
	Description string
	ManagerID   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
