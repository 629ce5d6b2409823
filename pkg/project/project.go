package project

import "time"

type Status string

const (
	StatusPlanning  Status = "PLANEJAMENTO"
	StatusActive    Status = "ATIVO"
	StatusPaused    Status = "PAUSADO"
	StatusDone      Status = "CONCLUIDO"
	StatusCancelled Status = "CANCELADO"
)

type Project struct {
	ID          string
	Name        string
	Code        string
	Description string
	ManagerID   string
	Client      string
	CostCenter  string
	StartDate   time.Time
	EndDate     *time.Time
	Status      Status
	BudgetHours int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
