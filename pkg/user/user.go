package user

import "time"

type Role string

const (
	RoleCollaborator Role = "COLABORADOR"
	RoleManager      Role = "GESTOR"
	RoleDirector     Role = "DIRETOR"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCollaborator, RoleManager, RoleDirector:
		return true
	}
	return false
}

type Status string

const (
	StatusActive   Status = "ATIVO"
	StatusInactive Status = "INATIVO"
)

type User struct {
	ID              string
	FullName        string
	Email           string
	CPF             string
	Matricula       string
	PasswordHash    string
	Role            Role
	Status          Status
	DepartmentID    string
	ManagerID       string
	Timezone        string
	WeeklyHours     int
	AdmissionDate   *time.Time
	TerminationDate *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (u User) IsManager() bool {
	return u.Role == RoleManager
}

func (u User) IsDirector() bool {
	return u.Role == RoleDirector
}

// CanApprove reports whether the user may act on the approval endpoints at all.
// Whether a given target is in scope is decided by CanActOn.
func (u User) CanApprove() bool {
	return u.Role == RoleManager || u.Role == RoleDirector
}

// CanActOn is the authority predicate for cross-user operations: a user can
// always act on themselves, a director can act on anyone, and a manager can
// act on their direct subordinates.
func CanActOn(actor User, target User) bool {
	if actor.ID == target.ID {
		return true
	}
	switch actor.Role {
	case RoleDirector:
		return true
	case RoleManager:
		return target.ManagerID == actor.ID
	default:
		return false
	}
}
