package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/apontei/apontei/internal/rest"
	"github.com/apontei/apontei/pkg/user"
)

type PersonalStatsDTO struct {
	WeekStartDate   string          `json:"weekStartDate"`
	WeekHours       decimal.Decimal `json:"weekHours"`
	WeekStatus      string          `json:"weekStatus"`
	MonthHours      decimal.Decimal `json:"monthHours"`
	DraftEntries    int             `json:"draftEntries"`
	RejectedEntries int             `json:"rejectedEntries"`
}

type TeamMemberStatsDTO struct {
	UserID     string          `json:"userId"`
	FullName   string          `json:"fullName"`
	WeekHours  decimal.Decimal `json:"weekHours"`
	WeekStatus string          `json:"weekStatus"`
}

type TeamStatsDTO struct {
	WeekStartDate string               `json:"weekStartDate"`
	Members       []TeamMemberStatsDTO `json:"members"`
	PendingWeeks  int                  `json:"pendingWeeks"`
}

type ProjectTotalDTO struct {
	ProjectCode string          `json:"projectCode"`
	ProjectName string          `json:"projectName"`
	Hours       decimal.Decimal `json:"hours"`
}

type DepartmentTotalDTO struct {
	DepartmentName string          `json:"departmentName"`
	Hours          decimal.Decimal `json:"hours"`
}

type ExecutiveStatsDTO struct {
	MonthStart          string               `json:"monthStart"`
	TotalHours          decimal.Decimal      `json:"totalHours"`
	ActiveCollaborators int                  `json:"activeCollaborators"`
	ProjectTotals       []ProjectTotalDTO    `json:"projectTotals"`
	DepartmentTotals    []DepartmentTotalDTO `json:"departmentTotals"`
	StatusCounts        map[string]int       `json:"statusCounts"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Personal(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	stats, err := h.service.Personal(r.Context())
	if err != nil {
		writeDashboardError(w, err)
		return
	}
	dto := PersonalStatsDTO{
		WeekStartDate:   stats.WeekStartDate,
		WeekHours:       stats.WeekHours,
		WeekStatus:      string(stats.WeekStatus),
		MonthHours:      stats.MonthHours,
		DraftEntries:    stats.DraftEntries,
		RejectedEntries: stats.RejectedEntries,
	}
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Team(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	stats, err := h.service.Team(r.Context())
	if err != nil {
		writeDashboardError(w, err)
		return
	}
	members := make([]TeamMemberStatsDTO, 0, len(stats.Members))
	for _, m := range stats.Members {
		members = append(members, TeamMemberStatsDTO{
			UserID:     m.UserID,
			FullName:   m.FullName,
			WeekHours:  m.WeekHours,
			WeekStatus: string(m.WeekStatus),
		})
	}
	dto := TeamStatsDTO{
		WeekStartDate: stats.WeekStartDate,
		Members:       members,
		PendingWeeks:  stats.PendingWeeks,
	}
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Executive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	stats, err := h.service.Executive(r.Context())
	if err != nil {
		writeDashboardError(w, err)
		return
	}
	totals := make([]ProjectTotalDTO, 0, len(stats.ProjectTotals))
	for _, t := range stats.ProjectTotals {
		totals = append(totals, ProjectTotalDTO{
			ProjectCode: t.ProjectCode,
			ProjectName: t.ProjectName,
			Hours:       t.Hours(),
		})
	}
	departments := make([]DepartmentTotalDTO, 0, len(stats.DepartmentTotals))
	for _, d := range stats.DepartmentTotals {
		departments = append(departments, DepartmentTotalDTO{
			DepartmentName: d.DepartmentName,
			Hours:          d.Hours(),
		})
	}
	counts := make(map[string]int, len(stats.StatusCounts))
	for status, count := range stats.StatusCounts {
		counts[string(status)] = count
	}
	dto := ExecutiveStatsDTO{
		MonthStart:          stats.MonthStart,
		TotalHours:          stats.TotalHours,
		ActiveCollaborators: stats.ActiveCollaborators,
		ProjectTotals:       totals,
		DepartmentTotals:    departments,
		StatusCounts:        counts,
	}
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeDashboardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, user.ErrNoUser):
		writeError(w, http.StatusUnauthorized, "Authentication required")
	default:
		log.Errorf("failed to build dashboard: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to build dashboard")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
