package project

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/apontei/apontei/internal/rest"
	"github.com/apontei/apontei/pkg/user"
)

type ProjectDTO struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	ManagerID   string `json:"managerId"`
	Client      string `json:"client,omitempty"`
	CostCenter  string `json:"costCenter,omitempty"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate,omitempty"`
	Status      string `json:"status,omitempty"`
	BudgetHours int    `json:"budgetHours,omitempty"`
}

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	current, err := user.CurrentUser(r.Context())
	if err != nil || !current.IsDirector() {
		writeError(w, http.StatusForbidden, "Only directors can manage projects")
		return
	}

	var dto ProjectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	if dto.Name == "" || dto.Code == "" || dto.ManagerID == "" || dto.StartDate == "" {
		writeError(w, http.StatusBadRequest, "name, code, managerId and startDate are required")
		return
	}
	startDate, err := time.Parse(time.DateOnly, dto.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "startDate must be in YYYY-MM-DD format")
		return
	}
	var endDate *time.Time
	if dto.EndDate != "" {
		d, err := time.Parse(time.DateOnly, dto.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "endDate must be in YYYY-MM-DD format")
			return
		}
		endDate = &d
	}
	status := StatusPlanning
	if dto.Status != "" {
		if !validStatus(Status(dto.Status)) {
			writeError(w, http.StatusBadRequest, "Invalid project status")
			return
		}
		status = Status(dto.Status)
	}

	now := time.Now().UTC()
	p := Project{
		ID:          uuid.NewString(),
		Name:        dto.Name,
		Code:        dto.Code,
		Description: dto.Description,
		ManagerID:   dto.ManagerID,
		Client:      dto.Client,
		CostCenter:  dto.CostCenter,
		StartDate:   startDate,
		EndDate:     endDate,
		Status:      status,
		BudgetHours: dto.BudgetHours,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := h.repo.Create(r.Context(), p)
	if err != nil {
		log.Errorf("failed to create project: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create project")
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(toDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	projects, err := h.repo.List(r.Context())
	if err != nil {
		log.Errorf("failed to list projects: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list projects")
		return
	}

	dtos := make([]ProjectDTO, 0, len(projects))
	for _, p := range projects {
		dtos = append(dtos, toDTO(p))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["projectId"]

	p, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			writeError(w, http.StatusNotFound, "Project not found")
			return
		}
		log.Errorf("failed to find project: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch project")
		return
	}
	if err := json.NewEncoder(w).Encode(toDTO(p)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["projectId"]

	current, err := user.CurrentUser(r.Context())
	if err != nil || !current.IsDirector() {
		writeError(w, http.StatusForbidden, "Only directors can manage projects")
		return
	}

	existing, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			writeError(w, http.StatusNotFound, "Project not found")
			return
		}
		log.Errorf("failed to find project: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to update project")
		return
	}

	var dto ProjectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}

	if dto.Name != "" {
		existing.Name = dto.Name
	}
	if dto.Code != "" {
		existing.Code = dto.Code
	}
	if dto.Description != "" {
		existing.Description = dto.Description
	}
	if dto.ManagerID != "" {
		existing.ManagerID = dto.ManagerID
	}
	if dto.Client != "" {
		existing.Client = dto.Client
	}
	if dto.CostCenter != "" {
		existing.CostCenter = dto.CostCenter
	}
	if dto.StartDate != "" {
		d, err := time.Parse(time.DateOnly, dto.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "startDate must be in YYYY-MM-DD format")
			return
		}
		existing.StartDate = d
	}
	if dto.EndDate != "" {
		d, err := time.Parse(time.DateOnly, dto.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "endDate must be in YYYY-MM-DD format")
			return
		}
		existing.EndDate = &d
	}
	if dto.Status != "" {
		if !validStatus(Status(dto.Status)) {
			writeError(w, http.StatusBadRequest, "Invalid project status")
			return
		}
		existing.Status = Status(dto.Status)
	}
	if dto.BudgetHours != 0 {
		existing.BudgetHours = dto.BudgetHours
	}
	existing.UpdatedAt = time.Now().UTC()

	ok, err := h.repo.Update(r.Context(), existing)
	if err != nil {
		log.Errorf("failed to update project: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to update project")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err := json.NewEncoder(w).Encode(toDTO(existing)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["projectId"]

	current, err := user.CurrentUser(r.Context())
	if err != nil || !current.IsDirector() {
		writeError(w, http.StatusForbidden, "Only directors can manage projects")
		return
	}

	ok, err := h.repo.SoftDelete(r.Context(), id, time.Now().UTC())
	if err != nil {
		log.Errorf("failed to delete project: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete project")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validStatus(s Status) bool {
	switch s {
	case StatusPlanning, StatusActive, StatusPaused, StatusDone, StatusCancelled:
		return true
	}
	return false
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toDTO(p Project) ProjectDTO {
	dto := ProjectDTO{
		ID:          p.ID,
		Name:        p.Name,
		Code:        p.Code,
		Description: p.Description,
		ManagerID:   p.ManagerID,
		Client:      p.Client,
		CostCenter:  p.CostCenter,
		StartDate:   p.StartDate.Format(time.DateOnly),
		Status:      string(p.Status),
		BudgetHours: p.BudgetHours,
	}
	if p.EndDate != nil {
		dto.EndDate = p.EndDate.Format(time.DateOnly)
	}
	return dto
}
