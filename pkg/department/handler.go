package department

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

type DepartmentDTO struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
	ManagerID   string `json:"managerId,omitempty"`
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
		writeError(w, http.StatusForbidden, "Only directors can manage departments")
		return
	}

	var dto DepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	if dto.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	now := time.Now().UTC()
	d := Department{
		ID:          uuid.NewString(),
		Name:        dto.Name,
		Code:        dto.Code,
		Description: dto.Description,
		ManagerID:   dto.ManagerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := h.repo.Create(r.Context(), d)
	if err != nil {
		log.Errorf("failed to create department: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create department")
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(toDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	departments, err := h.repo.List(r.Context())
	if err != nil {
		log.Errorf("failed to list departments: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list departments")
		return
	}

	dtos := make([]DepartmentDTO, 0, len(departments))
	for _, d := range departments {
		dtos = append(dtos, toDTO(d))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["departmentId"]

	current, err := user.CurrentUser(r.Context())
	if err != nil || !current.IsDirector() {
		writeError(w, http.StatusForbidden, "Only directors can manage departments")
		return
	}

	existing, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrDepartmentNotFound) {
			writeError(w, http.StatusNotFound, "Department not found")
			return
		}
		log.Errorf("failed to find department: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to update department")
		return
	}

	var dto DepartmentDTO
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
	existing.UpdatedAt = time.Now().UTC()

	ok, err := h.repo.Update(r.Context(), existing)
	if err != nil {
		log.Errorf("failed to update department: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to update department")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Department not found")
		return
	}
	if err := json.NewEncoder(w).Encode(toDTO(existing)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["departmentId"]

	current, err := user.CurrentUser(r.Context())
	if err != nil || !current.IsDirector() {
		writeError(w, http.StatusForbidden, "Only directors can manage departments")
		return
	}

	ok, err := h.repo.SoftDelete(r.Context(), id, time.Now().UTC())
	if err != nil {
		log.Errorf("failed to delete department: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete department")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Department not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toDTO(d Department) DepartmentDTO {
	return DepartmentDTO{
		ID:          d.ID,
		Name:        d.Name,
		Code:        d.Code,
		Description: d.Description,
		ManagerID:   d.ManagerID,
	}
}
