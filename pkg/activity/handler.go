package activity

import (
	"context"
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

type ActivityDTO struct {
	ID           string `json:"id,omitempty"`
	ProjectID    string `json:"projectId"`
	Name         string `json:"name"`
	Code         string `json:"code,omitempty"`
	Type         string `json:"type"`
	Description  string `json:"description,omitempty"`
	Status       string `json:"status,omitempty"`
	DisplayOrder int    `json:"displayOrder,omitempty"`
}

// ProjectChecker confirms the referenced project exists before an activity is
// attached to it.
type ProjectChecker func(ctx context.Context, projectID string) error

type Handler struct {
	repo         Repository
	checkProject ProjectChecker
}

func NewHandler(repo Repository, checkProject ProjectChecker) *Handler {
	return &Handler{repo: repo, checkProject: checkProject}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	current, err := user.CurrentUser(r.Context())
	if err != nil || !current.CanApprove() {
		writeError(w, http.StatusForbidden, "Only managers and directors can manage activities")
		return
	}

	var dto ActivityDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	if dto.ProjectID == "" || dto.Name == "" || dto.Type == "" {
		writeError(w, http.StatusBadRequest, "projectId, name and type are required")
		return
	}
	if err := h.checkProject(r.Context(), dto.ProjectID); err != nil {
		writeError(w, http.StatusBadRequest, "Project not found")
		return
	}

	now := time.Now().UTC()
	a := Activity{
		ID:           uuid.NewString(),
		ProjectID:    dto.ProjectID,
		Name:         dto.Name,
		Code:         dto.Code,
		Type:         dto.Type,
		Description:  dto.Description,
		Status:       StatusActive,
		DisplayOrder: dto.DisplayOrder,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := h.repo.Create(r.Context(), a)
	if err != nil {
		log.Errorf("failed to create activity: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create activity")
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(toDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) ListForProject(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	projectID := mux.Vars(r)["projectId"]

	activities, err := h.repo.ListForProject(r.Context(), projectID)
	if err != nil {
		log.Errorf("failed to list activities: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list activities")
		return
	}

	dtos := make([]ActivityDTO, 0, len(activities))
	for _, a := range activities {
		dtos = append(dtos, toDTO(a))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["activityId"]

	current, err := user.CurrentUser(r.Context())
	if err != nil || !current.CanApprove() {
		writeError(w, http.StatusForbidden, "Only managers and directors can manage activities")
		return
	}

	existing, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrActivityNotFound) {
			writeError(w, http.StatusNotFound, "Activity not found")
			return
		}
		log.Errorf("failed to find activity: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to update activity")
		return
	}

	var dto ActivityDTO
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
	if dto.Type != "" {
		existing.Type = dto.Type
	}
	if dto.Description != "" {
		existing.Description = dto.Description
	}
	if dto.Status != "" {
		if dto.Status != string(StatusActive) && dto.Status != string(StatusInactive) {
			writeError(w, http.StatusBadRequest, "status must be ATIVA or INATIVA")
			return
		}
		existing.Status = Status(dto.Status)
	}
	if dto.DisplayOrder != 0 {
		existing.DisplayOrder = dto.DisplayOrder
	}
	existing.UpdatedAt = time.Now().UTC()

	ok, err := h.repo.Update(r.Context(), existing)
	if err != nil {
		log.Errorf("failed to update activity: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to update activity")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Activity not found")
		return
	}

	if err := json.NewEncoder(w).Encode(toDTO(existing)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["activityId"]

	current, err := user.CurrentUser(r.Context())
	if err != nil || !current.CanApprove() {
		writeError(w, http.StatusForbidden, "Only managers and directors can manage activities")
		return
	}

	ok, err := h.repo.SoftDelete(r.Context(), id, time.Now().UTC())
	if err != nil {
		log.Errorf("failed to delete activity: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete activity")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Activity not found")
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

func toDTO(a Activity) ActivityDTO {
	return ActivityDTO{
		ID:           a.ID,
		ProjectID:    a.ProjectID,
		Name:         a.Name,
		Code:         a.Code,
		Type:         a.Type,
		Description:  a.Description,
		Status:       string(a.Status),
		DisplayOrder: a.DisplayOrder,
	}
}
