package assignment

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/apontei/apontei/internal/rest"
	"github.com/apontei/apontei/pkg/user"
)

type AssignmentDTO struct {
	ID        string `json:"id,omitempty"`
	UserID    string `json:"userId"`
	ProjectID string `json:"projectId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate,omitempty"`
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
	if err != nil || !current.CanApprove() {
		writeError(w, http.StatusForbidden, "Only managers and directors can manage assignments")
		return
	}

	var dto AssignmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	if dto.UserID == "" || dto.ProjectID == "" || dto.StartDate == "" {
		writeError(w, http.StatusBadRequest, "userId, projectId and startDate are required")
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
		if d.Before(startDate) {
			writeError(w, http.StatusBadRequest, "endDate must not be before startDate")
			return
		}
		endDate = &d
	}

	now := time.Now().UTC()
	a := Assignment{
		ID:        uuid.NewString(),
		UserID:    dto.UserID,
		ProjectID: dto.ProjectID,
		StartDate: startDate,
		EndDate:   endDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := h.repo.Create(r.Context(), a)
	if err != nil {
		log.Errorf("failed to create assignment: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create assignment")
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(toDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) ListForUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	userID := mux.Vars(r)["userId"]

	current, err := user.CurrentUser(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	if userID != current.ID && !current.CanApprove() {
		writeError(w, http.StatusForbidden, "You cannot view assignments of this user")
		return
	}

	assignments, err := h.repo.ListForUser(r.Context(), userID)
	if err != nil {
		log.Errorf("failed to list assignments: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list assignments")
		return
	}

	dtos := make([]AssignmentDTO, 0, len(assignments))
	for _, a := range assignments {
		dtos = append(dtos, toDTO(a))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["assignmentId"]

	current, err := user.CurrentUser(r.Context())
	if err != nil || !current.CanApprove() {
		writeError(w, http.StatusForbidden, "Only managers and directors can manage assignments")
		return
	}

	var body struct {
		EndDate string `json:"endDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.EndDate == "" {
		writeError(w, http.StatusBadRequest, "endDate is required")
		return
	}
	endDate, err := time.Parse(time.DateOnly, body.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "endDate must be in YYYY-MM-DD format")
		return
	}

	ok, err := h.repo.End(r.Context(), id, endDate, time.Now().UTC())
	if err != nil {
		log.Errorf("failed to end assignment: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to end assignment")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Assignment not found")
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

func toDTO(a Assignment) AssignmentDTO {
	dto := AssignmentDTO{
		ID:        a.ID,
		UserID:    a.UserID,
		ProjectID: a.ProjectID,
		StartDate: a.StartDate.Format(time.DateOnly),
	}
	if a.EndDate != nil {
		dto.EndDate = a.EndDate.Format(time.DateOnly)
	}
	return dto
}
