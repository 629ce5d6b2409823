package template

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/apontei/apontei/internal/rest"
	"github.com/apontei/apontei/pkg/user"
)

type ItemDTO struct {
	ProjectID   string          `json:"projectId"`
	ActivityID  string          `json:"activityId"`
	DayOffset   int             `json:"dayOffset"`
	Hours       decimal.Decimal `json:"hours"`
	Description string          `json:"description,omitempty"`
}

type TemplateDTO struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"isDefault"`
	Items     []ItemDTO `json:"items"`
}

type SnapshotRequestDTO struct {
	Name      string `json:"name"`
	WeekDate  string `json:"weekDate"`
	IsDefault bool   `json:"isDefault"`
}

type ApplyRequestDTO struct {
	WeekDate string `json:"weekDate"`
}

type ApplyResultDTO struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto SnapshotRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil || dto.Name == "" || dto.WeekDate == "" {
		writeError(w, http.StatusBadRequest, "name and weekDate are required")
		return
	}
	weekDate, err := time.Parse(time.DateOnly, dto.WeekDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "weekDate must be in YYYY-MM-DD format")
		return
	}

	t, err := h.service.Snapshot(r.Context(), dto.Name, weekDate, dto.IsDefault)
	if err != nil {
		writeTemplateError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(toDTO(t)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	templateID := mux.Vars(r)["templateId"]

	var dto ApplyRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil || dto.WeekDate == "" {
		writeError(w, http.StatusBadRequest, "weekDate is required")
		return
	}
	weekDate, err := time.Parse(time.DateOnly, dto.WeekDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "weekDate must be in YYYY-MM-DD format")
		return
	}

	result, err := h.service.Apply(r.Context(), templateID, weekDate)
	if err != nil {
		writeTemplateError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(ApplyResultDTO{Created: result.Created, Skipped: result.Skipped}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	templates, err := h.service.List(r.Context())
	if err != nil {
		writeTemplateError(w, err)
		return
	}
	dtos := make([]TemplateDTO, 0, len(templates))
	for _, t := range templates {
		dtos = append(dtos, toDTO(t))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	templateID := mux.Vars(r)["templateId"]

	if err := h.service.Delete(r.Context(), templateID); err != nil {
		writeTemplateError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeTemplateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTemplateNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrEmptyTemplate), errors.Is(err, ErrEmptySource):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, user.ErrNoUser):
		writeError(w, http.StatusUnauthorized, "Authentication required")
	default:
		log.Errorf("template operation failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Template operation failed")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toDTO(t Template) TemplateDTO {
	items := make([]ItemDTO, 0, len(t.Items))
	for _, i := range t.Items {
		items = append(items, ItemDTO{
			ProjectID:   i.ProjectID,
			ActivityID:  i.ActivityID,
			DayOffset:   i.DayOffset,
			Hours:       i.Hours,
			Description: i.Description,
		})
	}
	return TemplateDTO{
		ID:        t.ID,
		Name:      t.Name,
		IsDefault: t.IsDefault,
		Items:     items,
	}
}
