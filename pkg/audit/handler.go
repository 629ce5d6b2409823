package audit

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/apontei/apontei/internal/rest"
	"github.com/apontei/apontei/pkg/user"
)

type EventDTO struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	UserID         string    `json:"userId"`
	AffectedUserID string    `json:"affectedUserId,omitempty"`
	EntityType     string    `json:"entityType"`
	EntityID       string    `json:"entityId"`
	Action         string    `json:"action"`
	OldValues      string    `json:"oldValues,omitempty"`
	NewValues      string    `json:"newValues,omitempty"`
	Justification  string    `json:"justification,omitempty"`
}

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// List is the director's audit trail view, filterable by entity, action,
// user and period. format=csv downloads the trail instead.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	current, err := user.CurrentUser(r.Context())
	if err != nil || !current.IsDirector() {
		writeError(w, http.StatusForbidden, "Only directors can view the audit trail")
		return
	}

	q := r.URL.Query()
	filter := Filter{
		UserID:     q.Get("userId"),
		EntityType: q.Get("entityType"),
		EntityID:   q.Get("entityId"),
		Action:     q.Get("action"),
	}
	if v := q.Get("from"); v != "" {
		from, err := time.Parse(time.DateOnly, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from must be in YYYY-MM-DD format")
			return
		}
		filter.From = from
	}
	if v := q.Get("to"); v != "" {
		to, err := time.Parse(time.DateOnly, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "to must be in YYYY-MM-DD format")
			return
		}
		// Inclusive end of day.
		filter.To = to.AddDate(0, 0, 1).Add(-time.Second)
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = limit
	}

	events, err := h.repo.Query(r.Context(), filter)
	if err != nil {
		log.Errorf("failed to query audit trail: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to query audit trail")
		return
	}

	if q.Get("format") == "csv" {
		data, err := RenderCSV(events)
		if err != nil {
			log.Errorf("failed to render CSV audit trail: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to render audit trail")
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="audit.csv"`)
		if _, err := w.Write(data); err != nil {
			log.Errorf("failed to write CSV audit trail: %v", err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, EventDTO{
			ID:             e.ID,
			Timestamp:      e.Timestamp,
			UserID:         e.UserID,
			AffectedUserID: e.AffectedUserID,
			EntityType:     e.EntityType,
			EntityID:       e.EntityID,
			Action:         e.Action,
			OldValues:      e.OldValues,
			NewValues:      e.NewValues,
			Justification:  e.Justification,
		})
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
