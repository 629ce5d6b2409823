package timesheet

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/apontei/apontei/internal/rest"
	"github.com/apontei/apontei/pkg/assignment"
	"github.com/apontei/apontei/pkg/user"
)

type EntryDTO struct {
	ID              string          `json:"id,omitempty"`
	UserID          string          `json:"userId,omitempty"`
	ProjectID       string          `json:"projectId"`
	ActivityID      string          `json:"activityId"`
	EntryDate       string          `json:"entryDate"`
	Hours           decimal.Decimal `json:"hours"`
	Description     string          `json:"description,omitempty"`
	WeekStartDate   string          `json:"weekStartDate,omitempty"`
	Status          string          `json:"status,omitempty"`
	SubmittedAt     *time.Time      `json:"submittedAt,omitempty"`
	ApprovedAt      *time.Time      `json:"approvedAt,omitempty"`
	ApprovedBy      string          `json:"approvedBy,omitempty"`
	RejectionReason string          `json:"rejectionReason,omitempty"`
	ProjectName     string          `json:"projectName,omitempty"`
	ProjectCode     string          `json:"projectCode,omitempty"`
	ActivityName    string          `json:"activityName,omitempty"`
	ActivityType    string          `json:"activityType,omitempty"`
}

type WeekDTO struct {
	UserID        string                     `json:"userId"`
	WeekStartDate string                     `json:"weekStartDate"`
	WeekEndDate   string                     `json:"weekEndDate"`
	Status        string                     `json:"status"`
	TotalHours    decimal.Decimal            `json:"totalHours"`
	DayTotals     map[string]decimal.Decimal `json:"dayTotals"`
	Entries       []EntryDTO                 `json:"entries"`
}

type PendingWeekDTO struct {
	UserID        string          `json:"userId"`
	FullName      string          `json:"fullName"`
	Email         string          `json:"email"`
	WeekStartDate string          `json:"weekStartDate"`
	EntriesCount  int             `json:"entriesCount"`
	TotalHours    decimal.Decimal `json:"totalHours"`
	SubmittedAt   time.Time       `json:"submittedAt"`
}

type SubmitResultDTO struct {
	SubmittedCount int     `json:"submittedCount"`
	Week           WeekDTO `json:"week"`
}

type DecisionDTO struct {
	UserID        string `json:"userId"`
	WeekStartDate string `json:"weekStartDate"`
	Reason        string `json:"reason,omitempty"`
}

type Handler struct {
	service  Service
	workflow Workflow
}

func NewHandler(service Service, workflow Workflow) *Handler {
	return &Handler{service: service, workflow: workflow}
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto EntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	if dto.ProjectID == "" || dto.ActivityID == "" || dto.EntryDate == "" {
		writeError(w, http.StatusBadRequest, "projectId, activityId and entryDate are required")
		return
	}
	entryDate, err := ParseEntryDate(dto.EntryDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.service.CreateEntry(r.Context(), EntryInput{
		ProjectID:   dto.ProjectID,
		ActivityID:  dto.ActivityID,
		EntryDate:   entryDate,
		Hours:       dto.Hours,
		Description: dto.Description,
	})
	if err != nil {
		writeServiceError(w, err, "Failed to create entry")
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(entryToDTO(entry)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	entryID := mux.Vars(r)["entryId"]

	var body struct {
		ProjectID   *string          `json:"projectId"`
		ActivityID  *string          `json:"activityId"`
		EntryDate   *string          `json:"entryDate"`
		Hours       *decimal.Decimal `json:"hours"`
		Description *string          `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}

	update := EntryUpdate{
		ProjectID:   body.ProjectID,
		ActivityID:  body.ActivityID,
		Hours:       body.Hours,
		Description: body.Description,
	}
	if body.EntryDate != nil {
		d, err := ParseEntryDate(*body.EntryDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		update.EntryDate = &d
	}

	entry, err := h.service.UpdateEntry(r.Context(), entryID, update)
	if err != nil {
		writeServiceError(w, err, "Failed to update entry")
		return
	}
	if err := json.NewEncoder(w).Encode(entryToDTO(entry)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	entryID := mux.Vars(r)["entryId"]

	if err := h.service.DeleteEntry(r.Context(), entryID); err != nil {
		writeServiceError(w, err, "Failed to delete entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		currentID, err := user.CurrentID(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		userID = currentID
	}
	from, err := ParseEntryDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "from must be in YYYY-MM-DD format")
		return
	}
	to, err := ParseEntryDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "to must be in YYYY-MM-DD format")
		return
	}

	entries, err := h.service.ListEntries(r.Context(), userID, from, to)
	if err != nil {
		writeServiceError(w, err, "Failed to list entries")
		return
	}
	dtos := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, entryToDTO(e))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		currentID, err := user.CurrentID(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		userID = currentID
	}
	date, err := ParseEntryDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
		return
	}

	week, err := h.service.GetWeek(r.Context(), userID, date)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch week")
		return
	}
	if err := json.NewEncoder(w).Encode(weekToDTO(week)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) SubmitWeek(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto DecisionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil || dto.WeekStartDate == "" {
		writeError(w, http.StatusBadRequest, "weekStartDate is required")
		return
	}
	weekStart, err := ParseEntryDate(dto.WeekStartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	week, count, err := h.workflow.Submit(r.Context(), weekStart)
	if err != nil {
		writeServiceError(w, err, "Failed to submit week")
		return
	}
	result := SubmitResultDTO{SubmittedCount: count, Week: weekToDTO(week)}
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) ApproveWeek(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto DecisionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil || dto.UserID == "" || dto.WeekStartDate == "" {
		writeError(w, http.StatusBadRequest, "userId and weekStartDate are required")
		return
	}
	weekStart, err := ParseEntryDate(dto.WeekStartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	count, err := h.workflow.Approve(r.Context(), dto.UserID, weekStart)
	if err != nil {
		writeServiceError(w, err, "Failed to approve week")
		return
	}
	if err := json.NewEncoder(w).Encode(map[string]int{"approvedCount": count}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) RejectWeek(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto DecisionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil || dto.UserID == "" || dto.WeekStartDate == "" {
		writeError(w, http.StatusBadRequest, "userId and weekStartDate are required")
		return
	}
	weekStart, err := ParseEntryDate(dto.WeekStartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	count, err := h.workflow.Reject(r.Context(), dto.UserID, weekStart, dto.Reason)
	if err != nil {
		writeServiceError(w, err, "Failed to reject week")
		return
	}
	if err := json.NewEncoder(w).Encode(map[string]int{"rejectedCount": count}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) PendingApprovals(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	pending, err := h.workflow.PendingApprovals(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to list pending approvals")
		return
	}
	dtos := make([]PendingWeekDTO, 0, len(pending))
	for _, p := range pending {
		dtos = append(dtos, PendingWeekDTO{
			UserID:        p.UserID,
			FullName:      p.FullName,
			Email:         p.Email,
			WeekStartDate: p.WeekStartDate.Format(time.DateOnly),
			EntriesCount:  p.EntriesCount,
			TotalHours:    HoursFromQuarters(p.TotalQuarters),
			SubmittedAt:   p.SubmittedAt,
		})
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeServiceError maps domain errors onto HTTP statuses; anything
// unrecognized is a 500 with a generic message.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrEntryNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, user.ErrNoUser):
		writeError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, ErrInvalidHours),
		errors.Is(err, ErrNotQuarterHour),
		errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrInvalidReason),
		errors.Is(err, ErrNoFieldsToUpdate),
		errors.Is(err, ErrDayOverflow),
		errors.Is(err, ErrEntryNotEditable),
		errors.Is(err, ErrEmptyWeek),
		errors.Is(err, assignment.ErrNotAssigned),
		errors.Is(err, assignment.ErrActivityUnavailable):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Errorf("%s: %v", fallback, err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func entryToDTO(e Entry) EntryDTO {
	return EntryDTO{
		ID:              e.ID,
		UserID:          e.UserID,
		ProjectID:       e.ProjectID,
		ActivityID:      e.ActivityID,
		EntryDate:       e.EntryDate.Format(time.DateOnly),
		Hours:           e.Hours,
		Description:     e.Description,
		WeekStartDate:   e.WeekStartDate.Format(time.DateOnly),
		Status:          string(e.Status),
		SubmittedAt:     e.SubmittedAt,
		ApprovedAt:      e.ApprovedAt,
		ApprovedBy:      e.ApprovedBy,
		RejectionReason: e.RejectionReason,
		ProjectName:     e.ProjectName,
		ProjectCode:     e.ProjectCode,
		ActivityName:    e.ActivityName,
		ActivityType:    e.ActivityType,
	}
}

func weekToDTO(week Week) WeekDTO {
	entries := make([]EntryDTO, 0, len(week.Entries))
	for _, e := range week.Entries {
		entries = append(entries, entryToDTO(e))
	}
	return WeekDTO{
		UserID:        week.UserID,
		WeekStartDate: week.WeekStartDate.Format(time.DateOnly),
		WeekEndDate:   week.WeekEndDate.Format(time.DateOnly),
		Status:        string(week.Status),
		TotalHours:    week.TotalHours,
		DayTotals:     week.DayTotals,
		Entries:       entries,
	}
}
