package report

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

type RowDTO struct {
	UserID       string          `json:"userId"`
	FullName     string          `json:"fullName"`
	ProjectCode  string          `json:"projectCode"`
	ProjectName  string          `json:"projectName"`
	ActivityName string          `json:"activityName"`
	EntryDate    string          `json:"entryDate"`
	Hours        decimal.Decimal `json:"hours"`
	Status       string          `json:"status"`
	Description  string          `json:"description,omitempty"`
}

type ReportDTO struct {
	From       string                     `json:"from"`
	To         string                     `json:"to"`
	Rows       []RowDTO                   `json:"rows"`
	TotalHours decimal.Decimal            `json:"totalHours"`
	ByUser     map[string]decimal.Decimal `json:"byUser"`
	ByProject  map[string]decimal.Decimal `json:"byProject"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Individual(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		currentID, err := user.CurrentID(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		userID = currentID
	}

	report, err := h.service.Individual(r.Context(), userID, from, to)
	if err != nil {
		writeReportError(w, err)
		return
	}
	h.render(w, r, report, "individual")
}

func (h *Handler) Team(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}

	report, err := h.service.Team(r.Context(), from, to)
	if err != nil {
		writeReportError(w, err)
		return
	}
	h.render(w, r, report, "team")
}

func (h *Handler) Project(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}
	projectID := mux.Vars(r)["projectId"]

	report, err := h.service.Project(r.Context(), projectID, from, to)
	if err != nil {
		writeReportError(w, err)
		return
	}
	h.render(w, r, report, "project")
}

// render picks the output format from the query string. JSON and CSV are
// produced from the same aggregation.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, report Report, name string) {
	if r.URL.Query().Get("format") == "csv" {
		data, err := RenderCSV(report)
		if err != nil {
			log.Errorf("failed to render CSV report: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to render report")
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="report-`+name+`.csv"`)
		if _, err := w.Write(data); err != nil {
			log.Errorf("failed to write CSV report: %v", err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(toDTO(report)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	from, err := time.Parse(time.DateOnly, r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "from must be in YYYY-MM-DD format")
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse(time.DateOnly, r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "to must be in YYYY-MM-DD format")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func writeReportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, user.ErrNoUser):
		writeError(w, http.StatusUnauthorized, "Authentication required")
	default:
		log.Errorf("failed to build report: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to build report")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toDTO(report Report) ReportDTO {
	rows := make([]RowDTO, 0, len(report.Rows))
	for _, row := range report.Rows {
		rows = append(rows, RowDTO{
			UserID:       row.UserID,
			FullName:     row.FullName,
			ProjectCode:  row.ProjectCode,
			ProjectName:  row.ProjectName,
			ActivityName: row.ActivityName,
			EntryDate:    row.EntryDate.Format(time.DateOnly),
			Hours:        row.Hours(),
			Status:       string(row.Status),
			Description:  row.Description,
		})
	}
	return ReportDTO{
		From:       report.From.Format(time.DateOnly),
		To:         report.To.Format(time.DateOnly),
		Rows:       rows,
		TotalHours: report.TotalHours,
		ByUser:     report.ByUser,
		ByProject:  report.ByProject,
	}
}
