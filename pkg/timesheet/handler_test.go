package timesheet

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apontei/apontei/pkg/assignment"
)

func TestWriteServiceErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", ErrEntryNotFound, 404},
		{"forbidden", ErrForbidden, 403},
		{"invalid hours", ErrInvalidHours, 400},
		{"off grid", ErrNotQuarterHour, 400},
		{"invalid date", ErrInvalidDate, 400},
		{"invalid reason", ErrInvalidReason, 400},
		{"day overflow", ErrDayOverflow, 400},
		{"not editable", ErrEntryNotEditable, 400},
		{"empty week", ErrEmptyWeek, 400},
		{"not assigned", assignment.ErrNotAssigned, 400},
		{"activity unavailable", assignment.ErrActivityUnavailable, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()

			writeServiceError(recorder, tt.err, "fallback")

			assert.Equal(t, tt.status, recorder.Code)
		})
	}
}

type stubWorkflow struct {
	week  Week
	count int
	err   error
}

func (s stubWorkflow) Submit(context.Context, time.Time) (Week, int, error) {
	return s.week, s.count, s.err
}

func (s stubWorkflow) Approve(context.Context, string, time.Time) (int, error) {
	return s.count, s.err
}

func (s stubWorkflow) Reject(context.Context, string, time.Time, string) (int, error) {
	return s.count, s.err
}

func (s stubWorkflow) PendingApprovals(context.Context) ([]PendingWeek, error) {
	return nil, s.err
}

func TestSubmitWeekResponseCarriesSubmittedCount(t *testing.T) {
	weekStart := date("2025-03-09")
	handler := NewHandler(nil, stubWorkflow{
		week:  BuildWeek("collab-1", weekStart, nil),
		count: 3,
	})
	request := httptest.NewRequest("POST", "/api/timesheets/week/submit",
		strings.NewReader(`{"weekStartDate":"2025-03-09"}`))
	recorder := httptest.NewRecorder()

	handler.SubmitWeek(recorder, request)

	require.Equal(t, 200, recorder.Code)
	var body SubmitResultDTO
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, 3, body.SubmittedCount)
	assert.Equal(t, "2025-03-09", body.Week.WeekStartDate)
}

func TestSubmitEmptyWeekMapsToBadRequest(t *testing.T) {
	handler := NewHandler(nil, stubWorkflow{err: ErrEmptyWeek})
	request := httptest.NewRequest("POST", "/api/timesheets/week/submit",
		strings.NewReader(`{"weekStartDate":"2025-03-09"}`))
	recorder := httptest.NewRecorder()

	handler.SubmitWeek(recorder, request)

	assert.Equal(t, 400, recorder.Code)
}
