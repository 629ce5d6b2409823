package audit

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apontei/apontei/pkg/user"
)

func sampleEvents() []Event {
	return []Event{
		{
			ID:             "ev-1",
			Timestamp:      time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC),
			UserID:         "manager-1",
			AffectedUserID: "collab-1",
			EntityType:     EntityTimesheetWeek,
			EntityID:       "2025-03-09",
			Action:         ActionReject,
			Justification:  "Hours do not match the sprint log",
		},
		{
			ID:         "ev-2",
			Timestamp:  time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC),
			UserID:     "collab-1",
			EntityType: EntityTimesheetEntry,
			EntityID:   "e-1",
			Action:     ActionCreate,
		},
	}
}

func TestRenderCSV(t *testing.T) {
	data, err := RenderCSV(sampleEvents())

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Timestamp,User,AffectedUser,EntityType,EntityID,Action,Justification", lines[0])
	assert.Contains(t, lines[1], "2025-03-14T18:30:00Z")
	assert.Contains(t, lines[1], "REJECT")
	assert.Contains(t, lines[1], "Hours do not match the sprint log")
	assert.Contains(t, lines[2], "TIMESHEET_ENTRY")
}

type stubAuditRepo struct {
	events []Event
}

func (s *stubAuditRepo) Insert(_ context.Context, e Event) error {
	s.events = append(s.events, e)
	return nil
}

func (s *stubAuditRepo) Query(context.Context, Filter) ([]Event, error) {
	return s.events, nil
}

func TestListCSVDownload(t *testing.T) {
	handler := NewHandler(&stubAuditRepo{events: sampleEvents()})
	director := user.User{ID: "director-1", Role: user.RoleDirector}
	request := httptest.NewRequest("GET", "/api/audit?format=csv", nil)
	request = request.WithContext(user.WithUser(request.Context(), director))
	recorder := httptest.NewRecorder()

	handler.List(recorder, request)

	require.Equal(t, 200, recorder.Code)
	assert.Equal(t, "text/csv", recorder.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="audit.csv"`, recorder.Header().Get("Content-Disposition"))
	assert.Contains(t, recorder.Body.String(), "Timestamp,User,AffectedUser")
}

func TestListForbiddenForManagers(t *testing.T) {
	handler := NewHandler(&stubAuditRepo{})
	manager := user.User{ID: "manager-1", Role: user.RoleManager}
	request := httptest.NewRequest("GET", "/api/audit", nil)
	request = request.WithContext(user.WithUser(request.Context(), manager))
	recorder := httptest.NewRecorder()

	handler.List(recorder, request)

	assert.Equal(t, 403, recorder.Code)
}
