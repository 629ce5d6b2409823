package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/apontei/apontei/internal/utils"
)

// Recorder writes audit events. Recording failures are logged, never
// propagated: an audit hiccup must not roll back the business change
// it describes.
type Recorder interface {
	Record(ctx context.Context, e Event)
}

type RecorderImpl struct {
	repo  Repository
	clock utils.Clock
}

func NewRecorder(repo Repository, clock utils.Clock) *RecorderImpl {
	return &RecorderImpl{repo: repo, clock: clock}
}

func (r *RecorderImpl) Record(ctx context.Context, e Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = r.clock.Now().UTC()
	}
	if err := r.repo.Insert(ctx, e); err != nil {
		log.Errorf("failed to record audit event %s/%s: %v", e.EntityType, e.Action, err)
	}
}

// Snapshot marshals a value for the OldValues/NewValues columns.
func Snapshot(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		log.Errorf("failed to marshal audit snapshot: %v", err)
		return ""
	}
	return string(data)
}

// NopRecorder discards events. Used in tests that do not assert on auditing.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) {}

// MemoryRecorder collects events in memory for assertions.
type MemoryRecorder struct {
	Events []Event
}

func (m *MemoryRecorder) Record(_ context.Context, e Event) {
	m.Events = append(m.Events, e)
}
