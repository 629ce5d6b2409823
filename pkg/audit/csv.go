package audit

import (
	"bytes"
	"encoding/csv"
	"time"
)

var csvHeader = []string{"Timestamp", "User", "AffectedUser", "EntityType", "EntityID", "Action", "Justification"}

// RenderCSV writes the audit trail as CSV: a header and one line per
// event. Value snapshots stay JSON-only; the CSV is the who-did-what
// view for export.
func RenderCSV(events []Event) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, e := range events {
		record := []string{
			e.Timestamp.UTC().Format(time.RFC3339),
			e.UserID,
			e.AffectedUserID,
			e.EntityType,
			e.EntityID,
			e.Action,
			e.Justification,
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
