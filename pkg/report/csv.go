package report

import (
	"bytes"
	"encoding/csv"
	"time"
)

var csvHeader = []string{"Date", "Collaborator", "Project", "Activity", "Hours", "Status", "Description"}

// RenderCSV writes the report as CSV: a header, one line per row and a
// trailing total line. Hours use a dot decimal separator.
func RenderCSV(r Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, row := range r.Rows {
		record := []string{
			row.EntryDate.Format(time.DateOnly),
			row.FullName,
			row.ProjectCode + " - " + row.ProjectName,
			row.ActivityName,
			row.Hours().String(),
			string(row.Status),
			row.Description,
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	total := []string{"Total", "", "", "", r.TotalHours.String(), "", ""}
	if err := writer.Write(total); err != nil {
		return nil, err
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
