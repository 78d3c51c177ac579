// Package export renders license sets as CSV attachments and signs a manifest
// describing each export.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"licensedesk/internal/models"
)

const (
	Filename    = "licenses.csv"
	ContentType = "text/csv; charset=utf-8"
)

// Columns is the fixed header row.
var Columns = []string{
	"id",
	"code",
	"type",
	"client_name",
	"phone",
	"status",
	"created_at",
	"end_date",
	"days_remaining",
	"devices",
	"max_devices",
	"notes",
}

// ContentDisposition is the attachment header value for an export.
func ContentDisposition() string {
	return fmt.Sprintf(`attachment; filename="%s"`, Filename)
}

// WriteCSV writes the header and one row per view, in order. Absent values are
// written as empty fields.
func WriteCSV(w io.Writer, views []models.LicenseView) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, v := range views {
		if err := cw.Write(Row(v)); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", v.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Row renders one license in Columns order.
func Row(v models.LicenseView) []string {
	return []string{
		v.ID.String(),
		v.Code,
		v.Type,
		deref(v.ClientName),
		deref(v.ClientPhone),
		string(v.Status),
		formatTime(&v.CreatedAt),
		formatTime(v.EndDate),
		formatInt(v.DaysRemaining),
		strconv.Itoa(len(v.DeviceIDs)),
		strconv.Itoa(v.MaxDevices),
		v.Notes,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
