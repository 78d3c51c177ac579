package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"licensedesk/internal/models"
)

var created = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func TestWriteCSV(t *testing.T) {
	name := "Smith, Jones & Co"
	phone := "+1 555 0100"
	end := created.AddDate(0, 0, 30)
	days := 12

	full := models.LicenseView{
		License: models.License{
			ID:          uuid.New(),
			Code:        "ABCD-EFGH-JKLM",
			Type:        "pro",
			ClientName:  &name,
			ClientPhone: &phone,
			Status:      models.LicenseStatusActive,
			CreatedAt:   created,
			EndDate:     &end,
			DeviceIDs:   []string{"a", "b"},
			MaxDevices:  3,
			Notes:       "line one\nline \"two\"",
		},
		DaysRemaining: &days,
	}
	bare := models.LicenseView{
		License: models.License{
			ID:         uuid.New(),
			Code:       "ZZZZ-0000-1111",
			Type:       "basic",
			Status:     models.LicenseStatusPending,
			CreatedAt:  created,
			MaxDevices: 1,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []models.LicenseView{full, bare}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, Columns, records[0])
	assert.Equal(t, []string{
		full.ID.String(), "ABCD-EFGH-JKLM", "pro", name, phone, "active",
		"2026-01-02T03:04:05Z", "2026-02-01T03:04:05Z", "12", "2", "3", "line one\nline \"two\"",
	}, records[1])
	assert.Equal(t, []string{
		bare.ID.String(), "ZZZZ-0000-1111", "basic", "", "", "pending",
		"2026-01-02T03:04:05Z", "", "", "0", "1", "",
	}, records[2])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{Columns}, records)
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename="licenses.csv"`, ContentDisposition())
}
