package web

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"licensedesk/internal/dashboard"
	"licensedesk/internal/models"
	"licensedesk/internal/query"
)

func TestIndexRendering(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	end := now.AddDate(0, 0, 3)
	name := "Acme <script>"
	licenses := []models.License{
		{ID: uuid.New(), Code: "ABCD-EFGH-JKLM", Type: "pro", ClientName: &name, Status: models.LicenseStatusActive,
			CreatedAt: now, EndDate: &end, DeviceIDs: []string{"dev-1"}, MaxDevices: 2},
		{ID: uuid.New(), Code: "ZZZZ-YYYY-XXXX", Type: "basic", Status: models.LicenseStatusExpired, CreatedAt: now},
	}
	q := query.ListQuery{Status: query.StatusAll, Sort: "end_date", Direction: query.Asc, Page: 2, PageSize: 1}.Normalize()

	data := DashboardData{
		Title: "License Desk",
		View: dashboard.View{
			Query:    q,
			Now:      now,
			Licenses: models.NewPaginatedList(dashboard.Decorate(licenses, now, query.DefaultExpiringWindow), 3, q.Pagination()),
			KPIs:     models.KPIs{Total: 35, Active: 25, Pending: 5, Expired: 3, Blocked: 2, ExpiringSoon: 4},
		},
		Flash:       &Flash{Kind: "success", Message: "License created: ABCD-EFGH-JKLM"},
		Statuses:    Statuses,
		Unavailable: true,
	}

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "index.html", data))
	content := buf.String()

	for _, want := range []string{
		"License created: ABCD-EFGH-JKLM",
		"Database connection error",
		"ABCD-EFGH-JKLM",
		"/licenses/" + licenses[0].ID.String() + "/extend",
		"/licenses/" + licenses[1].ID.String() + "/reactivate",
		"Acme &lt;script&gt;",
		"dev-1",
		">35<",
		"Page 2 of 3",
		`href="/?dir=asc&amp;sort=end_date"`,
		`href="/?dir=asc&amp;page=3&amp;sort=end_date"`,
		`href="/export"`,
		`id="create-form"`,
		`class="copy-code" data-code="ABCD-EFGH-JKLM"`,
		`class="copy-code" data-code="ZZZZ-YYYY-XXXX"`,
		`data-type="pro" data-client-name="Acme &lt;script&gt;" data-client-phone=""`,
		`data-type="basic" data-client-name=""`,
	} {
		assert.Contains(t, content, want)
	}
	assert.Contains(t, content, `<span class="">3</span>`)
}

func TestIndexRenderingEmpty(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	q := query.ListQuery{}.Normalize()
	data := DashboardData{
		Title:    "License Desk",
		View:     dashboard.View{Query: q, Licenses: models.NewPaginatedList[models.LicenseView](nil, 0, q.Pagination())},
		Statuses: Statuses,
	}

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "index.html", data))
	assert.Contains(t, buf.String(), "No licenses found.")
	assert.NotContains(t, buf.String(), "Database connection error")
}
