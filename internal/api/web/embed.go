// Package web holds the console's embedded HTML templates.
package web

import (
	"embed"
	"html/template"
	"net/url"
	"time"

	"licensedesk/internal/dashboard"
	"licensedesk/internal/models"
	"licensedesk/internal/query"
)

//go:embed templates/*
var embedFS embed.FS

// Flash is a one-shot message shown after a redirect.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// DashboardData is rendered by index.html.
type DashboardData struct {
	Title    string
	View     dashboard.View
	Flash    *Flash
	Statuses []string
	// Unavailable is set when the datastore could not be reached.
	Unavailable bool
}

// Statuses lists the status filter options in display order.
var Statuses = []string{
	query.StatusAll,
	string(models.LicenseStatusActive),
	string(models.LicenseStatusPending),
	string(models.LicenseStatusExpired),
	string(models.LicenseStatusBlocked),
	query.StatusExpiringSoon,
}

// Templates parses the embedded templates with the console's helpers.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs()).ParseFS(embedFS, "templates/*.html")
}

// MustTemplates is Templates for server startup.
func MustTemplates() *template.Template {
	t, err := Templates()
	if err != nil {
		panic("Failed to parse embedded templates: " + err.Error())
	}
	return t
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"pageURL": func(q query.ListQuery, page int) string {
			return href("/", q.WithPage(page).Values())
		},
		"sortURL": func(q query.ListQuery, field string) string {
			return href("/", q.WithSort(field).Values())
		},
		"sortMark": func(q query.ListQuery, field string) string {
			if q.Sort != field {
				return ""
			}
			if q.Direction == query.Asc {
				return "▲"
			}
			return "▼"
		},
		"exportURL": func(q query.ListQuery) string {
			v := q.Values()
			v.Del(query.ParamPage)
			v.Del(query.ParamSort)
			v.Del(query.ParamDirection)
			return href("/export", v)
		},
		"fmtTime": func(t *time.Time) string {
			if t == nil || t.IsZero() {
				return "-"
			}
			return t.UTC().Format("2006-01-02 15:04")
		},
		"fmtDate": func(t time.Time) string {
			return t.UTC().Format("2006-01-02")
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"intval": func(p *int) int {
			if p == nil {
				return 0
			}
			return *p
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}
}

func href(path string, v url.Values) string {
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}
