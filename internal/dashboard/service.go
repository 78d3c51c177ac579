// Package dashboard assembles the console's list view: the requested page of
// decorated licenses next to inventory-wide KPIs.
package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"licensedesk/internal/clock"
	"licensedesk/internal/kpi"
	"licensedesk/internal/models"
	"licensedesk/internal/query"
	"licensedesk/internal/store"
)

type Service struct {
	Licenses store.LicenseStore
	Stats    store.StatsStore
	Clock    clock.Clock
	PageSize int
	Window   time.Duration
}

func NewService(licenses store.LicenseStore, stats store.StatsStore, c clock.Clock, pageSize int, window time.Duration) *Service {
	if c == nil {
		c = clock.System()
	}
	if pageSize <= 0 {
		pageSize = query.DefaultPageSize
	}
	if window <= 0 {
		window = query.DefaultExpiringWindow
	}
	return &Service{Licenses: licenses, Stats: stats, Clock: c, PageSize: pageSize, Window: window}
}

// View is everything the list page renders. ListErr and StatsErr are set
// when the corresponding fetch failed; the matching data is then empty.
type View struct {
	Query    query.ListQuery
	Now      time.Time
	Licenses models.PaginatedList[models.LicenseView]
	// KPIs describe the whole inventory. PageKPIs count only the rows shown.
	KPIs              models.KPIs
	PageKPIs          models.KPIs
	CreatedLast30Days int
	RecentAdminLogs   []models.AdminLog
	ListErr           error
	StatsErr          error
}

// Query normalizes q and fixes the page size to the configured one.
func (s *Service) Query(q query.ListQuery) query.ListQuery {
	q.PageSize = s.PageSize
	return q.Normalize()
}

// Load fetches the page selected by q and the global KPIs. It never fails:
// errors are reported on the View next to zero-valued data.
func (s *Service) Load(ctx context.Context, q query.ListQuery) View {
	q = s.Query(q)
	now := s.Clock.Now()
	v := View{Query: q, Now: now, RecentAdminLogs: []models.AdminLog{}}

	licenses, total, err := s.Licenses.ListLicenses(ctx, q, now)
	if err != nil {
		slog.Error("Failed to list licenses", "error", err)
		v.ListErr = err
		licenses, total = nil, 0
	}
	v.Licenses = models.NewPaginatedList(Decorate(licenses, now, s.Window), total, q.Pagination())
	v.PageKPIs = kpi.Aggregate(licenses, now, s.Window)

	stats, err := s.Stats.GetDashboardStats(ctx, now)
	if err != nil {
		slog.Error("Failed to get dashboard stats", "error", err)
		v.StatsErr = err
		return v
	}
	v.KPIs = stats.KPIs
	v.CreatedLast30Days = stats.CreatedLast30Days
	if stats.RecentAdminLogs != nil {
		v.RecentAdminLogs = stats.RecentAdminLogs
	}
	return v
}

// All returns every license matching q's filters, newest first, decorated
// against a single instant.
func (s *Service) All(ctx context.Context, q query.ListQuery) ([]models.LicenseView, time.Time, error) {
	q = q.Normalize().Unpaginated()
	now := s.Clock.Now()
	licenses, _, err := s.Licenses.ListLicenses(ctx, q, now)
	if err != nil {
		return nil, now, err
	}
	return Decorate(licenses, now, s.Window), now, nil
}

// Get returns one decorated license.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (models.LicenseView, error) {
	l, err := s.Licenses.GetLicense(ctx, id)
	if err != nil {
		return models.LicenseView{}, err
	}
	return Decorate([]models.License{*l}, s.Clock.Now(), s.Window)[0], nil
}
