package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"licensedesk/internal/clock"
	"licensedesk/internal/kpi"
	"licensedesk/internal/licensecode"
	"licensedesk/internal/models"
	"licensedesk/internal/query"
)

// maxCodeAttempts bounds code allocation in GenerateLicense.
const maxCodeAttempts = 10

// MemoryStore keeps the inventory in process. It implements LicenseStore,
// Procedures, StatsStore and LogStore, including the procedure semantics the
// PostgreSQL functions provide, and backs the "memory" store driver and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	licenses map[uuid.UUID]models.License
	logs     []models.AdminLog

	Clock  clock.Clock
	Window time.Duration
}

func NewMemoryStore(c clock.Clock, window time.Duration) *MemoryStore {
	if c == nil {
		c = clock.System()
	}
	if window <= 0 {
		window = query.DefaultExpiringWindow
	}
	return &MemoryStore{
		licenses: make(map[uuid.UUID]models.License),
		Clock:    c,
		Window:   window,
	}
}

// Put inserts or replaces a license verbatim.
func (m *MemoryStore) Put(l models.License) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.licenses[l.ID] = cloneLicense(l)
}

func cloneLicense(l models.License) models.License {
	l.DeviceIDs = append([]string{}, l.DeviceIDs...)
	if l.EndDate != nil {
		end := *l.EndDate
		l.EndDate = &end
	}
	return l
}

func (m *MemoryStore) snapshot() []models.License {
	out := make([]models.License, 0, len(m.licenses))
	for _, l := range m.licenses {
		out = append(out, cloneLicense(l))
	}
	return out
}

func (m *MemoryStore) ListLicenses(ctx context.Context, q query.ListQuery, now time.Time) ([]models.License, int, error) {
	m.mu.RLock()
	all := m.snapshot()
	m.mu.RUnlock()

	matched := []models.License{}
	for _, l := range all {
		if query.Matches(l, q, now, m.Window) {
			matched = append(matched, l)
		}
	}
	query.Sort(matched, q)
	return query.Page(matched, q), len(matched), nil
}

func (m *MemoryStore) GetLicense(ctx context.Context, id uuid.UUID) (*models.License, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.licenses[id]
	if !ok {
		return nil, fmt.Errorf("%w: license", ErrNotFound)
	}
	l = cloneLicense(l)
	return &l, nil
}

func (m *MemoryStore) CodeExists(ctx context.Context, code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.codeTaken(code), nil
}

func (m *MemoryStore) codeTaken(code string) bool {
	for _, l := range m.licenses {
		if l.Code == code {
			return true
		}
	}
	return false
}

func (m *MemoryStore) UpdateLicense(ctx context.Context, id uuid.UUID, upd models.LicenseUpdate) error {
	return m.mutate(id, func(l *models.License) error {
		l.ClientName = upd.ClientName
		l.ClientPhone = upd.ClientPhone
		l.Notes = upd.Notes
		l.MaxDevices = upd.MaxDevices
		return nil
	})
}

func (m *MemoryStore) SetStatus(ctx context.Context, id uuid.UUID, from, to models.LicenseStatus) error {
	return m.mutate(id, func(l *models.License) error {
		if !to.Valid() {
			return fmt.Errorf("%w: status %q", ErrInvalid, to)
		}
		if l.Status != from {
			return fmt.Errorf("%w: license %s", ErrConflict, id)
		}
		l.Status = to
		return nil
	})
}

func (m *MemoryStore) SetDevices(ctx context.Context, id uuid.UUID, from, to []string) error {
	return m.mutate(id, func(l *models.License) error {
		if from != nil && !slices.Equal(l.DeviceIDs, from) {
			return fmt.Errorf("%w: license %s", ErrConflict, id)
		}
		l.DeviceIDs = append([]string{}, to...)
		return nil
	})
}

func (m *MemoryStore) SetCode(ctx context.Context, id uuid.UUID, from, to string) error {
	return m.mutate(id, func(l *models.License) error {
		if !licensecode.Valid(to) {
			return fmt.Errorf("%w: license code %q", ErrInvalid, to)
		}
		if l.Code != from {
			return fmt.Errorf("%w: license %s", ErrConflict, id)
		}
		if m.codeTaken(to) {
			return fmt.Errorf("%w: license code %s", ErrDuplicate, to)
		}
		l.Code = to
		return nil
	})
}

// mutate applies fn to a copy of the license under the write lock and stores
// it only when fn succeeds.
func (m *MemoryStore) mutate(id uuid.UUID, fn func(l *models.License) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.licenses[id]
	if !ok {
		return fmt.Errorf("%w: license", ErrNotFound)
	}
	l = cloneLicense(l)
	if err := fn(&l); err != nil {
		return err
	}
	l.UpdatedAt = m.Clock.Now()
	m.licenses[id] = l
	return nil
}

func (m *MemoryStore) DeleteLicense(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.licenses[id]; !ok {
		return fmt.Errorf("%w: license", ErrNotFound)
	}
	delete(m.licenses, id)
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

// GenerateLicense mirrors generate_license_typed: a positive validity starts
// the license immediately, zero days leaves it pending with no end date.
func (m *MemoryStore) GenerateLicense(ctx context.Context, in models.NewLicense) (*ProcedureResult, error) {
	if in.Type == "" {
		return &ProcedureResult{Success: false, Message: "license type is required"}, nil
	}
	if in.DaysValid < 0 {
		return &ProcedureResult{Success: false, Message: "days valid must not be negative"}, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := licensecode.Generate()
		if err != nil {
			return nil, fmt.Errorf("failed to generate license code: %w", err)
		}
		if m.codeTaken(code) {
			continue
		}

		now := m.Clock.Now()
		l := models.License{
			ID:          uuid.New(),
			Code:        code,
			Type:        in.Type,
			ClientName:  nonEmpty(in.ClientName),
			ClientPhone: nonEmpty(in.ClientPhone),
			Status:      models.LicenseStatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
			DeviceIDs:   []string{},
			MaxDevices:  1,
			Notes:       in.Notes,
		}
		if in.DaysValid > 0 {
			end := now.AddDate(0, 0, in.DaysValid)
			l.EndDate = &end
			l.Status = models.LicenseStatusActive
		}
		m.licenses[l.ID] = l
		return &ProcedureResult{Success: true, LicenseCode: code, LicenseID: &l.ID}, nil
	}
	return &ProcedureResult{Success: false, Message: "could not allocate a unique license code"}, nil
}

// ExtendLicense mirrors extend_license: days are added to the current end
// date, or to now when the license has none or it already passed.
func (m *MemoryStore) ExtendLicense(ctx context.Context, id uuid.UUID, days int) (*ProcedureResult, error) {
	if days <= 0 {
		return &ProcedureResult{Success: false, Message: "days to add must be positive"}, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.licenses[id]
	if !ok {
		return &ProcedureResult{Success: false, Message: "license not found"}, nil
	}
	if l.Status == models.LicenseStatusExpired {
		return &ProcedureResult{Success: false, Message: "license is expired, reactivate it instead"}, nil
	}

	now := m.Clock.Now()
	base := now
	if l.EndDate != nil && l.EndDate.After(now) {
		base = *l.EndDate
	}
	end := base.AddDate(0, 0, days)
	l.EndDate = &end
	if l.Status == models.LicenseStatusPending {
		l.Status = models.LicenseStatusActive
	}
	l.UpdatedAt = now
	m.licenses[id] = l
	return &ProcedureResult{Success: true, NewEndDate: &end}, nil
}

// ReactivateLicense mirrors reactivate_license: only expired licenses (by
// status or by date) restart, from now.
func (m *MemoryStore) ReactivateLicense(ctx context.Context, id uuid.UUID, days int) (*ProcedureResult, error) {
	if days <= 0 {
		return &ProcedureResult{Success: false, Message: "days to add must be positive"}, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.licenses[id]
	if !ok {
		return &ProcedureResult{Success: false, Message: "license not found"}, nil
	}

	if l.Status == models.LicenseStatusBlocked {
		return &ProcedureResult{Success: false, Message: "license is blocked"}, nil
	}
	now := m.Clock.Now()
	lapsed := l.EndDate != nil && !l.EndDate.After(now)
	if l.Status != models.LicenseStatusExpired && !lapsed {
		return &ProcedureResult{Success: false, Message: "license is not expired"}, nil
	}

	end := now.AddDate(0, 0, days)
	l.EndDate = &end
	l.Status = models.LicenseStatusActive
	l.UpdatedAt = now
	m.licenses[id] = l
	return &ProcedureResult{Success: true, NewEndDate: &end}, nil
}

func (m *MemoryStore) GetDashboardStats(ctx context.Context, now time.Time) (*models.DashboardStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.snapshot()
	stats := &models.DashboardStats{KPIs: kpi.Aggregate(all, now, m.Window)}
	cutoff := now.AddDate(0, 0, -30)
	for _, l := range all {
		if !l.CreatedAt.Before(cutoff) {
			stats.CreatedLast30Days++
		}
	}

	recent := m.sortedLogs(nil)
	if len(recent) > 3 {
		recent = recent[:3]
	}
	stats.RecentAdminLogs = recent
	return stats, nil
}

func (m *MemoryStore) CreateAdminLog(ctx context.Context, log *models.AdminLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	log.ID = uuid.New()
	log.CreatedAt = m.Clock.Now()
	m.logs = append(m.logs, *log)
	return nil
}

func (m *MemoryStore) ListAdminLogs(ctx context.Context, entityID *uuid.UUID, pagination models.PaginationParams) ([]models.AdminLog, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	logs := m.sortedLogs(entityID)
	limit := pagination.Limit
	if limit <= 0 {
		limit = 10
	}
	p := models.PaginationParams{Page: pagination.Page, Limit: limit}
	from := p.Offset()
	if from >= len(logs) {
		return []models.AdminLog{}, len(logs), nil
	}
	to := min(from+limit, len(logs))
	return logs[from:to], len(logs), nil
}

// sortedLogs returns the audit entries newest first. Caller holds the lock.
func (m *MemoryStore) sortedLogs(entityID *uuid.UUID) []models.AdminLog {
	out := []models.AdminLog{}
	for i := len(m.logs) - 1; i >= 0; i-- {
		l := m.logs[i]
		if entityID != nil && (l.EntityID == nil || *l.EntityID != *entityID) {
			continue
		}
		out = append(out, l)
	}
	slices.SortStableFunc(out, func(a, b models.AdminLog) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
