package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"licensedesk/internal/clock"
	"licensedesk/internal/licensecode"
	"licensedesk/internal/models"
	"licensedesk/internal/query"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestStore() *MemoryStore {
	return NewMemoryStore(clock.Fixed(testNow), query.DefaultExpiringWindow)
}

func putLicense(m *MemoryStore, status models.LicenseStatus, end *time.Time, devices ...string) models.License {
	code, _ := licensecode.Generate()
	l := models.License{
		ID:         uuid.New(),
		Code:       code,
		Type:       "standard",
		Status:     status,
		CreatedAt:  testNow.Add(-time.Hour),
		UpdatedAt:  testNow.Add(-time.Hour),
		EndDate:    end,
		DeviceIDs:  devices,
		MaxDevices: 1,
	}
	m.Put(l)
	return l
}

func at(t time.Time) *time.Time { return &t }

func TestMemoryGenerateLicense(t *testing.T) {
	ctx := context.Background()
	m := newTestStore()

	t.Run("positive validity starts immediately", func(t *testing.T) {
		name := "Acme"
		res, err := m.GenerateLicense(ctx, models.NewLicense{Type: "pro", ClientName: &name, DaysValid: 30})
		require.NoError(t, err)
		require.True(t, res.Success)
		assert.True(t, licensecode.Valid(res.LicenseCode))
		require.NotNil(t, res.LicenseID)

		l, err := m.GetLicense(ctx, *res.LicenseID)
		require.NoError(t, err)
		assert.Equal(t, models.LicenseStatusActive, l.Status)
		require.NotNil(t, l.EndDate)
		assert.Equal(t, testNow.AddDate(0, 0, 30), *l.EndDate)
		assert.Equal(t, "Acme", *l.ClientName)
		assert.Nil(t, l.ClientPhone)
		assert.Equal(t, []string{}, l.DeviceIDs)
	})

	t.Run("zero days is pending", func(t *testing.T) {
		res, err := m.GenerateLicense(ctx, models.NewLicense{Type: "pro"})
		require.NoError(t, err)
		require.True(t, res.Success)
		l, err := m.GetLicense(ctx, *res.LicenseID)
		require.NoError(t, err)
		assert.Equal(t, models.LicenseStatusPending, l.Status)
		assert.Nil(t, l.EndDate)
	})

	t.Run("rejections", func(t *testing.T) {
		res, err := m.GenerateLicense(ctx, models.NewLicense{})
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.NotEmpty(t, res.Message)

		res, err = m.GenerateLicense(ctx, models.NewLicense{Type: "pro", DaysValid: -1})
		require.NoError(t, err)
		assert.False(t, res.Success)
	})
}

func TestMemoryExtendLicense(t *testing.T) {
	ctx := context.Background()
	m := newTestStore()

	future := putLicense(m, models.LicenseStatusActive, at(testNow.AddDate(0, 0, 5)))
	res, err := m.ExtendLicense(ctx, future.ID, 10)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, testNow.AddDate(0, 0, 15), *res.NewEndDate)

	lapsed := putLicense(m, models.LicenseStatusActive, at(testNow.AddDate(0, 0, -5)))
	res, err = m.ExtendLicense(ctx, lapsed.ID, 10)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, testNow.AddDate(0, 0, 10), *res.NewEndDate)

	pending := putLicense(m, models.LicenseStatusPending, nil)
	res, err = m.ExtendLicense(ctx, pending.ID, 7)
	require.NoError(t, err)
	require.True(t, res.Success)
	l, _ := m.GetLicense(ctx, pending.ID)
	assert.Equal(t, models.LicenseStatusActive, l.Status)

	expired := putLicense(m, models.LicenseStatusExpired, at(testNow.AddDate(0, 0, -1)))
	res, err = m.ExtendLicense(ctx, expired.ID, 7)
	require.NoError(t, err)
	assert.False(t, res.Success)

	res, err = m.ExtendLicense(ctx, uuid.New(), 7)
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestMemoryReactivateLicense(t *testing.T) {
	ctx := context.Background()
	m := newTestStore()

	expired := putLicense(m, models.LicenseStatusExpired, at(testNow.AddDate(0, 0, -3)))
	res, err := m.ReactivateLicense(ctx, expired.ID, 30)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, testNow.AddDate(0, 0, 30), *res.NewEndDate)
	l, _ := m.GetLicense(ctx, expired.ID)
	assert.Equal(t, models.LicenseStatusActive, l.Status)

	active := putLicense(m, models.LicenseStatusActive, at(testNow.AddDate(0, 0, 3)))
	res, err = m.ReactivateLicense(ctx, active.ID, 30)
	require.NoError(t, err)
	assert.False(t, res.Success)

	blocked := putLicense(m, models.LicenseStatusBlocked, at(testNow.AddDate(0, 0, -3)))
	res, err = m.ReactivateLicense(ctx, blocked.ID, 30)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "license is blocked", res.Message)
}

func TestMemoryConditionalWrites(t *testing.T) {
	ctx := context.Background()
	m := newTestStore()
	l := putLicense(m, models.LicenseStatusActive, nil, "dev-a", "dev-b")

	require.NoError(t, m.SetStatus(ctx, l.ID, models.LicenseStatusActive, models.LicenseStatusBlocked))
	err := m.SetStatus(ctx, l.ID, models.LicenseStatusActive, models.LicenseStatusBlocked)
	assert.True(t, errors.Is(err, ErrConflict))

	err = m.SetDevices(ctx, l.ID, []string{"dev-a"}, []string{})
	assert.True(t, errors.Is(err, ErrConflict))
	require.NoError(t, m.SetDevices(ctx, l.ID, []string{"dev-a", "dev-b"}, []string{"dev-b", "dev-c"}))
	require.NoError(t, m.SetDevices(ctx, l.ID, nil, []string{"dev-b"}))

	other := putLicense(m, models.LicenseStatusActive, nil)
	err = m.SetCode(ctx, l.ID, l.Code, other.Code)
	assert.True(t, errors.Is(err, ErrDuplicate))
	require.NoError(t, m.SetCode(ctx, l.ID, l.Code, "AAAA-BBBB-CCCC"))

	got, err := m.GetLicense(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LicenseStatusBlocked, got.Status)
	assert.Equal(t, []string{"dev-b"}, got.DeviceIDs)
	assert.Equal(t, "AAAA-BBBB-CCCC", got.Code)
	assert.Equal(t, testNow, got.UpdatedAt)

	err = m.SetStatus(ctx, uuid.New(), models.LicenseStatusActive, models.LicenseStatusBlocked)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryRejectsInvalidValues(t *testing.T) {
	ctx := context.Background()
	m := newTestStore()
	l := putLicense(m, models.LicenseStatusActive, nil)

	err := m.SetStatus(ctx, l.ID, models.LicenseStatusActive, models.LicenseStatus("archived"))
	assert.True(t, errors.Is(err, ErrInvalid))

	for _, code := range []string{"", "abcd-efgh-ijkl", "AAAA-BBBB", "AAAA_BBBB_CCCC", "AAAA-BBBB-CCCC-DDDD"} {
		err = m.SetCode(ctx, l.ID, l.Code, code)
		assert.True(t, errors.Is(err, ErrInvalid), code)
	}

	got, err := m.GetLicense(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, l.Code, got.Code)
	assert.Equal(t, models.LicenseStatusActive, got.Status)
}

func TestMemoryListAndStats(t *testing.T) {
	ctx := context.Background()
	m := newTestStore()
	putLicense(m, models.LicenseStatusActive, at(testNow.AddDate(0, 0, 2)))
	putLicense(m, models.LicenseStatusActive, at(testNow.AddDate(0, 0, 60)))
	putLicense(m, models.LicenseStatusBlocked, at(testNow.AddDate(0, 0, 2)))
	putLicense(m, models.LicenseStatusPending, nil)

	q := query.ListQuery{Status: query.StatusExpiringSoon, PageSize: query.DefaultPageSize}.Normalize()
	items, total, err := m.ListLicenses(ctx, q, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, items, 1)

	stats, err := m.GetDashboardStats(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Active)
	assert.Equal(t, 1, stats.Blocked)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.ExpiringSoon)
	assert.Equal(t, 4, stats.CreatedLast30Days)
}

func TestMemoryAdminLogs(t *testing.T) {
	ctx := context.Background()
	m := newTestStore()
	id := uuid.New()

	require.NoError(t, m.CreateAdminLog(ctx, &models.AdminLog{Action: "create_license", EntityType: "license", EntityID: &id}))
	require.NoError(t, m.CreateAdminLog(ctx, &models.AdminLog{Action: "delete_license", EntityType: "license"}))
	require.NoError(t, m.CreateAdminLog(ctx, &models.AdminLog{Action: "extend_license", EntityType: "license", EntityID: &id}))

	logs, total, err := m.ListAdminLogs(ctx, &id, models.PaginationParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, logs, 2)
	assert.Equal(t, "extend_license", logs[0].Action)

	logs, total, err = m.ListAdminLogs(ctx, nil, models.PaginationParams{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, logs, 1)
	assert.Equal(t, "create_license", logs[0].Action)
}

func TestDisabled(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("connection refused")
	d := Disabled{Reason: cause}

	_, _, err := d.ListLicenses(ctx, query.ListQuery{}, testNow)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.True(t, errors.Is(err, cause))

	_, err = Disabled{}.GenerateLicense(ctx, models.NewLicense{Type: "pro"})
	assert.Equal(t, ErrUnavailable, err)
	assert.True(t, errors.Is(Disabled{}.Ping(ctx), ErrUnavailable))
}
