package mutation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"licensedesk/internal/models"
	"licensedesk/internal/query"
	"licensedesk/internal/store"
)

// MockLicenseStore is a mock implementation of store.LicenseStore
type MockLicenseStore struct {
	mock.Mock
}

func (m *MockLicenseStore) ListLicenses(ctx context.Context, q query.ListQuery, now time.Time) ([]models.License, int, error) {
	args := m.Called(ctx, q, now)
	return args.Get(0).([]models.License), args.Int(1), args.Error(2)
}
func (m *MockLicenseStore) GetLicense(ctx context.Context, id uuid.UUID) (*models.License, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.License), args.Error(1)
}
func (m *MockLicenseStore) CodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}
func (m *MockLicenseStore) UpdateLicense(ctx context.Context, id uuid.UUID, upd models.LicenseUpdate) error {
	args := m.Called(ctx, id, upd)
	return args.Error(0)
}
func (m *MockLicenseStore) SetStatus(ctx context.Context, id uuid.UUID, from, to models.LicenseStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}
func (m *MockLicenseStore) SetDevices(ctx context.Context, id uuid.UUID, from, to []string) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}
func (m *MockLicenseStore) SetCode(ctx context.Context, id uuid.UUID, from, to string) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}
func (m *MockLicenseStore) DeleteLicense(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockLicenseStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockProcedures is a mock implementation of store.Procedures
type MockProcedures struct {
	mock.Mock
}

func (m *MockProcedures) GenerateLicense(ctx context.Context, in models.NewLicense) (*store.ProcedureResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.ProcedureResult), args.Error(1)
}
func (m *MockProcedures) ExtendLicense(ctx context.Context, id uuid.UUID, days int) (*store.ProcedureResult, error) {
	args := m.Called(ctx, id, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.ProcedureResult), args.Error(1)
}
func (m *MockProcedures) ReactivateLicense(ctx context.Context, id uuid.UUID, days int) (*store.ProcedureResult, error) {
	args := m.Called(ctx, id, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.ProcedureResult), args.Error(1)
}
