package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"licensedesk/internal/models"
	"licensedesk/internal/query"
)

// Disabled stands in for a datastore that could not be initialized. Every
// call fails with ErrUnavailable so the console degrades deterministically.
type Disabled struct {
	Reason error
}

func (d Disabled) err() error {
	if d.Reason != nil {
		return &unavailableError{cause: d.Reason}
	}
	return ErrUnavailable
}

type unavailableError struct{ cause error }

func (e *unavailableError) Error() string { return ErrUnavailable.Error() + ": " + e.cause.Error() }
func (e *unavailableError) Unwrap() []error {
	return []error{ErrUnavailable, e.cause}
}

func (d Disabled) ListLicenses(ctx context.Context, q query.ListQuery, now time.Time) ([]models.License, int, error) {
	return nil, 0, d.err()
}
func (d Disabled) GetLicense(ctx context.Context, id uuid.UUID) (*models.License, error) {
	return nil, d.err()
}
func (d Disabled) CodeExists(ctx context.Context, code string) (bool, error) { return false, d.err() }
func (d Disabled) UpdateLicense(ctx context.Context, id uuid.UUID, upd models.LicenseUpdate) error {
	return d.err()
}
func (d Disabled) SetStatus(ctx context.Context, id uuid.UUID, from, to models.LicenseStatus) error {
	return d.err()
}
func (d Disabled) SetDevices(ctx context.Context, id uuid.UUID, from, to []string) error {
	return d.err()
}
func (d Disabled) SetCode(ctx context.Context, id uuid.UUID, from, to string) error { return d.err() }
func (d Disabled) DeleteLicense(ctx context.Context, id uuid.UUID) error          { return d.err() }
func (d Disabled) Ping(ctx context.Context) error                                 { return d.err() }

func (d Disabled) GenerateLicense(ctx context.Context, in models.NewLicense) (*ProcedureResult, error) {
	return nil, d.err()
}
func (d Disabled) ExtendLicense(ctx context.Context, id uuid.UUID, days int) (*ProcedureResult, error) {
	return nil, d.err()
}
func (d Disabled) ReactivateLicense(ctx context.Context, id uuid.UUID, days int) (*ProcedureResult, error) {
	return nil, d.err()
}

func (d Disabled) GetDashboardStats(ctx context.Context, now time.Time) (*models.DashboardStats, error) {
	return nil, d.err()
}

func (d Disabled) CreateAdminLog(ctx context.Context, log *models.AdminLog) error { return d.err() }
func (d Disabled) ListAdminLogs(ctx context.Context, entityID *uuid.UUID, pagination models.PaginationParams) ([]models.AdminLog, int, error) {
	return nil, 0, d.err()
}
