package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"licensedesk/internal/models"
	"licensedesk/internal/query"
)

type LicenseStore interface {
	// ListLicenses returns the page selected by q and the total number of
	// licenses matching q's filters.
	ListLicenses(ctx context.Context, q query.ListQuery, now time.Time) ([]models.License, int, error)
	GetLicense(ctx context.Context, id uuid.UUID) (*models.License, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	UpdateLicense(ctx context.Context, id uuid.UUID, upd models.LicenseUpdate) error
	// SetStatus, SetDevices and SetCode only write when the stored value still
	// equals from; otherwise they return ErrConflict. A nil from in SetDevices
	// overwrites unconditionally.
	SetStatus(ctx context.Context, id uuid.UUID, from, to models.LicenseStatus) error
	SetDevices(ctx context.Context, id uuid.UUID, from, to []string) error
	SetCode(ctx context.Context, id uuid.UUID, from, to string) error
	DeleteLicense(ctx context.Context, id uuid.UUID) error
	Ping(ctx context.Context) error
}

const licenseColumns = `
	id, license_code, license_type, client_name, client_phone, status,
	created_at, updated_at, end_date, device_ids::text[], max_devices, notes`

type PostgresLicenseStore struct {
	DB     *pgxpool.Pool
	Window time.Duration
}

func NewPostgresLicenseStore(db *pgxpool.Pool, window time.Duration) *PostgresLicenseStore {
	if window <= 0 {
		window = query.DefaultExpiringWindow
	}
	return &PostgresLicenseStore{DB: db, Window: window}
}

func scanLicense(row pgx.Row) (*models.License, error) {
	var l models.License
	err := row.Scan(
		&l.ID,
		&l.Code,
		&l.Type,
		&l.ClientName,
		&l.ClientPhone,
		&l.Status,
		&l.CreatedAt,
		&l.UpdatedAt,
		&l.EndDate,
		&l.DeviceIDs,
		&l.MaxDevices,
		&l.Notes,
	)
	if err != nil {
		return nil, err
	}
	if l.DeviceIDs == nil {
		l.DeviceIDs = []string{}
	}
	return &l, nil
}

func (s *PostgresLicenseStore) ListLicenses(ctx context.Context, q query.ListQuery, now time.Time) ([]models.License, int, error) {
	built := query.Build(q, now, s.Window)

	var totalCount int
	countQuery := `SELECT count(*) FROM licenses ` + built.Where
	if err := s.DB.QueryRow(ctx, countQuery, built.Args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to get total count of licenses: %w", err)
	}

	listQuery := `SELECT ` + licenseColumns + ` FROM licenses ` + built.Where + ` ORDER BY ` + built.OrderBy
	args := built.Args
	if built.Limit > 0 {
		listQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, built.Limit, built.Offset)
	}

	rows, err := s.DB.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list licenses: %w", err)
	}
	defer rows.Close()

	licenses := []models.License{}
	for rows.Next() {
		l, err := scanLicense(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan license: %w", err)
		}
		licenses = append(licenses, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating licenses: %w", err)
	}

	return licenses, totalCount, nil
}

func (s *PostgresLicenseStore) GetLicense(ctx context.Context, id uuid.UUID) (*models.License, error) {
	l, err := scanLicense(s.DB.QueryRow(ctx, `SELECT `+licenseColumns+` FROM licenses WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: license", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get license: %w", err)
	}
	return l, nil
}

func (s *PostgresLicenseStore) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	if err := s.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM licenses WHERE license_code = $1)`, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check license code: %w", err)
	}
	return exists, nil
}

func (s *PostgresLicenseStore) UpdateLicense(ctx context.Context, id uuid.UUID, upd models.LicenseUpdate) error {
	tag, err := s.DB.Exec(ctx, `
		UPDATE licenses SET
			client_name = $1,
			client_phone = $2,
			notes = $3,
			max_devices = $4,
			updated_at = NOW()
		WHERE id = $5
	`, upd.ClientName, upd.ClientPhone, upd.Notes, upd.MaxDevices, id)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: max devices %d", ErrInvalid, upd.MaxDevices)
		}
		return fmt.Errorf("failed to update license: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: license", ErrNotFound)
	}
	return nil
}

func (s *PostgresLicenseStore) SetStatus(ctx context.Context, id uuid.UUID, from, to models.LicenseStatus) error {
	tag, err := s.DB.Exec(ctx,
		`UPDATE licenses SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		to, id, from)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: status %q", ErrInvalid, to)
		}
		return fmt.Errorf("failed to update license status: %w", err)
	}
	return s.checkConditional(ctx, id, tag)
}

func (s *PostgresLicenseStore) SetDevices(ctx context.Context, id uuid.UUID, from, to []string) error {
	if to == nil {
		to = []string{}
	}
	if from == nil {
		tag, err := s.DB.Exec(ctx,
			`UPDATE licenses SET device_ids = $1, updated_at = NOW() WHERE id = $2`,
			to, id)
		if err != nil {
			return fmt.Errorf("failed to update license devices: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: license", ErrNotFound)
		}
		return nil
	}

	tag, err := s.DB.Exec(ctx,
		`UPDATE licenses SET device_ids = $1, updated_at = NOW() WHERE id = $2 AND device_ids = $3::text[]`,
		to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update license devices: %w", err)
	}
	return s.checkConditional(ctx, id, tag)
}

func (s *PostgresLicenseStore) SetCode(ctx context.Context, id uuid.UUID, from, to string) error {
	tag, err := s.DB.Exec(ctx,
		`UPDATE licenses SET license_code = $1, updated_at = NOW() WHERE id = $2 AND license_code = $3`,
		to, id, from)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: license code %s", ErrDuplicate, to)
		}
		if isCheckViolation(err) {
			return fmt.Errorf("%w: license code %q", ErrInvalid, to)
		}
		return fmt.Errorf("failed to update license code: %w", err)
	}
	return s.checkConditional(ctx, id, tag)
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}

// checkConditional tells a missing row apart from a lost race after a
// conditional update touched nothing.
func (s *PostgresLicenseStore) checkConditional(ctx context.Context, id uuid.UUID, tag pgconn.CommandTag) error {
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := s.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM licenses WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check license: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: license", ErrNotFound)
	}
	return fmt.Errorf("%w: license %s", ErrConflict, id)
}

func (s *PostgresLicenseStore) DeleteLicense(ctx context.Context, id uuid.UUID) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM licenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete license: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: license", ErrNotFound)
	}
	return nil
}

func (s *PostgresLicenseStore) Ping(ctx context.Context) error {
	return s.DB.Ping(ctx)
}
