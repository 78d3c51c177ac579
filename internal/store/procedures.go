package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"licensedesk/internal/models"
)

// ProcedureResult is the JSON document returned by the datastore's license
// procedures. Only the fields relevant to the called procedure are set.
type ProcedureResult struct {
	Success     bool       `json:"success"`
	Message     string     `json:"message,omitempty"`
	LicenseCode string     `json:"license_code,omitempty"`
	LicenseID   *uuid.UUID `json:"license_id,omitempty"`
	NewEndDate  *time.Time `json:"new_end_date,omitempty"`
}

// UnmarshalJSON accepts new_end_date in any form ParseTimestamp reads. An
// unreadable date leaves NewEndDate nil instead of failing the whole result.
func (r *ProcedureResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Success     bool       `json:"success"`
		Message     string     `json:"message"`
		LicenseCode string     `json:"license_code"`
		LicenseID   *uuid.UUID `json:"license_id"`
		NewEndDate  *string    `json:"new_end_date"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = ProcedureResult{
		Success:     raw.Success,
		Message:     raw.Message,
		LicenseCode: raw.LicenseCode,
		LicenseID:   raw.LicenseID,
	}
	if raw.NewEndDate != nil {
		if t, ok := models.ParseTimestamp(*raw.NewEndDate); ok {
			r.NewEndDate = &t
		}
	}
	return nil
}

// Procedures is the RPC side of the datastore. Code allocation and expiry
// date arithmetic happen behind these calls.
type Procedures interface {
	GenerateLicense(ctx context.Context, in models.NewLicense) (*ProcedureResult, error)
	ExtendLicense(ctx context.Context, id uuid.UUID, days int) (*ProcedureResult, error)
	ReactivateLicense(ctx context.Context, id uuid.UUID, days int) (*ProcedureResult, error)
}

type PostgresProcedures struct {
	DB *pgxpool.Pool
}

func NewPostgresProcedures(db *pgxpool.Pool) *PostgresProcedures {
	return &PostgresProcedures{DB: db}
}

func (p *PostgresProcedures) GenerateLicense(ctx context.Context, in models.NewLicense) (*ProcedureResult, error) {
	return p.call(ctx, "generate_license_typed",
		`SELECT generate_license_typed($1, $2, $3, $4, $5)`,
		in.Type, in.ClientName, in.ClientPhone, in.DaysValid, in.Notes)
}

func (p *PostgresProcedures) ExtendLicense(ctx context.Context, id uuid.UUID, days int) (*ProcedureResult, error) {
	return p.call(ctx, "extend_license", `SELECT extend_license($1, $2)`, id, days)
}

func (p *PostgresProcedures) ReactivateLicense(ctx context.Context, id uuid.UUID, days int) (*ProcedureResult, error) {
	return p.call(ctx, "reactivate_license", `SELECT reactivate_license($1, $2)`, id, days)
}

func (p *PostgresProcedures) call(ctx context.Context, name, sql string, args ...interface{}) (*ProcedureResult, error) {
	var raw []byte
	if err := p.DB.QueryRow(ctx, sql, args...).Scan(&raw); err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", name, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("procedure %s returned no result", name)
	}

	var result ProcedureResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode %s result: %w", name, err)
	}
	return &result, nil
}
