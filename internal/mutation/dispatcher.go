// Package mutation forwards administrator changes to the datastore. Each
// operation is one synchronous call (or one read followed by one conditional
// write) with a single outcome; nothing is retried here except the bounded
// collision check in RegenerateCode.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"licensedesk/internal/licensecode"
	"licensedesk/internal/metrics"
	"licensedesk/internal/models"
	"licensedesk/internal/service"
	"licensedesk/internal/store"
)

// ErrRejected marks a business-rule rejection reported by the datastore or
// by input validation, as opposed to a failure to reach it.
var ErrRejected = errors.New("rejected")

// RegenerateAttempts bounds the candidates RegenerateCode checks for
// collisions before writing the last one regardless.
const RegenerateAttempts = 3

const entityLicense = "license"

type Dispatcher struct {
	Licenses   store.LicenseStore
	Procedures store.Procedures
	Logs       store.LogStore
	// NewCode generates candidate codes for RegenerateCode.
	NewCode func() (string, error)
}

func NewDispatcher(licenses store.LicenseStore, procedures store.Procedures, logs store.LogStore) *Dispatcher {
	return &Dispatcher{
		Licenses:   licenses,
		Procedures: procedures,
		Logs:       logs,
		NewCode:    licensecode.Generate,
	}
}

// Rejection carries the reason a datastore procedure or validation gave.
// It matches ErrRejected under errors.Is.
type Rejection struct {
	Message string
}

func (r *Rejection) Error() string { return ErrRejected.Error() + ": " + r.Message }

func (r *Rejection) Is(target error) bool { return target == ErrRejected }

func rejected(msg string) error {
	if msg == "" {
		msg = "operation failed"
	}
	return &Rejection{Message: msg}
}

// Create calls the generation procedure and returns the allocated code.
func (d *Dispatcher) Create(ctx context.Context, in models.NewLicense) (code string, err error) {
	defer d.observe("create", time.Now(), &err)

	in.Type = strings.TrimSpace(in.Type)
	if in.Type == "" {
		return "", rejected("license type is required")
	}
	if in.DaysValid < 0 {
		return "", rejected("days valid must not be negative")
	}

	res, err := d.Procedures.GenerateLicense(ctx, in)
	if err != nil {
		return "", fmt.Errorf("failed to create license: %w", err)
	}
	if !res.Success {
		return "", rejected(res.Message)
	}

	d.audit(ctx, "create_license", res.LicenseID, map[string]interface{}{
		"license_code": res.LicenseCode,
		"license_type": in.Type,
		"days_valid":   in.DaysValid,
	})
	return res.LicenseCode, nil
}

func (d *Dispatcher) Update(ctx context.Context, id uuid.UUID, upd models.LicenseUpdate) (err error) {
	defer d.observe("update", time.Now(), &err)

	if upd.MaxDevices < 0 {
		return rejected("max devices must not be negative")
	}
	if err := d.Licenses.UpdateLicense(ctx, id, upd); err != nil {
		return fmt.Errorf("failed to update license: %w", err)
	}

	d.audit(ctx, "update_license", &id, map[string]interface{}{
		"max_devices": upd.MaxDevices,
	})
	return nil
}

// expiryDetails is the audit payload of an extension. The end date is left
// out when the procedure did not report a readable one.
func expiryDetails(days int, end *time.Time) map[string]interface{} {
	details := map[string]interface{}{"days": days}
	if end != nil {
		details["new_end_date"] = end.UTC().Format(time.RFC3339)
	}
	return details
}

// Extend adds days through the extension procedure and returns the new
// expiry, or the zero time when the procedure succeeded without a readable
// one.
func (d *Dispatcher) Extend(ctx context.Context, id uuid.UUID, days int) (end time.Time, err error) {
	defer d.observe("extend", time.Now(), &err)

	res, err := d.Procedures.ExtendLicense(ctx, id, days)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to extend license: %w", err)
	}
	if !res.Success {
		return time.Time{}, rejected(res.Message)
	}
	d.audit(ctx, "extend_license", &id, expiryDetails(days, res.NewEndDate))
	if res.NewEndDate == nil {
		return time.Time{}, nil
	}
	return *res.NewEndDate, nil
}

func (d *Dispatcher) Reactivate(ctx context.Context, id uuid.UUID, days int) (end time.Time, err error) {
	defer d.observe("reactivate", time.Now(), &err)

	res, err := d.Procedures.ReactivateLicense(ctx, id, days)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to reactivate license: %w", err)
	}
	if !res.Success {
		return time.Time{}, rejected(res.Message)
	}
	d.audit(ctx, "reactivate_license", &id, expiryDetails(days, res.NewEndDate))
	if res.NewEndDate == nil {
		return time.Time{}, nil
	}
	return *res.NewEndDate, nil
}

// ToggleBlock unblocks a blocked license and blocks anything else. The write
// only lands if the status read is still current.
func (d *Dispatcher) ToggleBlock(ctx context.Context, id uuid.UUID) (status models.LicenseStatus, err error) {
	defer d.observe("toggle_block", time.Now(), &err)

	l, err := d.Licenses.GetLicense(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to read license: %w", err)
	}

	next := models.LicenseStatusBlocked
	if l.Status == models.LicenseStatusBlocked {
		next = models.LicenseStatusActive
	}
	if err := d.Licenses.SetStatus(ctx, id, l.Status, next); err != nil {
		return "", fmt.Errorf("failed to change license status: %w", err)
	}

	d.audit(ctx, "toggle_block_license", &id, map[string]interface{}{
		"from": string(l.Status),
		"to":   string(next),
	})
	return next, nil
}

// RemoveDevice unbinds the first occurrence of deviceID. found is false when
// the license has no such device; that is not an error.
func (d *Dispatcher) RemoveDevice(ctx context.Context, id uuid.UUID, deviceID string) (found bool, err error) {
	defer d.observe("remove_device", time.Now(), &err)

	l, err := d.Licenses.GetLicense(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to read license: %w", err)
	}

	i := slices.Index(l.DeviceIDs, deviceID)
	if i < 0 {
		return false, nil
	}
	remaining := slices.Delete(slices.Clone(l.DeviceIDs), i, i+1)
	if err := d.Licenses.SetDevices(ctx, id, l.DeviceIDs, remaining); err != nil {
		return false, fmt.Errorf("failed to remove device: %w", err)
	}

	d.audit(ctx, "remove_device", &id, map[string]interface{}{
		"device_id": deviceID,
	})
	return true, nil
}

func (d *Dispatcher) ResetDevices(ctx context.Context, id uuid.UUID) (err error) {
	defer d.observe("reset_devices", time.Now(), &err)

	if err := d.Licenses.SetDevices(ctx, id, nil, []string{}); err != nil {
		return fmt.Errorf("failed to reset devices: %w", err)
	}

	d.audit(ctx, "reset_devices", &id, nil)
	return nil
}

// RegenerateCode replaces the license code. Up to RegenerateAttempts
// candidates are checked against the collection; the last one is written even
// if it collided, leaving the unique constraint as the final arbiter.
func (d *Dispatcher) RegenerateCode(ctx context.Context, id uuid.UUID) (code string, err error) {
	defer d.observe("regenerate_code", time.Now(), &err)

	l, err := d.Licenses.GetLicense(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to read license: %w", err)
	}

	for attempt := 0; attempt < RegenerateAttempts; attempt++ {
		code, err = d.NewCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate license code: %w", err)
		}
		exists, err := d.Licenses.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check license code: %w", err)
		}
		if !exists {
			break
		}
		metrics.CodeCollisionsTotal.Inc()
	}

	if err := d.Licenses.SetCode(ctx, id, l.Code, code); err != nil {
		return "", fmt.Errorf("failed to regenerate license code: %w", err)
	}

	d.audit(ctx, "regenerate_code", &id, map[string]interface{}{
		"old_code": l.Code,
		"new_code": code,
	})
	return code, nil
}

func (d *Dispatcher) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer d.observe("delete", time.Now(), &err)

	if err := d.Licenses.DeleteLicense(ctx, id); err != nil {
		return fmt.Errorf("failed to delete license: %w", err)
	}

	d.audit(ctx, "delete_license", &id, nil)
	return nil
}

func (d *Dispatcher) audit(ctx context.Context, action string, id *uuid.UUID, details map[string]interface{}) {
	if details == nil {
		details = map[string]interface{}{}
	}
	service.AsyncLogAdminAction(ctx, d.Logs, &models.AdminLog{
		Action:     action,
		EntityType: entityLicense,
		EntityID:   id,
		Details:    details,
	})
}

func (d *Dispatcher) observe(operation string, start time.Time, err *error) {
	metrics.MutationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	metrics.MutationsTotal.WithLabelValues(operation, Outcome(*err)).Inc()
}

// Outcome classifies a dispatcher error for metrics and responses.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrRejected), errors.Is(err, store.ErrInvalid):
		return "rejected"
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrDuplicate):
		return "conflict"
	case errors.Is(err, store.ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
