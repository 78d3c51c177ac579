// Package kpi computes inventory-wide status counts.
package kpi

import (
	"time"

	"licensedesk/internal/models"
	"licensedesk/internal/query"
)

// Aggregate counts records by status. Callers must pass the full, unfiltered
// collection: the result describes the inventory, not a list view.
func Aggregate(records []models.License, now time.Time, window time.Duration) models.KPIs {
	k := models.KPIs{Total: len(records)}
	for _, l := range records {
		switch l.Status {
		case models.LicenseStatusActive:
			k.Active++
		case models.LicenseStatusPending:
			k.Pending++
		case models.LicenseStatusExpired:
			k.Expired++
		case models.LicenseStatusBlocked:
			k.Blocked++
		}
		if query.IsExpiringSoon(l.Status, l.EndDate, now, window) {
			k.ExpiringSoon++
		}
	}
	return k
}
