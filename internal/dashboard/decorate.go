package dashboard

import (
	"time"

	"licensedesk/internal/models"
	"licensedesk/internal/query"
)

const secondsPerDay = 24 * 60 * 60

// DaysRemaining is the whole number of days between now and endDate,
// truncated toward zero. Past dates give negative values; nil means no expiry.
func DaysRemaining(endDate *time.Time, now time.Time) *int {
	if endDate == nil || endDate.IsZero() {
		return nil
	}
	// Whole seconds keep far dates out of time.Duration's range.
	secs := endDate.Unix() - now.Unix()
	nanos := endDate.Nanosecond() - now.Nanosecond()
	switch {
	case secs > 0 && nanos < 0:
		secs--
	case secs < 0 && nanos > 0:
		secs++
	}
	days := int(secs / secondsPerDay)
	return &days
}

// Decorate attaches the request-time fields to each license.
func Decorate(licenses []models.License, now time.Time, window time.Duration) []models.LicenseView {
	views := make([]models.LicenseView, 0, len(licenses))
	for _, l := range licenses {
		views = append(views, models.LicenseView{
			License:       l,
			DaysRemaining: DaysRemaining(l.EndDate, now),
			ExpiringSoon:  query.IsExpiringSoon(l.Status, l.EndDate, now, window),
		})
	}
	return views
}
