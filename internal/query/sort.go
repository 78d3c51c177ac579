package query

import (
	"cmp"
	"slices"
	"strings"

	"licensedesk/internal/models"
)

// Sort orders licenses in place the way Build's ORDER BY does: the sort column
// in the requested direction, NULLs last, then id ascending.
func Sort(licenses []models.License, q ListQuery) {
	col := SortColumn(q.Sort)
	desc := q.Direction != Asc

	slices.SortStableFunc(licenses, func(a, b models.License) int {
		c, nullOrdered := compareColumn(a, b, col)
		if c != 0 {
			if desc && !nullOrdered {
				c = -c
			}
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
}

// compareColumn returns the ascending comparison for col. nullOrdered is set
// when the result was decided by a NULL, which must stay last in both
// directions.
func compareColumn(a, b models.License, col string) (int, bool) {
	switch col {
	case "end_date":
		switch {
		case a.EndDate == nil && b.EndDate == nil:
			return 0, false
		case a.EndDate == nil:
			return 1, true
		case b.EndDate == nil:
			return -1, true
		}
		return a.EndDate.Compare(*b.EndDate), false
	case "client_name":
		switch {
		case a.ClientName == nil && b.ClientName == nil:
			return 0, false
		case a.ClientName == nil:
			return 1, true
		case b.ClientName == nil:
			return -1, true
		}
		return strings.Compare(*a.ClientName, *b.ClientName), false
	case "status":
		return strings.Compare(string(a.Status), string(b.Status)), false
	case "license_code":
		return strings.Compare(a.Code, b.Code), false
	case "license_type":
		return strings.Compare(a.Type, b.Type), false
	case "max_devices":
		return cmp.Compare(a.MaxDevices, b.MaxDevices), false
	default:
		return a.CreatedAt.Compare(b.CreatedAt), false
	}
}

// Page slices an already filtered and sorted set down to q's window.
func Page(licenses []models.License, q ListQuery) []models.License {
	if !q.Paginated() {
		return licenses
	}
	from, to := q.Range()
	if from < 0 || from >= len(licenses) {
		return []models.License{}
	}
	if to >= len(licenses) {
		to = len(licenses) - 1
	}
	return licenses[from : to+1]
}
