// Package query turns the console's list parameters (status, type, search,
// sort and page) into a query against the licenses collection. The SQL form
// is used by the PostgreSQL store; Matches, Sort and Page give the in-memory
// store the same semantics.
package query

import (
	"fmt"
	"strings"
	"time"

	"licensedesk/internal/models"
)

const (
	StatusAll          = "all"
	StatusExpiringSoon = "expiring_soon"
	TypeAll            = "all"

	DefaultPageSize       = 20
	DefaultSort           = "created_at"
	DefaultExpiringWindow = 7 * 24 * time.Hour
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps anything other than "asc" to Desc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Asc)) {
		return Asc
	}
	return Desc
}

// sortColumns whitelists the sortable fields. days_remaining does not exist in
// storage and sorts by end_date in the same direction.
var sortColumns = map[string]string{
	"created_at":     "created_at",
	"end_date":       "end_date",
	"days_remaining": "end_date",
	"status":         "status",
	"license_code":   "license_code",
	"code":           "license_code",
	"license_type":   "license_type",
	"type":           "license_type",
	"client_name":    "client_name",
	"max_devices":    "max_devices",
}

// SortColumn resolves a requested sort field to its storage column, falling
// back to created_at for anything not whitelisted.
func SortColumn(field string) string {
	if col, ok := sortColumns[strings.ToLower(strings.TrimSpace(field))]; ok {
		return col
	}
	return sortColumns[DefaultSort]
}

type ListQuery struct {
	Status    string
	Type      string
	Search    string
	Sort      string
	Direction Direction
	Page      int
	// PageSize <= 0 after Normalize means no pagination.
	PageSize int
}

// Normalize fills defaults and clamps out-of-range values.
func (q ListQuery) Normalize() ListQuery {
	q.Status = strings.ToLower(strings.TrimSpace(q.Status))
	if q.Status == "" {
		q.Status = StatusAll
	}
	q.Type = strings.TrimSpace(q.Type)
	if q.Type == "" {
		q.Type = TypeAll
	}
	q.Search = strings.TrimSpace(q.Search)
	if _, ok := sortColumns[strings.ToLower(strings.TrimSpace(q.Sort))]; !ok {
		q.Sort = DefaultSort
	} else {
		q.Sort = strings.ToLower(strings.TrimSpace(q.Sort))
	}
	if q.Direction != Asc {
		q.Direction = Desc
	}
	q.Page = models.ClampPage(q.Page, q.PageSize)
	return q
}

// Unpaginated returns the same filters ordered by creation time, newest first,
// with no page window. This is the shape used for exports.
func (q ListQuery) Unpaginated() ListQuery {
	q.Sort = DefaultSort
	q.Direction = Desc
	q.Page = 1
	q.PageSize = 0
	return q
}

func (q ListQuery) Paginated() bool { return q.PageSize > 0 }

// Range returns the inclusive row range [from, to] of the requested page.
func (q ListQuery) Range() (from, to int) {
	page := models.ClampPage(q.Page, q.PageSize)
	from = (page - 1) * q.PageSize
	return from, from + q.PageSize - 1
}

func (q ListQuery) Pagination() models.PaginationParams {
	return models.PaginationParams{Page: q.Page, Limit: q.PageSize}
}

// IsExpiringSoon is the derived pseudo-status: an active license whose expiry
// falls in (now, now+window].
func IsExpiringSoon(status models.LicenseStatus, endDate *time.Time, now time.Time, window time.Duration) bool {
	if status != models.LicenseStatusActive || endDate == nil {
		return false
	}
	return endDate.After(now) && !endDate.After(now.Add(window))
}

// Matches reports whether l satisfies every active predicate of q.
func Matches(l models.License, q ListQuery, now time.Time, window time.Duration) bool {
	switch q.Status {
	case "", StatusAll:
	case StatusExpiringSoon:
		if !IsExpiringSoon(l.Status, l.EndDate, now, window) {
			return false
		}
	default:
		if string(l.Status) != q.Status {
			return false
		}
	}

	if q.Type != "" && q.Type != TypeAll && l.Type != q.Type {
		return false
	}

	if q.Search != "" && !strings.Contains(strings.ToLower(l.Code), strings.ToLower(q.Search)) {
		return false
	}
	return true
}

// SQL is a composed query fragment with positional arguments starting at $1.
type SQL struct {
	Where   string
	OrderBy string
	Args    []interface{}
	Limit   int
	Offset  int
}

// Build composes the WHERE and ORDER BY clauses for q. Limit is zero when the
// query is unpaginated.
func Build(q ListQuery, now time.Time, window time.Duration) SQL {
	var where []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch q.Status {
	case "", StatusAll:
	case StatusExpiringSoon:
		where = append(where,
			"status = "+arg(string(models.LicenseStatusActive)),
			"end_date > "+arg(now),
			"end_date <= "+arg(now.Add(window)),
		)
	default:
		where = append(where, "status = "+arg(q.Status))
	}

	if q.Type != "" && q.Type != TypeAll {
		where = append(where, "license_type = "+arg(q.Type))
	}

	if q.Search != "" {
		where = append(where, `license_code ILIKE `+arg("%"+escapeLike(q.Search)+"%"))
	}

	out := SQL{Args: args}
	if len(where) > 0 {
		out.Where = "WHERE " + strings.Join(where, " AND ")
	}

	dir := "DESC"
	if q.Direction == Asc {
		dir = "ASC"
	}
	out.OrderBy = fmt.Sprintf("%s %s NULLS LAST, id ASC", SortColumn(q.Sort), dir)

	if q.Paginated() {
		from, _ := q.Range()
		out.Limit = q.PageSize
		out.Offset = from
	}
	return out
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
