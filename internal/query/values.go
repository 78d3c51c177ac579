package query

import (
	"net/url"
	"strconv"
)

// URL parameter names shared by the console, the export and the JSON API.
const (
	ParamStatus    = "status"
	ParamType      = "type"
	ParamSearch    = "q"
	ParamSort      = "sort"
	ParamDirection = "dir"
	ParamPage      = "page"
)

// FromValues reads a ListQuery from URL parameters. Unparseable pages fall
// back to 1; the result is normalized but carries no page size.
func FromValues(v url.Values) ListQuery {
	page, err := strconv.Atoi(v.Get(ParamPage))
	if err != nil {
		page = 1
	}
	return ListQuery{
		Status:    v.Get(ParamStatus),
		Type:      v.Get(ParamType),
		Search:    v.Get(ParamSearch),
		Sort:      v.Get(ParamSort),
		Direction: ParseDirection(v.Get(ParamDirection)),
		Page:      page,
	}.Normalize()
}

// Values encodes q back into URL parameters, omitting defaults.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	if q.Status != "" && q.Status != StatusAll {
		v.Set(ParamStatus, q.Status)
	}
	if q.Type != "" && q.Type != TypeAll {
		v.Set(ParamType, q.Type)
	}
	if q.Search != "" {
		v.Set(ParamSearch, q.Search)
	}
	if q.Sort != "" && q.Sort != DefaultSort {
		v.Set(ParamSort, q.Sort)
	}
	if q.Direction == Asc {
		v.Set(ParamDirection, string(Asc))
	}
	if q.Page > 1 {
		v.Set(ParamPage, strconv.Itoa(q.Page))
	}
	return v
}

// Filters returns the filter parameters only, as recorded in export
// manifests.
func (q ListQuery) Filters() map[string]string {
	return map[string]string{
		ParamStatus: q.Status,
		ParamType:   q.Type,
		ParamSearch: q.Search,
	}
}

// WithPage returns q moved to page.
func (q ListQuery) WithPage(page int) ListQuery {
	q.Page = page
	return q
}

// WithSort returns q sorted by field, flipping the direction when it already
// is, and reset to the first page.
func (q ListQuery) WithSort(field string) ListQuery {
	if q.Sort == field {
		if q.Direction == Asc {
			q.Direction = Desc
		} else {
			q.Direction = Asc
		}
	} else {
		q.Sort = field
		q.Direction = Desc
	}
	q.Page = 1
	return q
}
