package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"licensedesk/internal/models"
	"licensedesk/internal/mutation"
	"licensedesk/internal/query"
	"licensedesk/internal/store"
)

// DefaultDays is used when an extend or reactivate form carries no usable
// day count.
const DefaultDays = 30

// ParsePaginationParams extracts page and limit from query parameters
func ParsePaginationParams(c *gin.Context) models.PaginationParams {
	pageStr := c.DefaultQuery("page", "1")
	limitStr := c.DefaultQuery("limit", "10")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = 10
	}

	// Enforce a sensible max limit to prevent abuse
	if limit > 1000 {
		limit = 1000
	}

	return models.PaginationParams{
		Page:  models.ClampPage(page, limit),
		Limit: limit,
	}
}

// ParseListQuery reads the dashboard filters from the request URL.
func ParseListQuery(c *gin.Context) query.ListQuery {
	return query.FromValues(c.Request.URL.Query())
}

// parseLicenseID reads the :id path parameter. A malformed id is reported as
// not found, the same outcome as an id that does not exist.
func parseLicenseID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, store.ErrNotFound
	}
	return id, nil
}

// formInt parses an integer form field, falling back to def when the field is
// missing or malformed.
func formInt(c *gin.Context, key string, def int) int {
	if n, ok := formIntOK(c, key); ok {
		return n
	}
	return def
}

// formIntOK reports whether the field held an integer.
func formIntOK(c *gin.Context, key string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(c.PostForm(key)))
	if err != nil {
		return 0, false
	}
	return n, true
}

// formOptional returns nil for a blank form field.
func formOptional(c *gin.Context, key string) *string {
	v := strings.TrimSpace(c.PostForm(key))
	if v == "" {
		return nil
	}
	return &v
}

// statusFor maps an operation error to an HTTP status.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, mutation.ErrRejected), errors.Is(err, store.ErrInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// describe turns an operation error into a message for the administrator.
func describe(err error) string {
	var rejection *mutation.Rejection
	switch {
	case errors.As(err, &rejection):
		return rejection.Message
	case errors.Is(err, store.ErrNotFound):
		return "License not found"
	case errors.Is(err, store.ErrConflict):
		return "The license was changed by someone else, please retry"
	case errors.Is(err, store.ErrDuplicate):
		return "The generated code is already in use, please retry"
	case errors.Is(err, store.ErrInvalid):
		return "The datastore rejected the new value"
	case errors.Is(err, store.ErrUnavailable):
		return "Database connection error"
	default:
		return err.Error()
	}
}
