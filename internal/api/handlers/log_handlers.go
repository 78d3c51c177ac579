package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"licensedesk/internal/models"
	"licensedesk/internal/store"
)

// GetAdminLogsHandler handles GET /api/audit. An optional license_id narrows
// the trail to one license.
func GetAdminLogsHandler(logStore store.LogStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		var licenseID *uuid.UUID
		if idStr := c.Query("license_id"); idStr != "" {
			id, err := uuid.Parse(idStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid license_id"})
				return
			}
			licenseID = &id
		}

		pagination := ParsePaginationParams(c)

		logs, totalCount, err := logStore.ListAdminLogs(ctx, licenseID, pagination)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": "Failed to fetch admin logs"})
			return
		}

		c.JSON(http.StatusOK, models.NewPaginatedList(logs, totalCount, pagination))
	}
}
