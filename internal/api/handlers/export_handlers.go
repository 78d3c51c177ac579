package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"licensedesk/internal/dashboard"
	"licensedesk/internal/export"
	"licensedesk/internal/metrics"
)

// ExportHandler handles GET /export. The whole filtered set is rendered
// before anything is written, so a failure never yields a truncated file.
func ExportHandler(svc *dashboard.Service, privateKeyBase64 string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		q := ParseListQuery(c)
		views, now, err := svc.All(ctx, q)
		if err != nil {
			metrics.DatastoreErrorsTotal.WithLabelValues("export").Inc()
			slog.Error("Failed to load licenses for export", "error", err)
			c.String(statusFor(err), "Export failed: %s", describe(err))
			return
		}

		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, views); err != nil {
			slog.Error("Failed to render export", "error", err)
			c.String(http.StatusInternalServerError, "Export failed")
			return
		}

		if privateKeyBase64 != "" {
			token, err := export.SignManifest(privateKeyBase64, buf.Bytes(), len(views), q.Filters(), now)
			if err != nil {
				slog.Error("Failed to sign export manifest", "error", err)
			} else {
				c.Header(export.TokenHeader, token)
			}
		}

		metrics.ExportRowsTotal.Add(float64(len(views)))
		c.Header("Content-Disposition", export.ContentDisposition())
		c.Data(http.StatusOK, export.ContentType, buf.Bytes())
	}
}
