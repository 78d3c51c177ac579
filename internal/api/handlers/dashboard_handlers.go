package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"licensedesk/internal/api/web"
	"licensedesk/internal/dashboard"
	"licensedesk/internal/metrics"
	"licensedesk/internal/store"
)

const requestTimeout = 10 * time.Second

// DashboardHandler handles GET /
func DashboardHandler(svc *dashboard.Service, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		view := svc.Load(ctx, ParseListQuery(c))
		if view.ListErr != nil {
			metrics.DatastoreErrorsTotal.WithLabelValues("list_licenses").Inc()
		}
		if view.StatsErr != nil {
			metrics.DatastoreErrorsTotal.WithLabelValues("dashboard_stats").Inc()
		}

		data := web.DashboardData{
			Title:       title,
			View:        view,
			Flash:       PopFlash(c),
			Statuses:    web.Statuses,
			Unavailable: errors.Is(view.ListErr, store.ErrUnavailable) || errors.Is(view.StatsErr, store.ErrUnavailable),
		}
		if data.Flash == nil && view.ListErr != nil && !data.Unavailable {
			data.Flash = &web.Flash{Kind: FlashError, Message: "Error loading licenses: " + describe(view.ListErr)}
		}

		c.HTML(http.StatusOK, "index.html", data)
	}
}
