package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"licensedesk/internal/dashboard"
	"licensedesk/internal/models"
	"licensedesk/internal/store"
)

// licenseListResponse is the JSON form of the dashboard view.
type licenseListResponse struct {
	models.PaginatedList[models.LicenseView]
	KPIs     models.KPIs       `json:"kpis"`
	PageKPIs models.KPIs       `json:"page_kpis"`
	Filters  map[string]string `json:"filters"`
}

// GetDashboardStatsHandler handles GET /api/stats
func GetDashboardStatsHandler(svc *dashboard.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		stats, err := svc.Stats.GetDashboardStats(ctx, svc.Clock.Now())
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": "Failed to get dashboard stats"})
			return
		}
		if stats.RecentAdminLogs == nil {
			stats.RecentAdminLogs = []models.AdminLog{}
		}

		c.JSON(http.StatusOK, stats)
	}
}

// ListLicensesHandler handles GET /api/licenses. It takes the same query
// parameters as the console.
func ListLicensesHandler(svc *dashboard.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		view := svc.Load(ctx, ParseListQuery(c))
		if view.ListErr != nil {
			c.JSON(statusFor(view.ListErr), gin.H{"error": "Failed to list licenses"})
			return
		}

		c.JSON(http.StatusOK, licenseListResponse{
			PaginatedList: view.Licenses,
			KPIs:          view.KPIs,
			PageKPIs:      view.PageKPIs,
			Filters:       view.Query.Filters(),
		})
	}
}

// HealthHandler handles GET /health
func HealthHandler(licenseStore store.LicenseStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		if err := licenseStore.Ping(ctx); err != nil {
			status := "error"
			if errors.Is(err, store.ErrUnavailable) {
				status = "unavailable"
			}
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": status})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
