package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"licensedesk/internal/api/handlers"
	"licensedesk/internal/api/middleware"
	"licensedesk/internal/api/web"
	"licensedesk/internal/config"
	"licensedesk/internal/dashboard"
	"licensedesk/internal/metrics"
	"licensedesk/internal/mutation"
	"licensedesk/internal/store"
)

// Title is shown in the console header.
const Title = "License Admin"

type Server struct {
	Router *gin.Engine
	Config config.Config

	LicenseStore store.LicenseStore
	LogStore     store.LogStore
	Dashboard    *dashboard.Service
	Dispatcher   *mutation.Dispatcher
}

func NewServer(cfg config.Config, ls store.LicenseStore, logs store.LogStore, svc *dashboard.Service, d *mutation.Dispatcher) *Server {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Debug {
		r.Use(gin.Logger())
	}
	r.Use(metrics.HTTPMetricsMiddleware())

	if len(cfg.TrustedProxies) > 0 {
		if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			slog.Warn("Invalid trusted proxies, ignoring", "error", err)
		}
	}
	r.SetHTMLTemplate(web.MustTemplates())

	server := &Server{
		Router:       r,
		Config:       cfg,
		LicenseStore: ls,
		LogStore:     logs,
		Dashboard:    svc,
		Dispatcher:   d,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	// Public routes
	s.Router.GET("/health", handlers.HealthHandler(s.LicenseStore))
	s.Router.GET("/metrics", metrics.Handler())

	console := s.Router.Group("/")
	if s.Config.BasicAuthEnabled() {
		console.Use(gin.BasicAuth(gin.Accounts{s.Config.AdminUser: s.Config.AdminSecret}))
	}
	{
		console.GET("/", handlers.DashboardHandler(s.Dashboard, Title))

		signed := console.Group("/")
		signed.Use(middleware.ResponseSigningMiddleware(s.Config.ResponseSigningPrivateKey))
		signed.GET("/export", handlers.ExportHandler(s.Dashboard, s.Config.ResponseSigningPrivateKey))
		signed.GET("/api/stats", handlers.GetDashboardStatsHandler(s.Dashboard))
		signed.GET("/api/licenses", handlers.ListLicensesHandler(s.Dashboard))
		signed.GET("/api/licenses/:id", handlers.GetLicenseHandler(s.Dashboard))
		signed.GET("/api/audit", handlers.GetAdminLogsHandler(s.LogStore))

		// License mutations
		licenses := console.Group("/licenses")
		licenses.Use(middleware.RateLimitMiddleware(s.Config.RateLimitAdmin))
		licenses.POST("/create", handlers.CreateLicenseHandler(s.Dispatcher))
		licenses.POST("/:id/update", handlers.UpdateLicenseHandler(s.Dispatcher, s.LicenseStore))
		licenses.POST("/:id/extend", handlers.ExtendLicenseHandler(s.Dispatcher))
		licenses.POST("/:id/reactivate", handlers.ReactivateLicenseHandler(s.Dispatcher))
		licenses.POST("/:id/toggle-block", handlers.ToggleBlockHandler(s.Dispatcher))
		licenses.POST("/:id/remove-device", handlers.RemoveDeviceHandler(s.Dispatcher))
		licenses.POST("/:id/reset-devices", handlers.ResetDevicesHandler(s.Dispatcher))
		licenses.POST("/:id/regenerate-code", handlers.RegenerateCodeHandler(s.Dispatcher))
		licenses.POST("/:id/delete", handlers.DeleteLicenseHandler(s.Dispatcher))
	}
}
