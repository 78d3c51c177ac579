package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"licensedesk/internal/api"
	"licensedesk/internal/clock"
	"licensedesk/internal/config"
	"licensedesk/internal/dashboard"
	"licensedesk/internal/database"
	"licensedesk/internal/mutation"
	"licensedesk/internal/store"
	"licensedesk/internal/version"
)

type stores struct {
	licenses   store.LicenseStore
	procedures store.Procedures
	stats      store.StatsStore
	logs       store.LogStore
	close      func()
}

func setupLogger(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// openStores connects the configured driver. A postgres driver that cannot
// be reached still yields stores, which report every call as unavailable so
// the console renders with a notice instead of refusing to start.
func openStores(ctx context.Context, cfg config.Config) stores {
	if cfg.StoreDriver == config.StoreDriverMemory {
		slog.Warn("Using in-memory store, data is lost on restart")
		m := store.NewMemoryStore(clock.System(), cfg.ExpiringWindow)
		return stores{licenses: m, procedures: m, stats: m, logs: m, close: func() {}}
	}

	disabled := func(reason error) stores {
		slog.Error("Datastore unavailable, serving in degraded mode", "error", reason)
		d := store.Disabled{Reason: reason}
		return stores{licenses: d, procedures: d, stats: d, logs: d, close: func() {}}
	}

	if cfg.DatabaseURL == "" {
		return disabled(errors.New("database_url is not configured"))
	}

	if cfg.AutoMigrate {
		if err := database.Migrate(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			slog.Error("Migration failed", "error", err)
		}
	}

	pool, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return disabled(err)
	}

	return stores{
		licenses:   store.NewPostgresLicenseStore(pool, cfg.ExpiringWindow),
		procedures: store.NewPostgresProcedures(pool),
		stats:      store.NewPostgresStatsStore(pool, cfg.ExpiringWindow),
		logs:       store.NewPostgresLogStore(pool),
		close:      pool.Close,
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg)

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := openStores(context.Background(), cfg)
	defer s.close()

	svc := dashboard.NewService(s.licenses, s.stats, clock.System(), cfg.PageSize, cfg.ExpiringWindow)
	dispatcher := mutation.NewDispatcher(s.licenses, s.procedures, s.logs)
	server := api.NewServer(cfg, s.licenses, s.logs, svc, dispatcher)

	slog.Info("licensedesk ("+version.Version+") is listening", "port", cfg.Port, "store_driver", cfg.StoreDriver, "basic_auth", cfg.BasicAuthEnabled())
	if err := server.Router.Run(":" + cfg.Port); err != nil {
		slog.Error("Failed to run server", "error", err)
		os.Exit(1)
	}
}
