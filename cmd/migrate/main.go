package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"

	"licensedesk/internal/config"
	"licensedesk/internal/database"
)

func main() {
	var databaseURL string
	var migrationsPath string
	var direction string
	var version int

	flag.StringVar(&databaseURL, "database-url", "", "Database URL")
	flag.StringVar(&migrationsPath, "path", "", "Path to migrations folder (defaults to migrations_path from config)")
	flag.StringVar(&direction, "direction", "up", "Migration direction (up/down/force/drop/version)")
	flag.IntVar(&version, "version", -1, "Migration version (required for force)")
	flag.Parse()

	if databaseURL == "" || migrationsPath == "" {
		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if databaseURL == "" {
			databaseURL = cfg.DatabaseURL
		}
		if migrationsPath == "" {
			migrationsPath = cfg.MigrationsPath
		}
	}

	if databaseURL == "" {
		log.Fatal("database-url is required (via flag, config.yaml or DATABASE_URL)")
	}

	m, err := database.NewMigrate(databaseURL, migrationsPath)
	if err != nil {
		log.Fatalf("Failed to initialize migrate: %v", err)
	}
	defer m.Close()

	switch direction {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("Failed to migrate up: %v", err)
		}
		fmt.Println("Migrated up successfully")
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("Failed to migrate down: %v", err)
		}
		fmt.Println("Migrated down successfully")
	case "force":
		if version == -1 {
			log.Fatal("version is required for force")
		}
		if err := m.Force(version); err != nil {
			log.Fatalf("Failed to force version: %v", err)
		}
		fmt.Printf("Forced version to %d successfully\n", version)
	case "drop":
		if err := m.Drop(); err != nil {
			log.Fatalf("Failed to drop database: %v", err)
		}
		fmt.Println("Database dropped successfully")
	case "version":
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			log.Fatalf("Failed to read version: %v", err)
		}
		fmt.Printf("version=%d dirty=%t\n", v, dirty)
	default:
		log.Fatalf("Invalid direction: %s", direction)
	}
}
