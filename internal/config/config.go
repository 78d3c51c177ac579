package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"licensedesk/internal/service"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Port                      string          `yaml:"port"`
	Debug                     bool            `yaml:"debug"`
	StoreDriver               string          `yaml:"store_driver"`
	DatabaseURL               string          `yaml:"database_url"`
	MigrationsPath            string          `yaml:"migrations_path"`
	AutoMigrate               bool            `yaml:"auto_migrate"`
	PageSize                  int             `yaml:"page_size"`
	ExpiringWindow            time.Duration   `yaml:"expiring_window"`
	AdminUser                 string          `yaml:"admin_user"`
	AdminSecret               string          `yaml:"admin_secret"`
	ResponseSigningPrivateKey string          `yaml:"response_signing_private_key"`
	ResponseSigningPublicKey  string          `yaml:"response_signing_public_key"`
	TrustedProxies            []string        `yaml:"trusted_proxies"`
	RateLimitAdmin            RateLimitConfig `yaml:"rate_limit_admin"`
	LogLevel                  string          `yaml:"log_level"`
	LogFormat                 string          `yaml:"log_format"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	Enabled           bool          `yaml:"enabled"`
	CacheSize         int           `yaml:"cache_size"`
	CacheTTL          time.Duration `yaml:"cache_ttl"`
}

func Load() (Config, error) {
	return LoadFromPath("config.yaml")
}

// LoadFromPath applies defaults, then the YAML file at path if it exists,
// then environment overrides.
func LoadFromPath(path string) (Config, error) {
	cfg := NewDefaultConfig()

	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, err
	}

	cfg.LoadEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	if err := cfg.ensureKeys(); err != nil {
		return cfg, err
	}

	if err := cfg.ensureAdminSecret(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func NewDefaultConfig() Config {
	return Config{
		Port:           "8080",
		Debug:          false,
		StoreDriver:    StoreDriverPostgres,
		MigrationsPath: "migrations",
		AutoMigrate:    true,
		PageSize:       20,
		ExpiringWindow: 7 * 24 * time.Hour,
		RateLimitAdmin: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             10,
			Enabled:           true,
			CacheSize:         5000,
			CacheTTL:          1 * time.Hour,
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

func (c *Config) LoadEnv() {
	if envPort := os.Getenv("PORT"); envPort != "" {
		c.Port = envPort
	}
	if envDriver := os.Getenv("STORE_DRIVER"); envDriver != "" {
		c.StoreDriver = envDriver
	}
	if envDB := os.Getenv("DATABASE_URL"); envDB != "" {
		c.DatabaseURL = envDB
	}
	if envUser := os.Getenv("ADMIN_USER"); envUser != "" {
		c.AdminUser = envUser
	}
	if envSecret := os.Getenv("ADMIN_SECRET"); envSecret != "" {
		c.AdminSecret = envSecret
	}
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		c.LogLevel = envLevel
	}
	if envPrivKey := os.Getenv("RESPONSE_SIGNING_PRIVATE_KEY"); envPrivKey != "" {
		c.ResponseSigningPrivateKey = envPrivKey
	}
	if envPubKey := os.Getenv("RESPONSE_SIGNING_PUBLIC_KEY"); envPubKey != "" {
		c.ResponseSigningPublicKey = envPubKey
	}
}

func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("unknown store_driver %q (want %s or %s)", c.StoreDriver, StoreDriverPostgres, StoreDriverMemory)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.ExpiringWindow <= 0 {
		return fmt.Errorf("expiring_window must be positive, got %s", c.ExpiringWindow)
	}
	return nil
}

// BasicAuthEnabled reports whether the console is behind HTTP basic auth.
func (c Config) BasicAuthEnabled() bool {
	return c.AdminUser != "" && c.AdminSecret != ""
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c *Config) ensureKeys() error {
	if c.ResponseSigningPrivateKey != "" && c.ResponseSigningPublicKey != "" {
		return nil
	}

	slog.Warn("ResponseSigningPrivateKey or ResponseSigningPublicKey not found, generating ephemeral key pair. THESE KEYS WILL BE LOST ON RESTART.")

	priv, pub, err := service.GenerateKeyPair()
	if err != nil {
		return err
	}

	c.ResponseSigningPrivateKey = priv
	c.ResponseSigningPublicKey = pub

	return nil
}

// ensureAdminSecret only generates a secret when a user is configured without
// one; with neither set the console runs without authentication.
func (c *Config) ensureAdminSecret() error {
	if c.AdminUser == "" || c.AdminSecret != "" {
		return nil
	}

	secretBytes := make([]byte, 24)
	if _, err := rand.Read(secretBytes); err != nil {
		return fmt.Errorf("failed to generate admin secret: %w", err)
	}
	c.AdminSecret = base64.RawURLEncoding.EncodeToString(secretBytes)

	slog.Warn("Admin Secret not found, generated an ephemeral one. THIS SECRET WILL BE LOST ON RESTART.",
		"admin_user", c.AdminUser, "admin_secret", c.AdminSecret)

	return nil
}
