/*
Package config builds the process configuration once at startup.

PURPOSE:
  One explicit Config value constructed in main and passed by reference
  into each component. Nothing in the engine reads the environment or
  any global after startup; in particular the reporting timezone - which
  decides bucket membership at day edges - lives here and nowhere else.

SOURCES:
  A .env file (if present) via godotenv, then process environment, then
  the defaults below. Command-line flags in main may override port and
  database path.

VARIABLES:
  PORT                 HTTP port                  (default 8080)
  SQLITE_DB_PATH       SQLite database path       (default ./data/membership.db)
  REPORTING_TIMEZONE   IANA zone for report buckets and the current
                       billing period             (default America/Argentina/Buenos_Aires)
  CORS_ORIGINS         Comma-separated allowed origins
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	SQLiteDBPath string

	// ReportingTimeZone is the configured zone name; Location is the
	// resolved *time.Location every temporal computation uses.
	ReportingTimeZone string
	Location          *time.Location

	CORSOrigins []string
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	// Missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	cfg := &Config{
		Port:              port,
		SQLiteDBPath:      getEnv("SQLITE_DB_PATH", "./data/membership.db"),
		ReportingTimeZone: getEnv("REPORTING_TIMEZONE", "America/Argentina/Buenos_Aires"),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:8080")),
	}

	loc, err := time.LoadLocation(cfg.ReportingTimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid REPORTING_TIMEZONE %q: %w", cfg.ReportingTimeZone, err)
	}
	cfg.Location = loc
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
