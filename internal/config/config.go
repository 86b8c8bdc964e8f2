package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Deployment roles. Replication only runs on a branch deployment; a main
// deployment receiving records never pushes them back out.
const (
	RoleBranch = "Branch Database"
	RoleMain   = "Main Database"
)

// Config holds all application configuration
type Config struct {
	Port     string
	Database DatabaseConfig
	Remote   RemoteConfig
	Sync     SyncConfig
}

// DatabaseConfig holds local database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// RemoteConfig holds the connection settings for the remote (Main) deployment.
// It is passed explicitly into the replication layer; nothing below the
// orchestrator reads ambient process state.
type RemoteConfig struct {
	URL      string
	Database string
	Username string
	Password string
	Role     string
}

// SyncConfig tunes the batch scheduler
type SyncConfig struct {
	IntervalMinutes int
	BatchSize       int
	CutoffDate      string // ISO date; documents older than this are never selected
	RateSymbol      string // currency symbol filter for rate sync, empty = all
}

// Complete reports whether the four remote connection parameters are all set.
func (r RemoteConfig) Complete() bool {
	return r.URL != "" && r.Database != "" && r.Username != "" && r.Password != ""
}

// IsBranch reports whether this deployment is configured to push to a remote.
func (r RemoteConfig) IsBranch() bool {
	return r.Role == RoleBranch
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "3002"),
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "branchsync"),
		},
		Remote: RemoteConfig{
			URL:      os.Getenv("REMOTE_URL"),
			Database: os.Getenv("REMOTE_DB"),
			Username: os.Getenv("REMOTE_USERNAME"),
			Password: os.Getenv("REMOTE_PASSWORD"),
			Role:     getEnv("REMOTE_TYPE", RoleBranch),
		},
		Sync: SyncConfig{
			IntervalMinutes: getEnvInt("SYNC_INTERVAL", 15),
			BatchSize:       getEnvInt("SYNC_BATCH_SIZE", 5),
			CutoffDate:      getEnv("SYNC_CUTOFF_DATE", "2025-05-01"),
			RateSymbol:      getEnv("SYNC_RATE_SYMBOL", "$"),
		},
	}

	if cfg.Remote.Role != RoleBranch && cfg.Remote.Role != RoleMain {
		return nil, fmt.Errorf("REMOTE_TYPE must be %q or %q, got %q", RoleBranch, RoleMain, cfg.Remote.Role)
	}

	return cfg, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
