// Package config contains everything related to configuration
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingUsername is returned when no GitHub login is configured and no
// profiles file exists to pick one from.
var ErrMissingUsername = errors.New("GITHUB_USERNAME is required (set via env, .env or a profiles file)")

// Cache backends.
const (
	CacheBackendSQLite = "sqlite"
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
)

// Config holds the application configuration.
type Config struct {
	GitHubUsername string
	GitHubToken    string
	GitHubAPIURL   string
	RepoPageSize   int

	CacheBackend string
	CacheTTL     time.Duration
	RedisAddr    string

	DatabasePath string
	ProfilesPath string

	RefreshInterval time.Duration
	HTTPTimeout     time.Duration
	MaxConcurrent   int
	NotifyShift     int

	LogFile  string
	LogLevel string
}

// Default values
const (
	defaultAPIURL          = "https://api.github.com"
	defaultRepoPageSize    = 10
	defaultCacheTTL        = time.Hour
	defaultRedisAddr       = "localhost:6379"
	defaultRefreshInterval = 15 * time.Minute
	defaultHTTPTimeout     = 30 * time.Second
	defaultMaxConcurrent   = 4
	defaultNotifyShift     = 5
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	dataDir := getDefaultDataDir()
	dbPath := getEnvString("DATABASE_PATH", filepath.Join(dataDir, "langstats.db"))

	cfg := &Config{
		GitHubUsername:  getEnvString("GITHUB_USERNAME", os.Getenv("NEXT_PUBLIC_GITHUB_USERNAME")),
		GitHubToken:     getEnvString("GITHUB_TOKEN", os.Getenv("NEXT_PUBLIC_GITHUB_TOKEN")),
		GitHubAPIURL:    strings.TrimRight(getEnvString("GITHUB_API_URL", defaultAPIURL), "/"),
		RepoPageSize:    getEnvInt("REPO_PAGE_SIZE", defaultRepoPageSize),
		CacheBackend:    strings.ToLower(getEnvString("CACHE_BACKEND", CacheBackendSQLite)),
		CacheTTL:        getEnvDuration("CACHE_TTL", defaultCacheTTL),
		RedisAddr:       getEnvString("REDIS_ADDR", defaultRedisAddr),
		DatabasePath:    dbPath,
		ProfilesPath:    getEnvString("PROFILES_PATH", filepath.Join(dataDir, "profiles.json")),
		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", defaultRefreshInterval),
		HTTPTimeout:     getEnvDuration("HTTP_TIMEOUT", defaultHTTPTimeout),
		MaxConcurrent:   getEnvInt("MAX_CONCURRENT", defaultMaxConcurrent),
		NotifyShift:     getEnvInt("NOTIFY_SHIFT", defaultNotifyShift),
		LogFile:         getEnvString("LOG_FILE", filepath.Join(filepath.Dir(dbPath), "langstats.log")),
		LogLevel:        getEnvString("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}
	if err := ensureDir(filepath.Dir(cfg.ProfilesPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the loaded values for consistency.
func (c *Config) Validate() error {
	if c.GitHubUsername == "" {
		if _, err := os.Stat(c.ProfilesPath); err != nil {
			return ErrMissingUsername
		}
	}

	switch c.CacheBackend {
	case CacheBackendSQLite, CacheBackendRedis, CacheBackendMemory:
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q (want sqlite, redis or memory)", c.CacheBackend)
	}

	if c.RepoPageSize < 1 || c.RepoPageSize > 100 {
		return fmt.Errorf("REPO_PAGE_SIZE must be between 1 and 100, got %d", c.RepoPageSize)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	if c.MaxConcurrent < 1 {
		c.MaxConcurrent = 1
	}

	return nil
}

// MaskedToken returns the token with all but the last four characters hidden.
func (c *Config) MaskedToken() string {
	if c.GitHubToken == "" {
		return "(none)"
	}
	if len(c.GitHubToken) <= 4 {
		return "****"
	}
	return strings.Repeat("*", 8) + c.GitHubToken[len(c.GitHubToken)-4:]
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"), filepath.Join(cwd, ".env.local"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "langstats-tui", ".env"),
			filepath.Join(home, ".langstats", ".env"),
		)
	}

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(cwd), ".env"))
	}

	return paths
}

// getDefaultDataDir returns the directory holding the database and profiles.
func getDefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "langstats-tui")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1h", "500ms"; a bare number is read as seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
