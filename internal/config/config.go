// Package config loads configuration from environment variables. All env
// access lives here; other packages receive typed config structs. Defaults
// are chosen for local development.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Config is the profile service configuration.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	LogLevel string

	// APIBasePath is the prefix of the REST API (default: "/api/v1").
	APIBasePath string

	// MigrationsPath is the directory of SQL migrations run at startup.
	MigrationsPath string

	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	HTTP     HTTPConfig
	Cache    CacheConfig
}

// DatabaseConfig holds MariaDB connection parameters. DATABASE_URL, when
// set, takes precedence over the individual fields.
type DatabaseConfig struct {
	// Host is host or host:port; 3306 is assumed when no port is given.
	Host     string
	User     string
	Password string
	Name     string

	// dsnOverride is set from DATABASE_URL.
	dsnOverride string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the go-sql-driver/mysql connection string, built with the
// driver's own formatter so passwords with special characters survive.
func (d DatabaseConfig) DSN() string {
	if d.dsnOverride != "" {
		return d.dsnOverride
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = ensurePort(d.Host, "3306")
	cfg.DBName = d.Name
	cfg.ParseTime = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// ensurePort appends defaultPort when host has no port.
func ensurePort(host, defaultPort string) string {
	if _, _, err := net.SplitHostPort(host); err != nil {
		return net.JoinHostPort(host, defaultPort)
	}
	return host
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379").
	URL string
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	// SessionTTL is how long sessions last before expiring.
	SessionTTL time.Duration

	// LoginRateLimit is the number of login attempts allowed per IP per
	// minute. Registration gets half of it.
	LoginRateLimit int
}

// HTTPConfig holds settings for the HTTP edge.
type HTTPConfig struct {
	// AllowedOrigins are the storefront origins allowed to call the API
	// from the browser.
	AllowedOrigins []string

	// TrustedProxies are CIDRs whose forwarding headers are believed.
	TrustedProxies []string
}

// CacheConfig holds Redis cache settings.
type CacheConfig struct {
	// ProfileListTTL is how long a user's profile list stays cached.
	ProfileListTTL time.Duration
}

// Load reads the service configuration.
func Load() (*Config, error) {
	cfg := &Config{
		Env:            getEnv("ENV", "development"),
		Port:           getEnvInt("PORT", 8080),
		LogLevel:       getEnv("LOG_LEVEL", "debug"),
		APIBasePath:    getEnv("API_BASE_PATH", "/api/v1"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "db/migrations"),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost:3306"),
			User:            getEnv("DB_USER", "a11y"),
			Password:        getEnv("DB_PASSWORD", "a11y"),
			Name:            getEnv("DB_NAME", "a11y"),
			dsnOverride:     getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},

		Auth: AuthConfig{
			SessionTTL:     getEnvDuration("SESSION_TTL", 720*time.Hour),
			LoginRateLimit: getEnvInt("LOGIN_RATE_LIMIT", 10),
		},

		HTTP: HTTPConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", nil),
			TrustedProxies: getEnvList("TRUSTED_PROXIES", []string{"127.0.0.1/8", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}),
		},

		Cache: CacheConfig{
			ProfileListTTL: getEnvDuration("PROFILE_CACHE_TTL", 5*time.Minute),
		},
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.Port)
	}
	if !strings.HasPrefix(cfg.APIBasePath, "/") {
		return nil, fmt.Errorf("API_BASE_PATH must start with /, got %q", cfg.APIBasePath)
	}
	cfg.APIBasePath = strings.TrimRight(cfg.APIBasePath, "/")
	if cfg.Auth.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// ClientConfig configures a11yctl: where the profile API lives, how to
// reach it and how to render previews.
type ClientConfig struct {
	APIURL      string
	Token       string
	RetryMax    int
	Timeout     time.Duration
	PresetsFile string

	// BrowserBin and BrowserControlURL select the preview browser.
	BrowserBin        string
	BrowserControlURL string
	LogLevel          string
}

// LoadClient reads the CLI configuration.
func LoadClient() ClientConfig {
	return ClientConfig{
		APIURL:            getEnv("A11Y_API_URL", "http://localhost:8080/api/v1"),
		Token:             getEnv("A11Y_TOKEN", ""),
		RetryMax:          getEnvInt("A11Y_RETRY_MAX", 2),
		Timeout:           getEnvDuration("A11Y_TIMEOUT", 15*time.Second),
		PresetsFile:       getEnv("A11Y_PRESETS_FILE", ""),
		BrowserBin:        getEnv("A11Y_BROWSER_BIN", ""),
		BrowserControlURL: getEnv("A11Y_BROWSER_URL", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvDuration reads a duration env var (e.g., "720h") or returns the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// getEnvList reads a comma-separated env var, dropping empty entries.
func getEnvList(key string, defaultVal []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
