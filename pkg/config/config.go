package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Remote ranking API
	Ranker RankerConfig

	// Dashboard behaviour
	Dashboard DashboardConfig

	// Redis
	Redis RedisConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// RankerConfig holds the remote ranking API configuration
type RankerConfig struct {
	BaseURL     string        // without the /api suffix
	AccessToken string        // bearer token used by the CLI
	Timeout     time.Duration // per request
	RateLimit   float64       // outbound requests per second, 0 disables
}

// DashboardConfig holds dashboard/session behaviour
type DashboardConfig struct {
	PollInterval           time.Duration // rankings refresh while a viewer is visible
	HistoryDays            int
	SessionTTL             time.Duration // idle view sessions are evicted after this
	PreferenceWriteTimeout time.Duration
	CookieSecure           bool
	MarketHolidays         bool // consult the NYSE holiday calendar
	WriteLimit             int  // custom-domain mutations per minute per session
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only function calling os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Ranker: RankerConfig{
			BaseURL:     getEnv("RANKER_API_URL", "http://localhost:8001"),
			AccessToken: getEnv("RANKER_ACCESS_TOKEN", ""),
			Timeout:     getEnvAsDuration("RANKER_TIMEOUT", "10s"),
			RateLimit:   getEnvAsFloat("RANKER_RATE_LIMIT", 10),
		},

		Dashboard: DashboardConfig{
			PollInterval:           getEnvAsDuration("POLL_INTERVAL", "5m"),
			HistoryDays:            getEnvAsInt("HISTORY_DAYS", 30),
			SessionTTL:             getEnvAsDuration("VIEW_SESSION_TTL", "30m"),
			PreferenceWriteTimeout: getEnvAsDuration("PREFERENCE_WRITE_TIMEOUT", "5s"),
			CookieSecure:           getEnvAsBool("COOKIE_SECURE", false),
			MarketHolidays:         getEnvAsBool("MARKET_HOLIDAYS", false),
			WriteLimit:             getEnvAsInt("CUSTOM_DOMAIN_WRITE_LIMIT", 30),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// APIBaseURL returns the ranker base URL including the /api prefix
func (c *Config) APIBaseURL() string {
	return c.Ranker.BaseURL + "/api"
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	u, err := url.Parse(c.Ranker.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("RANKER_API_URL must be an absolute URL, got %q", c.Ranker.BaseURL)
	}

	if c.Dashboard.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	if c.Dashboard.SessionTTL <= 0 {
		return fmt.Errorf("VIEW_SESSION_TTL must be positive")
	}
	if c.Dashboard.HistoryDays < 1 || c.Dashboard.HistoryDays > 365 {
		return fmt.Errorf("HISTORY_DAYS must be between 1 and 365")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
