package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Storage
	DatabaseURL string // empty keeps runs in memory
	RedisURL    string // empty keeps the limiter and latest-result cache in memory

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Logging
	LogLevel string
	LogFile  string

	// Brand configuration file (YAML)
	ConfigFile string

	// Analysis
	AnalysisTimeout time.Duration
	AnalyzerQPS     float64
	AnalyzerSeed    uint64 // 0 picks a time-based seed

	// Run retention; RunRetention 0 keeps every run
	RunRetention  int
	PruneInterval time.Duration

	// Rate limiting, requests per minute per IP
	RateLimitMax int

	// Application identity, stamped into report metadata
	AppName    string
	AppVersion string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:             getEnv("ENV", "development"),
		ServerAddr:      getEnv("SERVER_ADDR", ":5000"),
		BaseURL:         getEnv("BASE_URL", "http://localhost:5000"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisURL:        getEnv("REDIS_URL", ""),
		CORSOrigins:     getEnv("CORS_ORIGINS", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFile:         getEnv("LOG_FILE", ""),
		ConfigFile:      getEnv("CONFIG_FILE", "config.yaml"),
		AnalysisTimeout: getEnvDuration("ANALYSIS_TIMEOUT", 5*time.Minute),
		AnalyzerQPS:     getEnvFloat("ANALYZER_QPS", 20),
		AnalyzerSeed:    getEnvUint("ANALYZER_SEED", 0),
		RunRetention:    getEnvInt("RUN_RETENTION", 500),
		PruneInterval:   getEnvDuration("PRUNE_INTERVAL", time.Hour),
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 100),
		AppName:         getEnv("APP_NAME", "Atomberg SoV Dashboard"),
		AppVersion:      getEnv("APP_VERSION", "1.0.0"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvUint(key string, fallback uint64) uint64 {
	if v, err := strconv.ParseUint(os.Getenv(key), 10, 64); err == nil {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// HasDatabase returns true if runs are persisted to Postgres.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// HasRedis returns true if shared storage is backed by Redis.
func (c *Config) HasRedis() bool {
	return c.RedisURL != ""
}

// ClientConfig holds settings for the terminal dashboard client.
type ClientConfig struct {
	APIURL          string
	HistoryDB       string // sqlite file used as client-local storage
	HistoryRedisURL string // optional, shares history through Redis instead
	RequestTimeout  time.Duration
	AnalysisTimeout time.Duration
	LogLevel        string
}

// LoadClient reads the dashboard client configuration.
func LoadClient() *ClientConfig {
	_ = godotenv.Load()

	return &ClientConfig{
		APIURL:          getEnv("SOV_API_URL", "http://localhost:5000"),
		HistoryDB:       getEnv("SOV_HISTORY_DB", defaultHistoryPath()),
		HistoryRedisURL: getEnv("SOV_HISTORY_REDIS_URL", ""),
		RequestTimeout:  getEnvDuration("SOV_REQUEST_TIMEOUT", 30*time.Second),
		AnalysisTimeout: getEnvDuration("SOV_ANALYSIS_TIMEOUT", 5*time.Minute),
		LogLevel:        getEnv("LOG_LEVEL", "warn"),
	}
}

func defaultHistoryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "sovdash_history.db"
	}
	return dir + string(os.PathSeparator) + "sovdash" + string(os.PathSeparator) + "history.db"
}
