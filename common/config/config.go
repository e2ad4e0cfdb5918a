package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration
type Config struct {
	Service   ServiceConfig
	Line      LineConfig
	Storage   StorageConfig
	TTS       TTSConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Telemetry TelemetryConfig
	Features  FeatureFlags
}

// ServiceConfig holds service-specific settings
type ServiceConfig struct {
	Name           string
	Port           int
	BasePath       string
	Environment    string
	LogLevel       string
	LogFormat      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration // 0 disables the limit
	MaxUploadBytes int64
}

// LineConfig holds messaging platform settings
type LineConfig struct {
	ChannelAccessToken string
	ChannelSecret      string
	Endpoint           string
	Timeout            time.Duration
}

// StorageConfig holds S3-compatible object store settings
type StorageConfig struct {
	Host      string
	AccessKey string
	SecretKey string
	Secure    bool
	Region    string
	Bucket    string
	PublicURL string // empty = no public URLs
	Timeout   time.Duration
}

// TTSConfig holds speech synthesis endpoint settings
type TTSConfig struct {
	URL string
}

// RedisConfig holds the rate limiter backend settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RateLimitConfig holds per-recipient limits
type RateLimitConfig struct {
	Enabled      bool
	PerRecipient int64
	Window       time.Duration
}

// TelemetryConfig holds observability settings
type TelemetryConfig struct {
	EnablePprof bool
	PprofPort   int
}

// FeatureFlags toggles optional endpoints
type FeatureFlags struct {
	EnableDiagnostics bool
}

// ConfigurationError is fatal at startup
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Key, e.Reason)
}

// Load loads configuration from environment variables, after merging the
// dotenv file named by DOTENV (default .env) if it exists
func Load(serviceName string) (*Config, error) {
	if err := loadDotenv(getEnv("DOTENV", ".env")); err != nil {
		return nil, err
	}

	cfg := &Config{
		Service: ServiceConfig{
			Name:           serviceName,
			Port:           getEnvInt("APP_PORT", 8000),
			BasePath:       NormalizeBasePath(getEnv("CONTEXT_PATH", "/")),
			Environment:    getEnv("ENVIRONMENT", "development"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "text"),
			ReadTimeout:    getEnvDuration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getEnvDuration("HTTP_WRITE_TIMEOUT", 0),
			MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		},
		Line: LineConfig{
			ChannelAccessToken: getEnv("LINE_CHANNEL_ACCESS_TOKEN", ""),
			ChannelSecret:      getEnv("LINE_CHANNEL_SECRET", ""),
			Endpoint:           getEnv("LINE_API_ENDPOINT", "https://api.line.me"),
			Timeout:            getEnvDuration("LINE_TIMEOUT", 10*time.Second),
		},
		Storage: StorageConfig{
			Host:      getEnv("S3_HOST", ""),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
			Secure:    getEnvBool("S3_SECURE", false),
			Region:    getEnv("S3_REGION", ""),
			Bucket:    getEnv("S3_BUCKET", ""),
			PublicURL: strings.TrimSuffix(getEnv("S3_PUBLIC_URL", ""), "/"),
			Timeout:   getEnvDuration("S3_TIMEOUT", 10*time.Second),
		},
		TTS: TTSConfig{
			URL: getEnv("TTS_URL", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			Enabled:      getEnvBool("RATE_LIMIT_ENABLED", false),
			PerRecipient: int64(getEnvInt("RATE_LIMIT_PER_RECIPIENT", 60)),
			Window:       getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Telemetry: TelemetryConfig{
			EnablePprof: getEnvBool("ENABLE_PPROF", false),
			PprofPort:   getEnvInt("PPROF_PORT", 6060),
		},
		Features: FeatureFlags{
			EnableDiagnostics: getEnvBool("ENABLE_DIAGNOSTICS", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return &ConfigurationError{Key: "APP_PORT", Reason: fmt.Sprintf("invalid port %d", c.Service.Port)}
	}

	required := []struct {
		key   string
		value string
	}{
		{"LINE_CHANNEL_ACCESS_TOKEN", c.Line.ChannelAccessToken},
		{"S3_HOST", c.Storage.Host},
		{"S3_ACCESS_KEY", c.Storage.AccessKey},
		{"S3_SECRET_KEY", c.Storage.SecretKey},
		{"S3_BUCKET", c.Storage.Bucket},
		{"TTS_URL", c.TTS.URL},
	}
	for _, r := range required {
		if r.value == "" {
			return &ConfigurationError{Key: r.key, Reason: "required"}
		}
	}

	if c.Storage.PublicURL != "" {
		u, err := url.Parse(c.Storage.PublicURL)
		if err != nil || u.Host == "" {
			return &ConfigurationError{Key: "S3_PUBLIC_URL", Reason: "not a valid URL"}
		}
		if u.Scheme != "https" {
			return &ConfigurationError{Key: "S3_PUBLIC_URL", Reason: "must use https"}
		}
	}

	if _, err := url.ParseRequestURI(c.TTS.URL); err != nil {
		return &ConfigurationError{Key: "TTS_URL", Reason: "not a valid URL"}
	}

	if c.RateLimit.Enabled && (c.RateLimit.PerRecipient < 1 || c.RateLimit.Window < time.Second) {
		return &ConfigurationError{Key: "RATE_LIMIT_PER_RECIPIENT", Reason: "limit must be >= 1 and window >= 1s"}
	}

	if c.Service.MaxUploadBytes < 1 {
		return &ConfigurationError{Key: "MAX_UPLOAD_BYTES", Reason: "must be positive"}
	}

	return nil
}

// RedisAddr returns the host:port of the rate limiter backend
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// NormalizeBasePath returns p with exactly one leading and one trailing slash
func NormalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return "/"
	}
	return "/" + p + "/"
}

// Helper functions

// loadDotenv merges path into the environment. A missing file is fine, a
// malformed one is not. Existing environment wins over the file.
func loadDotenv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return &ConfigurationError{Key: "DOTENV", Reason: fmt.Sprintf("cannot parse %s: %v", path, err)}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
