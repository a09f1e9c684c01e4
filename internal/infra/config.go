package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	JWTSecret          string
	CORSAllowedOrigins []string
	DefaultLocale      string
	SupportedLocales   []string
	GeoIPDBPath        string
	MuxTokenID         string
	MuxTokenSecret     string
	MuxBaseURL         string
	MuxPlaybackPolicy  string
	PollInterval       time.Duration
	PollMaxFailures    int
	PollMaxBackoff     time.Duration
	WorkerConcurrency  int
	WorkerScanInterval time.Duration
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// The API requires DATABASE_URL and JWT_SECRET.
func LoadConfig() (*Config, error) {
	cfg := loadBase()
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

// LoadWorkerConfig loads configuration for processes that do not serve
// authenticated requests and therefore only need the database.
func LoadWorkerConfig() (*Config, error) {
	cfg := loadBase()
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func loadBase() *Config {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		DefaultLocale:      getEnv("DEFAULT_LOCALE", "en"),
		SupportedLocales:   splitList(getEnv("SUPPORTED_LOCALES", "en,de,es,fr,it")),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		MuxTokenID:         os.Getenv("MUX_TOKEN_ID"),
		MuxTokenSecret:     os.Getenv("MUX_TOKEN_SECRET"),
		MuxBaseURL:         getEnv("MUX_BASE_URL", "https://api.mux.com"),
		MuxPlaybackPolicy:  getEnv("MUX_PLAYBACK_POLICY", "public"),
		PollInterval:       time.Second * time.Duration(getEnvInt("UPLOAD_POLL_INTERVAL_SECONDS", 3)),
		PollMaxFailures:    getEnvInt("UPLOAD_POLL_MAX_FAILURES", 5),
		PollMaxBackoff:     time.Second * time.Duration(getEnvInt("UPLOAD_POLL_MAX_BACKOFF_SECONDS", 30)),
		WorkerConcurrency:  getEnvInt("WORKER_CONCURRENCY", 4),
		WorkerScanInterval: time.Second * time.Duration(getEnvInt("WORKER_SCAN_INTERVAL_SECONDS", 5)),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
	}
	if cfg.WorkerConcurrency <= 0 {
		cfg.WorkerConcurrency = 1
	}
	if !containsString(cfg.SupportedLocales, cfg.DefaultLocale) {
		cfg.SupportedLocales = append([]string{cfg.DefaultLocale}, cfg.SupportedLocales...)
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" || containsString(out, part) {
			continue
		}
		out = append(out, part)
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
