package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL  string
	QueryTimeout time.Duration

	// Rate Limit
	RateLimitGeneral int
	RateLimitSubmit  int

	// TrustProxyHeader が真の場合のみX-Forwarded-Forをクライアント識別に使用する。
	// 信頼できるリバースプロキシ配下でのみ有効化すること。
	TrustProxyHeader bool

	// Google Analytics (Measurement Protocol)
	// 両方設定された場合のみイベント送信を有効化する。
	GAMeasurementID string
	GAAPISecret     string

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string

	// Metrics
	MetricsEnabled bool
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.QueryTimeout = getEnvDuration("QUERY_TIMEOUT", 5*time.Second)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitSubmit = getEnvInt("RATE_LIMIT_SUBMIT", 10)
	cfg.TrustProxyHeader = getEnvBool("TRUST_PROXY_HEADER", false)
	cfg.GAMeasurementID = getEnvString("GA_MEASUREMENT_ID", "")
	cfg.GAAPISecret = getEnvString("GA_API_SECRET", "")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.MetricsEnabled = getEnvBool("METRICS_ENABLED", true)

	return cfg, nil
}

// TrackingEnabled はGAイベント送信に必要な認証情報が揃っているかを返す。
func (c *Config) TrackingEnabled() bool {
	return c.GAMeasurementID != "" && c.GAAPISecret != ""
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
