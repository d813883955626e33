// Package config は環境変数からのアプリケーション設定読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabasePath string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// NewsAPI
	NewsAPIKey     string
	NewsAPIBaseURL string
	NewsQuery      string
	NewsLanguage   string
	NewsPageSize   int

	// RSS（任意の追加取り込みソース）
	NewsFeeds []string

	// Fetch
	FetchInterval time.Duration
	FetchTimeout  time.Duration
	FetchMaxSize  int64

	// Retention
	HistoryRetentionDays int

	// Rate Limit（req/min単位）
	RateLimitGeneral int
	RateLimitAuth    int

	// Server
	ServerPort string
	AppEnv     string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string

	// Logging
	LogLevel string
}

// defaultNewsAPIBaseURL はNewsAPIの everything エンドポイント。
const defaultNewsAPIBaseURL = "https://newsapi.org/v2/everything"

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
// NEWS_API_KEYはworker/fetchモードでのみ必要なため、ここでは必須としない
// （app層が起動モードに応じてRequireNewsAPIKeyで検証する）。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabasePath = os.Getenv("DATABASE_PATH")
	if cfg.DatabasePath == "" {
		missing = append(missing, "DATABASE_PATH")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", 7*24*time.Hour)
	cfg.NewsAPIKey = os.Getenv("NEWS_API_KEY")
	cfg.NewsAPIBaseURL = getEnvString("NEWS_API_BASE_URL", defaultNewsAPIBaseURL)
	cfg.NewsQuery = getEnvString("NEWS_QUERY", "nigeria")
	cfg.NewsLanguage = getEnvString("NEWS_LANGUAGE", "")
	cfg.NewsPageSize = getEnvInt("NEWS_PAGE_SIZE", 100)
	cfg.NewsFeeds = splitList(os.Getenv("NEWS_FEEDS"))
	cfg.FetchInterval = getEnvDuration("FETCH_INTERVAL", time.Hour)
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", 10*time.Second)
	cfg.FetchMaxSize = getEnvInt64("FETCH_MAX_SIZE", 5242880)
	cfg.HistoryRetentionDays = getEnvInt("HISTORY_RETENTION_DAYS", 90)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitAuth = getEnvInt("RATE_LIMIT_AUTH", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.AppEnv = getEnvString("APP_ENV", "development")
	cfg.CookieSecure = cfg.AppEnv == "production"
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	return cfg, nil
}

// RequireNewsAPIKey はNewsAPIキーの設定を検証する。
// 取り込みを実行するモード（worker, fetch）の起動時に呼び出す。
func (c *Config) RequireNewsAPIKey() error {
	if c.NewsAPIKey == "" {
		return fmt.Errorf("required environment variable is not set: NEWS_API_KEY")
	}
	return nil
}

// IsProduction は本番環境かどうかを返す。
// エラーレスポンスの詳細度とCookieのsecure属性に影響する。
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
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

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
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

// splitList はカンマ区切りの環境変数値をトリムしてスライスに分解する。
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
