package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_PATH", "/tmp/articledesk-test.db")
	t.Setenv("JWT_SECRET", "test-jwt-secret-32bytes-long!!!!")
}

func TestLoad_AllRequiredVarsSet_ReturnsConfig(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.DatabasePath != "/tmp/articledesk-test.db" {
		t.Errorf("DatabasePath = %q, want %q", cfg.DatabasePath, "/tmp/articledesk-test.db")
	}
	if cfg.JWTSecret != "test-jwt-secret-32bytes-long!!!!" {
		t.Errorf("JWTSecret = %q, want %q", cfg.JWTSecret, "test-jwt-secret-32bytes-long!!!!")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Auth defaults
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Errorf("TokenTTL = %v, want %v", cfg.TokenTTL, 7*24*time.Hour)
	}

	// NewsAPI defaults
	if cfg.NewsAPIBaseURL != "https://newsapi.org/v2/everything" {
		t.Errorf("NewsAPIBaseURL = %q, want %q", cfg.NewsAPIBaseURL, "https://newsapi.org/v2/everything")
	}
	if cfg.NewsQuery != "nigeria" {
		t.Errorf("NewsQuery = %q, want %q", cfg.NewsQuery, "nigeria")
	}
	if cfg.NewsPageSize != 100 {
		t.Errorf("NewsPageSize = %d, want %d", cfg.NewsPageSize, 100)
	}
	if len(cfg.NewsFeeds) != 0 {
		t.Errorf("NewsFeeds = %v, want empty", cfg.NewsFeeds)
	}

	// Fetch defaults
	if cfg.FetchInterval != time.Hour {
		t.Errorf("FetchInterval = %v, want %v", cfg.FetchInterval, time.Hour)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("FetchTimeout = %v, want %v", cfg.FetchTimeout, 10*time.Second)
	}
	if cfg.FetchMaxSize != 5242880 {
		t.Errorf("FetchMaxSize = %d, want %d", cfg.FetchMaxSize, 5242880)
	}

	// Retention defaults
	if cfg.HistoryRetentionDays != 90 {
		t.Errorf("HistoryRetentionDays = %d, want %d", cfg.HistoryRetentionDays, 90)
	}

	// Rate limit defaults
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("RateLimitGeneral = %d, want %d", cfg.RateLimitGeneral, 120)
	}
	if cfg.RateLimitAuth != 10 {
		t.Errorf("RateLimitAuth = %d, want %d", cfg.RateLimitAuth, 10)
	}

	// Server defaults
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
	if cfg.AppEnv != "development" {
		t.Errorf("AppEnv = %q, want %q", cfg.AppEnv, "development")
	}
	if cfg.CookieSecure {
		t.Error("CookieSecure = true, want false in development")
	}
	if cfg.CORSAllowedOrigin != "http://localhost:3000" {
		t.Errorf("CORSAllowedOrigin = %q, want %q", cfg.CORSAllowedOrigin, "http://localhost:3000")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnvVars(t)

	t.Setenv("TOKEN_TTL", "24h")
	t.Setenv("NEWS_API_KEY", "test-api-key")
	t.Setenv("NEWS_QUERY", "technology")
	t.Setenv("NEWS_LANGUAGE", "ja")
	t.Setenv("NEWS_PAGE_SIZE", "50")
	t.Setenv("NEWS_FEEDS", "https://example.com/a.rss, https://example.com/b.rss")
	t.Setenv("FETCH_INTERVAL", "30m")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("FETCH_MAX_SIZE", "10485760")
	t.Setenv("HISTORY_RETENTION_DAYS", "30")
	t.Setenv("RATE_LIMIT_GENERAL", "60")
	t.Setenv("RATE_LIMIT_AUTH", "5")
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("CORS_ALLOWED_ORIGIN", "https://news.example.com")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want %v", cfg.TokenTTL, 24*time.Hour)
	}
	if cfg.NewsAPIKey != "test-api-key" {
		t.Errorf("NewsAPIKey = %q, want %q", cfg.NewsAPIKey, "test-api-key")
	}
	if cfg.NewsQuery != "technology" {
		t.Errorf("NewsQuery = %q, want %q", cfg.NewsQuery, "technology")
	}
	if cfg.NewsLanguage != "ja" {
		t.Errorf("NewsLanguage = %q, want %q", cfg.NewsLanguage, "ja")
	}
	if cfg.NewsPageSize != 50 {
		t.Errorf("NewsPageSize = %d, want %d", cfg.NewsPageSize, 50)
	}
	wantFeeds := []string{"https://example.com/a.rss", "https://example.com/b.rss"}
	if len(cfg.NewsFeeds) != len(wantFeeds) {
		t.Fatalf("NewsFeeds = %v, want %v", cfg.NewsFeeds, wantFeeds)
	}
	for i, f := range wantFeeds {
		if cfg.NewsFeeds[i] != f {
			t.Errorf("NewsFeeds[%d] = %q, want %q", i, cfg.NewsFeeds[i], f)
		}
	}
	if cfg.FetchInterval != 30*time.Minute {
		t.Errorf("FetchInterval = %v, want %v", cfg.FetchInterval, 30*time.Minute)
	}
	if cfg.FetchTimeout != 5*time.Second {
		t.Errorf("FetchTimeout = %v, want %v", cfg.FetchTimeout, 5*time.Second)
	}
	if cfg.FetchMaxSize != 10485760 {
		t.Errorf("FetchMaxSize = %d, want %d", cfg.FetchMaxSize, 10485760)
	}
	if cfg.HistoryRetentionDays != 30 {
		t.Errorf("HistoryRetentionDays = %d, want %d", cfg.HistoryRetentionDays, 30)
	}
	if cfg.RateLimitGeneral != 60 {
		t.Errorf("RateLimitGeneral = %d, want %d", cfg.RateLimitGeneral, 60)
	}
	if cfg.RateLimitAuth != 5 {
		t.Errorf("RateLimitAuth = %d, want %d", cfg.RateLimitAuth, 5)
	}
	if cfg.ServerPort != "3000" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "3000")
	}
	if cfg.CORSAllowedOrigin != "https://news.example.com" {
		t.Errorf("CORSAllowedOrigin = %q, want %q", cfg.CORSAllowedOrigin, "https://news.example.com")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
}

func TestLoad_InvalidValues_FallBackToDefaults(t *testing.T) {
	setRequiredEnvVars(t)

	t.Setenv("TOKEN_TTL", "not-a-duration")
	t.Setenv("NEWS_PAGE_SIZE", "not-a-number")
	t.Setenv("FETCH_MAX_SIZE", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.TokenTTL != 7*24*time.Hour {
		t.Errorf("TokenTTL = %v, want default %v", cfg.TokenTTL, 7*24*time.Hour)
	}
	if cfg.NewsPageSize != 100 {
		t.Errorf("NewsPageSize = %d, want default %d", cfg.NewsPageSize, 100)
	}
	if cfg.FetchMaxSize != 5242880 {
		t.Errorf("FetchMaxSize = %d, want default %d", cfg.FetchMaxSize, 5242880)
	}
}

func TestLoad_MissingDatabasePath_ReturnsError(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("DATABASE_PATH", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing DATABASE_PATH, got nil")
	}
	if !strings.Contains(err.Error(), "DATABASE_PATH") {
		t.Errorf("error should mention DATABASE_PATH: %v", err)
	}
}

func TestLoad_MissingJWTSecret_ReturnsError(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing JWT_SECRET, got nil")
	}
	if !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Errorf("error should mention JWT_SECRET: %v", err)
	}
}

func TestRequireNewsAPIKey(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := cfg.RequireNewsAPIKey(); err == nil {
		t.Fatal("expected error when NEWS_API_KEY is unset, got nil")
	}

	cfg.NewsAPIKey = "test-api-key"
	if err := cfg.RequireNewsAPIKey(); err != nil {
		t.Errorf("expected no error when NEWS_API_KEY is set, got %v", err)
	}
}

func TestIsProduction(t *testing.T) {
	setRequiredEnvVars(t)

	t.Setenv("APP_ENV", "production")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false, want true")
	}
	if !cfg.CookieSecure {
		t.Error("CookieSecure = false, want true in production")
	}
}
