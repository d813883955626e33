// Package app はアプリケーションの起動とワイヤリングを提供する。
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/articledesk/internal/article"
	"github.com/hitoshi/articledesk/internal/auth"
	"github.com/hitoshi/articledesk/internal/bookmark"
	"github.com/hitoshi/articledesk/internal/config"
	"github.com/hitoshi/articledesk/internal/database"
	"github.com/hitoshi/articledesk/internal/handler"
	"github.com/hitoshi/articledesk/internal/logger"
	"github.com/hitoshi/articledesk/internal/metrics"
	"github.com/hitoshi/articledesk/internal/middleware"
	"github.com/hitoshi/articledesk/internal/newsapi"
	"github.com/hitoshi/articledesk/internal/preference"
	"github.com/hitoshi/articledesk/internal/repository"
	"github.com/hitoshi/articledesk/internal/security"
	"github.com/hitoshi/articledesk/internal/worker/cleanup"
	"github.com/hitoshi/articledesk/internal/worker/ingest"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		// 設定読み込み前でもログが出せるようデフォルトレベルで初期化する
		logger.SetupDefault(w, "info")
		return nil, fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}

	logger.SetupDefault(w, cfg.LogLevel)
	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return err
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("env", cfg.AppEnv),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandFetch:
		return runFetch(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// openDatabase はDB接続を開き、疎通を確認する。
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("データベースのオープンに失敗しました: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("データベースへの接続に失敗しました: %w", err)
	}

	return db, nil
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established",
		slog.String("path", cfg.DatabasePath),
	)

	// 2. リポジトリの初期化
	articleRepo := repository.NewSqliteArticleRepo(db)
	userRepo := repository.NewSqliteUserRepo(db)
	bookmarkRepo := repository.NewSqliteBookmarkRepo(db)
	prefRepo := repository.NewSqlitePreferenceRepo(db)
	historyRepo := repository.NewSqliteSearchHistoryRepo(db)

	// 3. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. ドメインサービスの初期化
	appLogger := slog.Default()
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authService := auth.NewAuthService(userRepo, tokenManager, appLogger)
	articleService := article.NewArticleService(articleRepo)
	bookmarkService := bookmark.NewBookmarkService(bookmarkRepo, articleRepo, appLogger)
	prefService := preference.NewPreferenceService(prefRepo, historyRepo, appLogger)

	// 5. ルーターの構築
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	// configのレート設定はreq/min単位なのでreq/secに変換する
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.AuthRate = rate.Limit(float64(cfg.RateLimitAuth) / 60.0)
	rateLimiterCfg.AuthBurst = cfg.RateLimitAuth
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		TokenVerifier:     authService,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		RateLimiter: rateLimiter,
		Logger:      appLogger,

		Collector: collector,
		Gatherer:  registry,

		DB: db,

		ArticleService: articleService,
		AuthService:    authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain: cfg.CookieDomain,
			CookieSecure: cfg.CookieSecure,
			TokenMaxAge:  int(cfg.TokenTTL.Seconds()),
		},
		BookmarkService:   bookmarkService,
		PreferenceService: prefService,
		SearchRecorder:    prefService,
	}

	router := handler.NewRouter(deps)

	// 6. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("サーバーのシャットダウンに失敗しました: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// buildIngestJob は取り込みジョブと記事ソース群を構築する。
// NewsAPIキーが設定されていればNewsAPIソースを、NEWS_FEEDSが
// 設定されていればRSSソースを組み込む。
func buildIngestJob(cfg *config.Config, db *sql.DB, collector metrics.MetricsCollector) (*ingest.Job, error) {
	articleRepo := repository.NewSqliteArticleRepo(db)
	sanitizer := security.NewContentSanitizer()
	ssrfGuard := security.NewSSRFGuard()

	// RSSフィード未設定の場合はNewsAPIが唯一のソースとなるため、キーを必須とする
	if len(cfg.NewsFeeds) == 0 {
		if err := cfg.RequireNewsAPIKey(); err != nil {
			return nil, err
		}
	}

	var sources []ingest.Source

	if cfg.NewsAPIKey != "" {
		client := newsapi.NewClient(
			&http.Client{Timeout: cfg.FetchTimeout},
			slog.Default(),
			cfg.NewsAPIBaseURL,
			cfg.NewsAPIKey,
		)
		sources = append(sources, ingest.NewNewsAPISource(client, cfg.NewsQuery, cfg.NewsLanguage, cfg.NewsPageSize))
	}

	for _, feedURL := range cfg.NewsFeeds {
		sources = append(sources, ingest.NewRSSSource(feedURL, ssrfGuard, cfg.FetchTimeout))
	}

	return ingest.NewJob(articleRepo, sources, sanitizer, collector, slog.Default()), nil
}

// runWorker はワーカーモードで起動する。
// DB接続を開き、取り込みスケジューラと検索履歴クリーンアップジョブを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	// 1. DB接続
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established (worker)")

	// 2. 取り込みジョブの構築
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	job, err := buildIngestJob(cfg, db, collector)
	if err != nil {
		return err
	}

	scheduler := ingest.NewScheduler(job, slog.Default())

	// 3. 検索履歴クリーンアップジョブの初期化
	historyRepo := repository.NewSqliteSearchHistoryRepo(db)
	cleanupJob := cleanup.NewCleanupJob(historyRepo, slog.Default())
	cleanupJob.RetentionDays = cfg.HistoryRetentionDays

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("fetch_interval", cfg.FetchInterval),
		slog.Int("retention_days", cfg.HistoryRetentionDays),
	)

	// クリーンアップジョブを日次でバックグラウンド実行
	go cleanupJob.Start(ctx, 24*time.Hour)

	// 取り込みスケジューラをメインgoroutineで実行（ブロッキング）
	scheduler.Start(ctx, cfg.FetchInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runFetch は取り込みを1回だけ実行して終了する。
// cronなどの外部スケジューラから呼び出す運用を想定している。
func runFetch(cfg *config.Config) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	job, err := buildIngestJob(cfg, db, collector)
	if err != nil {
		return err
	}

	result, err := job.Run(context.Background())
	if err != nil {
		return fmt.Errorf("取り込みの実行に失敗しました: %w", err)
	}

	slog.Info("fetch completed",
		slog.Int("fetched", result.Fetched),
		slog.Int("inserted", result.Inserted),
		slog.Int("skipped", result.Skipped),
	)
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("path", cfg.DatabasePath),
	)

	if err := database.RunMigrations(cfg.DatabasePath); err != nil {
		return fmt.Errorf("マイグレーションに失敗しました: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("ヘルスチェックに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ヘルスチェックがステータス %d を返しました", resp.StatusCode)
	}

	return nil
}
