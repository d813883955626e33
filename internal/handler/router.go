package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/articledesk/internal/metrics"
	"github.com/hitoshi/articledesk/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// メトリクス
	Collector metrics.MetricsCollector
	Gatherer  prometheus.Gatherer

	// ヘルスチェック用DB接続
	DB *sql.DB

	// サービス
	ArticleService    ArticleServiceInterface
	AuthService       AuthServiceInterface
	AuthConfig        AuthHandlerConfig
	BookmarkService   BookmarkServiceInterface
	PreferenceService PreferenceServiceInterface
	SearchRecorder    SearchRecorder
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → CSRF
//
// 記事閲覧系は認証不要（任意認証）、ブックマーク・設定系は認証必須とする。
// 認証エンドポイント（登録・ログイン）にはIP単位のレート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Collector))
	r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

	articleHandler := NewArticleHandler(deps.ArticleService, deps.SearchRecorder, deps.Logger)
	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, deps.Logger)
	bookmarkHandler := NewBookmarkHandler(deps.BookmarkService, deps.Logger)
	prefHandler := NewPreferenceHandler(deps.PreferenceService, deps.Logger)

	// --- 運用エンドポイント ---

	r.Get("/", welcomeHandler)
	r.Get("/health", newHealthHandler(deps.DB))
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// --- 認証不要のルート ---

	// 記事閲覧。検索は任意認証（認証済みなら履歴を記録する）
	r.Route("/api/articles", func(r chi.Router) {
		r.Use(middleware.NewOptionalAuthMiddleware(deps.TokenVerifier))
		r.Get("/", articleHandler.List)
		r.Get("/search", articleHandler.Search)
		r.Get("/sources", articleHandler.Sources)
		r.Get("/{id}", articleHandler.Get)
	})

	// ユーザー登録・ログイン（IP単位のレート制限付き）
	r.Route("/api/auth", func(r chi.Router) {
		r.With(deps.RateLimiter.AuthMiddleware()).Post("/register", authHandler.Register)
		r.With(deps.RateLimiter.AuthMiddleware()).Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/auth/profile", authHandler.Profile)

		r.Route("/api/bookmarks", func(r chi.Router) {
			r.Get("/", bookmarkHandler.List)
			r.Post("/", bookmarkHandler.Create)
			r.Get("/count", bookmarkHandler.Count)
			r.Delete("/{id}", bookmarkHandler.Delete)
		})

		r.Route("/api/preferences", func(r chi.Router) {
			r.Get("/", prefHandler.Get)
			r.Put("/", prefHandler.Update)
		})

		r.Route("/api/search-history", func(r chi.Router) {
			r.Get("/", prefHandler.History)
			r.Delete("/", prefHandler.ClearHistory)
		})
	})

	return r
}

// welcomeHandler はルートパスへのアクセスにAPI情報を返す。
func welcomeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"message":   "ニュース記事の収集・検索・ブックマークAPIです。",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// newHealthHandler はDB接続を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("OK"))
	}
}
