// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/articledesk/internal/middleware"
	"github.com/hitoshi/articledesk/internal/model"
)

// ArticleServiceInterface は記事ハンドラーが必要とするサービスインターフェース。
type ArticleServiceInterface interface {
	// List は新しい順の記事一覧をページネーション付きで返す。
	List(ctx context.Context, page, limit int) (*model.ArticlePage, error)
	// Search は条件に合致する記事を検索する。
	Search(ctx context.Context, params model.SearchParams) (*model.ArticlePage, error)
	// GetByID は記事詳細を返す。
	GetByID(ctx context.Context, rawID string) (*model.Article, error)
	// Sources は取り込み済み記事のソース名一覧を返す。
	Sources(ctx context.Context) ([]string, error)
}

// SearchRecorder は認証済みユーザーの検索履歴を記録する。
type SearchRecorder interface {
	RecordSearch(ctx context.Context, userID int64, query string)
}

// ArticleHandler は記事閲覧・検索のHTTPハンドラー。
type ArticleHandler struct {
	service  ArticleServiceInterface
	recorder SearchRecorder
	logger   *slog.Logger
}

// NewArticleHandler はArticleHandlerを生成する。
func NewArticleHandler(service ArticleServiceInterface, recorder SearchRecorder, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{
		service:  service,
		recorder: recorder,
		logger:   logger,
	}
}

// --- レスポンス型 ---

// articleResponse は記事1件のレスポンス。
type articleResponse struct {
	ID          int64  `json:"id"`
	SourceID    string `json:"source_id,omitempty"`
	SourceName  string `json:"source_name"`
	Author      string `json:"author,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"url_to_image,omitempty"`
	PublishedAt string `json:"published_at"`
	Content     string `json:"content"`
}

// paginationResponse はページネーション情報のレスポンス。
type paginationResponse struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// articleListResponse は記事一覧のレスポンス。
type articleListResponse struct {
	Articles   []articleResponse  `json:"articles"`
	Pagination paginationResponse `json:"pagination"`
}

func toArticleResponse(a model.Article) articleResponse {
	return articleResponse{
		ID:          a.ID,
		SourceID:    a.SourceID,
		SourceName:  a.SourceName,
		Author:      a.Author,
		Title:       a.Title,
		Description: a.Description,
		URL:         a.URL,
		URLToImage:  a.URLToImage,
		PublishedAt: a.PublishedAt,
		Content:     a.Content,
	}
}

func toArticleListResponse(page *model.ArticlePage) articleListResponse {
	articles := make([]articleResponse, 0, len(page.Articles))
	for _, a := range page.Articles {
		articles = append(articles, toArticleResponse(a))
	}
	return articleListResponse{
		Articles: articles,
		Pagination: paginationResponse{
			Page:  page.Page,
			Limit: page.Limit,
			Total: page.Total,
			Pages: page.Pages,
		},
	}
}

// parsePageQuery はクエリ文字列からページネーションパラメータを読み取る。
// 数値でない値や未指定はゼロ値とし、正規化はサービス側に任せる。
func parsePageQuery(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return page, limit
}

// List は記事一覧を取得する。
// GET /api/articles?page=1&limit=10
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePageQuery(r)

	result, err := h.service.List(r.Context(), page, limit)
	if err != nil {
		middleware.HandleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toArticleListResponse(result))
}

// Search は記事を検索する。
// GET /api/articles/search?q=xxx&author=yyy&source=zzz&from=2026-01-01&to=2026-12-31
// 認証済みユーザーの場合は検索クエリを履歴に記録する。
func (h *ArticleHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := parsePageQuery(r)
	params := model.SearchParams{
		Query:  q.Get("q"),
		Author: q.Get("author"),
		Source: q.Get("source"),
		From:   q.Get("from"),
		To:     q.Get("to"),
		Page:   page,
		Limit:  limit,
	}

	result, err := h.service.Search(r.Context(), params)
	if err != nil {
		middleware.HandleServiceError(w, h.logger, err)
		return
	}

	// 検索履歴の記録は任意認証。失敗してもレスポンスには影響しない
	if user, err := middleware.UserFromContext(r.Context()); err == nil && h.recorder != nil {
		h.recorder.RecordSearch(r.Context(), user.ID, params.Query)
	}

	writeJSON(w, http.StatusOK, toArticleListResponse(result))
}

// Get は記事詳細を取得する。
// GET /api/articles/{id}
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	rawID := chi.URLParam(r, "id")

	article, err := h.service.GetByID(r.Context(), rawID)
	if err != nil {
		middleware.HandleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toArticleResponse(*article))
}

// Sources は記事ソース名の一覧を取得する。
// GET /api/articles/sources
func (h *ArticleHandler) Sources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.service.Sources(r.Context())
	if err != nil {
		middleware.HandleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"sources": sources})
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}
