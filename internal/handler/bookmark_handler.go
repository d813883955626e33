package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/articledesk/internal/middleware"
	"github.com/hitoshi/articledesk/internal/model"
)

// BookmarkServiceInterface はブックマークハンドラーが必要とするサービスインターフェース。
type BookmarkServiceInterface interface {
	// List はユーザーのブックマーク一覧を記事情報付きで返す。
	List(ctx context.Context, userID int64, page, limit int) (*model.BookmarkPage, error)
	// Create は記事をブックマークする。
	Create(ctx context.Context, userID, articleID int64) (*model.Bookmark, error)
	// Delete は自分のブックマークを削除する。
	Delete(ctx context.Context, userID, bookmarkID int64) error
	// Count はユーザーのブックマーク総数を返す。
	Count(ctx context.Context, userID int64) (int, error)
}

// BookmarkHandler はブックマーク管理のHTTPハンドラー。
type BookmarkHandler struct {
	service BookmarkServiceInterface
	logger  *slog.Logger
}

// NewBookmarkHandler はBookmarkHandlerを生成する。
func NewBookmarkHandler(service BookmarkServiceInterface, logger *slog.Logger) *BookmarkHandler {
	return &BookmarkHandler{
		service: service,
		logger:  logger,
	}
}

// bookmarkItemResponse はブックマーク一覧の1件分のレスポンス。
type bookmarkItemResponse struct {
	ID           int64     `json:"id"`
	ArticleID    int64     `json:"article_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	URL          string    `json:"url"`
	URLToImage   string    `json:"url_to_image,omitempty"`
	PublishedAt  string    `json:"published_at"`
	SourceName   string    `json:"source_name"`
	BookmarkedAt time.Time `json:"bookmarked_at"`
}

// bookmarkListResponse はブックマーク一覧のレスポンス。
type bookmarkListResponse struct {
	Bookmarks  []bookmarkItemResponse `json:"bookmarks"`
	Pagination paginationResponse     `json:"pagination"`
}

// createBookmarkRequest はブックマーク作成リクエストのボディ。
type createBookmarkRequest struct {
	ArticleID int64 `json:"article_id"`
}

// createBookmarkResponse はブックマーク作成成功時のレスポンス。
type createBookmarkResponse struct {
	ID        int64     `json:"id"`
	ArticleID int64     `json:"article_id"`
	CreatedAt time.Time `json:"created_at"`
}

// List はブックマーク一覧を取得する。
// GET /api/bookmarks?page=1&limit=10
func (h *BookmarkHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	page, limit := parsePageQuery(r)
	result, err := h.service.List(r.Context(), user.ID, page, limit)
	if err != nil {
		middleware.HandleServiceError(w, h.logger, err)
		return
	}

	items := make([]bookmarkItemResponse, 0, len(result.Bookmarks))
	for _, b := range result.Bookmarks {
		items = append(items, bookmarkItemResponse{
			ID:           b.BookmarkID,
			ArticleID:    b.ArticleID,
			Title:        b.Title,
			Description:  b.Description,
			URL:          b.URL,
			URLToImage:   b.URLToImage,
			PublishedAt:  b.PublishedAt,
			SourceName:   b.SourceName,
			BookmarkedAt: b.BookmarkedAt,
		})
	}

	writeJSON(w, http.StatusOK, bookmarkListResponse{
		Bookmarks: items,
		Pagination: paginationResponse{
			Page:  result.Page,
			Limit: result.Limit,
			Total: result.Total,
			Pages: result.Pages,
		},
	})
}

// Create はブックマークを作成する。
// POST /api/bookmarks
func (h *BookmarkHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createBookmarkRequest
	if err := decodeJSONBody(r, &req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	bookmark, err := h.service.Create(r.Context(), user.ID, req.ArticleID)
	if err != nil {
		middleware.HandleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, createBookmarkResponse{
		ID:        bookmark.ID,
		ArticleID: bookmark.ArticleID,
		CreatedAt: bookmark.CreatedAt,
	})
}

// Delete はブックマークを削除する。
// DELETE /api/bookmarks/{id}
func (h *BookmarkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	rawID := chi.URLParam(r, "id")
	bookmarkID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || bookmarkID < 1 {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if err := h.service.Delete(r.Context(), user.ID, bookmarkID); err != nil {
		middleware.HandleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "ブックマークを削除しました。"})
}

// Count はブックマーク総数を取得する。
// GET /api/bookmarks/count
func (h *BookmarkHandler) Count(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	count, err := h.service.Count(r.Context(), user.ID)
	if err != nil {
		middleware.HandleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}
