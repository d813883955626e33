package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/articledesk/internal/middleware"
	"github.com/hitoshi/articledesk/internal/model"
)

// PreferenceServiceInterface は設定ハンドラーが必要とするサービスインターフェース。
type PreferenceServiceInterface interface {
	// Get はユーザーの表示設定を返す。未設定の場合はデフォルト値を返す。
	Get(ctx context.Context, userID int64) (*model.Preference, error)
	// Update は表示設定を保存する。
	Update(ctx context.Context, pref *model.Preference) (*model.Preference, error)
	// History は検索履歴を新しい順に返す。
	History(ctx context.Context, userID int64) ([]model.SearchEntry, error)
	// ClearHistory は検索履歴をすべて削除する。
	ClearHistory(ctx context.Context, userID int64) error
}

// PreferenceHandler はユーザー設定・検索履歴のHTTPハンドラー。
type PreferenceHandler struct {
	service PreferenceServiceInterface
	logger  *slog.Logger
}

// NewPreferenceHandler はPreferenceHandlerを生成する。
func NewPreferenceHandler(service PreferenceServiceInterface, logger *slog.Logger) *PreferenceHandler {
	return &PreferenceHandler{
		service: service,
		logger:  logger,
	}
}

// preferenceResponse は表示設定のレスポンス。
type preferenceResponse struct {
	PreferredSources string `json:"preferred_sources"`
	Language         string `json:"language"`
	PageSize         int    `json:"page_size"`
}

// updatePreferenceRequest は表示設定更新リクエストのボディ。
type updatePreferenceRequest struct {
	PreferredSources string `json:"preferred_sources"`
	Language         string `json:"language"`
	PageSize         int    `json:"page_size"`
}

// searchEntryResponse は検索履歴1件分のレスポンス。
type searchEntryResponse struct {
	ID         int64     `json:"id"`
	Query      string    `json:"query"`
	SearchedAt time.Time `json:"searched_at"`
}

// Get は表示設定を取得する。
// GET /api/preferences
func (h *PreferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	pref, err := h.service.Get(r.Context(), user.ID)
	if err != nil {
		middleware.HandleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, preferenceResponse{
		PreferredSources: pref.PreferredSources,
		Language:         pref.Language,
		PageSize:         pref.PageSize,
	})
}

// Update は表示設定を保存する。
// PUT /api/preferences
func (h *PreferenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req updatePreferenceRequest
	if err := decodeJSONBody(r, &req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	updated, err := h.service.Update(r.Context(), &model.Preference{
		UserID:           user.ID,
		PreferredSources: req.PreferredSources,
		Language:         req.Language,
		PageSize:         req.PageSize,
	})
	if err != nil {
		middleware.HandleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, preferenceResponse{
		PreferredSources: updated.PreferredSources,
		Language:         updated.Language,
		PageSize:         updated.PageSize,
	})
}

// History は検索履歴を取得する。
// GET /api/search-history
func (h *PreferenceHandler) History(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	entries, err := h.service.History(r.Context(), user.ID)
	if err != nil {
		middleware.HandleServiceError(w, h.logger, err)
		return
	}

	items := make([]searchEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, searchEntryResponse{
			ID:         e.ID,
			Query:      e.Query,
			SearchedAt: e.SearchedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string][]searchEntryResponse{"history": items})
}

// ClearHistory は検索履歴をすべて削除する。
// DELETE /api/search-history
func (h *PreferenceHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.ClearHistory(r.Context(), user.ID); err != nil {
		middleware.HandleServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
