package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/articledesk/internal/middleware"
	"github.com/hitoshi/articledesk/internal/model"
)

// --- モック定義 ---

// mockArticleService はArticleServiceInterfaceのモック実装。
type mockArticleService struct {
	listFn    func(ctx context.Context, page, limit int) (*model.ArticlePage, error)
	searchFn  func(ctx context.Context, params model.SearchParams) (*model.ArticlePage, error)
	getByIDFn func(ctx context.Context, rawID string) (*model.Article, error)
	sourcesFn func(ctx context.Context) ([]string, error)
}

func (m *mockArticleService) List(ctx context.Context, page, limit int) (*model.ArticlePage, error) {
	if m.listFn != nil {
		return m.listFn(ctx, page, limit)
	}
	return &model.ArticlePage{Articles: []model.Article{}, Page: 1, Limit: 10}, nil
}

func (m *mockArticleService) Search(ctx context.Context, params model.SearchParams) (*model.ArticlePage, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, params)
	}
	return &model.ArticlePage{Articles: []model.Article{}, Page: 1, Limit: 10}, nil
}

func (m *mockArticleService) GetByID(ctx context.Context, rawID string) (*model.Article, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, rawID)
	}
	return nil, nil
}

func (m *mockArticleService) Sources(ctx context.Context) ([]string, error) {
	if m.sourcesFn != nil {
		return m.sourcesFn(ctx)
	}
	return nil, nil
}

// mockSearchRecorder はSearchRecorderのモック実装。
type mockSearchRecorder struct {
	recorded []string
}

func (m *mockSearchRecorder) RecordSearch(_ context.Context, _ int64, query string) {
	m.recorded = append(m.recorded, query)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func withUser(r *http.Request, userID int64) *http.Request {
	ctx := middleware.ContextWithUser(r.Context(), &model.PublicUser{ID: userID})
	return r.WithContext(ctx)
}

func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// --- GET /api/articles テスト ---

func TestArticleHandler_List_Success(t *testing.T) {
	svc := &mockArticleService{
		listFn: func(ctx context.Context, page, limit int) (*model.ArticlePage, error) {
			if page != 2 {
				t.Errorf("page = %d, want 2", page)
			}
			if limit != 20 {
				t.Errorf("limit = %d, want 20", limit)
			}
			return &model.ArticlePage{
				Articles: []model.Article{
					{ID: 1, Title: "テスト記事", URL: "https://example.com/1", SourceName: "example"},
				},
				Page: 2, Limit: 20, Total: 21, Pages: 2,
			}, nil
		},
	}
	h := NewArticleHandler(svc, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/articles?page=2&limit=20", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body articleListResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスのデコードに失敗しました: %v", err)
	}
	if len(body.Articles) != 1 {
		t.Fatalf("len(Articles) = %d, want 1", len(body.Articles))
	}
	if body.Articles[0].Title != "テスト記事" {
		t.Errorf("Title = %q", body.Articles[0].Title)
	}
	if body.Pagination.Total != 21 || body.Pagination.Pages != 2 {
		t.Errorf("pagination = %+v", body.Pagination)
	}
}

func TestArticleHandler_List_InvalidQueryParamsIgnored(t *testing.T) {
	svc := &mockArticleService{
		listFn: func(ctx context.Context, page, limit int) (*model.ArticlePage, error) {
			// 数値でないクエリはゼロ値として渡される
			if page != 0 || limit != 0 {
				t.Errorf("page = %d, limit = %d, want 0, 0", page, limit)
			}
			return &model.ArticlePage{Articles: []model.Article{}, Page: 1, Limit: 10}, nil
		},
	}
	h := NewArticleHandler(svc, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/articles?page=abc&limit=xyz", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestArticleHandler_List_ServiceError(t *testing.T) {
	svc := &mockArticleService{
		listFn: func(ctx context.Context, page, limit int) (*model.ArticlePage, error) {
			return nil, errors.New("db error")
		},
	}
	h := NewArticleHandler(svc, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

// --- GET /api/articles/search テスト ---

func TestArticleHandler_Search_PassesParams(t *testing.T) {
	svc := &mockArticleService{
		searchFn: func(ctx context.Context, params model.SearchParams) (*model.ArticlePage, error) {
			want := model.SearchParams{
				Query:  "golang",
				Author: "yamada",
				Source: "TechNews",
				From:   "2026-01-01",
				To:     "2026-06-30",
				Page:   3,
				Limit:  5,
			}
			if params != want {
				t.Errorf("params = %+v, want %+v", params, want)
			}
			return &model.ArticlePage{Articles: []model.Article{}, Page: 3, Limit: 5}, nil
		},
	}
	h := NewArticleHandler(svc, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet,
		"/api/articles/search?q=golang&author=yamada&source=TechNews&from=2026-01-01&to=2026-06-30&page=3&limit=5", nil)
	w := httptest.NewRecorder()
	h.Search(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestArticleHandler_Search_RecordsHistoryForAuthenticatedUser(t *testing.T) {
	recorder := &mockSearchRecorder{}
	h := NewArticleHandler(&mockArticleService{}, recorder, testLogger())

	// 認証済みユーザー: 記録される
	req := httptest.NewRequest(http.MethodGet, "/api/articles/search?q=golang", nil)
	req = withUser(req, 7)
	w := httptest.NewRecorder()
	h.Search(w, req)

	if len(recorder.recorded) != 1 || recorder.recorded[0] != "golang" {
		t.Errorf("recorded = %v, want [golang]", recorder.recorded)
	}

	// 未認証ユーザー: 記録されない
	req = httptest.NewRequest(http.MethodGet, "/api/articles/search?q=rust", nil)
	w = httptest.NewRecorder()
	h.Search(w, req)

	if len(recorder.recorded) != 1 {
		t.Errorf("未認証の検索が記録されています: %v", recorder.recorded)
	}
}

// --- GET /api/articles/{id} テスト ---

func TestArticleHandler_Get(t *testing.T) {
	tests := []struct {
		name       string
		rawID      string
		getByIDFn  func(ctx context.Context, rawID string) (*model.Article, error)
		wantStatus int
	}{
		{
			name:  "記事が見つかる",
			rawID: "42",
			getByIDFn: func(ctx context.Context, rawID string) (*model.Article, error) {
				return &model.Article{ID: 42, Title: "記事42", URL: "https://example.com/42"}, nil
			},
			wantStatus: http.StatusOK,
		},
		{
			name:  "記事が見つからない",
			rawID: "999",
			getByIDFn: func(ctx context.Context, rawID string) (*model.Article, error) {
				return nil, model.NewArticleNotFoundError(999)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:  "IDが数値でない",
			rawID: "abc",
			getByIDFn: func(ctx context.Context, rawID string) (*model.Article, error) {
				return nil, model.NewInvalidArticleIDError(rawID)
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewArticleHandler(&mockArticleService{getByIDFn: tt.getByIDFn}, nil, testLogger())

			req := httptest.NewRequest(http.MethodGet, "/api/articles/"+tt.rawID, nil)
			req = withChiURLParam(req, "id", tt.rawID)
			w := httptest.NewRecorder()
			h.Get(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

// --- GET /api/articles/sources テスト ---

func TestArticleHandler_Sources(t *testing.T) {
	svc := &mockArticleService{
		sourcesFn: func(ctx context.Context) ([]string, error) {
			return []string{"BBC News", "TechCrunch"}, nil
		},
	}
	h := NewArticleHandler(svc, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/articles/sources", nil)
	w := httptest.NewRecorder()
	h.Sources(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body map[string][]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスのデコードに失敗しました: %v", err)
	}
	if len(body["sources"]) != 2 {
		t.Errorf("sources = %v", body["sources"])
	}
}
