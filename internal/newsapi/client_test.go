package newsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/articledesk/internal/model"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func TestClient_Everything_Success(t *testing.T) {
	// テスト用HTTPサーバー: クエリパラメータを検証して記事を返す
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("HTTPメソッド = %s, want GET", r.Method)
		}
		if got := r.Header.Get("X-Api-Key"); got != "test-key" {
			t.Errorf("X-Api-Key = %q, want %q", got, "test-key")
		}

		q := r.URL.Query()
		if q.Get("q") != "nigeria" {
			t.Errorf("q = %q, want %q", q.Get("q"), "nigeria")
		}
		if q.Get("from") != "2026-08-31" {
			t.Errorf("from = %q, want %q", q.Get("from"), "2026-08-31")
		}
		if q.Get("sortBy") != "publishedAt" {
			t.Errorf("sortBy = %q, want %q", q.Get("sortBy"), "publishedAt")
		}
		if q.Get("pageSize") != "100" {
			t.Errorf("pageSize = %q, want %q", q.Get("pageSize"), "100")
		}

		resp := Response{
			Status:       "ok",
			TotalResults: 1,
			Articles: []Article{
				{
					Source:      Source{ID: "bbc-news", Name: "BBC News"},
					Author:      "Reporter",
					Title:       "Headline",
					Description: "Summary",
					URL:         "https://example.com/headline",
					URLToImage:  "https://example.com/headline.jpg",
					PublishedAt: "2026-08-31T12:00:00Z",
					Content:     "Body text",
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	var buf bytes.Buffer
	c := NewClient(server.Client(), newTestLogger(&buf), server.URL, "test-key")

	got, err := c.Everything(context.Background(), Params{
		Query:    "nigeria",
		From:     "2026-08-31",
		PageSize: 100,
	})
	if err != nil {
		t.Fatalf("Everything() error = %v", err)
	}
	if got.TotalResults != 1 {
		t.Errorf("TotalResults = %d, want 1", got.TotalResults)
	}
	if len(got.Articles) != 1 {
		t.Fatalf("Articles length = %d, want 1", len(got.Articles))
	}
	if got.Articles[0].URL != "https://example.com/headline" {
		t.Errorf("URL = %q, want %q", got.Articles[0].URL, "https://example.com/headline")
	}
	if got.Articles[0].Source.Name != "BBC News" {
		t.Errorf("Source.Name = %q, want %q", got.Articles[0].Source.Name, "BBC News")
	}
}

func TestClient_Everything_OmitsEmptyParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Has("language") {
			t.Error("language パラメータは指定しない場合に送信してはならない")
		}
		if q.Has("from") {
			t.Error("from パラメータは指定しない場合に送信してはならない")
		}
		json.NewEncoder(w).Encode(Response{Status: "ok"})
	}))
	defer server.Close()

	var buf bytes.Buffer
	c := NewClient(server.Client(), newTestLogger(&buf), server.URL, "test-key")

	if _, err := c.Everything(context.Background(), Params{Query: "go"}); err != nil {
		t.Fatalf("Everything() error = %v", err)
	}
}

func TestClient_Everything_UpstreamError(t *testing.T) {
	// NewsAPIのエラーレスポンス形式を返すサーバー
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "error",
			"code":    "apiKeyInvalid",
			"message": "Your API key is invalid or incorrect.",
		})
	}))
	defer server.Close()

	var buf bytes.Buffer
	c := NewClient(server.Client(), newTestLogger(&buf), server.URL, "bad-key")

	_, err := c.Everything(context.Background(), Params{Query: "go"})
	if err == nil {
		t.Fatal("Everything() succeeded, want upstream error")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *model.APIError", err)
	}
	if apiErr.Code != model.ErrCodeUpstreamAPI {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeUpstreamAPI)
	}
	if apiErr.Message != "Your API key is invalid or incorrect." {
		t.Errorf("error message = %q, want upstream message", apiErr.Message)
	}
}

func TestClient_Everything_MalformedErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	var buf bytes.Buffer
	c := NewClient(server.Client(), newTestLogger(&buf), server.URL, "key")

	_, err := c.Everything(context.Background(), Params{Query: "go"})
	if err == nil {
		t.Fatal("Everything() succeeded, want error")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *model.APIError", err)
	}
}
