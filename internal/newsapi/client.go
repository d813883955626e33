// Package newsapi はNewsAPI（newsapi.org）のクライアントを提供する。
// /v2/everything エンドポイントを呼び出し、記事一覧を取得する。
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/hitoshi/articledesk/internal/model"
)

// Source は記事の配信元。
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Article はNewsAPIレスポンス内の記事1件。
type Article struct {
	Source      Source `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// Response は/v2/everythingの正常レスポンス。
type Response struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}

// errorResponse はNewsAPIのエラーレスポンス。
type errorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Params は記事検索のリクエストパラメータ。
type Params struct {
	Query    string // 検索キーワード（必須）
	From     string // 取得範囲の開始日（YYYY-MM-DD）
	Language string // 言語コード（空なら指定しない）
	PageSize int    // 1リクエストあたりの最大記事数
}

// Client はNewsAPIのHTTPクライアント。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string // テスト用にエンドポイントを差し替え可能
	apiKey     string
}

// NewClient はClient の新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, baseURL, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// Everything は/v2/everythingを呼び出して記事一覧を取得する。
// 非200レスポンスはエラーボディをパースし、上流APIエラーとして返す。
func (c *Client) Everything(ctx context.Context, p Params) (*Response, error) {
	reqURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}

	q := reqURL.Query()
	q.Set("q", p.Query)
	if p.From != "" {
		q.Set("from", p.From)
	}
	if p.Language != "" {
		q.Set("language", p.Language)
	}
	if p.PageSize > 0 {
		q.Set("pageSize", fmt.Sprintf("%d", p.PageSize))
	}
	q.Set("sortBy", "publishedAt")
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	// APIキーはクエリではなくヘッダで渡す（アクセスログへの漏洩防止）
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("User-Agent", "ArticleDesk/1.0 News Aggregator")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("NewsAPIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
			slog.String("query", p.Query),
		)
		return nil, model.NewUpstreamAPIError("ニュース提供元への接続に失敗しました")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
			c.logger.Error("NewsAPIがエラーステータスを返しました",
				slog.Int("http_status", resp.StatusCode),
				slog.String("code", apiErr.Code),
				slog.String("message", apiErr.Message),
			)
			return nil, model.NewUpstreamAPIError(apiErr.Message)
		}
		c.logger.Error("NewsAPIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, model.NewUpstreamAPIError(fmt.Sprintf("ニュース提供元がステータス %d を返しました", resp.StatusCode))
	}

	var result Response
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.Error("NewsAPIレスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	return &result, nil
}
