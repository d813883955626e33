package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/articledesk/internal/model"
)

// maxFeedBodySize はRSSフィードのレスポンスボディ最大サイズ（5MB）。
const maxFeedBodySize = 5 * 1024 * 1024

// SSRFValidator はSSRF検証のインターフェース。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration) *http.Client
}

// RSSSource はRSS/AtomフィードのSource実装。
// SSRF防止付きHTTPクライアントでフィードを取得し、gofeedでパースする。
type RSSSource struct {
	feedURL   string
	ssrfGuard SSRFValidator
	timeout   time.Duration
}

// NewRSSSource はRSSSourceの新しいインスタンスを生成する。
func NewRSSSource(feedURL string, ssrfGuard SSRFValidator, timeout time.Duration) *RSSSource {
	return &RSSSource{
		feedURL:   feedURL,
		ssrfGuard: ssrfGuard,
		timeout:   timeout,
	}
}

// Name はソース識別名を返す。
func (s *RSSSource) Name() string {
	return "rss:" + s.feedURL
}

// Fetch はフィードを取得して記事に変換する。
func (s *RSSSource) Fetch(ctx context.Context) ([]model.Article, error) {
	if err := s.ssrfGuard.ValidateURL(s.feedURL); err != nil {
		return nil, fmt.Errorf("フィードURLの検証に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", "ArticleDesk/1.0 News Aggregator")

	client := s.ssrfGuard.NewSafeClient(s.timeout)
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("フィードの取得に失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("フィードがステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBodySize))
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	parser := gofeed.NewParser()
	feed, err := parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("フィードのパースに失敗しました: %w", err)
	}

	return convertFeedItems(feed), nil
}

// convertFeedItems はgofeedの記事をmodel.Articleに変換する。
// リンクのない記事は重複判定ができないため除外する。
func convertFeedItems(feed *gofeed.Feed) []model.Article {
	articles := make([]model.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}

		var publishedAt string
		if item.PublishedParsed != nil {
			publishedAt = item.PublishedParsed.UTC().Format(time.RFC3339)
		} else if item.UpdatedParsed != nil {
			publishedAt = item.UpdatedParsed.UTC().Format(time.RFC3339)
		}

		var author string
		if len(item.Authors) > 0 && item.Authors[0] != nil {
			author = item.Authors[0].Name
		}

		var image string
		if item.Image != nil {
			image = item.Image.URL
		}

		articles = append(articles, model.Article{
			SourceName:  feed.Title,
			Author:      author,
			Title:       item.Title,
			Description: item.Description,
			URL:         item.Link,
			URLToImage:  image,
			PublishedAt: publishedAt,
			Content:     item.Content,
		})
	}
	return articles
}

// compile-time interface check
var _ Source = (*RSSSource)(nil)
