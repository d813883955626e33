package ingest

import (
	"context"
	"time"

	"github.com/hitoshi/articledesk/internal/model"
	"github.com/hitoshi/articledesk/internal/newsapi"
)

// NewsAPISource はNewsAPIの/v2/everythingを取得元とするSource実装。
// 前日以降に公開された記事を公開日時の降順で取得する。
type NewsAPISource struct {
	client   *newsapi.Client
	query    string
	language string
	pageSize int
	// now はテスト用に差し替え可能な現在時刻取得関数。
	now func() time.Time
}

// NewNewsAPISource はNewsAPISourceの新しいインスタンスを生成する。
func NewNewsAPISource(client *newsapi.Client, query, language string, pageSize int) *NewsAPISource {
	return &NewsAPISource{
		client:   client,
		query:    query,
		language: language,
		pageSize: pageSize,
		now:      time.Now,
	}
}

// Name はソース識別名を返す。
func (s *NewsAPISource) Name() string {
	return "newsapi"
}

// Fetch は前日以降の記事をNewsAPIから取得する。
func (s *NewsAPISource) Fetch(ctx context.Context) ([]model.Article, error) {
	yesterday := s.now().AddDate(0, 0, -1).Format("2006-01-02")

	resp, err := s.client.Everything(ctx, newsapi.Params{
		Query:    s.query,
		From:     yesterday,
		Language: s.language,
		PageSize: s.pageSize,
	})
	if err != nil {
		return nil, err
	}

	articles := make([]model.Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		articles = append(articles, model.Article{
			SourceID:    a.Source.ID,
			SourceName:  a.Source.Name,
			Author:      a.Author,
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			URLToImage:  a.URLToImage,
			PublishedAt: a.PublishedAt,
			Content:     a.Content,
		})
	}

	return articles, nil
}

// compile-time interface check
var _ Source = (*NewsAPISource)(nil)
