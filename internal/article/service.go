// Package article は記事の閲覧・検索機能を提供する。
package article

import (
	"context"
	"strconv"

	"github.com/hitoshi/articledesk/internal/model"
	"github.com/hitoshi/articledesk/internal/repository"
)

const (
	// defaultPage はページ番号の既定値。
	defaultPage = 1
	// defaultLimit は1ページあたりの既定件数。
	defaultLimit = 10
	// maxLimit は1ページあたりの最大件数。
	maxLimit = 100
)

// ArticleService は記事の一覧・検索・詳細取得のサービス。
type ArticleService struct {
	articleRepo repository.ArticleRepository
}

// NewArticleService はArticleServiceの新しいインスタンスを生成する。
func NewArticleService(articleRepo repository.ArticleRepository) *ArticleService {
	return &ArticleService{articleRepo: articleRepo}
}

// normalizePagination はページ番号と件数を正規化する。
// page < 1 は1に、limit < 1 は既定値に、limit > maxLimit は上限に丸める。
func normalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// pageCount は総件数とページサイズから総ページ数を計算する。
func pageCount(total, limit int) int {
	if total == 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// List は記事一覧を公開日時の降順・ページネーション付きで返す。
func (s *ArticleService) List(ctx context.Context, page, limit int) (*model.ArticlePage, error) {
	page, limit = normalizePagination(page, limit)

	total, err := s.articleRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * limit
	articles, err := s.articleRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	return &model.ArticlePage{
		Articles: articles,
		Page:     page,
		Limit:    limit,
		Total:    total,
		Pages:    pageCount(total, limit),
	}, nil
}

// Search は検索条件に一致する記事をページネーション付きで返す。
// 条件がすべて空の場合は一覧取得と同じ結果になる。
func (s *ArticleService) Search(ctx context.Context, params model.SearchParams) (*model.ArticlePage, error) {
	page, limit := normalizePagination(params.Page, params.Limit)

	total, err := s.articleRepo.CountSearch(ctx, params)
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * limit
	articles, err := s.articleRepo.Search(ctx, params, limit, offset)
	if err != nil {
		return nil, err
	}

	return &model.ArticlePage{
		Articles: articles,
		Page:     page,
		Limit:    limit,
		Total:    total,
		Pages:    pageCount(total, limit),
	}, nil
}

// GetByID は記事を1件取得する。
// rawIDが整数でない場合はバリデーションエラー、存在しない場合は未検出エラーを返す。
func (s *ArticleService) GetByID(ctx context.Context, rawID string) (*model.Article, error) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id < 1 {
		return nil, model.NewInvalidArticleIDError(rawID)
	}

	article, err := s.articleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, model.NewArticleNotFoundError(id)
	}

	return article, nil
}

// Sources は保存済み記事のソース名一覧を重複なしで返す。
func (s *ArticleService) Sources(ctx context.Context) ([]string, error) {
	return s.articleRepo.DistinctSourceNames(ctx)
}
