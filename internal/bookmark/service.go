// Package bookmark はブックマーク管理のドメインロジックを提供する。
package bookmark

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/articledesk/internal/model"
	"github.com/hitoshi/articledesk/internal/repository"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// BookmarkService はブックマークの登録・削除・一覧のサービス。
type BookmarkService struct {
	bookmarkRepo repository.BookmarkRepository
	articleRepo  repository.ArticleRepository
	logger       *slog.Logger
}

// NewBookmarkService はBookmarkServiceの新しいインスタンスを生成する。
func NewBookmarkService(
	bookmarkRepo repository.BookmarkRepository,
	articleRepo repository.ArticleRepository,
	logger *slog.Logger,
) *BookmarkService {
	return &BookmarkService{
		bookmarkRepo: bookmarkRepo,
		articleRepo:  articleRepo,
		logger:       logger,
	}
}

// List はユーザーのブックマーク一覧を登録日時の降順・ページネーション付きで返す。
// 各要素には記事情報が結合される。
func (s *BookmarkService) List(ctx context.Context, userID int64, page, limit int) (*model.BookmarkPage, error) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	total, err := s.bookmarkRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * limit
	bookmarks, err := s.bookmarkRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	pages := 0
	if total > 0 {
		pages = (total + limit - 1) / limit
	}

	return &model.BookmarkPage{
		Bookmarks: bookmarks,
		Page:      page,
		Limit:     limit,
		Total:     total,
		Pages:     pages,
	}, nil
}

// Create は記事をブックマークする。
// 記事が存在しない場合は未検出エラー、登録済みの場合は競合エラーを返す。
func (s *BookmarkService) Create(ctx context.Context, userID, articleID int64) (*model.Bookmark, error) {
	if articleID < 1 {
		return nil, model.NewInvalidArticleIDError(fmt.Sprintf("%d", articleID))
	}

	article, err := s.articleRepo.FindByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, model.NewArticleNotFoundError(articleID)
	}

	existing, err := s.bookmarkRepo.FindByUserAndArticle(ctx, userID, articleID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, model.NewBookmarkDuplicateError(existing.ID)
	}

	id, err := s.bookmarkRepo.Create(ctx, userID, articleID)
	if err != nil {
		return nil, fmt.Errorf("ブックマークの作成に失敗しました: %w", err)
	}

	s.logger.Info("ブックマークを登録しました",
		slog.Int64("user_id", userID),
		slog.Int64("article_id", articleID),
		slog.Int64("bookmark_id", id),
	)

	return &model.Bookmark{ID: id, UserID: userID, ArticleID: articleID}, nil
}

// Delete はブックマークを削除する。
// 自分のブックマークに存在しないIDの場合は未検出エラーを返す。
// 他ユーザーのブックマークも存在扱いしない（所有者スコープ）。
func (s *BookmarkService) Delete(ctx context.Context, userID, bookmarkID int64) error {
	existing, err := s.bookmarkRepo.FindByIDAndUser(ctx, bookmarkID, userID)
	if err != nil {
		return err
	}
	if existing == nil {
		return model.NewBookmarkNotFoundError(bookmarkID)
	}

	if err := s.bookmarkRepo.Delete(ctx, bookmarkID); err != nil {
		return fmt.Errorf("ブックマークの削除に失敗しました: %w", err)
	}

	s.logger.Info("ブックマークを削除しました",
		slog.Int64("user_id", userID),
		slog.Int64("bookmark_id", bookmarkID),
	)

	return nil
}

// Count はユーザーのブックマーク総数を返す。
func (s *BookmarkService) Count(ctx context.Context, userID int64) (int, error) {
	count, err := s.bookmarkRepo.CountByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("ブックマーク数の取得に失敗しました: %w", err)
	}
	return count, nil
}
