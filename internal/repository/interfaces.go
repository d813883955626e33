// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/articledesk/internal/model"
)

// ArticleRepository は記事データの永続化インターフェース。
// 記事は取り込みジョブのみが作成し、更新・削除は行わない。
type ArticleRepository interface {
	// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Article, error)

	// List は記事一覧をpublished_at降順で取得する。
	List(ctx context.Context, limit, offset int) ([]model.Article, error)

	// Count は全記事数を返す。
	Count(ctx context.Context) (int, error)

	// Search は検索条件に一致する記事をpublished_at降順で取得する。
	// SearchParamsのページ関連フィールドは無視され、limit/offsetが優先される。
	Search(ctx context.Context, p model.SearchParams, limit, offset int) ([]model.Article, error)

	// CountSearch はSearchと同一の条件述語で件数を返す。
	// ページネーションメタデータの算出に使用する。
	CountSearch(ctx context.Context, p model.SearchParams) (int, error)

	// ListURLs は保存済みの全記事URLの集合を返す。
	// 取り込みジョブのURL差分計算に使用する。
	ListURLs(ctx context.Context) (map[string]struct{}, error)

	// InsertBatch は記事を単一トランザクションで一括挿入する。
	InsertBatch(ctx context.Context, articles []model.Article) error

	// DistinctSourceNames は重複を除いたソース名をソート済みで返す。
	DistinctSourceNames(ctx context.Context) ([]string, error)
}

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成し、採番されたIDを返す。
	Create(ctx context.Context, user *model.User) (int64, error)

	// UpdateToken は最終発行トークンとupdated_atを更新する。
	UpdateToken(ctx context.Context, id int64, token string) error
}

// BookmarkRepository はブックマークデータの永続化インターフェース。
type BookmarkRepository interface {
	// FindByUserAndArticle はユーザーIDと記事IDでブックマークを検索する。
	// 見つからない場合はnilを返す。重複チェックに使用する。
	FindByUserAndArticle(ctx context.Context, userID, articleID int64) (*model.Bookmark, error)

	// FindByIDAndUser はブックマークIDと所有ユーザーIDで検索する。見つからない場合はnilを返す。
	FindByIDAndUser(ctx context.Context, id, userID int64) (*model.Bookmark, error)

	// Create はブックマークを作成し、採番されたIDを返す。
	Create(ctx context.Context, userID, articleID int64) (int64, error)

	// Delete は指定IDのブックマークを削除する。
	Delete(ctx context.Context, id int64) error

	// ListByUser はユーザーのブックマークを記事とINNER JOINして
	// 作成日時降順で取得する。
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]model.BookmarkWithArticle, error)

	// CountByUser はユーザーのブックマーク数を返す。
	CountByUser(ctx context.Context, userID int64) (int, error)
}

// PreferenceRepository はユーザー設定の永続化インターフェース。
type PreferenceRepository interface {
	// FindByUserID は指定ユーザーの設定を取得する。未設定の場合はnilを返す。
	FindByUserID(ctx context.Context, userID int64) (*model.Preference, error)

	// Upsert は設定を冪等に登録・更新する。
	Upsert(ctx context.Context, pref *model.Preference) error
}

// SearchHistoryRepository は検索履歴の永続化インターフェース。
type SearchHistoryRepository interface {
	// Add は検索履歴を1件追加する。
	Add(ctx context.Context, userID int64, query string) error

	// ListByUser はユーザーの検索履歴を新しい順に最大limit件返す。
	ListByUser(ctx context.Context, userID int64, limit int) ([]model.SearchEntry, error)

	// DeleteByUser はユーザーの全検索履歴を削除する。
	DeleteByUser(ctx context.Context, userID int64) error

	// DeleteOlderThan は指定日時より古い履歴を削除し、削除件数を返す。
	// 保持期間ジョブから呼び出される。
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
