package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/articledesk/internal/model"
)

// SqliteBookmarkRepo はSQLiteを使用したブックマークリポジトリ。
type SqliteBookmarkRepo struct {
	db *sql.DB
}

// NewSqliteBookmarkRepo はSqliteBookmarkRepoを生成する。
func NewSqliteBookmarkRepo(db *sql.DB) *SqliteBookmarkRepo {
	return &SqliteBookmarkRepo{db: db}
}

// FindByUserAndArticle はユーザーIDと記事IDでブックマークを検索する。
func (r *SqliteBookmarkRepo) FindByUserAndArticle(ctx context.Context, userID, articleID int64) (*model.Bookmark, error) {
	b := &model.Bookmark{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, article_id, created_at FROM bookmarks
		 WHERE user_id = ? AND article_id = ?`,
		userID, articleID,
	).Scan(&b.ID, &b.UserID, &b.ArticleID, &b.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ブックマークの検索に失敗しました: %w", err)
	}
	return b, nil
}

// FindByIDAndUser はブックマークIDと所有ユーザーIDで検索する。
// 他ユーザーのブックマークは存在しないものとして扱う。
func (r *SqliteBookmarkRepo) FindByIDAndUser(ctx context.Context, id, userID int64) (*model.Bookmark, error) {
	b := &model.Bookmark{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, article_id, created_at FROM bookmarks
		 WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(&b.ID, &b.UserID, &b.ArticleID, &b.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ブックマークの取得に失敗しました: %w", err)
	}
	return b, nil
}

// Create はブックマークを作成し、採番されたIDを返す。
func (r *SqliteBookmarkRepo) Create(ctx context.Context, userID, articleID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO bookmarks (user_id, article_id) VALUES (?, ?)`,
		userID, articleID,
	)
	if err != nil {
		return 0, fmt.Errorf("ブックマークの作成に失敗しました: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted bookmark ID: %w", err)
	}
	return id, nil
}

// Delete は指定IDのブックマークを削除する。
func (r *SqliteBookmarkRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("ブックマークの削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("bookmark not found: %d", id)
	}
	return nil
}

// ListByUser はユーザーのブックマークを記事とINNER JOINして
// 作成日時降順（新しい順）で取得する。
func (r *SqliteBookmarkRepo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]model.BookmarkWithArticle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, a.id, a.title, a.description, a.url, a.url_to_image,
		        a.published_at, a.source_name, b.created_at
		 FROM bookmarks b
		 INNER JOIN articles a ON b.article_id = a.id
		 WHERE b.user_id = ?
		 ORDER BY b.created_at DESC, b.id DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("ブックマーク一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var results []model.BookmarkWithArticle
	for rows.Next() {
		var bw model.BookmarkWithArticle
		var urlToImage sql.NullString
		err := rows.Scan(
			&bw.BookmarkID, &bw.ArticleID, &bw.Title, &bw.Description,
			&bw.URL, &urlToImage, &bw.PublishedAt, &bw.SourceName, &bw.BookmarkedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ブックマーク行の読み取りに失敗しました: %w", err)
		}
		bw.URLToImage = urlToImage.String
		results = append(results, bw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ブックマーク一覧の走査に失敗しました: %w", err)
	}

	return results, nil
}

// CountByUser はユーザーのブックマーク数を返す。
func (r *SqliteBookmarkRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookmarks WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ブックマーク数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// compile-time interface check
var _ BookmarkRepository = (*SqliteBookmarkRepo)(nil)
