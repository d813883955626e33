package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/articledesk/internal/model"
)

// SqlitePreferenceRepo はSQLiteを使用したユーザー設定リポジトリ。
type SqlitePreferenceRepo struct {
	db *sql.DB
}

// NewSqlitePreferenceRepo はSqlitePreferenceRepoを生成する。
func NewSqlitePreferenceRepo(db *sql.DB) *SqlitePreferenceRepo {
	return &SqlitePreferenceRepo{db: db}
}

// FindByUserID は指定ユーザーの設定を取得する。未設定の場合はnilを返す。
func (r *SqlitePreferenceRepo) FindByUserID(ctx context.Context, userID int64) (*model.Preference, error) {
	p := &model.Preference{}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, preferred_sources, language, page_size, updated_at
		 FROM user_preferences WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &p.PreferredSources, &p.Language, &p.PageSize, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザー設定の取得に失敗しました: %w", err)
	}
	return p, nil
}

// Upsert は設定を冪等に登録・更新する。
func (r *SqlitePreferenceRepo) Upsert(ctx context.Context, pref *model.Preference) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_preferences (user_id, preferred_sources, language, page_size, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(user_id) DO UPDATE SET
		   preferred_sources = excluded.preferred_sources,
		   language = excluded.language,
		   page_size = excluded.page_size,
		   updated_at = CURRENT_TIMESTAMP`,
		pref.UserID, pref.PreferredSources, pref.Language, pref.PageSize,
	)
	if err != nil {
		return fmt.Errorf("ユーザー設定の保存に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ PreferenceRepository = (*SqlitePreferenceRepo)(nil)

// SqliteSearchHistoryRepo はSQLiteを使用した検索履歴リポジトリ。
type SqliteSearchHistoryRepo struct {
	db *sql.DB
}

// NewSqliteSearchHistoryRepo はSqliteSearchHistoryRepoを生成する。
func NewSqliteSearchHistoryRepo(db *sql.DB) *SqliteSearchHistoryRepo {
	return &SqliteSearchHistoryRepo{db: db}
}

// Add は検索履歴を1件追加する。
func (r *SqliteSearchHistoryRepo) Add(ctx context.Context, userID int64, query string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO search_history (user_id, query) VALUES (?, ?)`,
		userID, query,
	)
	if err != nil {
		return fmt.Errorf("検索履歴の追加に失敗しました: %w", err)
	}
	return nil
}

// ListByUser はユーザーの検索履歴を新しい順に最大limit件返す。
func (r *SqliteSearchHistoryRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]model.SearchEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, query, searched_at FROM search_history
		 WHERE user_id = ?
		 ORDER BY searched_at DESC, id DESC
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("検索履歴の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var entries []model.SearchEntry
	for rows.Next() {
		var e model.SearchEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Query, &e.SearchedAt); err != nil {
			return nil, fmt.Errorf("検索履歴行の読み取りに失敗しました: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("検索履歴の走査に失敗しました: %w", err)
	}

	return entries, nil
}

// DeleteByUser はユーザーの全検索履歴を削除する。
func (r *SqliteSearchHistoryRepo) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM search_history WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("検索履歴の削除に失敗しました: %w", err)
	}
	return nil
}

// DeleteOlderThan は指定日時より古い履歴を削除し、削除件数を返す。
// searched_atはCURRENT_TIMESTAMP形式（UTC）で保存されるため、文字列比較で範囲を絞る。
func (r *SqliteSearchHistoryRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM search_history WHERE searched_at < ?`,
		cutoff.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return 0, fmt.Errorf("古い検索履歴の削除に失敗しました: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// compile-time interface check
var _ SearchHistoryRepository = (*SqliteSearchHistoryRepo)(nil)
