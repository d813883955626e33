package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/articledesk/internal/model"
)

// SqliteArticleRepo はSQLiteを使用した記事リポジトリ。
type SqliteArticleRepo struct {
	db *sql.DB
}

// NewSqliteArticleRepo はSqliteArticleRepoを生成する。
func NewSqliteArticleRepo(db *sql.DB) *SqliteArticleRepo {
	return &SqliteArticleRepo{db: db}
}

// articleColumns は記事SELECTの共通カラムリスト。
const articleColumns = `id, source_id, source_name, author, title, description,
       url, url_to_image, published_at, content`

// scanArticle は1行を読み取ってArticleに詰める。
// NULL許容カラム（source_id, author, url_to_image）は空文字列に正規化する。
func scanArticle(scan func(dest ...any) error) (*model.Article, error) {
	a := &model.Article{}
	var sourceID, author, urlToImage sql.NullString

	err := scan(
		&a.ID, &sourceID, &a.SourceName, &author, &a.Title, &a.Description,
		&a.URL, &urlToImage, &a.PublishedAt, &a.Content,
	)
	if err != nil {
		return nil, err
	}

	a.SourceID = sourceID.String
	a.Author = author.String
	a.URLToImage = urlToImage.String
	return a, nil
}

// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
func (r *SqliteArticleRepo) FindByID(ctx context.Context, id int64) (*model.Article, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)

	a, err := scanArticle(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	return a, nil
}

// List は記事一覧をpublished_at降順で取得する。
func (r *SqliteArticleRepo) List(ctx context.Context, limit, offset int) ([]model.Article, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles
		 ORDER BY published_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("記事一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

// Count は全記事数を返す。
func (r *SqliteArticleRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("記事数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// buildSearchWhere は検索条件からWHERE句とバインド引数を構築する。
// すべての条件はANDで結合される。条件なしの場合は空のWHERE句を返す。
func buildSearchWhere(p model.SearchParams) (string, []any) {
	var conds []string
	var args []any

	if p.Query != "" {
		conds = append(conds, `(title LIKE ? OR description LIKE ? OR content LIKE ?)`)
		pat := "%" + p.Query + "%"
		args = append(args, pat, pat, pat)
	}
	if p.Author != "" {
		conds = append(conds, `author LIKE ?`)
		args = append(args, "%"+p.Author+"%")
	}
	if p.Source != "" {
		conds = append(conds, `source_name LIKE ?`)
		args = append(args, "%"+p.Source+"%")
	}
	if p.From != "" {
		conds = append(conds, `published_at >= ?`)
		args = append(args, p.From)
	}
	if p.To != "" {
		conds = append(conds, `published_at <= ?`)
		args = append(args, p.To)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Search は検索条件に一致する記事をpublished_at降順で取得する。
func (r *SqliteArticleRepo) Search(ctx context.Context, p model.SearchParams, limit, offset int) ([]model.Article, error) {
	where, args := buildSearchWhere(p)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles`+where+
			` ORDER BY published_at DESC LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("記事の検索に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

// CountSearch はSearchと同一の条件述語で件数を返す。
func (r *SqliteArticleRepo) CountSearch(ctx context.Context, p model.SearchParams) (int, error) {
	where, args := buildSearchWhere(p)

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("検索結果件数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// ListURLs は保存済みの全記事URLの集合を返す。
func (r *SqliteArticleRepo) ListURLs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT url FROM articles`)
	if err != nil {
		return nil, fmt.Errorf("記事URL一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	urls := make(map[string]struct{})
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("記事URLの読み取りに失敗しました: %w", err)
		}
		urls[u] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("記事URL一覧の走査に失敗しました: %w", err)
	}

	return urls, nil
}

// InsertBatch は記事を単一トランザクションで一括挿入する。
// NULL許容カラムは空文字列をNULLとして保存する。
func (r *SqliteArticleRepo) InsertBatch(ctx context.Context, articles []model.Article) error {
	if len(articles) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO articles
		   (source_id, source_name, author, title, description, url, url_to_image, published_at, content)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range articles {
		_, err := stmt.ExecContext(ctx,
			nullIfEmpty(a.SourceID), a.SourceName, nullIfEmpty(a.Author),
			a.Title, a.Description, a.URL, nullIfEmpty(a.URLToImage),
			a.PublishedAt, a.Content,
		)
		if err != nil {
			return fmt.Errorf("failed to insert article (url=%s): %w", a.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DistinctSourceNames は重複を除いたソース名をソート済みで返す。
func (r *SqliteArticleRepo) DistinctSourceNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT source_name FROM articles ORDER BY source_name`)
	if err != nil {
		return nil, fmt.Errorf("ソース名一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("ソース名の読み取りに失敗しました: %w", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ソース名一覧の走査に失敗しました: %w", err)
	}

	return names, nil
}

// collectArticles はrowsを走査してArticleスライスに変換する。
func collectArticles(rows *sql.Rows) ([]model.Article, error) {
	var articles []model.Article
	for rows.Next() {
		a, err := scanArticle(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("記事行の読み取りに失敗しました: %w", err)
		}
		articles = append(articles, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("記事一覧の走査に失敗しました: %w", err)
	}
	return articles, nil
}

// nullIfEmpty は空文字列をNULLに変換する。
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// compile-time interface check
var _ ArticleRepository = (*SqliteArticleRepo)(nil)
