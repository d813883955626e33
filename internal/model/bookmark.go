// Package model はドメインモデルを定義する。
package model

import "time"

// Bookmark はユーザーと記事の紐付けを表す。
// (user_id, article_id) の組はUNIQUE制約で一意。所有者のみが削除できる。
type Bookmark struct {
	ID        int64
	UserID    int64
	ArticleID int64
	CreatedAt time.Time
}

// BookmarkWithArticle はブックマークと記事をINNER JOINした結果行。
type BookmarkWithArticle struct {
	BookmarkID   int64
	ArticleID    int64
	Title        string
	Description  string
	URL          string
	URLToImage   string
	PublishedAt  string
	SourceName   string
	BookmarkedAt time.Time
}

// BookmarkPage はブックマーク一覧とページネーション情報をまとめた結果。
type BookmarkPage struct {
	Bookmarks []BookmarkWithArticle
	Page      int
	Limit     int
	Total     int
	Pages     int
}
