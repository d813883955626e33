// Package model はドメインモデルを定義する。
package model

// Article はNewsAPIまたはRSSフィードから取り込んだ記事を表す。
// URLが取り込み時の論理的な同一性キーとなる（articles.urlにUNIQUE制約あり）。
// 取り込みジョブのみが作成し、以後更新・削除されない。
type Article struct {
	ID          int64
	SourceID    string // 任意。NewsAPIのsource.id
	SourceName  string
	Author      string // 任意
	Title       string
	Description string // 空文字列を許容
	URL         string
	URLToImage  string // 任意
	PublishedAt string // ISO-8601文字列。辞書順ソートで時系列順になる
	Content     string // 空文字列を許容
}

// ArticlePage は記事一覧とページネーション情報をまとめた結果。
type ArticlePage struct {
	Articles []Article
	Page     int
	Limit    int
	Total    int
	Pages    int
}

// SearchParams は記事検索の絞り込み条件を表す。
// 指定された条件はすべてANDで結合される。ゼロ値のフィールドは無視される。
type SearchParams struct {
	Query  string // title OR description OR content の部分一致
	Author string // 部分一致
	Source string // source_name の部分一致
	From   string // published_at >= From（ISO-8601、両端含む）
	To     string // published_at <= To
	Page   int
	Limit  int
}
