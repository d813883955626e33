// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashにはbcrypt済みハッシュのみを保持し、平文パスワードは
// 永続化もログ出力もしない。
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Token        string // 最後に発行した認証トークン。ログイン時に更新される
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser はAPIレスポンスに含めてよいユーザーの公開フィールド。
type PublicUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Public は公開フィールドのみを抜き出す。
func (u *User) Public() *PublicUser {
	return &PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Preference はユーザーごとの表示設定を表す。
type Preference struct {
	UserID           int64
	PreferredSources string // カンマ区切りのソース名
	Language         string
	PageSize         int
	UpdatedAt        time.Time
}

// SearchEntry は検索履歴の1件を表す。
type SearchEntry struct {
	ID         int64
	UserID     int64
	Query      string
	SearchedAt time.Time
}
