// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, auth, conflict, not_found, upstream, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// エラーカテゴリ。HTTPステータスコードへのマッピングに使用する。
const (
	CategoryValidation = "validation"
	CategoryAuth       = "auth"
	CategoryConflict   = "conflict"
	CategoryNotFound   = "not_found"
	CategoryUpstream   = "upstream"
	CategorySystem     = "system"
)

// 定義済みエラーコード
const (
	ErrCodeMissingFields      = "MISSING_FIELDS"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeInvalidArticleID   = "INVALID_ARTICLE_ID"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeArticleNotFound    = "ARTICLE_NOT_FOUND"
	ErrCodeBookmarkNotFound   = "BOOKMARK_NOT_FOUND"
	ErrCodeBookmarkDuplicate  = "BOOKMARK_DUPLICATE"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeUpstreamAPI        = "UPSTREAM_API_ERROR"
)

// NewMissingFieldsError は必須フィールド欠落エラーを生成する。
func NewMissingFieldsError(fields string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingFields,
		Message:  fmt.Sprintf("必須フィールドが不足しています: %s", fields),
		Category: CategoryValidation,
		Action:   "リクエストボディに必要なフィールドをすべて指定してください。",
	}
}

// NewInvalidRequestError はリクエスト解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: CategoryValidation,
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewInvalidArticleIDError は記事IDが数値でない場合のエラーを生成する。
func NewInvalidArticleIDError(raw string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidArticleID,
		Message:  fmt.Sprintf("記事IDは数値で指定してください: %s", raw),
		Category: CategoryValidation,
		Action:   "URLの記事IDを確認してください。",
	}
}

// NewUnauthorizedError は認証必須エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: CategoryAuth,
		Action:   "ログインしてください。",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
// メールアドレス不明とパスワード不一致を区別しない（ユーザー列挙の防止）。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: CategoryAuth,
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "このメールアドレスは既に登録されています。",
		Category: CategoryConflict,
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewArticleNotFoundError は記事未検出エラーを生成する。
func NewArticleNotFoundError(articleID int64) *APIError {
	return &APIError{
		Code:     ErrCodeArticleNotFound,
		Message:  fmt.Sprintf("指定された記事が見つかりません: %d", articleID),
		Category: CategoryNotFound,
		Action:   "記事IDを確認してください。",
	}
}

// NewBookmarkNotFoundError はブックマーク未検出エラーを生成する。
// 他ユーザー所有のブックマークを指定した場合も同じエラーになる。
func NewBookmarkNotFoundError(bookmarkID int64) *APIError {
	return &APIError{
		Code:     ErrCodeBookmarkNotFound,
		Message:  fmt.Sprintf("指定されたブックマークが見つかりません: %d", bookmarkID),
		Category: CategoryNotFound,
		Action:   "ブックマークIDを確認してください。",
	}
}

// NewBookmarkDuplicateError はブックマーク重複エラーを生成する。
func NewBookmarkDuplicateError(bookmarkID int64) *APIError {
	return &APIError{
		Code:     ErrCodeBookmarkDuplicate,
		Message:  "この記事は既にブックマークされています。",
		Category: CategoryConflict,
		Action:   fmt.Sprintf("既存のブックマーク（ID: %d）を確認してください。", bookmarkID),
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: CategoryAuth,
		Action:   "ログインし直してください。",
	}
}

// NewUpstreamAPIError は外部ニュースAPIのエラーを生成する。
// 上流APIが返したメッセージをそのまま保持する。
func NewUpstreamAPIError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeUpstreamAPI,
		Message:  fmt.Sprintf("ニュースAPIがエラーを返しました: %s", message),
		Category: CategoryUpstream,
		Action:   "APIキーとクエリパラメータを確認し、しばらく待ってから再度お試しください。",
	}
}
