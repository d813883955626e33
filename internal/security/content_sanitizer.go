// ContentSanitizerService は取り込んだ記事のテキストフィールドをサニタイズし、
// 保存データに混入したHTMLによるXSSからAPI利用者を保護する。
// bluemondayライブラリの許可リストベースのポリシーを使用する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService は記事テキストのサニタイズ機能のインターフェースを定義する。
// 記事の保存前に使用される。
type ContentSanitizerService interface {
	// Sanitize は記事本文をサニタイズして安全なHTMLを返す。
	// 許可タグ（p, br, ul, ol, li, blockquote, pre, code, strong, em）のみを通過させ、
	// script, iframe, styleタグおよびon*イベント属性を除去する。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string

	// StripTags はタイトル・概要などの1行フィールドから全タグを除去し、
	// プレーンテキストのみを返す。
	StripTags(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
	strict *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// ポリシーの内容:
//   - 許可タグ: p, br, ul, ol, li, blockquote, pre, code, strong, em
//   - script, iframe, style等は許可リストに含めないことで自動的に除去される
//   - on*イベント属性はbluemondayのデフォルトで許可されないため除去される
func NewContentSanitizer() *contentSanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
	)

	return &contentSanitizer{
		policy: p,
		strict: bluemonday.StrictPolicy(),
	}
}

// Sanitize は記事本文をサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) Sanitize(raw string) string {
	return s.policy.Sanitize(raw)
}

// StripTags は全タグを除去したプレーンテキストを返す。
func (s *contentSanitizer) StripTags(raw string) string {
	return strings.TrimSpace(s.strict.Sanitize(raw))
}
