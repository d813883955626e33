// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hitoshi/articledesk/internal/model"
)

// tokenCookieName は認証トークンを保持するCookieの名前。
const tokenCookieName = "token"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userContextKey はリクエストコンテキストに認証済みユーザーを格納するためのキー。
var userContextKey = contextKey("user")

// TokenVerifier はトークン検証に必要なインターフェース。
// auth.AuthServiceの部分集合として定義する。
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*model.PublicUser, error)
}

// NewAuthMiddleware はリクエストから認証トークンを読み取り検証するミドルウェアを返す。
// AuthorizationヘッダーのBearerトークンを優先し、なければhttpOnly Cookieを参照する。
// 認証済みユーザーをリクエストコンテキストに注入する。
// 未認証リクエストには統一フォーマットで401を返す。
func NewAuthMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			user, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			ctx := ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewOptionalAuthMiddleware はトークンがある場合のみ検証するミドルウェアを返す。
// トークンがない・無効な場合も401にせず、未認証として次のハンドラーへ進む。
// 公開エンドポイントでログにユーザーIDを残すために使用する。
func NewOptionalAuthMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken はリクエストから認証トークンを取り出す。
// Authorization: Bearer ヘッダーを優先し、なければCookieを参照する。
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	cookie, err := r.Cookie(tokenCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// UserFromContext はリクエストコンテキストから認証済みユーザーを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserFromContext(ctx context.Context) (*model.PublicUser, error) {
	user, ok := ctx.Value(userContextKey).(*model.PublicUser)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}

// ContextWithUser はコンテキストに認証済みユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUser(ctx context.Context, user *model.PublicUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
