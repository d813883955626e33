package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/articledesk/internal/auth"
	"github.com/hitoshi/articledesk/internal/middleware"
	"github.com/hitoshi/articledesk/internal/model"
)

// tokenCookieName は認証トークンを保持するCookieの名前。
const tokenCookieName = "token"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, name, email, password string) (*auth.AuthResult, error)
	Login(ctx context.Context, email, password string) (*auth.AuthResult, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain string
	CookieSecure bool
	TokenMaxAge  int // 認証Cookieの有効期間（秒）
}

// AuthHandler はユーザー登録・ログインのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
	logger  *slog.Logger
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
		logger:  logger,
	}
}

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// registerResponse はユーザー登録成功時のレスポンス。
// トークンはCookieに加えてボディにも含め、Cookieを使えないクライアントが
// Authorizationヘッダーで認証できるようにする。
type registerResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// loginResponse はログイン成功時のレスポンス。
type loginResponse struct {
	Message string            `json:"message"`
	Token   string            `json:"token"`
	User    *model.PublicUser `json:"user"`
}

// Register は新規ユーザーを登録し、認証Cookieを設定する。
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSONBody(r, &req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	result, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		middleware.HandleServiceError(w, h.logger, err)
		return
	}

	h.setTokenCookie(w, result.Token)
	writeJSON(w, http.StatusCreated, registerResponse{
		Message: "ユーザー登録が完了しました。",
		Token:   result.Token,
	})
}

// Login は認証情報を検証し、認証Cookieを設定する。
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSONBody(r, &req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		middleware.HandleServiceError(w, h.logger, err)
		return
	}

	h.setTokenCookie(w, result.Token)
	writeJSON(w, http.StatusOK, loginResponse{
		Message: "ログインしました。",
		Token:   result.Token,
		User:    result.User,
	})
}

// Logout は認証Cookieをクリアする。
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "ログアウトしました。"})
}

// Profile は現在のログインユーザー情報を返す。
// GET /api/auth/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// setTokenCookie は認証トークンをHTTP Only Cookieとして設定する。
// JavaScriptから読み取れないため、XSSによるトークン窃取を防ぐ。
func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.TokenMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
