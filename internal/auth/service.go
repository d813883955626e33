package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/articledesk/internal/model"
	"github.com/hitoshi/articledesk/internal/repository"
)

// AuthService はユーザー登録・ログイン・トークン検証のサービス。
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *TokenManager
	logger   *slog.Logger
}

// NewAuthService はAuthServiceの新しいインスタンスを生成する。
func NewAuthService(userRepo repository.UserRepository, tokens *TokenManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// AuthResult は登録・ログイン成功時の戻り値。
type AuthResult struct {
	User  *model.PublicUser
	Token string
}

// Register は新規ユーザーを登録し、認証トークンを発行する。
// メールアドレスが登録済みの場合は競合エラーを返す。
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, model.NewMissingFieldsError("name, email, password")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, model.NewInvalidRequestError()
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewEmailTakenError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	id, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}
	user.ID = id

	token, err := s.issueAndStore(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("ユーザーを登録しました",
		slog.Int64("user_id", id),
	)

	return &AuthResult{User: user.Public(), Token: token}, nil
}

// Login はメールアドレスとパスワードで認証し、トークンを発行する。
// 未登録メールとパスワード不一致は同一のエラーを返す（存在の探索防止）。
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, model.NewMissingFieldsError("email, password")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, model.NewInvalidCredentialsError()
	}

	token, err := s.issueAndStore(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("ユーザーがログインしました",
		slog.Int64("user_id", user.ID),
	)

	return &AuthResult{User: user.Public(), Token: token}, nil
}

// VerifyToken はトークンを検証し、対応するユーザーを返す。
// トークン不正またはユーザー不在の場合は認証エラーを返す。
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*model.PublicUser, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, model.NewUnauthorizedError()
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthorizedError()
	}

	return user.Public(), nil
}

// issueAndStore はトークンを発行し、ユーザー行に保存する。
func (s *AuthService) issueAndStore(ctx context.Context, userID int64) (string, error) {
	token, err := s.tokens.Issue(userID, time.Now())
	if err != nil {
		return "", err
	}
	if err := s.userRepo.UpdateToken(ctx, userID, token); err != nil {
		return "", fmt.Errorf("トークンの保存に失敗しました: %w", err)
	}
	return token, nil
}

// normalizeEmail はメールアドレスを小文字化・前後空白除去して正規化する。
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
