// Package preference はユーザー設定と検索履歴の管理機能を提供する。
package preference

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/articledesk/internal/model"
	"github.com/hitoshi/articledesk/internal/repository"
)

const (
	// defaultPageSize は設定未登録時の既定ページサイズ。
	defaultPageSize = 10
	// maxPageSize は設定可能なページサイズの上限。
	maxPageSize = 100
	// historyLimit は検索履歴取得の最大件数。
	historyLimit = 50
)

// PreferenceService はユーザー設定と検索履歴のサービス。
type PreferenceService struct {
	prefRepo    repository.PreferenceRepository
	historyRepo repository.SearchHistoryRepository
	logger      *slog.Logger
}

// NewPreferenceService はPreferenceServiceの新しいインスタンスを生成する。
func NewPreferenceService(
	prefRepo repository.PreferenceRepository,
	historyRepo repository.SearchHistoryRepository,
	logger *slog.Logger,
) *PreferenceService {
	return &PreferenceService{
		prefRepo:    prefRepo,
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// Get はユーザー設定を取得する。未登録の場合は既定値を返す。
func (s *PreferenceService) Get(ctx context.Context, userID int64) (*model.Preference, error) {
	pref, err := s.prefRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pref == nil {
		return &model.Preference{
			UserID:   userID,
			PageSize: defaultPageSize,
		}, nil
	}
	return pref, nil
}

// Update はユーザー設定を登録・更新する。
// ページサイズは1〜maxPageSizeの範囲のみ許可する。
func (s *PreferenceService) Update(ctx context.Context, pref *model.Preference) (*model.Preference, error) {
	if pref.PageSize < 1 || pref.PageSize > maxPageSize {
		return nil, model.NewInvalidRequestError()
	}
	pref.PreferredSources = strings.TrimSpace(pref.PreferredSources)
	pref.Language = strings.TrimSpace(pref.Language)

	if err := s.prefRepo.Upsert(ctx, pref); err != nil {
		return nil, err
	}

	s.logger.Info("ユーザー設定を更新しました",
		slog.Int64("user_id", pref.UserID),
	)

	return s.Get(ctx, pref.UserID)
}

// RecordSearch は検索キーワードを履歴に記録する。
// 空キーワードは記録しない。記録失敗は検索自体を失敗させないため、
// エラーはログのみで握りつぶす。
func (s *PreferenceService) RecordSearch(ctx context.Context, userID int64, query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}
	if err := s.historyRepo.Add(ctx, userID, query); err != nil {
		s.logger.Warn("検索履歴の記録に失敗しました",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

// History はユーザーの検索履歴を新しい順に返す。
func (s *PreferenceService) History(ctx context.Context, userID int64) ([]model.SearchEntry, error) {
	entries, err := s.historyRepo.ListByUser(ctx, userID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("検索履歴の取得に失敗しました: %w", err)
	}
	return entries, nil
}

// ClearHistory はユーザーの全検索履歴を削除する。
func (s *PreferenceService) ClearHistory(ctx context.Context, userID int64) error {
	if err := s.historyRepo.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("検索履歴の削除に失敗しました: %w", err)
	}

	s.logger.Info("検索履歴を削除しました",
		slog.Int64("user_id", userID),
	)
	return nil
}
