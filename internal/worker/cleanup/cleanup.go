// Package cleanup は検索履歴の自動削除ジョブを提供する。
// 保持期間（デフォルト90日）を超過した検索履歴を日次バッチで削除する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/articledesk/internal/repository"
)

// CleanupJob は保持期間を超過した検索履歴の自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	historyRepo   repository.SearchHistoryRepository
	logger        *slog.Logger
	RetentionDays int // 検索履歴の保持日数（デフォルト: 90）
}

// NewCleanupJob は新しいCleanupJobを生成する。
func NewCleanupJob(historyRepo repository.SearchHistoryRepository, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		historyRepo:   historyRepo,
		logger:        logger,
		RetentionDays: 90,
	}
}

// Run は保持期間を超過した検索履歴を削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	cutoff := time.Now().AddDate(0, 0, -j.RetentionDays)
	deleted, err := j.historyRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.Error("検索履歴クリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.RetentionDays),
		)
		return fmt.Errorf("検索履歴クリーンアップの実行に失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("検索履歴クリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deleted),
		slog.Int("retention_days", j.RetentionDays),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// Start は24時間間隔でクリーンアップを繰り返す。
// 起動直後に1回実行し、コンテキストがキャンセルされるまで継続する。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("クリーンアップスケジューラを開始しました",
		slog.Duration("interval", interval),
		slog.Int("retention_days", j.RetentionDays),
	)

	if err := j.Run(ctx); err != nil {
		j.logger.Error("クリーンアップの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("クリーンアップスケジューラを停止しました")
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("クリーンアップの実行に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
