package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Scheduler は取り込みジョブの定期実行を行う。
// 起動直後に1回実行し、以降は指定間隔のティッカーで実行する。
type Scheduler struct {
	job    *Job
	logger *slog.Logger
}

// NewScheduler はSchedulerの新しいインスタンスを生成する。
func NewScheduler(job *Job, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		job:    job,
		logger: logger,
	}
}

// Start は指定間隔で取り込みを繰り返す。
// 個々の実行エラーはログに記録し、スケジューラ自体は停止しない。
// コンテキストがキャンセルされるまで実行を継続する。
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("取り込みスケジューラを開始しました",
		slog.Duration("interval", interval),
	)

	// 起動直後に1回実行
	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("取り込みスケジューラを停止しました")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce は取り込みを1回実行し、エラーをログに記録する。
// 多重起動は異常ではないため警告レベルで記録する。
func (s *Scheduler) runOnce(ctx context.Context) {
	if _, err := s.job.Run(ctx); err != nil {
		if errors.Is(err, ErrRunInProgress) {
			s.logger.Warn("前回の取り込みが完了していないためスキップします")
			return
		}
		s.logger.Error("取り込みの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}
}
