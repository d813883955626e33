// Package ingest は外部ソースからの記事取り込み処理を提供する。
// スケジューラ、取り込みジョブ、NewsAPI・RSSソースを含む。
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/articledesk/internal/metrics"
	"github.com/hitoshi/articledesk/internal/model"
	"github.com/hitoshi/articledesk/internal/repository"
	"github.com/hitoshi/articledesk/internal/security"
)

// batchSize は1トランザクションで挿入する記事の最大件数。
const batchSize = 50

// ErrRunInProgress は取り込みの多重起動時に返されるエラー。
var ErrRunInProgress = errors.New("取り込み処理が既に実行中です")

// Source は記事の取得元を抽象化するインターフェース。
// NewsAPIとRSSフィードの両方がこれを実装する。
type Source interface {
	// Name はログ・メトリクス用のソース識別名を返す。
	Name() string
	// Fetch は記事を取得して返す。取得失敗はエラーを返す。
	Fetch(ctx context.Context) ([]model.Article, error)
}

// RunResult は1回の取り込み実行の集計結果。
type RunResult struct {
	Fetched  int // 全ソースから取得した記事数
	Inserted int // 新規保存した記事数
	Skipped  int // 重複として除外した記事数
	Failed   int // 取得に失敗したソース数
}

// Job は記事取り込みジョブ。
// 全ソースから記事を取得し、保存済みURLとの差分のみをバッチ挿入する。
type Job struct {
	articleRepo repository.ArticleRepository
	sources     []Source
	sanitizer   security.ContentSanitizerService
	collector   metrics.MetricsCollector
	logger      *slog.Logger

	// mu は多重起動防止のための排他ロック。
	mu sync.Mutex
}

// NewJob はJobの新しいインスタンスを生成する。
func NewJob(
	articleRepo repository.ArticleRepository,
	sources []Source,
	sanitizer security.ContentSanitizerService,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
) *Job {
	return &Job{
		articleRepo: articleRepo,
		sources:     sources,
		sanitizer:   sanitizer,
		collector:   collector,
		logger:      logger,
	}
}

// Run は取り込みを1回実行する。
// 既に実行中の場合はErrRunInProgressを返す。
// 一部ソースの取得失敗は実行全体を失敗させず、残りのソースを処理する。
// バッチ挿入の失敗は実行を中断し、それまでに挿入済みのバッチは保持される。
func (j *Job) Run(ctx context.Context) (*RunResult, error) {
	if !j.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer j.mu.Unlock()

	start := time.Now()
	result := &RunResult{}

	j.logger.Info("記事取り込みを開始します",
		slog.Int("source_count", len(j.sources)),
	)

	// 全ソースから記事を収集する
	var fetched []model.Article
	for _, source := range j.sources {
		articles, err := source.Fetch(ctx)
		if err != nil {
			result.Failed++
			j.collector.RecordIngestFailure(source.Name(), "fetch_error")
			j.logger.Error("ソースからの取得に失敗しました",
				slog.String("source", source.Name()),
				slog.String("error", err.Error()),
			)
			continue
		}
		j.collector.RecordIngestSuccess(source.Name())
		j.logger.Info("ソースから記事を取得しました",
			slog.String("source", source.Name()),
			slog.Int("article_count", len(articles)),
		)
		fetched = append(fetched, articles...)
	}
	result.Fetched = len(fetched)

	// 全ソースが失敗した場合は実行エラー
	if len(j.sources) > 0 && result.Failed == len(j.sources) {
		j.collector.RecordIngestLatency(time.Since(start))
		return result, fmt.Errorf("すべてのソースからの取得に失敗しました: %d件", result.Failed)
	}

	// 保存済みURL集合との差分を取り、新規記事のみを残す
	stored, err := j.articleRepo.ListURLs(ctx)
	if err != nil {
		return result, fmt.Errorf("保存済みURLの取得に失敗しました: %w", err)
	}

	fresh := j.selectFresh(fetched, stored)
	result.Skipped = result.Fetched - len(fresh)
	j.collector.RecordArticlesSkipped(result.Skipped)

	if len(fresh) == 0 {
		j.collector.RecordIngestLatency(time.Since(start))
		j.logger.Info("新規記事はありません",
			slog.Int("fetched", result.Fetched),
			slog.Int("skipped", result.Skipped),
		)
		return result, nil
	}

	// バッチ単位で挿入する。失敗したバッチ以降は中断し、挿入済み分は保持する。
	batches := splitBatches(fresh, batchSize)
	for i, batch := range batches {
		if err := j.articleRepo.InsertBatch(ctx, batch); err != nil {
			j.collector.RecordIngestLatency(time.Since(start))
			j.logger.Error("バッチ挿入に失敗しました",
				slog.Int("batch_index", i+1),
				slog.Int("batch_total", len(batches)),
				slog.Int("batch_size", len(batch)),
				slog.String("error", err.Error()),
			)
			return result, fmt.Errorf("バッチ %d/%d の挿入に失敗しました: %w", i+1, len(batches), err)
		}
		result.Inserted += len(batch)
		j.logger.Info("バッチを挿入しました",
			slog.Int("batch_index", i+1),
			slog.Int("batch_total", len(batches)),
			slog.Int("batch_size", len(batch)),
		)
	}

	j.collector.RecordArticlesInserted(result.Inserted)
	j.collector.RecordIngestLatency(time.Since(start))

	j.logger.Info("記事取り込みが完了しました",
		slog.Int("fetched", result.Fetched),
		slog.Int("inserted", result.Inserted),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed_sources", result.Failed),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return result, nil
}

// selectFresh は取得記事から保存済みURLと取得内重複を除外し、
// サニタイズ済みの新規記事のみを取得順を保って返す。
func (j *Job) selectFresh(fetched []model.Article, stored map[string]struct{}) []model.Article {
	seen := make(map[string]struct{}, len(fetched))
	var fresh []model.Article
	for _, a := range fetched {
		if a.URL == "" || a.Title == "" {
			continue
		}
		if _, ok := stored[a.URL]; ok {
			continue
		}
		if _, ok := seen[a.URL]; ok {
			continue
		}
		seen[a.URL] = struct{}{}
		fresh = append(fresh, j.sanitize(a))
	}
	return fresh
}

// sanitize は記事の各フィールドをサニタイズする。
func (j *Job) sanitize(a model.Article) model.Article {
	a.Title = j.sanitizer.StripTags(a.Title)
	a.Description = j.sanitizer.StripTags(a.Description)
	a.Author = j.sanitizer.StripTags(a.Author)
	a.Content = j.sanitizer.Sanitize(a.Content)
	return a
}

// splitBatches は記事リストを最大size件ずつのバッチに分割する。
func splitBatches(articles []model.Article, size int) [][]model.Article {
	var batches [][]model.Article
	for len(articles) > 0 {
		n := size
		if len(articles) < n {
			n = len(articles)
		}
		batches = append(batches, articles[:n])
		articles = articles[n:]
	}
	return batches
}
