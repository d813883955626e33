// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ワーカーやハンドラー層から利用する。
type MetricsCollector interface {
	RecordIngestSuccess(source string)
	RecordIngestFailure(source string, reason string)
	RecordIngestLatency(duration time.Duration)
	RecordArticlesInserted(count int)
	RecordArticlesSkipped(count int)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	ingestSuccess    *prometheus.CounterVec
	ingestFail       *prometheus.CounterVec
	ingestLatency    prometheus.Histogram
	articlesInserted prometheus.Counter
	articlesSkipped  prometheus.Counter
	httpStatus       *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ingestSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "articledesk_ingest_success_total",
			Help: "記事取り込み成功の合計数（ソース別）",
		}, []string{"source"}),
		ingestFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "articledesk_ingest_fail_total",
			Help: "記事取り込み失敗の合計数（ソース別）",
		}, []string{"source"}),
		ingestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "articledesk_ingest_latency_seconds",
			Help:    "取り込み実行のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		articlesInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "articledesk_articles_inserted_total",
			Help: "保存された新規記事の合計数",
		}),
		articlesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "articledesk_articles_skipped_total",
			Help: "重複として除外された記事の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "articledesk_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.ingestSuccess,
		c.ingestFail,
		c.ingestLatency,
		c.articlesInserted,
		c.articlesSkipped,
		c.httpStatus,
	)

	return c
}

// RecordIngestSuccess は取り込み成功を記録する。
func (c *Collector) RecordIngestSuccess(source string) {
	c.ingestSuccess.WithLabelValues(source).Inc()
}

// RecordIngestFailure は取り込み失敗を記録する。
func (c *Collector) RecordIngestFailure(source string, reason string) {
	c.ingestFail.WithLabelValues(source).Inc()
}

// RecordIngestLatency は取り込み実行のレイテンシを記録する。
func (c *Collector) RecordIngestLatency(duration time.Duration) {
	c.ingestLatency.Observe(duration.Seconds())
}

// RecordArticlesInserted は保存された新規記事数を記録する。
func (c *Collector) RecordArticlesInserted(count int) {
	c.articlesInserted.Add(float64(count))
}

// RecordArticlesSkipped は重複除外された記事数を記録する。
func (c *Collector) RecordArticlesSkipped(count int) {
	c.articlesSkipped.Add(float64(count))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
