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
// サービス層、YouTubeローダー、永続化境界、HTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordCartMutation(op string)
	RecordCheckout(state string)
	RecordOrderPlaced()
	RecordYouTubeFetch(kind, result string, d time.Duration)
	RecordStorageFallback(key, reason string)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	cartMutations    *prometheus.CounterVec
	checkouts        *prometheus.CounterVec
	ordersPlaced     prometheus.Counter
	youtubeFetches   *prometheus.CounterVec
	youtubeLatency   *prometheus.HistogramVec
	storageFallbacks *prometheus.CounterVec
	httpStatus       *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "merchshop_cart_mutations_total",
			Help: "操作種別ごとのカート変更数",
		}, []string{"op"}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "merchshop_checkout_total",
			Help: "ガード状態ごとのチェックアウト表示数",
		}, []string{"state"}),
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "merchshop_orders_placed_total",
			Help: "受け付けた注文の合計数",
		}),
		youtubeFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "merchshop_youtube_fetch_total",
			Help: "種別・結果ごとのYouTubeデータ取得数",
		}, []string{"kind", "result"}),
		youtubeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "merchshop_youtube_fetch_latency_seconds",
			Help:    "YouTubeデータ取得のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		storageFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "merchshop_storage_fallback_total",
			Help: "保存値を読み込めず既定値を使用した回数",
		}, []string{"key", "reason"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "merchshop_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.cartMutations,
		c.checkouts,
		c.ordersPlaced,
		c.youtubeFetches,
		c.youtubeLatency,
		c.storageFallbacks,
		c.httpStatus,
	)

	return c
}

// RecordCartMutation はカート変更を記録する。
func (c *Collector) RecordCartMutation(op string) {
	c.cartMutations.WithLabelValues(op).Inc()
}

// RecordCheckout はチェックアウトのガード状態を記録する。
func (c *Collector) RecordCheckout(state string) {
	c.checkouts.WithLabelValues(state).Inc()
}

// RecordOrderPlaced は注文受付を記録する。
func (c *Collector) RecordOrderPlaced() {
	c.ordersPlaced.Inc()
}

// RecordYouTubeFetch はYouTubeデータ取得の結果とレイテンシを記録する。
func (c *Collector) RecordYouTubeFetch(kind, result string, d time.Duration) {
	c.youtubeFetches.WithLabelValues(kind, result).Inc()
	c.youtubeLatency.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordStorageFallback は既定値へのフォールバックを記録する。
func (c *Collector) RecordStorageFallback(key, reason string) {
	c.storageFallbacks.WithLabelValues(key, reason).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
