// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層および通知配信から利用する。
type MetricsCollector interface {
	RecordArticleCreated()
	RecordArticleApproved()
	RecordArticleRejected()
	RecordEmailSent()
	RecordEmailFailed()
	RecordSocialPost(success bool)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	articleCreated  prometheus.Counter
	articleApproved prometheus.Counter
	articleRejected prometheus.Counter
	emailSent       prometheus.Counter
	emailFailed     prometheus.Counter
	socialPost      *prometheus.CounterVec
	httpStatus      *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		articleCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_article_created_total",
			Help: "作成された記事の合計数",
		}),
		articleApproved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_article_approved_total",
			Help: "承認された記事の合計数",
		}),
		articleRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_article_rejected_total",
			Help: "却下された記事の合計数",
		}),
		emailSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_notification_email_sent_total",
			Help: "送信に成功した通知メールの合計数",
		}),
		emailFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsdesk_notification_email_failed_total",
			Help: "送信に失敗した通知メールの合計数",
		}),
		socialPost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdesk_social_post_total",
			Help: "ソーシャル投稿の結果別の合計数",
		}, []string{"result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdesk_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.articleCreated,
		c.articleApproved,
		c.articleRejected,
		c.emailSent,
		c.emailFailed,
		c.socialPost,
		c.httpStatus,
	)

	return c
}

// RecordArticleCreated は記事の作成を記録する。
func (c *Collector) RecordArticleCreated() {
	c.articleCreated.Inc()
}

// RecordArticleApproved は記事の承認を記録する。
func (c *Collector) RecordArticleApproved() {
	c.articleApproved.Inc()
}

// RecordArticleRejected は記事の却下を記録する。
func (c *Collector) RecordArticleRejected() {
	c.articleRejected.Inc()
}

// RecordEmailSent は通知メールの送信成功を記録する。
func (c *Collector) RecordEmailSent() {
	c.emailSent.Inc()
}

// RecordEmailFailed は通知メールの送信失敗を記録する。
func (c *Collector) RecordEmailFailed() {
	c.emailFailed.Inc()
}

// RecordSocialPost はソーシャル投稿の結果を記録する。
func (c *Collector) RecordSocialPost(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	c.socialPost.WithLabelValues(result).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
