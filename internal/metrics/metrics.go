// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hitoshi/stuffscope/internal/model"
)

// Recorder はメトリクス記録のインターフェース。
// サービス層とミドルウェアから利用する。
type Recorder interface {
	RecordWaitlistSignup(variant string)
	RecordSurveySubmission(variant string)
	RecordDuplicateEmail()
	RecordStoreError(kind model.StoreErrorKind)
	RecordHTTPStatus(statusCode int)
	RecordRequestDuration(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	waitlistSignups *prometheus.CounterVec
	surveySubmits   *prometheus.CounterVec
	duplicateEmails prometheus.Counter
	storeErrors     *prometheus.CounterVec
	httpStatus      *prometheus.CounterVec
	requestDuration prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		waitlistSignups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stuffscope_waitlist_signup_total",
			Help: "ウェイトリスト登録成功の合計数（バリアント別）",
		}, []string{"variant"}),
		surveySubmits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stuffscope_survey_submission_total",
			Help: "アンケート回答成功の合計数（バリアント別）",
		}, []string{"variant"}),
		duplicateEmails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stuffscope_duplicate_email_total",
			Help: "重複メールアドレスで拒否された登録の合計数",
		}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stuffscope_store_error_total",
			Help: "永続化層エラーの合計数（分類別）",
		}, []string{"kind"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stuffscope_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stuffscope_request_duration_seconds",
			Help:    "HTTPリクエスト処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.waitlistSignups,
		c.surveySubmits,
		c.duplicateEmails,
		c.storeErrors,
		c.httpStatus,
		c.requestDuration,
	)

	return c
}

// RecordWaitlistSignup はウェイトリスト登録成功を記録する。
func (c *Collector) RecordWaitlistSignup(variant string) {
	c.waitlistSignups.WithLabelValues(variant).Inc()
}

// RecordSurveySubmission はアンケート回答成功を記録する。
func (c *Collector) RecordSurveySubmission(variant string) {
	c.surveySubmits.WithLabelValues(variant).Inc()
}

// RecordDuplicateEmail は重複メールアドレスによる拒否を記録する。
func (c *Collector) RecordDuplicateEmail() {
	c.duplicateEmails.Inc()
}

// RecordStoreError は永続化層エラーを分類別に記録する。
func (c *Collector) RecordStoreError(kind model.StoreErrorKind) {
	c.storeErrors.WithLabelValues(string(kind)).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はリクエスト処理時間を記録する。
func (c *Collector) RecordRequestDuration(duration time.Duration) {
	c.requestDuration.Observe(duration.Seconds())
}

// compile-time interface check
var _ Recorder = (*Collector)(nil)

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
// ルーターの/metricsパスにマウントして使用する。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
