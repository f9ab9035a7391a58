package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/stuffscope/internal/metrics"
	"github.com/hitoshi/stuffscope/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	Metrics           metrics.Recorder

	// サービス
	SubmissionService SubmissionServiceInterface
	AnalyticsService  AnalyticsServiceInterface
	ContentLookup     ContentLookupFunc

	// Prometheusスクレイプ対象。nilの場合/metricsは公開しない。
	MetricsGatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → RateLimit(General)
//
// /healthと/metricsはレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Metrics))

	r.MethodNotAllowed(MethodNotAllowedHandler())

	submissionHandler := NewSubmissionHandler(deps.SubmissionService)
	analyticsHandler := NewAnalyticsHandler(deps.AnalyticsService)
	contentHandler := NewContentHandler(deps.ContentLookup)

	// --- レート制限の外のルート ---

	r.Get("/health", analyticsHandler.GetHealth)

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- APIルート ---
	// ミドルウェアスタック: RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// フォーム送信（送信専用レート制限を追加）
		r.With(deps.RateLimiter.SubmissionMiddleware()).Post("/api/waitlist", submissionHandler.JoinWaitlist)
		r.With(deps.RateLimiter.SubmissionMiddleware()).Post("/api/survey", submissionHandler.SubmitSurvey)

		// 集計・コンテンツ
		r.Get("/api/analytics", analyticsHandler.GetAnalytics)
		r.Get("/api/content", contentHandler.GetContent)
	})

	return r
}

// MethodNotAllowedHandler はサポート外メソッドに対する405レスポンスを返す。
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte(`{"error":"Method not allowed"}` + "\n"))
	}
}
