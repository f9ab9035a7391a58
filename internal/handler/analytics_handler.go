package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/stuffscope/internal/analytics"
	"github.com/hitoshi/stuffscope/internal/model"
)

// AnalyticsServiceInterface は集計ハンドラーが必要とするサービスインターフェース。
type AnalyticsServiceInterface interface {
	// GetSummary はウェイトリストとアンケートの集計統計を返す。
	GetSummary(ctx context.Context) (*analytics.Summary, error)
	// HealthCheck はストアへの到達性と分類済み診断を返す。エラーは返さない。
	HealthCheck(ctx context.Context) analytics.HealthReport
	// ListWaitlistStats はウェイトリスト行の射影を新しい順で返す。
	ListWaitlistStats(ctx context.Context) ([]model.WaitlistStat, error)
	// ListSurveyStats はアンケート回答行の射影を新しい順で返す。
	ListSurveyStats(ctx context.Context) ([]model.SurveyStat, error)
}

// AnalyticsHandler は集計・ヘルスチェックのHTTPハンドラー。
type AnalyticsHandler struct {
	service AnalyticsServiceInterface
}

// NewAnalyticsHandler はAnalyticsHandlerを生成する。
func NewAnalyticsHandler(service AnalyticsServiceInterface) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// GetAnalytics はtypeクエリパラメータに応じた集計データを返す。
// GET /api/analytics?type=waitlist|survey|health|summary
// 未知のtypeはsummaryとして扱う。
func (h *AnalyticsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("type") {
	case "waitlist":
		stats, err := h.service.ListWaitlistStats(r.Context())
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeSuccessResponse(w, http.StatusOK, stats)

	case "survey":
		stats, err := h.service.ListSurveyStats(r.Context())
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeSuccessResponse(w, http.StatusOK, stats)

	case "health":
		writeSuccessResponse(w, http.StatusOK, h.service.HealthCheck(r.Context()))

	default:
		summary, err := h.service.GetSummary(r.Context())
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeSuccessResponse(w, http.StatusOK, summary)
	}
}

// GetHealth はストアの到達性レポートを返す。
// GET /health
// ストアが落ちていても200で応答し、本文のokフィールドで状態を示す。
func (h *AnalyticsHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeSuccessResponse(w, http.StatusOK, h.service.HealthCheck(r.Context()))
}
