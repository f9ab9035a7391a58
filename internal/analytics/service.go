// Package analytics は保存済みデータの読み取り専用の集計を提供する。
// 集計結果は永続化されず、要求ごとにオンデマンドで計算する。
package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/stuffscope/internal/model"
	"github.com/hitoshi/stuffscope/internal/repository"
)

// Service は集計とストアのヘルスチェックを提供する。
type Service struct {
	waitlistRepo repository.WaitlistRepository
	surveyRepo   repository.SurveyRepository
	logger       *slog.Logger
	queryTimeout time.Duration
}

// NewService はServiceを生成する。
// queryTimeoutはストア呼び出し1回あたりの上限時間。0以下の場合は5秒を使用する。
func NewService(
	waitlistRepo repository.WaitlistRepository,
	surveyRepo repository.SurveyRepository,
	logger *slog.Logger,
	queryTimeout time.Duration,
) *Service {
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}
	return &Service{
		waitlistRepo: waitlistRepo,
		surveyRepo:   surveyRepo,
		logger:       logger,
		queryTimeout: queryTimeout,
	}
}

// CohortSummary はウェイトリストまたはアンケートの集計結果。
type CohortSummary struct {
	Total     int            `json:"total"`
	ByVariant map[string]int `json:"byVariant"`
	Latest    *time.Time     `json:"latest"`
}

// SurveySummary はアンケート側の集計結果。平均設問数を含む。
type SurveySummary struct {
	CohortSummary
	AvgQuestions float64 `json:"avgQuestions"`
}

// ConversionRate は単純比率のコンバージョン指標。
type ConversionRate struct {
	Overall string `json:"overall"`
}

// Summary は集計レスポンス全体。
type Summary struct {
	Waitlist       CohortSummary  `json:"waitlist"`
	Survey         SurveySummary  `json:"survey"`
	ConversionRate ConversionRate `json:"conversionRate"`
}

// GetSummary はウェイトリストとアンケートの全行を並行に取得し、集計統計を計算する。
// 2つの読み取りはトランザクション・スナップショットを共有しないため、
// 書き込みと競合した場合はわずかに不整合な時点を観測しうる。
// ダッシュボード向けのベストエフォート指標としてこれを許容する。
func (s *Service) GetSummary(ctx context.Context) (*Summary, error) {
	var (
		waitlistStats []model.WaitlistStat
		surveyStats   []model.SurveyStat
		waitlistErr   error
		surveyErr     error
	)

	done := make(chan struct{}, 2)

	go func() {
		defer func() { done <- struct{}{} }()
		queryCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
		waitlistStats, waitlistErr = s.waitlistRepo.ListStats(queryCtx)
	}()

	go func() {
		defer func() { done <- struct{}{} }()
		queryCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
		surveyStats, surveyErr = s.surveyRepo.ListStats(queryCtx)
	}()

	<-done
	<-done

	if waitlistErr != nil {
		return nil, waitlistErr
	}
	if surveyErr != nil {
		return nil, surveyErr
	}

	return buildSummary(waitlistStats, surveyStats), nil
}

// buildSummary は取得済みの射影から集計統計を計算する純粋関数。
func buildSummary(waitlist []model.WaitlistStat, survey []model.SurveyStat) *Summary {
	waitlistByVariant := make(map[string]int)
	for _, w := range waitlist {
		waitlistByVariant[w.Variant]++
	}

	surveyByVariant := make(map[string]int)
	questionTotal := 0
	for _, s := range survey {
		surveyByVariant[s.Variant]++
		questionTotal += s.QuestionCount
	}

	avgQuestions := 0.0
	if len(survey) > 0 {
		avgQuestions = float64(questionTotal) / float64(len(survey))
	}

	summary := &Summary{
		Waitlist: CohortSummary{
			Total:     len(waitlist),
			ByVariant: waitlistByVariant,
		},
		Survey: SurveySummary{
			CohortSummary: CohortSummary{
				Total:     len(survey),
				ByVariant: surveyByVariant,
			},
			AvgQuestions: avgQuestions,
		},
		ConversionRate: ConversionRate{
			Overall: overallConversionRate(len(waitlist), len(survey)),
		},
	}

	// 行は新しい順で取得されるため、先頭がlatestとなる
	if len(waitlist) > 0 {
		latest := waitlist[0].CreatedAt
		summary.Waitlist.Latest = &latest
	}
	if len(survey) > 0 {
		latest := survey[0].CreatedAt
		summary.Survey.Latest = &latest
	}

	return summary
}

// overallConversionRate は waitlist / (waitlist + survey) * 100 を
// 小数点以下2桁のパーセント文字列として返す。いずれかが0件の場合は "N/A"。
// 母集団同士の単純比率であり、ファネルとして正確な指標ではないが、
// この式を意図的に保存している。
func overallConversionRate(waitlistTotal, surveyTotal int) string {
	if waitlistTotal == 0 || surveyTotal == 0 {
		return "N/A"
	}
	rate := float64(waitlistTotal) / float64(waitlistTotal+surveyTotal) * 100
	return fmt.Sprintf("%.2f%%", rate)
}

// HealthReport はストア到達性の診断結果。
type HealthReport struct {
	OK       bool   `json:"ok"`
	Message  string `json:"message"`
	Category string `json:"category"` // none, schema, permission, timeout, unknown
}

// HealthCheck はストアに対する軽量な読み取りを1回発行し、
// 到達性と分類済みの診断を返す。エラーはスローせず、常にレポートで返す。
func (s *Service) HealthCheck(ctx context.Context) HealthReport {
	queryCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	err := s.waitlistRepo.CheckAccess(queryCtx)
	if err == nil {
		return HealthReport{
			OK:       true,
			Message:  "store connection successful",
			Category: "none",
		}
	}

	s.logger.Warn("store health check failed", slog.String("error", err.Error()))

	var storeErr *model.StoreError
	if errors.As(err, &storeErr) {
		return HealthReport{
			OK:       false,
			Message:  storeErr.Hint(),
			Category: healthCategory(storeErr.Kind),
		}
	}

	return HealthReport{
		OK:       false,
		Message:  err.Error(),
		Category: "unknown",
	}
}

// healthCategory はStoreErrorKindをヘルスレポートのカテゴリ名に変換する。
func healthCategory(kind model.StoreErrorKind) string {
	switch kind {
	case model.StoreErrSchemaMissing:
		return "schema"
	case model.StoreErrPermissionDenied:
		return "permission"
	case model.StoreErrTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// ListWaitlistStats はウェイトリストの射影一覧（新しい順）を返す。
// GET /api/analytics?type=waitlist 用。
func (s *Service) ListWaitlistStats(ctx context.Context) ([]model.WaitlistStat, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	return s.waitlistRepo.ListStats(queryCtx)
}

// ListSurveyStats はアンケート回答の射影一覧（新しい順）を返す。
// GET /api/analytics?type=survey 用。
func (s *Service) ListSurveyStats(ctx context.Context) ([]model.SurveyStat, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	return s.surveyRepo.ListStats(queryCtx)
}
