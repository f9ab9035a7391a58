package analytics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hitoshi/stuffscope/internal/model"
)

// --- モック定義 ---

type mockWaitlistRepo struct {
	listStatsFn   func(ctx context.Context) ([]model.WaitlistStat, error)
	checkAccessFn func(ctx context.Context) error
}

func (m *mockWaitlistRepo) Insert(ctx context.Context, entry *model.WaitlistEntry) error {
	return nil
}

func (m *mockWaitlistRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	return false, nil
}

func (m *mockWaitlistRepo) ListStats(ctx context.Context) ([]model.WaitlistStat, error) {
	if m.listStatsFn != nil {
		return m.listStatsFn(ctx)
	}
	return nil, nil
}

func (m *mockWaitlistRepo) CheckAccess(ctx context.Context) error {
	if m.checkAccessFn != nil {
		return m.checkAccessFn(ctx)
	}
	return nil
}

type mockSurveyRepo struct {
	listStatsFn func(ctx context.Context) ([]model.SurveyStat, error)
}

func (m *mockSurveyRepo) Insert(ctx context.Context, response *model.SurveyResponse) error {
	return nil
}

func (m *mockSurveyRepo) ListStats(ctx context.Context) ([]model.SurveyStat, error) {
	if m.listStatsFn != nil {
		return m.listStatsFn(ctx)
	}
	return nil, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestService(wl *mockWaitlistRepo, sv *mockSurveyRepo) *Service {
	return NewService(wl, sv, testLogger(), time.Second)
}

// --- GetSummary テスト ---

// バリアント別の件数と合計が正しく集計されること
func TestGetSummary_ByVariantCounts(t *testing.T) {
	now := time.Now().UTC()
	wl := &mockWaitlistRepo{
		listStatsFn: func(ctx context.Context) ([]model.WaitlistStat, error) {
			return []model.WaitlistStat{
				{Variant: "a", CreatedAt: now},
				{Variant: "a", CreatedAt: now.Add(-time.Hour)},
				{Variant: "b", CreatedAt: now.Add(-2 * time.Hour)},
			}, nil
		},
	}
	svc := newTestService(wl, &mockSurveyRepo{})

	summary, err := svc.GetSummary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Waitlist.Total != 3 {
		t.Errorf("waitlist total = %d, want 3", summary.Waitlist.Total)
	}
	if summary.Waitlist.ByVariant["a"] != 2 {
		t.Errorf("byVariant[a] = %d, want 2", summary.Waitlist.ByVariant["a"])
	}
	if summary.Waitlist.ByVariant["b"] != 1 {
		t.Errorf("byVariant[b] = %d, want 1", summary.Waitlist.ByVariant["b"])
	}
	if summary.Waitlist.Latest == nil || !summary.Waitlist.Latest.Equal(now) {
		t.Errorf("latest = %v, want %v", summary.Waitlist.Latest, now)
	}
}

// 0行のときavgQuestions=0、両方0件でconversionRate="N/A"となること
func TestGetSummary_EmptyStore(t *testing.T) {
	svc := newTestService(&mockWaitlistRepo{}, &mockSurveyRepo{})

	summary, err := svc.GetSummary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Survey.AvgQuestions != 0 {
		t.Errorf("avgQuestions = %v, want 0", summary.Survey.AvgQuestions)
	}
	if summary.ConversionRate.Overall != "N/A" {
		t.Errorf("conversionRate = %q, want N/A", summary.ConversionRate.Overall)
	}
	if summary.Waitlist.Latest != nil {
		t.Errorf("waitlist latest = %v, want nil", summary.Waitlist.Latest)
	}
	if summary.Survey.Latest != nil {
		t.Errorf("survey latest = %v, want nil", summary.Survey.Latest)
	}
}

// waitlist=3, survey=1 で conversionRate="75.00%" となること
func TestGetSummary_ConversionRate(t *testing.T) {
	now := time.Now().UTC()
	wl := &mockWaitlistRepo{
		listStatsFn: func(ctx context.Context) ([]model.WaitlistStat, error) {
			return []model.WaitlistStat{
				{Variant: "default", CreatedAt: now},
				{Variant: "default", CreatedAt: now},
				{Variant: "v1", CreatedAt: now},
			}, nil
		},
	}
	sv := &mockSurveyRepo{
		listStatsFn: func(ctx context.Context) ([]model.SurveyStat, error) {
			return []model.SurveyStat{
				{Variant: "default", QuestionCount: 4, CreatedAt: now},
			}, nil
		},
	}
	svc := newTestService(wl, sv)

	summary, err := svc.GetSummary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.ConversionRate.Overall != "75.00%" {
		t.Errorf("conversionRate = %q, want 75.00%%", summary.ConversionRate.Overall)
	}
	if summary.Survey.AvgQuestions != 4 {
		t.Errorf("avgQuestions = %v, want 4", summary.Survey.AvgQuestions)
	}
}

// 片方が0件のときconversionRate="N/A"となること（ゼロ除算回避）
func TestGetSummary_ConversionRateNAWhenEitherZero(t *testing.T) {
	now := time.Now().UTC()
	wl := &mockWaitlistRepo{
		listStatsFn: func(ctx context.Context) ([]model.WaitlistStat, error) {
			return []model.WaitlistStat{{Variant: "default", CreatedAt: now}}, nil
		},
	}
	svc := newTestService(wl, &mockSurveyRepo{})

	summary, err := svc.GetSummary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.ConversionRate.Overall != "N/A" {
		t.Errorf("conversionRate = %q, want N/A", summary.ConversionRate.Overall)
	}
}

// 平均設問数が算術平均で計算されること
func TestGetSummary_AvgQuestions(t *testing.T) {
	now := time.Now().UTC()
	sv := &mockSurveyRepo{
		listStatsFn: func(ctx context.Context) ([]model.SurveyStat, error) {
			return []model.SurveyStat{
				{Variant: "default", QuestionCount: 3, CreatedAt: now},
				{Variant: "default", QuestionCount: 6, CreatedAt: now},
			}, nil
		},
	}
	svc := newTestService(&mockWaitlistRepo{}, sv)

	summary, err := svc.GetSummary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Survey.AvgQuestions != 4.5 {
		t.Errorf("avgQuestions = %v, want 4.5", summary.Survey.AvgQuestions)
	}
}

// 2つの読み取りが並行に発行されること
func TestGetSummary_ReadsConcurrently(t *testing.T) {
	var inFlight atomic.Int32
	var sawBoth atomic.Bool
	barrier := make(chan struct{})

	wl := &mockWaitlistRepo{
		listStatsFn: func(ctx context.Context) ([]model.WaitlistStat, error) {
			if inFlight.Add(1) == 2 {
				sawBoth.Store(true)
				close(barrier)
			}
			<-barrier
			return nil, nil
		},
	}
	sv := &mockSurveyRepo{
		listStatsFn: func(ctx context.Context) ([]model.SurveyStat, error) {
			if inFlight.Add(1) == 2 {
				sawBoth.Store(true)
				close(barrier)
			}
			<-barrier
			return nil, nil
		},
	}
	svc := newTestService(wl, sv)

	if _, err := svc.GetSummary(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sawBoth.Load() {
		t.Error("both reads should be in flight at the same time")
	}
}

// 片方の読み取りが失敗したらエラーが返ること
func TestGetSummary_PropagatesReadError(t *testing.T) {
	wantErr := &model.StoreError{Kind: model.StoreErrPermissionDenied, Op: "list_survey_responses"}
	sv := &mockSurveyRepo{
		listStatsFn: func(ctx context.Context) ([]model.SurveyStat, error) {
			return nil, wantErr
		},
	}
	svc := newTestService(&mockWaitlistRepo{}, sv)

	_, err := svc.GetSummary(context.Background())
	var storeErr *model.StoreError
	if !errors.As(err, &storeErr) || storeErr.Kind != model.StoreErrPermissionDenied {
		t.Fatalf("error = %v, want StoreError(permission_denied)", err)
	}
}

// --- HealthCheck テスト ---

// ストア到達時にok=trueのレポートが返ること
func TestHealthCheck_OK(t *testing.T) {
	svc := newTestService(&mockWaitlistRepo{}, &mockSurveyRepo{})

	report := svc.HealthCheck(context.Background())
	if !report.OK {
		t.Error("OK = false, want true")
	}
	if report.Category != "none" {
		t.Errorf("Category = %q, want none", report.Category)
	}
}

// 障害分類ごとにカテゴリが出し分けられること
func TestHealthCheck_CategorizesFailures(t *testing.T) {
	tests := []struct {
		kind model.StoreErrorKind
		want string
	}{
		{model.StoreErrSchemaMissing, "schema"},
		{model.StoreErrPermissionDenied, "permission"},
		{model.StoreErrTimeout, "timeout"},
		{model.StoreErrUnknown, "unknown"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			wl := &mockWaitlistRepo{
				checkAccessFn: func(ctx context.Context) error {
					return &model.StoreError{Kind: tt.kind, Op: "check_access"}
				},
			}
			svc := newTestService(wl, &mockSurveyRepo{})

			report := svc.HealthCheck(context.Background())
			if report.OK {
				t.Error("OK = true, want false")
			}
			if report.Category != tt.want {
				t.Errorf("Category = %q, want %q", report.Category, tt.want)
			}
		})
	}
}

// 未分類のエラーでもスローせずunknownカテゴリで返ること
func TestHealthCheck_PlainErrorIsUnknown(t *testing.T) {
	wl := &mockWaitlistRepo{
		checkAccessFn: func(ctx context.Context) error {
			return errors.New("connection refused")
		},
	}
	svc := newTestService(wl, &mockSurveyRepo{})

	report := svc.HealthCheck(context.Background())
	if report.OK {
		t.Error("OK = true, want false")
	}
	if report.Category != "unknown" {
		t.Errorf("Category = %q, want unknown", report.Category)
	}
}
