// Package submission はウェイトリスト登録とアンケート回答の書き込みフローを提供する。
// 検証 → （ウェイトリストのみ重複チェック）→ 永続化 の直列実行で、
// どのステップで失敗してもリトライせず即座にエラーを返す。
package submission

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/stuffscope/internal/metrics"
	"github.com/hitoshi/stuffscope/internal/model"
	"github.com/hitoshi/stuffscope/internal/repository"
	"github.com/hitoshi/stuffscope/internal/tracking"
	"github.com/hitoshi/stuffscope/internal/validation"
)

// sessionIDAlphabet はセッションIDのランダムサフィックスに使う文字集合（base36）。
const sessionIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// sessionIDSuffixLen はランダムサフィックスの長さ。
const sessionIDSuffixLen = 9

// Service はウェイトリスト登録とアンケート回答のオーケストレーションを行う。
type Service struct {
	waitlistRepo repository.WaitlistRepository
	surveyRepo   repository.SurveyRepository
	logger       *slog.Logger
	metrics      metrics.Recorder
	emitter      tracking.Emitter
	queryTimeout time.Duration
}

// NewService はServiceを生成する。
// queryTimeoutはストア呼び出し1回あたりの上限時間。0以下の場合は5秒を使用する。
func NewService(
	waitlistRepo repository.WaitlistRepository,
	surveyRepo repository.SurveyRepository,
	logger *slog.Logger,
	rec metrics.Recorder,
	emitter tracking.Emitter,
	queryTimeout time.Duration,
) *Service {
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}
	return &Service{
		waitlistRepo: waitlistRepo,
		surveyRepo:   surveyRepo,
		logger:       logger,
		metrics:      rec,
		emitter:      emitter,
		queryTimeout: queryTimeout,
	}
}

// JoinWaitlist はウェイトリスト登録フローを実行する。
//  1. 入力検証・正規化
//  2. 登録済みメールアドレスの事前チェック（ベストエフォート。
//     同時送信の競合では両方成功しうるが、これは仕様として許容された挙動）
//  3. 挿入
//
// 成功時はIDとタイムスタンプが設定されたエントリを返す。
func (s *Service) JoinWaitlist(ctx context.Context, in validation.WaitlistInput) (*model.WaitlistEntry, error) {
	normalized, err := validation.Waitlist(in)
	if err != nil {
		return nil, err
	}

	checkCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	exists, err := s.waitlistRepo.EmailExists(checkCtx, normalized.Email)
	cancel()
	if err != nil {
		s.recordStoreError(err)
		return nil, err
	}
	if exists {
		s.metrics.RecordDuplicateEmail()
		return nil, model.NewDuplicateEmailError(normalized.Email)
	}

	entry := &model.WaitlistEntry{
		Name:    normalized.Name,
		Email:   normalized.Email,
		Variant: normalized.Variant,
	}

	insertCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	err = s.waitlistRepo.Insert(insertCtx, entry)
	cancel()
	if err != nil {
		s.recordStoreError(err)
		return nil, err
	}

	s.logger.Info("waitlist entry created",
		slog.String("id", entry.ID),
		slog.String("variant", entry.Variant),
	)
	s.metrics.RecordWaitlistSignup(entry.Variant)
	s.emitter.Emit(tracking.Event{
		Name:     "waitlist_signup",
		Category: "conversion",
		Variant:  entry.Variant,
	})

	return entry, nil
}

// SubmitSurvey はアンケート回答フローを実行する。
//  1. 入力検証
//  2. セッションIDの採番（衝突時のリトライは行わない。衝突確率は無視できるものとして扱う）
//  3. 挿入
func (s *Service) SubmitSurvey(ctx context.Context, in validation.SurveyInput) (*model.SurveyResponse, error) {
	normalized, err := validation.Survey(in)
	if err != nil {
		return nil, err
	}

	response := &model.SurveyResponse{
		SessionID:     NewSessionID(),
		Variant:       normalized.Variant,
		Answers:       normalized.Answers,
		QuestionCount: normalized.QuestionCount,
	}

	insertCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	err = s.surveyRepo.Insert(insertCtx, response)
	cancel()
	if err != nil {
		s.recordStoreError(err)
		return nil, err
	}

	s.logger.Info("survey response recorded",
		slog.String("id", response.ID),
		slog.String("session_id", response.SessionID),
		slog.String("variant", response.Variant),
		slog.Int("question_count", response.QuestionCount),
	)
	s.metrics.RecordSurveySubmission(response.Variant)
	s.emitter.Emit(tracking.Event{
		Name:     "survey_complete",
		Category: "conversion",
		Value:    response.QuestionCount,
		Variant:  response.Variant,
	})

	return response, nil
}

// recordStoreError は永続化エラーを分類別にメトリクスへ記録する。
func (s *Service) recordStoreError(err error) {
	var storeErr *model.StoreError
	if errors.As(err, &storeErr) {
		s.metrics.RecordStoreError(storeErr.Kind)
		return
	}
	s.metrics.RecordStoreError(model.StoreErrUnknown)
}

// NewSessionID は "survey_<エポックミリ秒>_<base36ランダム9文字>" 形式の
// 人間が照合しやすい相関キーを生成する。セキュリティトークンではないため、
// 剰余による文字分布の偏りは許容する。
func NewSessionID() string {
	buf := make([]byte, sessionIDSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		// crypto/randの失敗は実行環境の異常。ナノ秒タイムスタンプで代替する。
		return fmt.Sprintf("survey_%d_%09d", time.Now().UnixMilli(), time.Now().UnixNano()%1e9)
	}

	suffix := make([]byte, sessionIDSuffixLen)
	for i, b := range buf {
		suffix[i] = sessionIDAlphabet[int(b)%len(sessionIDAlphabet)]
	}

	return fmt.Sprintf("survey_%d_%s", time.Now().UnixMilli(), suffix)
}
