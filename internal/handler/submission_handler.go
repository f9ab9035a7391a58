package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/stuffscope/internal/model"
	"github.com/hitoshi/stuffscope/internal/validation"
)

// SubmissionServiceInterface は送信ハンドラーが必要とするサービスインターフェース。
type SubmissionServiceInterface interface {
	// JoinWaitlist はウェイトリスト登録を処理する。
	JoinWaitlist(ctx context.Context, in validation.WaitlistInput) (*model.WaitlistEntry, error)
	// SubmitSurvey はアンケート回答を保存する。
	SubmitSurvey(ctx context.Context, in validation.SurveyInput) (*model.SurveyResponse, error)
}

// SubmissionHandler はフォーム送信のHTTPハンドラー。
type SubmissionHandler struct {
	service SubmissionServiceInterface
}

// NewSubmissionHandler はSubmissionHandlerを生成する。
func NewSubmissionHandler(service SubmissionServiceInterface) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

// waitlistResponse はウェイトリスト登録成功時のAPIレスポンス。
type waitlistResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Variant string `json:"variant"`
}

// surveyResponse はアンケート回答保存成功時のAPIレスポンス。
type surveyResponse struct {
	ID            string `json:"id"`
	SessionID     string `json:"sessionId"`
	Variant       string `json:"variant"`
	QuestionCount int    `json:"questionCount"`
}

// JoinWaitlist はウェイトリスト登録を処理する。
// POST /api/waitlist
func (h *SubmissionHandler) JoinWaitlist(w http.ResponseWriter, r *http.Request) {
	var req validation.WaitlistInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	entry, err := h.service.JoinWaitlist(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusCreated, waitlistResponse{
		ID:      entry.ID,
		Email:   entry.Email,
		Variant: entry.Variant,
	})
}

// SubmitSurvey はアンケート回答の保存を処理する。
// POST /api/survey
func (h *SubmissionHandler) SubmitSurvey(w http.ResponseWriter, r *http.Request) {
	var req validation.SurveyInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	resp, err := h.service.SubmitSurvey(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusCreated, surveyResponse{
		ID:            resp.ID,
		SessionID:     resp.SessionID,
		Variant:       resp.Variant,
		QuestionCount: resp.QuestionCount,
	})
}

// --- 共通ヘルパー関数 ---

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// successResponse は成功レスポンスのエンベロープ。
type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// writeSuccessResponse は成功エンベロープでレスポンスを書き込む。
func writeSuccessResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(successResponse{
		Success: true,
		Data:    data,
	})
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// 認識できないエラーは詳細をログのみに記録し、クライアントには一般的なメッセージを返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	var storeErr *model.StoreError
	if errors.As(err, &storeErr) {
		slog.Error("store error",
			slog.String("op", storeErr.Op),
			slog.String("kind", string(storeErr.Kind)),
			slog.String("error", storeErr.Error()),
		)
		writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
			Code:     model.ErrCodeStoreFailed,
			Message:  storeErr.Hint(),
			Category: "store",
			Action:   "Please wait a moment and try again.",
		})
		return
	}

	// 分類できないエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "Internal server error",
		Category: "system",
		Action:   "Please wait a moment and try again.",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeMissingFields, model.ErrCodeInvalidEmail, model.ErrCodeMissingAnswers, model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeDuplicateEmail:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
