package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// クライアントに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, store, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeMissingFields  = "MISSING_FIELDS"
	ErrCodeInvalidEmail   = "INVALID_EMAIL"
	ErrCodeMissingAnswers = "MISSING_ANSWERS"
	ErrCodeDuplicateEmail = "DUPLICATE_EMAIL"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeStoreFailed    = "STORE_FAILED"
)

// NewMissingFieldsError は必須フィールド欠落エラーを生成する。
func NewMissingFieldsError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingFields,
		Message:  "Name and email are required",
		Category: "validation",
		Action:   "Fill in both the name and email fields and resubmit.",
	}
}

// NewInvalidEmailError はメールアドレス形式エラーを生成する。
func NewInvalidEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmail,
		Message:  "Invalid email format",
		Category: "validation",
		Action:   "Enter an email address in the form local@domain.tld.",
	}
}

// NewMissingAnswersError は回答欠落エラーを生成する。
func NewMissingAnswersError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingAnswers,
		Message:  "Survey answers are required",
		Category: "validation",
		Action:   "Answer at least one question before submitting.",
	}
}

// NewDuplicateEmailError は登録済みメールアドレスエラーを生成する。
// 事前チェックに基づくベストエフォートの判定であり、一意性の保証ではない。
func NewDuplicateEmailError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  fmt.Sprintf("Email is already registered: %s", email),
		Category: "validation",
		Action:   "You are already on the waitlist. No further action is needed.",
	}
}

// NewInvalidRequestError はリクエストボディ解析エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "Failed to parse request body",
		Category: "validation",
		Action:   "Send a valid JSON request body.",
	}
}

// StoreErrorKind は永続化エラーの分類を表す。
// ホスティングされたDBの現実的な運用障害（テーブル未作成、権限不足、タイムアウト）を
// 区別し、デプロイ担当者が診断できるヒントを提供する。
type StoreErrorKind string

const (
	// StoreErrSchemaMissing はテーブルが存在しない場合を示す。
	StoreErrSchemaMissing StoreErrorKind = "schema_missing"
	// StoreErrPermissionDenied は権限不足を示す。
	StoreErrPermissionDenied StoreErrorKind = "permission_denied"
	// StoreErrTimeout は問い合わせのタイムアウトを示す。
	StoreErrTimeout StoreErrorKind = "timeout"
	// StoreErrUnknown は分類できない障害を示す。
	StoreErrUnknown StoreErrorKind = "unknown"
)

// StoreError は永続化層の障害を分類付きで表すタグ付きエラー。
// 呼び出し側はKindで網羅的に分岐でき、実行時型の探りを必要としない。
type StoreError struct {
	Kind StoreErrorKind
	Op   string // 失敗した操作名（insert_waitlist_entry等）
	Err  error  // 元のエラー
}

// Error はerrorインターフェースを実装する。
func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed (%s): %s", e.Op, e.Kind, e.Hint())
}

// Unwrap は元のエラーを返す。
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Hint は分類に応じた人間可読の診断ヒントを返す。
// デプロイ担当者に届く唯一の診断情報となるため、原因候補を明示する。
func (e *StoreError) Hint() string {
	switch e.Kind {
	case StoreErrSchemaMissing:
		return "table missing: run migrations against the configured database"
	case StoreErrPermissionDenied:
		return "permission denied: check the database role grants for the configured credentials"
	case StoreErrTimeout:
		return "query timed out: the database did not respond within the configured timeout"
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "unknown store failure"
	}
}
