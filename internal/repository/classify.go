package repository

import (
	"context"
	"errors"

	"github.com/lib/pq"

	"github.com/hitoshi/stuffscope/internal/model"
)

// PostgreSQLのエラーコード
// https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgCodeUndefinedTable        = "42P01"
	pgCodeInsufficientPrivilege = "42501"
)

// classifyStoreError はバックエンドのエラーを分類済みの*model.StoreErrorに変換する。
// ホスティングされたDBの現実的な障害（テーブル未作成、権限不足、タイムアウト）を
// 区別し、それ以外は明示的にunknownとする。
func classifyStoreError(op string, err error) *model.StoreError {
	kind := model.StoreErrUnknown

	if errors.Is(err, context.DeadlineExceeded) {
		kind = model.StoreErrTimeout
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgCodeUndefinedTable:
			kind = model.StoreErrSchemaMissing
		case pgCodeInsufficientPrivilege:
			kind = model.StoreErrPermissionDenied
		}
	}

	return &model.StoreError{Kind: kind, Op: op, Err: err}
}
