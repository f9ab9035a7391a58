// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/stuffscope/internal/model"
)

// WaitlistRepository はウェイトリストデータの永続化インターフェース。
type WaitlistRepository interface {
	// Insert はウェイトリスト登録を作成する。
	// ID・CreatedAt・UpdatedAtは永続化層が割り当て、entryに書き戻す。
	Insert(ctx context.Context, entry *model.WaitlistEntry) error

	// EmailExists は正規化済みメールアドレスの登録有無を返す。
	// 行が見つからないことはエラーではなくfalseとして扱う。
	EmailExists(ctx context.Context, email string) (bool, error)

	// ListStats は集計用の射影（variant, created_at）を新しい順で返す。
	ListStats(ctx context.Context) ([]model.WaitlistStat, error)

	// CheckAccess はストア到達性確認用の軽量な読み取りを1回発行する。
	// 失敗時は分類済みの*model.StoreErrorを返す。
	CheckAccess(ctx context.Context) error
}

// SurveyRepository はアンケート回答データの永続化インターフェース。
type SurveyRepository interface {
	// Insert はアンケート回答を作成する。
	// ID・CreatedAt・UpdatedAtは永続化層が割り当て、responseに書き戻す。
	// Answersは解釈せずJSONとしてそのまま保存する。
	Insert(ctx context.Context, response *model.SurveyResponse) error

	// ListStats は集計用の射影（variant, question_count, created_at）を新しい順で返す。
	ListStats(ctx context.Context) ([]model.SurveyStat, error)
}
