// Package model はドメインモデルを定義する。
package model

import "time"

// DefaultVariant はvariant未指定時に割り当てるコンテンツバリアント名。
const DefaultVariant = "default"

// WaitlistEntry はウェイトリスト登録1件を表す。
// emailはアプリケーション層で小文字化・トリム済みの正規化値を保持する。
// 一意性はDB制約ではなく登録時の事前チェックで担保するため、
// 同時登録の競合では重複行が生じうる（ドキュメント化済みの挙動）。
type WaitlistEntry struct {
	ID        string
	Name      string
	Email     string
	Variant   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WaitlistStat は集計用に取得するウェイトリスト行の射影。
type WaitlistStat struct {
	Variant   string    `json:"variant"`
	CreatedAt time.Time `json:"created_at"`
}
