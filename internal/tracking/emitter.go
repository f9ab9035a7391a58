// Package tracking は名前付きイベントを外部コレクタへ送出する機能を提供する。
// 送出はファイアアンドフォーゲットであり、失敗してもフォーム送信の成否には影響しない。
package tracking

// Event はコレクタへ送出する名前付きイベントを表す。
type Event struct {
	Name     string // イベント名（waitlist_signup等）
	Category string // カテゴリ（engagement, conversion等）
	Label    string // 任意のラベル
	Value    int    // 任意の数値
	Variant  string // コンテンツバリアント（A/Bコホート分析用）
}

// Emitter はイベント送出のインターフェース。
// Emitは非ブロッキングで、戻り値を持たない。リトライは行わない。
type Emitter interface {
	// Emit はイベントをベストエフォートで送出する。
	Emit(event Event)
	// Close は送出リソースを解放する。以降のEmitは無視される。
	Close()
}

// NopEmitter は何も送出しないEmitter。コレクタ未設定時に使用する。
type NopEmitter struct{}

// NewNopEmitter は何も送出しないEmitterを生成する。
func NewNopEmitter() NopEmitter {
	return NopEmitter{}
}

// Emit は何もしない。
func (NopEmitter) Emit(Event) {}

// Close は何もしない。
func (NopEmitter) Close() {}

// compile-time interface check
var _ Emitter = NopEmitter{}
