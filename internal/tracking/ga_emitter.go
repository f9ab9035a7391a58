package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const (
	// defaultEndpoint はGA4 Measurement Protocolの収集エンドポイント。
	defaultEndpoint = "https://www.google-analytics.com/mp/collect"
	// defaultQueueSize は送出待ちイベントのバッファ長。
	// バッファ満杯時の追加イベントは破棄する（送出はベストエフォート）。
	defaultQueueSize = 256
	// sendTimeout は1イベント送出あたりのHTTPタイムアウト。
	sendTimeout = 5 * time.Second
)

// GAEmitter はGA4 Measurement Protocolへイベントを送出するEmitter。
// Emitはバッファ付きチャネルへの投入のみを行い、実際のHTTP送出は
// バックグラウンドのゴルーチンが担う。Closeで購読を解除し、ゴルーチンを停止する。
type GAEmitter struct {
	httpClient    *http.Client
	logger        *slog.Logger
	endpoint      string // テスト用にエンドポイントを差し替え可能
	measurementID string
	apiSecret     string
	clientID      string

	queue  chan Event
	done   chan struct{}
	closed sync.Once
	wg     sync.WaitGroup
}

// NewGAEmitter はGAEmitterを生成し、バックグラウンドの送出ゴルーチンを開始する。
func NewGAEmitter(httpClient *http.Client, logger *slog.Logger, measurementID, apiSecret, clientID string) *GAEmitter {
	e := &GAEmitter{
		httpClient:    httpClient,
		logger:        logger,
		endpoint:      defaultEndpoint,
		measurementID: measurementID,
		apiSecret:     apiSecret,
		clientID:      clientID,
		queue:         make(chan Event, defaultQueueSize),
		done:          make(chan struct{}),
	}

	e.wg.Add(1)
	go e.loop()

	return e
}

// Emit はイベントをキューへ投入する。キューが満杯の場合は破棄する。
// コレクタ到達不能などの失敗がフォーム送信へ波及しないよう、ブロックは一切しない。
func (e *GAEmitter) Emit(event Event) {
	select {
	case <-e.done:
		// Close済み。以降のイベントは無視する。
	case e.queue <- event:
	default:
		e.logger.Warn("tracking queue full, event dropped",
			slog.String("event", event.Name),
		)
	}
}

// Close は送出ゴルーチンを停止する。キューに残ったイベントは破棄される。
func (e *GAEmitter) Close() {
	e.closed.Do(func() {
		close(e.done)
		e.wg.Wait()
	})
}

// loop はキューからイベントを取り出して逐次送出する。
func (e *GAEmitter) loop() {
	defer e.wg.Done()

	for {
		select {
		case <-e.done:
			return
		case event := <-e.queue:
			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			if err := e.send(ctx, event); err != nil {
				// リトライはしない。ログのみ残して次のイベントへ進む。
				e.logger.Warn("failed to emit tracking event",
					slog.String("event", event.Name),
					slog.String("error", err.Error()),
				)
			}
			cancel()
		}
	}
}

// collectPayload はMeasurement Protocolのリクエストボディ。
type collectPayload struct {
	ClientID string         `json:"client_id"`
	Events   []collectEvent `json:"events"`
}

type collectEvent struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

// send は1イベントをコレクタへ送出する。
func (e *GAEmitter) send(ctx context.Context, event Event) error {
	params := map[string]any{
		"event_category": event.Category,
	}
	if event.Label != "" {
		params["event_label"] = event.Label
	}
	if event.Value != 0 {
		params["value"] = event.Value
	}
	if event.Variant != "" {
		params["content_variant"] = event.Variant
	}

	body, err := json.Marshal(collectPayload{
		ClientID: e.clientID,
		Events:   []collectEvent{{Name: event.Name, Params: params}},
	})
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	reqURL, err := url.Parse(e.endpoint)
	if err != nil {
		return fmt.Errorf("failed to parse collector endpoint: %w", err)
	}
	q := reqURL.Query()
	q.Set("measurement_id", e.measurementID)
	q.Set("api_secret", e.apiSecret)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("collector returned status %d", resp.StatusCode)
	}

	return nil
}

// compile-time interface check
var _ Emitter = (*GAEmitter)(nil)
