package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

// --- GeneralMiddleware (API全般) のテスト ---

func TestRateLimitMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     2, // 2 req/sec
		GeneralBurst:    5, // バースト5
		SubmitRate:      1, // 未使用
		SubmitBurst:     10,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.GeneralMiddleware()

	handlerCallCount := 0
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCallCount++
		w.WriteHeader(http.StatusOK)
	}))

	// バースト内の5リクエストは全て通る
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
		req.RemoteAddr = "203.0.113.1:51000"
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Result().StatusCode, http.StatusOK)
		}
	}

	if handlerCallCount != 5 {
		t.Errorf("handler call count = %d, want 5", handlerCallCount)
	}
}

func TestRateLimitMiddleware_Returns429WhenLimitExceeded(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1, // 1 req/sec
		GeneralBurst:    2, // バースト2
		SubmitRate:      1,
		SubmitBurst:     10,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.GeneralMiddleware()

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// バースト分（2回）は通る
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
		req.RemoteAddr = "203.0.113.2:51000"
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Result().StatusCode, http.StatusOK)
		}
	}

	// 3回目はレート制限に引っかかる
	req := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	req.RemoteAddr = "203.0.113.2:51000"
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusTooManyRequests)
	}
}

func TestRateLimitMiddleware_Returns429WithRetryAfterHeader(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1, // 1 req/sec
		GeneralBurst:    1, // バースト1
		SubmitRate:      1,
		SubmitBurst:     10,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.GeneralMiddleware()

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 1回目は通る
	req := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	req.RemoteAddr = "203.0.113.3:51000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	// 2回目は429になる
	req2 := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	req2.RemoteAddr = "203.0.113.3:51000"
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, req2)

	if w2.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w2.Result().StatusCode, http.StatusTooManyRequests)
	}

	retryAfter := w2.Result().Header.Get("Retry-After")
	if retryAfter == "" {
		t.Fatal("expected Retry-After header to be present")
	}

	// Retry-Afterは数値（秒）であること
	retrySeconds, err := strconv.Atoi(retryAfter)
	if err != nil {
		t.Errorf("Retry-After header should be a number, got %q", retryAfter)
	}
	if retrySeconds < 1 {
		t.Errorf("Retry-After = %d, should be at least 1", retrySeconds)
	}
}

func TestRateLimitMiddleware_IsolatesClientIPs(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1, // 1 req/sec
		GeneralBurst:    1, // バースト1
		SubmitRate:      1,
		SubmitBurst:     10,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.GeneralMiddleware()

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// IP-Aのバーストを使い切る
	reqA := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	reqA.RemoteAddr = "198.51.100.1:40000"
	wA := httptest.NewRecorder()
	handler.ServeHTTP(wA, reqA)

	reqA2 := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	reqA2.RemoteAddr = "198.51.100.1:40000"
	wA2 := httptest.NewRecorder()
	handler.ServeHTTP(wA2, reqA2)

	if wA2.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("IP-A second request: status = %d, want %d", wA2.Result().StatusCode, http.StatusTooManyRequests)
	}

	// IP-Bは影響を受けない
	reqB := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	reqB.RemoteAddr = "198.51.100.2:40000"
	wB := httptest.NewRecorder()
	handler.ServeHTTP(wB, reqB)

	if wB.Result().StatusCode != http.StatusOK {
		t.Errorf("IP-B first request: status = %d, want %d", wB.Result().StatusCode, http.StatusOK)
	}

	if got := rl.GeneralLimiterCount(); got != 2 {
		t.Errorf("GeneralLimiterCount() = %d, want 2", got)
	}
}

// --- SubmissionMiddleware (フォーム送信) のテスト ---

func TestSubmissionMiddleware_IndependentOfGeneralLimit(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1,
		GeneralBurst:    1, // 一般は1回で枯渇
		SubmitRate:      1,
		SubmitBurst:     3, // 送信は3回まで
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	general := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	submit := rl.SubmissionMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	// 一般バーストを使い切る
	req := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	req.RemoteAddr = "192.0.2.1:30000"
	handler := general
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	req2 := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	req2.RemoteAddr = "192.0.2.1:30000"
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, req2)
	if w2.Result().StatusCode != http.StatusTooManyRequests {
		t.Fatalf("general limit should be exhausted, got %d", w2.Result().StatusCode)
	}

	// 送信リミッターは独立に全3回通る
	for i := 0; i < 3; i++ {
		reqS := httptest.NewRequest(http.MethodPost, "/api/waitlist", nil)
		reqS.RemoteAddr = "192.0.2.1:30000"
		wS := httptest.NewRecorder()
		submit.ServeHTTP(wS, reqS)

		if wS.Result().StatusCode != http.StatusCreated {
			t.Errorf("submission %d: status = %d, want %d", i, wS.Result().StatusCode, http.StatusCreated)
		}
	}

	// 4回目の送信は429
	reqS := httptest.NewRequest(http.MethodPost, "/api/waitlist", nil)
	reqS.RemoteAddr = "192.0.2.1:30000"
	wS := httptest.NewRecorder()
	submit.ServeHTTP(wS, reqS)

	if wS.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("4th submission: status = %d, want %d", wS.Result().StatusCode, http.StatusTooManyRequests)
	}
}

// --- ClientIP のテスト ---

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		trustProxy bool
		want       string
	}{
		{
			name:       "RemoteAddrのみ",
			remoteAddr: "203.0.113.10:54321",
			want:       "203.0.113.10",
		},
		{
			name:       "プロキシ信頼時はX-Forwarded-For単一を採用",
			remoteAddr: "10.0.0.1:80",
			xff:        "198.51.100.7",
			trustProxy: true,
			want:       "198.51.100.7",
		},
		{
			name:       "プロキシ信頼時はX-Forwarded-For複数の先頭を採用",
			remoteAddr: "10.0.0.1:80",
			xff:        "198.51.100.7, 10.0.0.2, 10.0.0.3",
			trustProxy: true,
			want:       "198.51.100.7",
		},
		{
			name:       "プロキシ非信頼時はX-Forwarded-Forを無視",
			remoteAddr: "203.0.113.12:54321",
			xff:        "198.51.100.7",
			trustProxy: false,
			want:       "203.0.113.12",
		},
		{
			name:       "ポートのないRemoteAddrはそのまま返す",
			remoteAddr: "203.0.113.11",
			want:       "203.0.113.11",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}

			if got := ClientIP(req, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

// プロキシ非信頼時はX-Forwarded-Forを付け替えてもレート制限を回避できないことを検証する。
func TestRateLimitMiddleware_ForwardedForCannotBypassLimit(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:      1,
		GeneralBurst:     1, // バースト1
		SubmitRate:       1,
		SubmitBurst:      10,
		CleanupInterval:  1 * time.Minute,
		TrustProxyHeader: false,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 同一RemoteAddrからX-Forwarded-Forを毎回変えて送る
	for i, spoofed := range []string{"198.51.100.1", "198.51.100.2", "198.51.100.3"} {
		req := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
		req.RemoteAddr = "203.0.113.50:40000"
		req.Header.Set("X-Forwarded-For", spoofed)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		// バースト1なので2回目以降は全て429になる
		if i == 0 {
			if w.Result().StatusCode != http.StatusOK {
				t.Errorf("first request: status = %d, want %d", w.Result().StatusCode, http.StatusOK)
			}
			continue
		}
		if w.Result().StatusCode != http.StatusTooManyRequests {
			t.Errorf("spoofed request %d: status = %d, want %d", i, w.Result().StatusCode, http.StatusTooManyRequests)
		}
	}

	// 全リクエストが1つのリミッターに集約されていること
	if got := rl.GeneralLimiterCount(); got != 1 {
		t.Errorf("GeneralLimiterCount() = %d, want 1", got)
	}
}
