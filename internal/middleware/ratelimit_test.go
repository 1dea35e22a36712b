package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/goleak"
)

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := NewRateLimiter(3, time.Minute)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("fourth request within the window should be rejected")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("a different IP has its own bucket")
	}
}

func TestRateLimiter_Middleware429(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	e := echo.New()
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, rl.Middleware())

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "192.0.2.7:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusTooManyRequests {
		t.Errorf("expected [204 429], got %v", codes)
	}
}

func TestRateLimiter_JanitorDropsIdleBuckets(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := newRateLimiter(5, time.Minute, time.Hour)
	defer rl.Stop()

	rl.Allow("10.0.0.1")
	rl.sweep(time.Now().Add(limiterIdleTTL + time.Second))

	rl.mu.Lock()
	n := len(rl.buckets)
	rl.mu.Unlock()
	if n != 0 {
		t.Errorf("expected idle bucket to be dropped, %d left", n)
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := NewRateLimiter(1, time.Second)
	rl.Stop()
	rl.Stop()
}
