package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 5) // 10 per minute, burst of 5
	defer rl.Stop()

	// First 5 requests should be allowed (burst)
	for i := 0; i < 5; i++ {
		if !rl.Allow("203.0.113.1") {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	if rl.Allow("203.0.113.1") {
		t.Error("Request 6 should be rate limited")
	}
}

func TestRateLimiter_DifferentClients(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("203.0.113.1") {
			t.Errorf("Client 1 request %d should be allowed", i+1)
		}
	}
	if rl.Allow("203.0.113.1") {
		t.Error("Client 1 should be rate limited")
	}

	// Client 2 should still have its full burst
	for i := 0; i < 3; i++ {
		if !rl.Allow("203.0.113.2") {
			t.Errorf("Client 2 request %d should be allowed", i+1)
		}
	}
}

func TestRateLimiter_GetStateUnknownClient(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 4)
	defer rl.Stop()

	remaining, _ := rl.GetState("198.51.100.7")
	if remaining != 4 {
		t.Errorf("Expected full burst of 4, got %d", remaining)
	}
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 1)
	rl.Stop()
	rl.Stop()
}

func TestRateLimitMiddleware_LimitsPerIP(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiterWithConfig(10, 2)
	defer rl.Stop()

	handler := func(c echo.Context) error {
		return c.String(http.StatusCreated, "created")
	}

	newRequest := func(ip string) (*httptest.ResponseRecorder, echo.Context) {
		req := httptest.NewRequest(http.MethodPost, "/budget-ledger/signup", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		rec := httptest.NewRecorder()
		return rec, e.NewContext(req, rec)
	}

	for i := 0; i < 2; i++ {
		rec, c := newRequest("203.0.113.9")
		if err := RateLimitMiddleware(rl)(handler)(c); err != nil {
			t.Fatalf("Request %d: Expected no error, got %v", i+1, err)
		}
		if rec.Code != http.StatusCreated {
			t.Errorf("Request %d: Expected status 201, got %d", i+1, rec.Code)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "10" {
			t.Errorf("Request %d: Expected X-RateLimit-Limit 10, got %q", i+1, rec.Header().Get("X-RateLimit-Limit"))
		}
	}

	rec, c := newRequest("203.0.113.9")
	if err := RateLimitMiddleware(rl)(handler)(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}

	// A different client is unaffected
	rec, c = newRequest("203.0.113.10")
	if err := RateLimitMiddleware(rl)(handler)(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201 for another client, got %d", rec.Code)
	}
}
