package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func rateLimited(t *testing.T, limit int) (http.Handler, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	config := RateLimitConfig{
		RequestsPerWindow: limit,
		Window:            time.Minute,
		KeyPrefix:         "test_ratelimit",
	}
	handler := RateLimitMiddleware(client, config, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	return handler, mr
}

func TestRateLimitAllowsUnderTheLimit(t *testing.T) {
	handler, _ := rateLimited(t, 3)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Request %d rejected below the limit: %d", i+1, rec.Code)
		}
	}
}

func TestRateLimitRejectsOverTheLimit(t *testing.T) {
	handler, _ := rateLimited(t, 2)

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected status 429 over the limit, got %d", last.Code)
	}
	if last.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("Expected no remaining requests, got %s", last.Header().Get("X-RateLimit-Remaining"))
	}
	if last.Header().Get("Retry-After") == "" {
		t.Errorf("Retry-After header missing")
	}
}

func TestRateLimitCountsClientsSeparately(t *testing.T) {
	handler, _ := rateLimited(t, 1)

	first := httptest.NewRequest(http.MethodGet, "/products", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("First client's request rejected: %d", rec.Code)
	}

	second := httptest.NewRequest(http.MethodGet, "/products", nil)
	second.RemoteAddr = "10.0.0.2:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	if rec.Code != http.StatusOK {
		t.Errorf("Second client throttled by first client's counter: %d", rec.Code)
	}
}

func TestRateLimitKeysByAuthenticatedUser(t *testing.T) {
	handler, mr := rateLimited(t, 5)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	ctx := context.WithValue(req.Context(), UserIDKey, "42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if !mr.Exists("test_ratelimit:42") {
		t.Errorf("Counter not keyed by user id")
	}
	if mr.Exists("test_ratelimit:10.0.0.1:1234") {
		t.Errorf("Counter fell back to client address despite authenticated user")
	}
}

func TestRateLimitAllowsThroughOnRedisFailure(t *testing.T) {
	handler, mr := rateLimited(t, 1)
	mr.Close()

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Request rejected while Redis was down: %d", rec.Code)
	}
}
