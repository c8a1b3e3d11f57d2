package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/embedhttp/internal/request"
	"github.com/Brownie44l1/embedhttp/internal/response"
	"github.com/Brownie44l1/embedhttp/internal/router"
)

func echoRequestID() router.Handler {
	return router.HandlerFunc(func(req *request.Request) *response.Response {
		return response.Text(response.StatusOK, req.Header(RequestIDHeader))
	})
}

func TestRequestIDMiddlewareGeneratesID(t *testing.T) {
	h := RequestIDMiddleware()(echoRequestID())
	req := request.New("GET", "/")

	resp := h.ServeHTTP(req)

	id := resp.Headers().Value(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, string(resp.Body()), "handler sees the generated id")
	assert.False(t, req.Headers.Has(RequestIDHeader), "original request is untouched")
}

func TestRequestIDMiddlewareKeepsClientID(t *testing.T) {
	h := RequestIDMiddleware()(echoRequestID())
	req := request.New("GET", "/")
	req.Headers.Set("X-Request-Id", "abc-123")

	resp := h.ServeHTTP(req)
	assert.Equal(t, "abc-123", resp.Headers().Value(RequestIDHeader))
	assert.Equal(t, "abc-123", string(resp.Body()))
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := LoggingMiddleware(logger)(router.HandlerFunc(func(*request.Request) *response.Response {
		return response.WithStatus(response.StatusAccepted)
	}))
	req := request.New("POST", "/jobs?x=1")
	req.RemoteAddr = "10.0.0.7:5555"
	h.ServeHTTP(req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request handled", entry["msg"])
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, "/jobs", entry["path"])
	assert.Equal(t, float64(202), entry["status"])
	assert.Equal(t, "10.0.0.7", entry["client_ip"])
}

func TestClientIP(t *testing.T) {
	req := request.New("GET", "/")
	req.RemoteAddr = "192.168.1.2:40000"
	assert.Equal(t, "192.168.1.2", ClientIP(req))

	req.Headers.Set("X-Forwarded-For", " 203.0.113.9 , 10.0.0.1")
	assert.Equal(t, "203.0.113.9", ClientIP(req))

	bare := request.New("GET", "/")
	bare.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", ClientIP(bare))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "clients are limited separately")

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("a"), "a new window refills the bucket")

	now = now.Add(5 * time.Minute)
	rl.evict()
	rl.mu.Lock()
	assert.Empty(t, rl.buckets)
	rl.mu.Unlock()

	rl.Stop() // safe to call twice
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	h := RateLimitMiddleware(rl)(router.HandlerFunc(func(*request.Request) *response.Response {
		return response.OK()
	}))
	req := request.New("GET", "/")
	req.RemoteAddr = "127.0.0.1:1"

	assert.Equal(t, response.StatusOK, h.ServeHTTP(req).Status())
	assert.Equal(t, response.StatusTooManyRequests, h.ServeHTTP(req).Status())
}

func TestCORSMiddleware(t *testing.T) {
	cfg := CORSConfig{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	}
	called := false
	h := CORSMiddleware(cfg)(router.HandlerFunc(func(*request.Request) *response.Response {
		called = true
		return response.Text(response.StatusOK, "data")
	}))

	req := request.New("GET", "/")
	req.Headers.Set("Origin", "http://localhost:3000")
	resp := h.ServeHTTP(req)
	assert.True(t, called)
	assert.Equal(t, "http://localhost:3000", resp.Headers().Value("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST", resp.Headers().Value("Access-Control-Allow-Methods"))
	assert.Equal(t, "true", resp.Headers().Value("Access-Control-Allow-Credentials"))
	assert.Equal(t, "3600", resp.Headers().Value("Access-Control-Max-Age"))

	called = false
	preflight := request.New("OPTIONS", "/")
	preflight.Headers.Set("Origin", "http://localhost:3000")
	resp = h.ServeHTTP(preflight)
	assert.False(t, called)
	assert.Equal(t, response.StatusNoContent, resp.Status())

	other := request.New("GET", "/")
	other.Headers.Set("Origin", "http://evil.example")
	resp = h.ServeHTTP(other)
	assert.False(t, resp.Headers().Has("Access-Control-Allow-Origin"))
}

func TestDefaultCORSConfigAllowsAnyOrigin(t *testing.T) {
	assert.True(t, isAllowedOrigin("http://x", DefaultCORSConfig().AllowedOrigins))
	assert.False(t, isAllowedOrigin("http://x", nil))
}

func TestMiddlewaresDoNotChangeHandlerResponse(t *testing.T) {
	shared := response.Text(response.StatusOK, "cached")
	inner := router.HandlerFunc(func(*request.Request) *response.Response { return shared })

	h := router.Chain(inner,
		RequestIDMiddleware(),
		CORSMiddleware(DefaultCORSConfig()),
	)

	req := request.New("GET", "/")
	req.Headers.Set("Origin", "http://app.example")
	resp := h.ServeHTTP(req)

	assert.NotEmpty(t, resp.Headers().Value(RequestIDHeader))
	assert.Equal(t, "http://app.example", resp.Headers().Value("Access-Control-Allow-Origin"))
	assert.False(t, shared.Headers().Has(RequestIDHeader))
	assert.False(t, shared.Headers().Has("Access-Control-Allow-Origin"))
	assert.Equal(t, "cached", string(resp.Body()))
}
