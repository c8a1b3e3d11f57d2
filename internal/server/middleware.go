package server

import (
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Brownie44l1/embedhttp/internal/request"
	"github.com/Brownie44l1/embedhttp/internal/response"
	"github.com/Brownie44l1/embedhttp/internal/router"
)

// RequestIDHeader carries the request id set by RequestIDMiddleware.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLength = 128

// LoggingMiddleware logs every handled request at info level.
func LoggingMiddleware(logger *slog.Logger) router.Middleware {
	return func(next router.Handler) router.Handler {
		return router.HandlerFunc(func(req *request.Request) *response.Response {
			start := time.Now()

			resp := next.ServeHTTP(req)

			status := 0
			if resp != nil {
				status = int(resp.Status())
			}
			logger.Info("request handled",
				"method", req.Method,
				"path", req.Path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", req.Header(RequestIDHeader),
				"client_ip", ClientIP(req),
			)
			return resp
		})
	}
}

// RequestIDMiddleware makes sure every request has an X-Request-ID, taking
// the client's when it is usable and generating one otherwise. The id is
// echoed on a copy of the response.
func RequestIDMiddleware() router.Middleware {
	return func(next router.Handler) router.Handler {
		return router.HandlerFunc(func(req *request.Request) *response.Response {
			id := req.Header(RequestIDHeader)
			if id == "" || len(id) > maxRequestIDLength {
				id = uuid.NewString()
				cp := *req
				cp.Headers = req.Headers.Clone()
				cp.Headers.Set(RequestIDHeader, id)
				req = &cp
			}

			resp := next.ServeHTTP(req)
			if resp != nil {
				resp = resp.Clone().SetHeader(RequestIDHeader, id)
			}
			return resp
		})
	}
}

// ClientIP returns the first X-Forwarded-For entry, else the peer address.
func ClientIP(req *request.Request) string {
	if xff := req.Header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(req.RemoteAddr); err == nil {
		return host
	}
	return req.RemoteAddr
}

// RateLimiter is a fixed-window limiter keyed by client IP.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    int           // requests per window
	window  time.Duration // time window
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	tokens    int
	lastReset time.Time
}

// NewRateLimiter allows rate requests per window for each client and
// starts a goroutine dropping idle clients until Stop is called.
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		window:  window,
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	go rl.cleanup(window * 2)

	return rl
}

// Allow checks if a request from the given IP should be allowed
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	b, exists := rl.buckets[ip]
	if !exists || now.Sub(b.lastReset) >= rl.window {
		rl.buckets[ip] = &bucket{tokens: rl.rate - 1, lastReset: now}
		return rl.rate > 0
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evict()
		}
	}
}

func (rl *RateLimiter) evict() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for ip, b := range rl.buckets {
		if now.Sub(b.lastReset) > rl.window*2 {
			delete(rl.buckets, ip)
		}
	}
}

// RateLimitMiddleware answers 429 once a client exceeds the limiter.
func RateLimitMiddleware(limiter *RateLimiter) router.Middleware {
	return func(next router.Handler) router.Handler {
		return router.HandlerFunc(func(req *request.Request) *response.Response {
			if !limiter.Allow(ClientIP(req)) {
				return response.Error(response.StatusTooManyRequests, "Rate limit exceeded")
			}
			return next.ServeHTTP(req)
		})
	}
}

// CORSConfig configures CORS middleware
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig returns a permissive CORS config (for development)
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Requested-With"},
		MaxAge:         12 * time.Hour,
	}
}

// CORSMiddleware adds CORS headers for allowed origins and answers
// preflight OPTIONS requests with 204.
func CORSMiddleware(config CORSConfig) router.Middleware {
	return func(next router.Handler) router.Handler {
		return router.HandlerFunc(func(req *request.Request) *response.Response {
			var resp *response.Response
			if req.Method == "OPTIONS" {
				resp = response.WithStatus(response.StatusNoContent)
			} else {
				resp = next.ServeHTTP(req)
			}

			origin := req.Header("Origin")
			if resp != nil && origin != "" && isAllowedOrigin(origin, config.AllowedOrigins) {
				resp = resp.Clone()
				resp.SetHeader("Access-Control-Allow-Origin", origin)
				resp.SetHeader("Access-Control-Allow-Methods", strings.Join(config.AllowedMethods, ", "))
				resp.SetHeader("Access-Control-Allow-Headers", strings.Join(config.AllowedHeaders, ", "))

				if config.AllowCredentials {
					resp.SetHeader("Access-Control-Allow-Credentials", "true")
				}
				if config.MaxAge > 0 {
					resp.SetHeader("Access-Control-Max-Age", strconv.Itoa(int(config.MaxAge.Seconds())))
				}
			}
			return resp
		})
	}
}

func isAllowedOrigin(origin string, allowed []string) bool {
	for _, allowedOrigin := range allowed {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}
	return false
}
