// Package embedhttp is an embeddable HTTP/1.1 server core.
//
// Register handlers on a Router, then start a Server with it:
//
//	rt := embedhttp.NewRouter()
//	rt.GET("/users/:id", func(req *embedhttp.Request) *embedhttp.Response {
//		return embedhttp.Text(embedhttp.StatusOK, "user "+req.Param("id"))
//	})
//
//	srv := embedhttp.NewServer(embedhttp.DefaultConfig())
//	if !srv.Start(rt) {
//		log.Fatal("bind failed")
//	}
//	defer srv.Stop()
//
// Start returns once the server is listening or has failed to bind. The
// router is sealed at that point; later registrations fail.
package embedhttp

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Brownie44l1/embedhttp/internal/request"
	"github.com/Brownie44l1/embedhttp/internal/response"
	"github.com/Brownie44l1/embedhttp/internal/router"
	"github.com/Brownie44l1/embedhttp/internal/server"
	"github.com/Brownie44l1/embedhttp/internal/state"
)

type (
	Server         = server.Server
	Config         = server.Config
	Metrics        = server.Metrics
	LogConfig      = server.LogConfig
	RateLimiter    = server.RateLimiter
	CORSConfig     = server.CORSConfig
	Limits         = request.Limits
	Router         = router.Router
	Route          = router.Route
	Handler        = router.Handler
	HandlerFunc    = router.HandlerFunc
	Middleware     = router.Middleware
	WriterFunc     = router.WriterFunc
	ResponseWriter = router.ResponseWriter
	Request        = request.Request
	Response       = response.Response
	StatusCode     = response.StatusCode
	State          = state.State
)

// RequestIDHeader is set by RequestIDMiddleware.
const RequestIDHeader = server.RequestIDHeader

const (
	StatusOK                  = response.StatusOK
	StatusCreated             = response.StatusCreated
	StatusNoContent           = response.StatusNoContent
	StatusMovedPermanently    = response.StatusMovedPermanently
	StatusFound               = response.StatusFound
	StatusBadRequest          = response.StatusBadRequest
	StatusNotFound            = response.StatusNotFound
	StatusTooManyRequests     = response.StatusTooManyRequests
	StatusInternalServerError = response.StatusInternalServerError
)

const (
	Starting = state.Starting
	Running  = state.Running
	Stopping = state.Stopping
	Stopped  = state.Stopped
)

var (
	ErrProtocol           = request.ErrProtocol
	ErrClientDisconnected = request.ErrClientDisconnected
	ErrInvalidRoute       = router.ErrInvalidRoute
)

// NewServer creates a stopped server.
func NewServer(cfg Config) *Server { return server.New(cfg) }

// DefaultConfig listens on an ephemeral port with one second timeouts.
func DefaultConfig() Config { return server.DefaultConfig() }

// DefaultLimits returns the parser limits used when none are configured.
func DefaultLimits() Limits { return request.DefaultLimits() }

func NewRouter() *Router { return router.New() }

// Chain wraps h so that the first middleware runs first.
func Chain(h Handler, mw ...Middleware) Handler { return router.Chain(h, mw...) }

func WithStatus(code StatusCode) *Response        { return response.WithStatus(code) }
func OK() *Response                               { return response.OK() }
func BadRequest() *Response                       { return response.BadRequest() }
func NotFound() *Response                         { return response.NotFound() }
func InternalServerError() *Response              { return response.InternalServerError() }
func Text(code StatusCode, body string) *Response { return response.Text(code, body) }
func JSON(code StatusCode, body string) *Response { return response.JSON(code, body) }
func HTML(code StatusCode, body string) *Response { return response.HTML(code, body) }
func Error(code StatusCode, msg string) *Response { return response.Error(code, msg) }

// NewMetrics registers the server collectors on registry, or on a new
// registry when it is nil. Pass the result in Config.Metrics.
func NewMetrics(namespace string, registry *prometheus.Registry) *Metrics {
	return server.NewMetrics(namespace, registry)
}

// NewLogger builds a JSON or text slog logger whose level can be changed
// through the returned LevelVar.
func NewLogger(cfg LogConfig) (*slog.Logger, *slog.LevelVar, error) {
	return server.NewLogger(cfg)
}

func LoggingMiddleware(logger *slog.Logger) Middleware { return server.LoggingMiddleware(logger) }
func RequestIDMiddleware() Middleware                  { return server.RequestIDMiddleware() }

// NewRateLimiter allows rate requests per window for each client IP. Call
// Stop when it is no longer used.
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return server.NewRateLimiter(rate, window)
}

func RateLimitMiddleware(limiter *RateLimiter) Middleware { return server.RateLimitMiddleware(limiter) }
func DefaultCORSConfig() CORSConfig                       { return server.DefaultCORSConfig() }
func CORSMiddleware(cfg CORSConfig) Middleware            { return server.CORSMiddleware(cfg) }

// Redirect fails unless code is a redirect status.
func Redirect(code StatusCode, location string) (*Response, error) {
	return response.Redirect(code, location)
}
