package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Brownie44l1/embedhttp/internal/config"
	"github.com/Brownie44l1/embedhttp/internal/request"
	"github.com/Brownie44l1/embedhttp/internal/response"
	"github.com/Brownie44l1/embedhttp/internal/router"
	"github.com/Brownie44l1/embedhttp/internal/server"
)

// newRouter builds the example application. metrics may be nil. The
// returned func releases the rate limiter, if any.
func newRouter(logger *slog.Logger, metrics *server.Metrics, cfg *config.Config) (*router.Router, func()) {
	r := router.New()
	r.Use(
		server.RequestIDMiddleware(),
		server.LoggingMiddleware(logger),
	)

	release := func() {}
	if cfg.RateLimit.Enabled() {
		limiter := server.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		r.Use(server.RateLimitMiddleware(limiter))
		release = limiter.Stop
	}
	if cfg.CORS.Enabled() {
		r.Use(server.CORSMiddleware(server.CORSConfig{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   cfg.CORS.AllowedMethods,
			AllowedHeaders:   cfg.CORS.AllowedHeaders,
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
		}))
	}

	r.GET("/", func(*request.Request) *response.Response {
		return response.Text(response.StatusOK, "Hello, World!")
	})
	r.GET("/health", router.WriterFunc(health).ServeHTTP)
	r.PUT("/resource/:id", putResource)

	if metrics != nil {
		r.GET(cfg.Metrics.Path, metrics.Handler().ServeHTTP)
	}

	return r, release
}

func health(w *router.ResponseWriter, _ *request.Request) {
	if err := w.WriteJSON(response.StatusOK, map[string]string{"status": "ok"}); err != nil {
		w.Error(err.Error(), response.StatusInternalServerError)
	}
}

func putResource(req *request.Request) *response.Response {
	id := req.Param("id")
	name := req.QueryParam("name")
	if name == "" {
		return response.Error(response.StatusBadRequest, "missing name query parameter")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "updated resource %s (%s)", id, name)
	if len(req.Body) > 0 {
		fmt.Fprintf(&b, " with %d bytes", len(req.Body))
	}
	b.WriteByte('\n')
	return response.Text(response.StatusOK, b.String())
}
