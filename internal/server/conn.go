package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/Brownie44l1/embedhttp/internal/request"
	"github.com/Brownie44l1/embedhttp/internal/response"
	"github.com/Brownie44l1/embedhttp/internal/router"
)

// deadlineConn refreshes the read deadline before every read.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c deadlineConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}

// serveConn handles all requests on a single connection
func (s *Server) serveConn(conn net.Conn, rt *router.Router) {
	defer s.inflight.Decrement()
	defer conn.Close()

	s.metrics.connOpened()
	defer s.metrics.connClosed()

	remote := conn.RemoteAddr().String()
	log := s.log.With("conn_id", uuid.NewString(), "remote_addr", remote)
	log.Debug("connection opened")
	defer log.Debug("connection closed")

	br := getReader(deadlineConn{Conn: conn, timeout: s.cfg.ReadTimeout})
	defer putReader(br)
	bw := getWriter(conn)
	defer putWriter(bw)

	for {
		req, err := request.ParseWithLimits(br, s.cfg.Limits)
		if errors.Is(err, request.ErrClientDisconnected) {
			log.Debug("client disconnected")
			return
		}
		if req != nil {
			req.RemoteAddr = remote
		}

		start := time.Now()
		resp := s.dispatch(log, rt, req, err)
		forceClose := req != nil && !req.KeepAlive && !resp.Closing()

		method := ""
		if req != nil {
			method = req.Method
		}
		s.metrics.observe(method, resp.Status(), time.Since(start))

		write := s.writer.WriteResponse
		if forceClose {
			write = s.writer.WriteClosing
		}
		if err := write(bw, resp); err != nil {
			log.Debug("write failed", "error", err)
			return
		}

		if !shouldKeepOpen(req, resp, s.state.Current()) {
			return
		}
	}
}

type routed struct {
	handler router.Handler
	req     *request.Request
}

// dispatch turns a parse result into exactly one response: 400 for a
// protocol error, 404 without a route, 500 when the handler fails.
func (s *Server) dispatch(log *slog.Logger, rt *router.Router, req *request.Request, parseErr error) *response.Response {
	parsed := s.checkParse(log, req, parseErr)
	matched := bind(parsed, func(req *request.Request) outcome[routed] {
		return s.route(rt, req)
	})
	executed := bind(matched, func(r routed) outcome[*response.Response] {
		return s.execute(log, r)
	})
	return finish(executed)
}

func (s *Server) checkParse(log *slog.Logger, req *request.Request, err error) outcome[*request.Request] {
	if err == nil {
		return proceed(req)
	}

	s.metrics.protocolError()
	log.Warn("protocol error", "error", err)
	return reply[*request.Request](response.Error(response.StatusBadRequest, err.Error()).Close())
}

func (s *Server) route(rt *router.Router, req *request.Request) outcome[routed] {
	route, params, ok := rt.Route(req.Method, req.Path)
	if !ok {
		return reply[routed](response.Error(response.StatusNotFound, ""))
	}
	return proceed(routed{handler: route.Handler, req: req.WithParams(params)})
}

func (s *Server) execute(log *slog.Logger, r routed) (out outcome[*response.Response]) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("handler panic",
				"method", r.req.Method,
				"path", r.req.Path,
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()),
			)
			out = reply[*response.Response](response.Error(response.StatusInternalServerError, ""))
		}
	}()

	resp := r.handler.ServeHTTP(r.req)
	if resp == nil {
		log.Error("handler returned no response", "method", r.req.Method, "path", r.req.Path)
		return reply[*response.Response](response.Error(response.StatusInternalServerError, ""))
	}
	if !resp.Valid() {
		log.Error("handler returned an invalid response",
			"method", r.req.Method,
			"path", r.req.Path,
			"status", int(resp.Status()),
		)
		return reply[*response.Response](response.Error(response.StatusInternalServerError, ""))
	}
	return proceed(resp)
}
