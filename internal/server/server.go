package server

import (
	"errors"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Brownie44l1/embedhttp/internal/response"
	"github.com/Brownie44l1/embedhttp/internal/router"
	"github.com/Brownie44l1/embedhttp/internal/state"
)

// Server owns one listening socket and the workers serving its
// connections. Instances are independent of each other.
type Server struct {
	cfg      Config
	log      *slog.Logger
	metrics  *Metrics
	writer   *response.Writer
	state    *state.Machine
	inflight *state.Counter
	port     atomic.Int64

	mu       sync.Mutex
	listener net.Listener
}

// New creates a stopped server.
func New(cfg Config) *Server {
	cfg = cfg.withDefaults()
	s := &Server{
		cfg:      cfg,
		log:      cfg.Logger,
		metrics:  cfg.Metrics,
		writer:   response.NewWriter(response.NewDateCache()),
		state:    state.NewMachine(state.Stopped),
		inflight: state.NewCounter(),
	}
	s.port.Store(-1)
	return s
}

// Start begins serving rt and blocks until the server is RUNNING or has
// failed back to STOPPED. Registration on rt is closed from here on.
func (s *Server) Start(rt *router.Router) bool {
	switch s.state.Current() {
	case state.Running:
		return true
	case state.Stopped:
	default:
		return false
	}

	if !s.state.Set(state.Starting) {
		return false
	}

	if rt == nil {
		rt = router.New()
	}
	rt.Seal()

	go s.acceptLoop(rt)

	return s.state.WaitFor(state.Running, state.Stopped) == state.Running
}

// Stop closes the listener and blocks until every worker has finished
// its current request.
func (s *Server) Stop() bool {
	switch s.state.Current() {
	case state.Stopped:
		return true
	case state.Running:
	default:
		return false
	}

	if !s.state.Set(state.Stopping) {
		return false
	}

	s.closeListener()
	s.state.WaitFor(state.Stopped)
	return true
}

func (s *Server) IsRunning() bool {
	return s.state.Current() == state.Running
}

// BoundPort returns the listening port, or -1 unless RUNNING.
func (s *Server) BoundPort() int {
	if !s.IsRunning() {
		return -1
	}
	return int(s.port.Load())
}

func (s *Server) State() state.State {
	return s.state.Current()
}

type deadliner interface {
	SetDeadline(t time.Time) error
}

func (s *Server) acceptLoop(rt *router.Router) {
	defer func() {
		s.inflight.AwaitZero()
		s.port.Store(-1)
		s.state.Set(state.Stopped)
		s.log.Info("server stopped")
	}()

	ln, err := listen(s.cfg.Port, s.cfg.Backlog)
	if err != nil {
		s.log.Error("failed to open listener", "port", s.cfg.Port, "error", err)
		return
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	defer s.closeListener()

	port := ln.Addr().(*net.TCPAddr).Port
	s.port.Store(int64(port))

	if !s.state.Set(state.Running) {
		return
	}
	s.log.Info("server started", "port", port, "backlog", s.cfg.Backlog)

	for s.state.Current() == state.Running {
		if d, ok := ln.(deadliner); ok {
			d.SetDeadline(time.Now().Add(s.cfg.AcceptTimeout))
		}

		conn, err := ln.Accept()
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if s.state.Current() != state.Running {
				return
			}
			if errors.Is(err, net.ErrClosed) {
				s.log.Error("listener closed unexpectedly", "error", err)
				return
			}
			s.log.Error("error accepting connection", "error", err)
			continue
		}

		s.inflight.Increment()
		go s.serveConn(conn, rt)
	}
}

func (s *Server) closeListener() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		s.listener.Close()
		s.listener = nil
	}
}
