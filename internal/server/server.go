// Package server implements the daemon's client-facing transports: the
// length-prefixed JSON protocol on a Unix socket (named pipe on
// Windows, TCP as a fallback), and an HTTP sidecar carrying the
// JSON-RPC 2.0 bridge, the WebSocket event feed and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/cjliu20152/qiskit/common"
	"github.com/cjliu20152/qiskit/internal/engine"
	"github.com/cjliu20152/qiskit/pkg/logger"
)

// Server accepts framed connections from CLI clients and dispatches
// requests to registered handlers. It owns the connection pool used to
// push job events to attached clients.
type Server struct {
	log      logger.Logger
	pool     *Pool
	ws       *WebServer
	handler  map[common.UpdateType]HandlerFunc
	port     int
	listener net.Listener
	mu       sync.Mutex
}

// NewServer creates a Server listening on the platform socket, falling
// back to TCP on the given port. The HTTP sidecar listens on port+1;
// rpcCfg may be nil to leave the JSON-RPC endpoints unmounted.
func NewServer(l logger.Logger, eng *engine.Engine, port int, rpcCfg *RPCConfig) *Server {
	pool := NewPool(l)
	return &Server{
		log:     l,
		pool:    pool,
		handler: make(map[common.UpdateType]HandlerFunc),
		port:    port,
		ws:      NewWebServer(l, eng, pool, port+1, rpcCfg),
	}
}

// RegisterHandler associates a handler with a method name. Requests for
// unregistered methods get an error response.
func (s *Server) RegisterHandler(method common.UpdateType, handler HandlerFunc) {
	s.handler[method] = handler
}

// Pool exposes the connection pool so request handlers set up outside
// this package can attach clients to jobs.
func (s *Server) Pool() *Pool {
	return s.pool
}

// Publish fans one job event out to every transport: attached socket
// clients, WebSocket watchers and JSON-RPC push subscribers. Terminal
// events also settle the pool entry so later attaches see the recorded
// error instead of waiting on a dead stream.
func (s *Server) Publish(ev *common.RunningResponse) {
	if ev.Action == common.JobErrored && ev.Error != "" {
		s.pool.WriteError(ev.JobId, ErrorTypeCritical, ev.Error)
	}
	s.pool.Broadcast(ev.JobId, MakeResult(common.UPDATE_RUNNING, ev))
	s.ws.publishEvent(ev)
	if s.ws.rpc != nil {
		s.ws.rpc.notifier.Broadcast("job.event", ev)
	}
	switch ev.Action {
	case common.JobDone, common.JobErrored, common.JobCancelled:
		s.pool.StopJob(ev.JobId)
		s.ws.stopWatch(ev.JobId)
	}
}

// Start begins listening and blocks until the context is canceled. The
// HTTP sidecar runs in its own goroutine; every accepted connection is
// served in its own goroutine.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		if err := s.ws.Start(); err != nil {
			s.log.Error("web server: %v", err)
		}
	}()

	l, err := s.createListener()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
	s.log.Info("listening on %s (%s)", l.Addr().String(), l.Addr().Network())

	go func() {
		<-ctx.Done()
		if err := s.Shutdown(); err != nil {
			s.log.Error("shutdown: %v", err)
		}
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Error("accept: %v", err)
			continue
		}
		go s.handleConnection(conn)
	}
}

// Shutdown closes the listener, stops the HTTP sidecar and removes the
// socket file. Safe to call more than once.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.log.Error("closing listener: %v", err)
		}
		s.listener = nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.ws.Shutdown(shutdownCtx); err != nil {
		s.log.Error("shutting down web server: %v", err)
	}

	if err := cleanupSocket(); err != nil {
		s.log.Error("removing socket file: %v", err)
	}
	return nil
}

func (s *Server) handleConnection(conn net.Conn) {
	sconn := NewSyncConn(conn)
	defer conn.Close()
	for {
		buf, err := sconn.Read()
		if err != nil {
			if err != io.EOF {
				s.log.Error("reading: %v", err)
			}
			break
		}
		if err := s.handlerWrapper(sconn, buf); err != nil {
			s.log.Error("handling: %v", err)
			break
		}
	}
}

func (s *Server) handlerWrapper(sconn *SyncConn, b []byte) error {
	req, err := ParseRequest(b)
	if err != nil {
		return fmt.Errorf("error parsing request: %s", err.Error())
	}
	rHandler, ok := s.handler[req.Method]
	if !ok {
		if err := sconn.Write(CreateError("unknown method: " + string(req.Method))); err != nil {
			return fmt.Errorf("error writing response: %s", err.Error())
		}
		return nil
	}
	utype, msg, err := rHandler(sconn, s.pool, req.Message)
	if err != nil {
		if err := sconn.Write(InitError(err)); err != nil {
			return fmt.Errorf("error writing response: %s", err.Error())
		}
		return nil
	}
	if err := sconn.Write(MakeResult(utype, msg)); err != nil {
		return fmt.Errorf("error writing response: %s", err.Error())
	}
	return nil
}
