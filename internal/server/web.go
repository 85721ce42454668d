package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/websocket"

	"github.com/cjliu20152/qiskit/common"
	"github.com/cjliu20152/qiskit/internal/engine"
	"github.com/cjliu20152/qiskit/pkg/logger"
)

// WebServer is the daemon's HTTP sidecar. It serves the WebSocket job
// event feed on "/", the JSON-RPC bridge on "/jsonrpc" (HTTP POST) and
// "/jsonrpc/ws" (WebSocket), and Prometheus metrics on "/metrics".
type WebServer struct {
	port   int
	l      logger.Logger
	eng    *engine.Engine
	pool   *Pool
	rpc    *RPCServer
	rpcCfg *RPCConfig
	server *http.Server
	mu     sync.Mutex

	wmu      sync.RWMutex
	watchers map[string][]*websocket.Conn
}

// watchRequest subscribes the sending WebSocket connection to one job's
// event stream.
type watchRequest struct {
	JobId string `json:"job_id"`
}

// NewWebServer creates the HTTP sidecar. rpcCfg may be nil, or carry an
// empty secret, to leave the JSON-RPC endpoints unmounted.
func NewWebServer(l logger.Logger, eng *engine.Engine, pool *Pool, port int, rpcCfg *RPCConfig) *WebServer {
	s := &WebServer{
		port:     port,
		l:        l,
		eng:      eng,
		pool:     pool,
		rpcCfg:   rpcCfg,
		watchers: make(map[string][]*websocket.Conn),
	}
	if rpcCfg != nil && rpcCfg.Secret != "" {
		s.rpc = NewRPCServer(rpcCfg, eng, pool, NewRPCNotifier(l))
	}
	return s
}

func (s *WebServer) handleConnection(conn *websocket.Conn) {
	defer conn.Close()
	defer s.dropConn(conn)
	for {
		var data []byte
		if err := websocket.Message.Receive(conn, &data); err != nil {
			if err != io.EOF {
				s.l.Warning("event feed receive: %v", err)
			}
			return
		}
		var wr watchRequest
		if err := json.Unmarshal(data, &wr); err != nil {
			s.l.Warning("event feed bad request: %v", err)
			continue
		}
		if wr.JobId == "" {
			continue
		}
		if s.eng != nil && !s.eng.HasJob(wr.JobId) {
			_ = websocket.JSON.Send(conn, &Response{Ok: false, Error: "job not found: " + wr.JobId})
			continue
		}
		s.addWatcher(wr.JobId, conn)
		_ = websocket.JSON.Send(conn, &Response{
			Ok: true,
			Update: &Update{
				Type:    common.UPDATE_ATTACH,
				Message: &common.InputJobId{JobId: wr.JobId},
			},
		})
	}
}

func (s *WebServer) addWatcher(uid string, conn *websocket.Conn) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	s.watchers[uid] = append(s.watchers[uid], conn)
}

// publishEvent pushes one job event to every WebSocket watcher of that
// job. Watchers that fail to receive are dropped.
func (s *WebServer) publishEvent(ev *common.RunningResponse) {
	s.wmu.RLock()
	conns := make([]*websocket.Conn, len(s.watchers[ev.JobId]))
	copy(conns, s.watchers[ev.JobId])
	s.wmu.RUnlock()

	msg := &Response{
		Ok: true,
		Update: &Update{
			Type:    common.UPDATE_RUNNING,
			Message: ev,
		},
	}
	for _, conn := range conns {
		if err := websocket.JSON.Send(conn, msg); err != nil {
			s.dropConn(conn)
		}
	}
}

// stopWatch forgets all watchers of a finished job. The connections
// stay open for further subscriptions.
func (s *WebServer) stopWatch(uid string) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	delete(s.watchers, uid)
}

func (s *WebServer) dropConn(conn *websocket.Conn) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	for uid, conns := range s.watchers {
		for i, c := range conns {
			if c != conn {
				continue
			}
			conns[i] = conns[len(conns)-1]
			s.watchers[uid] = conns[:len(conns)-1]
			break
		}
	}
}

// handleRPCSocket upgrades an authenticated request to a WebSocket and
// runs a jrpc2 server over it. Push support lets the daemon stream
// job.event notifications to the client for the connection's lifetime.
func (s *WebServer) handleRPCSocket(w http.ResponseWriter, r *http.Request) {
	if !validToken(s.rpcCfg.Secret, r.Header.Get("Authorization")) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		s.l.Warning("rpc websocket accept: %v", err)
		return
	}

	srv := jrpc2.NewServer(s.rpc.methods, &jrpc2.ServerOptions{AllowPush: true})
	srv.Start(&wsChannel{conn: conn, ctx: r.Context()})
	s.rpc.notifier.Register(srv)
	defer s.rpc.notifier.Unregister(srv)

	if err := srv.Wait(); err != nil {
		s.l.Warning("rpc websocket session: %v", err)
	}
	_ = conn.Close(cws.StatusNormalClosure, "")
}

func (s *WebServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", websocket.Handler(s.handleConnection))
	mux.Handle("/metrics", promhttp.Handler())
	if s.rpc != nil {
		mux.Handle("/jsonrpc", requireToken(s.rpcCfg.Secret, s.rpc.bridge))
		mux.HandleFunc("/jsonrpc/ws", s.handleRPCSocket)
	}
	return mux
}

func (s *WebServer) addr() string {
	if s.rpcCfg != nil && s.rpcCfg.ListenAll {
		return fmt.Sprintf(":%d", s.port)
	}
	return fmt.Sprintf("%s:%d", common.TCPHost, s.port)
}

func (s *WebServer) Start() error {
	s.mu.Lock()
	s.server = &http.Server{
		Addr:    s.addr(),
		Handler: s.handler(),
	}
	s.mu.Unlock()

	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil // Expected during shutdown
	}
	return err
}

// Shutdown gracefully stops the web server.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rpc != nil {
		s.rpc.Close()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
