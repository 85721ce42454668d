package server

import (
	"context"
	"errors"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/cjliu20152/qiskit/common"
	"github.com/cjliu20152/qiskit/internal/engine"
	"github.com/cjliu20152/qiskit/internal/store"
	"github.com/cjliu20152/qiskit/pkg/provider"
)

// Custom JSON-RPC error codes for job operations.
const (
	codeNotFound      = jrpc2.Code(-32001)
	codeJobNotActive  = jrpc2.Code(-32002)
	codeInvalidParams = jrpc2.Code(-32602)
)

// RPCConfig holds configuration for the JSON-RPC endpoint.
type RPCConfig struct {
	Secret    string // Auth token (required -- empty means RPC disabled)
	ListenAll bool   // If true, bind to 0.0.0.0 instead of 127.0.0.1
	Version   string // Daemon version
	Commit    string // Git commit
	BuildType string // Build type
}

// RPCServer manages the JSON-RPC 2.0 bridge and method handlers. The
// same method map backs both the HTTP bridge and the per-connection
// WebSocket servers.
type RPCServer struct {
	bridge    jhttp.Bridge
	methods   handler.Map
	secret    string
	version   string
	commit    string
	buildType string
	engine    *engine.Engine
	pool      *Pool
	notifier  *RPCNotifier
}

// NewRPCServer creates a new RPCServer with method handlers and HTTP
// bridge.
func NewRPCServer(cfg *RPCConfig, eng *engine.Engine, pool *Pool, notifier *RPCNotifier) *RPCServer {
	rs := &RPCServer{
		secret:    cfg.Secret,
		version:   cfg.Version,
		commit:    cfg.Commit,
		buildType: cfg.BuildType,
		engine:    eng,
		pool:      pool,
		notifier:  notifier,
	}

	rs.methods = handler.Map{
		"system.getVersion": handler.New(rs.systemGetVersion),
		"backend.list":      handler.New(rs.backendList),
		"backend.get":       handler.New(rs.backendGet),
		"job.submit":        handler.New(rs.jobSubmit),
		"job.status":        handler.New(rs.jobStatus),
		"job.result":        handler.New(rs.jobResult),
		"job.cancel":        handler.New(rs.jobCancel),
		"job.list":          handler.New(rs.jobList),
		"job.flush":         handler.New(rs.jobFlush),
	}

	rs.bridge = jhttp.NewBridge(rs.methods, nil)
	return rs
}

// rpcError translates engine errors into JSON-RPC error codes.
func rpcError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, provider.ErrBackendNotFound):
		return &jrpc2.Error{Code: codeNotFound, Message: err.Error()}
	case errors.Is(err, provider.ErrJobNotDone),
		errors.Is(err, provider.ErrJobCancelled),
		errors.Is(err, provider.ErrJobFailed),
		errors.Is(err, engine.ErrNotCancellable),
		errors.Is(err, engine.ErrJobActive):
		return &jrpc2.Error{Code: codeJobNotActive, Message: err.Error()}
	default:
		return &jrpc2.Error{Code: codeInvalidParams, Message: err.Error()}
	}
}

func (rs *RPCServer) systemGetVersion(_ context.Context) (*common.VersionResponse, error) {
	return &common.VersionResponse{
		Version:   rs.version,
		Commit:    rs.commit,
		BuildType: rs.buildType,
	}, nil
}

func (rs *RPCServer) backendList(_ context.Context) (*common.BackendsResponse, error) {
	if rs.engine == nil {
		return nil, errors.New("engine unavailable")
	}
	return rs.engine.Backends()
}

func (rs *RPCServer) backendGet(_ context.Context, p *common.BackendParams) (*common.BackendResponse, error) {
	if rs.engine == nil {
		return nil, errors.New("engine unavailable")
	}
	if p.Name == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: name"}
	}
	resp, err := rs.engine.Backend(p.Name)
	if err != nil {
		return nil, rpcError(err)
	}
	return resp, nil
}

// jobSubmit accepts an assembled qobj and queues or schedules it.
func (rs *RPCServer) jobSubmit(_ context.Context, p *common.SubmitParams) (*common.SubmitResponse, error) {
	if rs.engine == nil {
		return nil, errors.New("engine unavailable")
	}
	if len(p.Qobj) == 0 {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: qobj"}
	}
	resp, err := rs.engine.Submit(p)
	if err != nil {
		return nil, rpcError(err)
	}
	if rs.pool != nil {
		rs.pool.AddJob(resp.JobId, nil)
	}
	return resp, nil
}

func (rs *RPCServer) jobStatus(_ context.Context, p *common.InputJobId) (*common.StatusResponse, error) {
	if rs.engine == nil {
		return nil, errors.New("engine unavailable")
	}
	resp, err := rs.engine.Status(p.JobId)
	if err != nil {
		return nil, rpcError(err)
	}
	return resp, nil
}

func (rs *RPCServer) jobResult(_ context.Context, p *common.InputJobId) (*common.ResultResponse, error) {
	if rs.engine == nil {
		return nil, errors.New("engine unavailable")
	}
	resp, err := rs.engine.Result(p.JobId)
	if err != nil {
		return nil, rpcError(err)
	}
	return resp, nil
}

func (rs *RPCServer) jobCancel(_ context.Context, p *common.InputJobId) (*common.CancelResponse, error) {
	if rs.engine == nil {
		return nil, errors.New("engine unavailable")
	}
	resp, err := rs.engine.Cancel(p.JobId)
	if err != nil {
		return nil, rpcError(err)
	}
	return resp, nil
}

func (rs *RPCServer) jobList(_ context.Context, p *common.ListParams) (*common.ListResponse, error) {
	if rs.engine == nil {
		return nil, errors.New("engine unavailable")
	}
	resp, err := rs.engine.List(p)
	if err != nil {
		return nil, rpcError(err)
	}
	return resp, nil
}

func (rs *RPCServer) jobFlush(_ context.Context, p *common.FlushParams) (*common.FlushResponse, error) {
	if rs.engine == nil {
		return nil, errors.New("engine unavailable")
	}
	resp, err := rs.engine.Flush(p.JobId)
	if err != nil {
		return nil, rpcError(err)
	}
	return resp, nil
}

// Close shuts down the jrpc2 bridge, releasing internal goroutines.
func (rs *RPCServer) Close() {
	rs.bridge.Close()
}
