package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cjliu20152/qiskit/common"
	"github.com/cjliu20152/qiskit/internal/api"
	"github.com/cjliu20152/qiskit/internal/engine"
	"github.com/cjliu20152/qiskit/internal/server"
	"github.com/cjliu20152/qiskit/internal/store"
	"github.com/cjliu20152/qiskit/pkg/logger"
	"github.com/cjliu20152/qiskit/pkg/simulator"
)

const (
	// rpcSecretEnv enables the HTTP sidecar's JSON-RPC bridge. When it
	// is unset the RPC endpoint rejects every request.
	rpcSecretEnv = "QISKITD_RPC_SECRET"
	// rpcListenAllEnv makes the HTTP sidecar bind all interfaces
	// instead of loopback only.
	rpcListenAllEnv = "QISKITD_RPC_LISTEN_ALL"
)

// DaemonComponents holds all initialized daemon components. This allows
// for unified initialization and cleanup across console mode and
// Windows service mode.
type DaemonComponents struct {
	Store    *store.Store
	Provider *simulator.Provider
	Engine   *engine.Engine
	Api      *api.Api
	Server   *server.Server
	logger   logger.Logger
}

// Close releases all daemon component resources in reverse order of
// initialization. This ensures proper cleanup regardless of how the
// daemon was started.
func (c *DaemonComponents) Close() {
	if c.logger != nil {
		c.logger.Info("Shutting down daemon...")
	}

	if c.Server != nil {
		if err := c.Server.Shutdown(); err != nil {
			c.logger.Error("server shutdown: %v", err)
		}
	}

	// Closing the API closes the engine and its store underneath.
	if c.Api != nil {
		_ = c.Api.Close()
	}

	if c.logger != nil {
		c.logger.Info("Daemon stopped")
	}
}

// initDaemonComponents initializes all daemon components with the
// provided logger. This is the shared initialization used by both
// console mode and Windows service mode.
//
// On error, any partially initialized components are cleaned up before
// returning.
var initDaemonComponents = func(ctx context.Context, log logger.Logger) (*DaemonComponents, error) {
	dir, err := configDir()
	if err != nil {
		log.Error("Config directory unavailable: %v", err)
		return nil, err
	}

	st, err := store.New(filepath.Join(dir, dbFileName))
	if err != nil {
		log.Error("Job store initialization failed: %v", err)
		return nil, err
	}

	prov := simulator.NewProvider(&simulator.ProviderOpts{Logger: log})

	// The engine publishes job events to the server, the server routes
	// requests back into the engine. Capturing srv breaks the cycle:
	// it is set before the engine runs its first job.
	var srv *server.Server
	eng := engine.New(ctx, log, st, prov, &engine.Opts{
		OnEvent: func(ev *common.RunningResponse) {
			if srv != nil {
				srv.Publish(ev)
			}
		},
	})

	rpcCfg := &server.RPCConfig{
		Secret:    os.Getenv(rpcSecretEnv),
		ListenAll: os.Getenv(rpcListenAllEnv) != "",
		Version:   currentBuildArgs.Version,
		Commit:    currentBuildArgs.Commit,
		BuildType: currentBuildArgs.BuildType,
	}
	srv = server.NewServer(log, eng, common.DefaultTCPPort, rpcCfg)

	s, err := api.NewApi(log, eng,
		currentBuildArgs.Version, currentBuildArgs.Commit, currentBuildArgs.BuildType)
	if err != nil {
		log.Error("API initialization failed: %v", err)
		eng.Close()
		return nil, err
	}
	s.RegisterHandlers(srv)

	if err := eng.Recover(); err != nil {
		log.Error("Job recovery failed: %v", err)
		_ = s.Close()
		return nil, err
	}

	return &DaemonComponents{
		Store:    st,
		Provider: prov,
		Engine:   eng,
		Api:      s,
		Server:   srv,
		logger:   log,
	}, nil
}
