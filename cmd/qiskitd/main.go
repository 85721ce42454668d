// qiskitd is a standalone daemon binary. The same daemon is reachable
// through `qiskit daemon`; this entry point exists for service files
// and containers that want nothing but the server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/cjliu20152/qiskit/common"
	"github.com/cjliu20152/qiskit/internal/api"
	"github.com/cjliu20152/qiskit/internal/engine"
	"github.com/cjliu20152/qiskit/internal/server"
	"github.com/cjliu20152/qiskit/internal/store"
	"github.com/cjliu20152/qiskit/pkg/logger"
	"github.com/cjliu20152/qiskit/pkg/simulator"
)

var (
	version   string
	commit    string
	buildType string = "unclassified"
)

func main() {
	if err := run(); err != nil {
		fmt.Println("qiskitd:", err.Error())
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, os.Interrupt)
	go func() {
		<-sigChan
		signal.Stop(sigChan)
		cancel()
	}()

	l := logger.NewStandardLogger(log.Default())

	dir := os.Getenv("QISKIT_CONFIG_DIR")
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return err
		}
		dir = filepath.Join(base, "qiskit")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	st, err := store.New(filepath.Join(dir, "jobs.db"))
	if err != nil {
		return err
	}

	prov := simulator.NewProvider(&simulator.ProviderOpts{Logger: l})

	var srv *server.Server
	eng := engine.New(ctx, l, st, prov, &engine.Opts{
		OnEvent: func(ev *common.RunningResponse) {
			if srv != nil {
				srv.Publish(ev)
			}
		},
	})

	rpcCfg := &server.RPCConfig{
		Secret:    os.Getenv("QISKITD_RPC_SECRET"),
		ListenAll: os.Getenv("QISKITD_RPC_LISTEN_ALL") != "",
		Version:   version,
		Commit:    commit,
		BuildType: buildType,
	}
	srv = server.NewServer(l, eng, common.DefaultTCPPort, rpcCfg)

	s, err := api.NewApi(l, eng, version, commit, buildType)
	if err != nil {
		eng.Close()
		return err
	}
	s.RegisterHandlers(srv)
	defer s.Close()

	if err := eng.Recover(); err != nil {
		return err
	}

	return srv.Start(ctx)
}
