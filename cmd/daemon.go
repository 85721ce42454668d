package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli"

	"github.com/cjliu20152/qiskit/cmd/common"
	"github.com/cjliu20152/qiskit/pkg/logger"
)

// daemon runs the pulse daemon in the foreground until interrupted.
func daemon(ctx *cli.Context) error {
	// Refuse to start a second daemon against the same store.
	if pid, err := ReadPidFile(); err == nil && isProcessRunning(pid) {
		fmt.Printf("Daemon is already running (PID %d)\n", pid)
		return nil
	}

	if err := WritePidFile(); err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "write_pidfile", err)
		return nil
	}
	defer func() {
		if err := RemovePidFile(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not remove PID file: %v\n", err)
		}
	}()

	runCtx, cancel := setupShutdownHandler()
	defer cancel()

	l := logger.NewStandardLogger(log.Default())
	c, err := initDaemonComponents(runCtx, l)
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "init", err)
		return nil
	}
	defer c.Close()

	return c.Server.Start(runCtx)
}
