//go:build windows

package qiskitcli

import (
	"fmt"
	"net"
	"os"
	"os/exec"

	"github.com/cjliu20152/qiskit/common"
)

func getConnectionPath() string {
	return common.PipePath()
}

// isDaemonRunning probes the named pipe and the TCP fallback address.
func isDaemonRunning(path string) bool {
	timeout := socketDialTimeout
	conn, err := dialPipeFunc(path, &timeout)
	if err == nil {
		_ = conn.Close()
		return true
	}
	conn, err = net.DialTimeout("tcp", tcpAddress(), socketDialTimeout)
	if err == nil {
		_ = conn.Close()
		return true
	}
	return false
}

// spawnDaemon starts the daemon as a background process on Windows.
func spawnDaemon() error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	cmd := exec.Command(executable, "daemon")
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	// Release so the child never turns into a zombie.
	_ = cmd.Process.Release()

	return nil
}
