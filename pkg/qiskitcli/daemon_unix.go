//go:build !windows

package qiskitcli

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"syscall"
)

func getConnectionPath() string {
	return socketPath()
}

// isDaemonRunning probes the unix socket and the TCP fallback address.
func isDaemonRunning(path string) bool {
	conn, err := net.DialTimeout("unix", path, socketDialTimeout)
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

// spawnDaemon starts the daemon as a background process on Unix
// systems.
func spawnDaemon() error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	cmd := exec.Command(executable, "daemon")
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil
	// Detach from the parent process group so the daemon survives CLI exit.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	// Release so the child never turns into a zombie.
	_ = cmd.Process.Release()

	return nil
}
