//go:build !windows

package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cjliu20152/qiskit/common"
)

// getTestSocketPath returns a Unix socket path for testing.
func getTestSocketPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.sock")
}

// setupTestListener points the daemon at a fresh socket path.
func setupTestListener(t *testing.T, sockPath string) {
	t.Helper()
	_ = os.Remove(sockPath)
	t.Setenv(common.SocketPathEnv, sockPath)
	t.Setenv(common.ForceTCPEnv, "")
}
