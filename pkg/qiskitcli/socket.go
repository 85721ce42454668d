//go:build !windows

package qiskitcli

import (
	"os"
	"path/filepath"

	"github.com/cjliu20152/qiskit/common"
)

func socketPath() string {
	if path := os.Getenv(common.SocketPathEnv); path != "" {
		return path
	}
	return filepath.Join(os.TempDir(), "qiskitd.sock")
}
