package server

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

// forceTCP reports whether the TCP transport is forced even where the
// socket transport would work.
func forceTCP() bool {
	return os.Getenv(common.ForceTCPEnv) == "1"
}
