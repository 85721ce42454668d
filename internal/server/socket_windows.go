//go:build windows

package server

import (
	"github.com/cjliu20152/qiskit/common"
)

// pipePath returns the Windows named pipe path.
// This is a convenience wrapper around common.PipePath().
func pipePath() string {
	return common.PipePath()
}
