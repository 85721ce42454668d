//go:build !windows

package server

import (
	"fmt"
	"net"

	"github.com/cjliu20152/qiskit/common"
)

// createListener creates a Unix socket listener with TCP fallback.
// Transport priority: Unix socket > TCP.
func (s *Server) createListener() (net.Listener, error) {
	if forceTCP() {
		s.log.Info("force TCP mode enabled, using TCP listener")
		return net.Listen("tcp", fmt.Sprintf("%s:%d", common.TCPHost, s.port))
	}

	socketPath := socketPath()
	if err := cleanupSocket(); err != nil {
		s.log.Warning("could not remove stale socket %s: %v", socketPath, err)
	}
	l, err := net.ListenUnix("unix", &net.UnixAddr{
		Name: socketPath,
		Net:  "unix",
	})
	if err != nil {
		s.log.Warning("unix socket unavailable (%v), falling back to tcp", err)
		tcpListener, tcpErr := net.Listen("tcp", fmt.Sprintf("%s:%d", common.TCPHost, s.port))
		if tcpErr != nil {
			return nil, fmt.Errorf("error listening: %s", tcpErr.Error())
		}
		return tcpListener, nil
	}
	if err := setSocketPermissions(socketPath); err != nil {
		s.log.Warning("could not restrict socket permissions: %v", err)
	}
	return l, nil
}
