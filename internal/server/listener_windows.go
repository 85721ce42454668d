//go:build windows

package server

import (
	"fmt"
	"net"

	"github.com/Microsoft/go-winio"

	"github.com/cjliu20152/qiskit/common"
)

// pipeSecurityDescriptor restricts pipe access to:
// - SYSTEM: Full control (for service scenarios)
// - Built-in Administrators: Full control
// - Creator Owner: Full control (the user running the daemon)
const pipeSecurityDescriptor = "D:(A;;GA;;;SY)(A;;GA;;;BA)(A;;GA;;;CO)"

// createListener creates a Windows named pipe listener with TCP fallback.
// Transport priority: Named pipe > TCP.
func (s *Server) createListener() (net.Listener, error) {
	if forceTCP() {
		s.log.Info("force TCP mode enabled, using TCP listener")
		return net.Listen("tcp", fmt.Sprintf("%s:%d", common.TCPHost, s.port))
	}

	pipePath := pipePath()
	cfg := &winio.PipeConfig{
		SecurityDescriptor: pipeSecurityDescriptor,
	}

	l, err := winio.ListenPipe(pipePath, cfg)
	if err != nil {
		s.log.Warning("named pipe creation failed (%v), falling back to tcp", err)
		tcpListener, tcpErr := net.Listen("tcp", fmt.Sprintf("%s:%d", common.TCPHost, s.port))
		if tcpErr != nil {
			return nil, fmt.Errorf("error listening: %s", tcpErr.Error())
		}
		return tcpListener, nil
	}
	return l, nil
}
