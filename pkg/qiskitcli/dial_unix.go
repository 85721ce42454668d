//go:build !windows

package qiskitcli

import (
	"fmt"
	"net"
)

// dial establishes a connection to the daemon using the unix socket
// with TCP fallback. Transport priority: unix socket > TCP.
func dial() (net.Conn, error) {
	debugLog("attempting connection via unix socket at %s", socketPath())
	conn, unixErr := dialFunc("unix", socketPath())
	if unixErr != nil {
		debugLog("unix socket connection failed: %v, falling back to TCP", unixErr)
		conn, err := dialFunc("tcp", tcpAddress())
		if err != nil {
			return nil, fmt.Errorf("failed to connect: unix socket error: %v; tcp error: %w", unixErr, err)
		}
		debugLog("connected via TCP fallback to %s", tcpAddress())
		return conn, nil
	}
	debugLog("connected via unix socket")
	return conn, nil
}
