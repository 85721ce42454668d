//go:build windows

package qiskitcli

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/Microsoft/go-winio"

	"github.com/cjliu20152/qiskit/common"
)

// dialPipeFunc points at the real pipe dialer so tests can mock it.
var dialPipeFunc = dialPipeImpl

// dialPipeImpl dials a Windows named pipe. A nil timeout uses
// common.DefaultDialTimeout.
func dialPipeImpl(path string, timeout *time.Duration) (net.Conn, error) {
	if timeout == nil {
		defaultTimeout := common.DefaultDialTimeout
		timeout = &defaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	return winio.DialPipeContext(ctx, path)
}

// dial establishes a connection to the daemon using the named pipe
// with TCP fallback. Transport priority: named pipe > TCP.
func dial() (net.Conn, error) {
	path := common.PipePath()
	debugLog("attempting connection via named pipe at %s", path)
	timeout := common.DefaultDialTimeout
	conn, pipeErr := dialPipeFunc(path, &timeout)
	if pipeErr != nil {
		debugLog("named pipe connection failed: %v, falling back to TCP", pipeErr)
		conn, err := dialFunc("tcp", tcpAddress())
		if err != nil {
			return nil, fmt.Errorf("failed to connect: named pipe error: %v; tcp error: %w", pipeErr, err)
		}
		debugLog("connected via TCP fallback to %s", tcpAddress())
		return conn, nil
	}
	debugLog("connected via named pipe")
	return conn, nil
}
