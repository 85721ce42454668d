//go:build windows

package qiskitcli

import (
	"fmt"
	"net"

	"github.com/cjliu20152/qiskit/common"
)

// dialURI connects to a daemon at an explicit URI. This build handles
// the pipe and tcp schemes.
func dialURI(uri *DaemonURI) (net.Conn, error) {
	switch uri.Scheme {
	case SchemePipe:
		debugLog("connecting via named pipe to %s", uri.Address)
		timeout := common.DefaultDialTimeout
		conn, err := dialPipeFunc(uri.Address, &timeout)
		if err != nil {
			return nil, fmt.Errorf("named pipe connection failed: %w", err)
		}
		return conn, nil

	case SchemeTCP:
		debugLog("connecting via TCP to %s", uri.Address)
		conn, err := dialFunc("tcp", uri.Address)
		if err != nil {
			return nil, fmt.Errorf("tcp connection failed: %w", err)
		}
		return conn, nil

	case SchemeUnix:
		// ParseDaemonURI rejects unix URIs on Windows already.
		return nil, ErrUnixNotSupported

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, uri.Scheme)
	}
}
