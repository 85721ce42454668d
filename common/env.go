// Package common provides the shared constants and wire types used across
// the qiskitd client-server communication layer.
package common

// Environment variable names for daemon configuration.
const (
	// SocketPathEnv overrides the Unix socket path.
	SocketPathEnv = "QISKITD_SOCKET_PATH"

	// TCPPortEnv overrides the fallback TCP port.
	TCPPortEnv = "QISKITD_TCP_PORT"

	// ForceTCPEnv forces TCP transport even where sockets work.
	ForceTCPEnv = "QISKITD_FORCE_TCP"

	// PipeNameEnv overrides the Windows named pipe name.
	PipeNameEnv = "QISKITD_PIPE_NAME"

	// DebugEnv enables debug logging.
	DebugEnv = "QISKITD_DEBUG"

	// RPCSecretEnv holds the bearer token that gates the JSON-RPC
	// endpoints. Empty disables them.
	RPCSecretEnv = "QISKITD_RPC_SECRET"
)
