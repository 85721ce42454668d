package server

import (
	"net"
	"sync"
)

// SyncConn wraps a net.Conn with separate read and write locks so that
// request handling and pushed job events can share one connection
// without interleaving frames.
type SyncConn struct {
	net.Conn
	rmu sync.Mutex
	wmu sync.Mutex
}

func NewSyncConn(conn net.Conn) *SyncConn {
	return &SyncConn{Conn: conn}
}

// Read receives one framed message.
func (c *SyncConn) Read() ([]byte, error) {
	return read(&c.rmu, c.Conn)
}

// Write sends one framed message.
func (c *SyncConn) Write(data []byte) error {
	return write(&c.wmu, c.Conn, data)
}
