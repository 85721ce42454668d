package server

import (
	"fmt"
	"io"
	"sync"

	"github.com/cjliu20152/qiskit/common"
)

// intToBytes encodes a frame length as 4 little-endian bytes.
func intToBytes(val uint32) []byte {
	return []byte{
		byte(val),
		byte(val >> 8),
		byte(val >> 16),
		byte(val >> 24),
	}
}

// bytesToInt decodes a 4 byte little-endian frame length.
func bytesToInt(b []byte) uint32 {
	return uint32(b[0]) |
		uint32(b[1])<<8 |
		uint32(b[2])<<16 |
		uint32(b[3])<<24
}

// read receives one length-prefixed frame. The length header is read in
// full before the payload, so slow or chunked senders are handled
// correctly. Frames larger than common.MaxMessageSize are rejected
// before any payload bytes are read.
func read(mu *sync.Mutex, conn io.Reader) ([]byte, error) {
	mu.Lock()
	defer mu.Unlock()
	head := make([]byte, 4)
	if _, err := io.ReadFull(conn, head); err != nil {
		return nil, err
	}
	size := bytesToInt(head)
	if size > common.MaxMessageSize {
		return nil, fmt.Errorf("payload too large: %d bytes (max %d)", size, common.MaxMessageSize)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(conn, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// write sends one length-prefixed frame.
func write(mu *sync.Mutex, conn io.Writer, data []byte) error {
	if len(data) > common.MaxMessageSize {
		return fmt.Errorf("payload too large: %d bytes (max %d)", len(data), common.MaxMessageSize)
	}
	mu.Lock()
	defer mu.Unlock()
	if _, err := conn.Write(intToBytes(uint32(len(data)))); err != nil {
		return err
	}
	if _, err := conn.Write(data); err != nil {
		return err
	}
	return nil
}
