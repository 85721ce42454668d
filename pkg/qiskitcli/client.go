// Package qiskitcli implements the client side of the qiskitd wire
// protocol: length-prefixed JSON frames over a unix socket, a Windows
// named pipe, or a loopback TCP fallback. It offers typed wrappers for
// every daemon method plus a push-update listener for attached jobs.
package qiskitcli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/cjliu20152/qiskit/common"
)

// dialFunc and ensureDaemonFunc exist so tests can stub transport and
// daemon spawning.
var (
	dialFunc         = net.Dial
	ensureDaemonFunc = ensureDaemon
)

type Client struct {
	mu     *sync.RWMutex
	d      *Dispatcher
	conn   net.Conn
	listen bool
}

// NewClient connects to the local daemon, starting it first if it is
// not already running.
func NewClient() (*Client, error) {
	return NewClientWithURI("")
}

// NewClientWithURI connects to the daemon at the given URI
// (unix:///path, tcp://host:port or pipe://name). An empty URI uses
// the default local transport and auto-spawns the daemon if needed;
// explicit URIs are assumed to point at an externally managed daemon
// and skip the spawn step.
func NewClientWithURI(rawURI string) (*Client, error) {
	var (
		conn net.Conn
		err  error
	)
	if strings.TrimSpace(rawURI) == "" {
		if err = ensureDaemonFunc(); err != nil {
			return nil, fmt.Errorf("error starting daemon: %s", err.Error())
		}
		conn, err = dial()
	} else {
		var uri *DaemonURI
		uri, err = ParseDaemonURI(rawURI)
		if err != nil {
			return nil, err
		}
		conn, err = dialURI(uri)
	}
	if err != nil {
		return nil, fmt.Errorf("error connecting to daemon: %s", err.Error())
	}
	return &Client{
		conn: conn,
		mu:   &sync.RWMutex{},
		d: &Dispatcher{
			Handlers: make(map[common.UpdateType][]Handler),
		},
	}, nil
}

// AddHandler registers a handler for pushed updates of the given type.
func (c *Client) AddHandler(utype common.UpdateType, h Handler) {
	c.d.AddHandler(utype, h)
}

// RemoveHandler drops all handlers registered for the given type.
func (c *Client) RemoveHandler(utype common.UpdateType) {
	delete(c.d.Handlers, utype)
}

// Disconnect tells a running Listen loop to stop after the frame it is
// currently processing.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.listen = false
	c.mu.Unlock()
}

// Close releases the daemon connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Listen reads pushed updates and dispatches them until the connection
// drops, Disconnect is called, or a handler returns ErrDisconnect.
func (c *Client) Listen() (err error) {
	defer c.conn.Close()
	c.mu.Lock()
	c.listen = true
	c.mu.Unlock()
	for {
		c.mu.RLock()
		if !c.listen {
			c.mu.RUnlock()
			break
		}
		var buf []byte
		buf, err = read(c.conn)
		if err != nil {
			c.mu.RUnlock()
			err = fmt.Errorf("error reading: %s", err.Error())
			return
		}
		err = c.d.process(buf)
		if err != nil {
			c.mu.RUnlock()
			if errors.Is(err, ErrDisconnect) {
				err = nil
				break
			}
			err = fmt.Errorf("error processing: %s", err.Error())
			return
		}
		c.mu.RUnlock()
	}
	return
}

// invoke performs one request-response round trip. It holds the write
// lock so a concurrent Listen loop cannot steal the response frame.
func (c *Client) invoke(method common.UpdateType, message any) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	buf, err := json.Marshal(&Request{
		Method:  method,
		Message: message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %s", method, err.Error())
	}
	err = write(c.conn, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %s", method, err.Error())
	}
	buf, err = read(c.conn)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %s", method, err.Error())
	}
	var res Response
	err = json.Unmarshal(buf, &res)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %s", method, err.Error())
	}
	if !res.Ok {
		return nil, errors.New(res.Error)
	}
	if res.Update == nil {
		return nil, fmt.Errorf("failed to read %s: response carried no update", method)
	}
	return res.Update.Message, nil
}
