package server

import (
	"sync"

	"github.com/cjliu20152/qiskit/pkg/logger"
)

// Pool tracks which client connections are attached to which job, and
// remembers the last error recorded per job so late attachers still see
// why a job stopped. All methods are safe for concurrent use.
type Pool struct {
	mu  sync.RWMutex
	log logger.Logger
	m   map[string][]*SyncConn
	e   map[string]*Error
}

func NewPool(l logger.Logger) *Pool {
	return &Pool{
		log: l,
		m:   make(map[string][]*SyncConn),
		e:   make(map[string]*Error),
	}
}

// AddJob registers a job in the pool, replacing any previous connection
// list. A nil conn registers the job with no attached clients yet.
func (p *Pool) AddJob(uid string, conn *SyncConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if conn == nil {
		p.m[uid] = []*SyncConn{}
		return
	}
	p.m[uid] = []*SyncConn{conn}
}

// AddConnection attaches another client to a job. The job entry is
// created if it does not exist yet.
func (p *Pool) AddConnection(uid string, conn *SyncConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.m[uid] = append(p.m[uid], conn)
}

// HasJob reports whether the job is registered in the pool.
func (p *Pool) HasJob(uid string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.m[uid]
	return ok
}

// StopJob forgets the job's connection list. The connections themselves
// stay open; their read loops own the lifecycle.
func (p *Pool) StopJob(uid string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.m, uid)
}

// Broadcast sends one framed message to every connection attached to
// the job. Connections that fail to receive are closed and dropped.
func (p *Pool) Broadcast(uid string, data []byte) {
	p.mu.RLock()
	conns := make([]*SyncConn, len(p.m[uid]))
	copy(conns, p.m[uid])
	p.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.Write(data); err != nil {
			if p.log != nil {
				p.log.Warning("dropping attached client for job %s: %v", uid, err)
			}
			p.removeConn(uid, conn)
		}
	}
}

// WriteError records an error against a job. A critical error sticks:
// later warnings do not overwrite it.
func (p *Pool) WriteError(uid string, errType ErrorType, errMessage string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if prev, ok := p.e[uid]; ok && prev.Type == ErrorTypeCritical && errType != ErrorTypeCritical {
		return
	}
	p.e[uid] = &Error{errType, errMessage}
}

// ForceWriteError records an error unconditionally.
func (p *Pool) ForceWriteError(uid string, errType ErrorType, errMessage string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.e[uid] = &Error{errType, errMessage}
}

// GetError returns the recorded error for a job, or nil.
func (p *Pool) GetError(uid string) *Error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.e[uid]
}

func (p *Pool) removeConn(uid string, conn *SyncConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	conns := p.m[uid]
	for i, c := range conns {
		if c != conn {
			continue
		}
		_ = c.Close()
		// shift last connection to the freed index
		conns[i] = conns[len(conns)-1]
		p.m[uid] = conns[:len(conns)-1]
		return
	}
}
