package simulator

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/cjliu20152/qiskit/pkg/provider"
)

// simJob tracks one asynchronous schedule execution.
type simJob struct {
	id      string
	backend string
	name    string

	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	status provider.JobStatus
	result *provider.Result
	err    error
}

func newSimJob(backend, name string, cancel context.CancelFunc) *simJob {
	return &simJob{
		id:      newJobID(),
		backend: backend,
		name:    name,
		cancel:  cancel,
		done:    make(chan struct{}),
		status:  provider.StatusInitializing,
	}
}

// ID implements provider.Job.
func (j *simJob) ID() string { return j.id }

// Backend implements provider.Job.
func (j *simJob) Backend() string { return j.backend }

// Status implements provider.Job.
func (j *simJob) Status(ctx context.Context) (provider.JobStatus, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status, nil
}

// Result implements provider.Job: it blocks until the job settles.
func (j *simJob) Result(ctx context.Context) (*provider.Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-j.done:
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result, j.err
}

// Cancel implements provider.Job. Cancelling a settled job is a no-op.
func (j *simJob) Cancel(ctx context.Context) error {
	j.mu.Lock()
	terminal := j.status.Terminal()
	j.mu.Unlock()
	if terminal {
		return nil
	}
	j.cancel()
	return nil
}

// setStatus advances the lifecycle, ignoring stale transitions.
func (j *simJob) setStatus(s provider.JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.Terminal() || s.Before(j.status) {
		return
	}
	j.status = s
}

// settle finishes the job exactly once.
func (j *simJob) settle(res *provider.Result, status provider.JobStatus, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.Terminal() {
		return
	}
	j.status = status
	j.result = res
	j.err = err
	close(j.done)
}

func newJobID() string {
	var buf [8]byte
	rand.Read(buf[:])
	return hex.EncodeToString(buf[:])
}
