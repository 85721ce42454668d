// Package provider defines the surface between pulse programs and the
// things that execute them. A Provider hands out Backends, a Backend runs
// schedules and returns Jobs, a Job resolves to a Result. Local simulators
// and remote hardware gateways implement the same three interfaces, so the
// CLI and the daemon never care which one they are holding.
package provider

import (
	"context"

	"github.com/cjliu20152/qiskit/pkg/pulse"
)

// Provider enumerates and resolves execution backends.
type Provider interface {
	// Name identifies the provider, e.g. "aer" or "ibmq".
	Name() string
	// Backends lists every backend the provider serves.
	Backends(ctx context.Context) ([]Backend, error)
	// Backend resolves a backend by name. Returns ErrBackendNotFound
	// when the provider does not serve it.
	Backend(ctx context.Context, name string) (Backend, error)
}

// Backend executes pulse schedules.
type Backend interface {
	// Name identifies the backend, e.g. "sim1q" or "sim5q".
	Name() string
	// Configuration describes the device: qubit count, cycle time,
	// default frequencies, shot limits.
	Configuration() Configuration
	// Status reports current availability and queue depth.
	Status(ctx context.Context) (BackendStatus, error)
	// Run submits a schedule for execution and returns the tracking
	// job. Run returns once the job is accepted, not once it finishes.
	Run(ctx context.Context, sched *pulse.Schedule, opts *RunOpts) (Job, error)
}

// Job tracks one submitted schedule through to its result.
type Job interface {
	// ID is the unique job identifier assigned at submission.
	ID() string
	// Backend names the backend the job runs on.
	Backend() string
	// Status reports the current lifecycle state.
	Status(ctx context.Context) (JobStatus, error)
	// Result blocks until the job reaches a terminal state and returns
	// the outcome. Cancelled and failed jobs return an error alongside
	// whatever partial result exists.
	Result(ctx context.Context) (*Result, error)
	// Cancel requests the job stop. Cancelling a terminal job is a
	// no-op.
	Cancel(ctx context.Context) error
}
