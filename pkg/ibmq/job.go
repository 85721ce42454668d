package ibmq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cjliu20152/qiskit/pkg/provider"
)

// pollInterval paces the fallback status polling loop when the
// WebSocket stream is unavailable.
const pollInterval = 2 * time.Second

// Job tracks one remote job row.
type Job struct {
	client  *Client
	id      string
	backend string
}

// NewJob rebinds an existing remote job by id, for re-attaching after a
// CLI restart.
func NewJob(client *Client, id, backend string) *Job {
	return &Job{client: client, id: id, backend: backend}
}

// ID implements provider.Job.
func (j *Job) ID() string { return j.id }

// Backend implements provider.Job.
func (j *Job) Backend() string { return j.backend }

// Status implements provider.Job.
func (j *Job) Status(ctx context.Context) (provider.JobStatus, error) {
	row, err := j.client.Job(ctx, j.id)
	if err != nil {
		return "", err
	}
	return provider.ParseJobStatus(row.Status)
}

// Result implements provider.Job. It waits for a terminal status over
// the WebSocket stream, falling back to polling when the stream cannot
// be established, then fetches the final row.
func (j *Job) Result(ctx context.Context) (*provider.Result, error) {
	if err := j.wait(ctx); err != nil {
		return nil, err
	}
	row, err := j.client.Job(ctx, j.id)
	if err != nil {
		return nil, err
	}
	status, err := provider.ParseJobStatus(row.Status)
	if err != nil {
		return nil, err
	}
	var res *provider.Result
	if len(row.Results) > 0 {
		res = row.Results[0]
	}
	switch status {
	case provider.StatusDone:
		if res == nil {
			return nil, fmt.Errorf("job %s: terminal row has no results: %w", j.id, ErrAPI)
		}
		return res, nil
	case provider.StatusCancelled:
		return res, fmt.Errorf("job %s: %w", j.id, ErrJobCancelled)
	default:
		return res, fmt.Errorf("job %s: %s: %w", j.id, row.Error, ErrJobFailed)
	}
}

// Cancel implements provider.Job.
func (j *Job) Cancel(ctx context.Context) error {
	_, err := j.client.CancelJob(ctx, j.id)
	if err != nil && isNotFound(err) {
		return fmt.Errorf("job %s: %w", j.id, provider.ErrJobNotFound)
	}
	return err
}

// wait blocks until the job reaches a terminal status.
func (j *Job) wait(ctx context.Context) error {
	err := j.client.StreamJobStatus(ctx, j.id, func(ev StatusEvent) bool {
		status, perr := provider.ParseJobStatus(ev.Status)
		return perr == nil && status.Terminal()
	})
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	// Stream unavailable; poll.
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		status, err := j.Status(ctx)
		if err != nil {
			return err
		}
		if status.Terminal() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
