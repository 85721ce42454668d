package provider

import "fmt"

// JobStatus is the lifecycle state of a submitted job. The zero value is
// not a valid status; jobs start in StatusInitializing.
type JobStatus string

const (
	StatusInitializing JobStatus = "INITIALIZING"
	StatusQueued       JobStatus = "QUEUED"
	StatusValidating   JobStatus = "VALIDATING"
	StatusRunning      JobStatus = "RUNNING"
	StatusCancelled    JobStatus = "CANCELLED"
	StatusDone         JobStatus = "DONE"
	StatusError        JobStatus = "ERROR"
)

// jobStatusOrder maps each status to its position in the normal lifecycle.
// Terminal states share the highest rank.
var jobStatusOrder = map[JobStatus]int{
	StatusInitializing: 0,
	StatusQueued:       1,
	StatusValidating:   2,
	StatusRunning:      3,
	StatusCancelled:    4,
	StatusDone:         4,
	StatusError:        4,
}

// Valid reports whether s is one of the defined statuses.
func (s JobStatus) Valid() bool {
	_, ok := jobStatusOrder[s]
	return ok
}

// Terminal reports whether the status is final: done, failed or cancelled.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusDone, StatusError, StatusCancelled:
		return true
	default:
		return false
	}
}

// Before reports whether s precedes other in the job lifecycle. Used to
// drop stale status updates arriving out of order.
func (s JobStatus) Before(other JobStatus) bool {
	return jobStatusOrder[s] < jobStatusOrder[other]
}

// ParseJobStatus converts a wire string into a JobStatus.
func ParseJobStatus(raw string) (JobStatus, error) {
	s := JobStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown job status %q", raw)
	}
	return s, nil
}
