package provider

import "errors"

var (
	ErrBackendNotFound = errors.New("backend not found")
	ErrJobNotFound     = errors.New("job not found")
	ErrJobNotDone      = errors.New("job has not finished")
	ErrJobCancelled    = errors.New("job was cancelled")
	ErrJobFailed       = errors.New("job failed")
	ErrEmptySchedule   = errors.New("schedule has no instructions")
	ErrTooManyShots    = errors.New("shot count exceeds backend limit")
	ErrBadMeasLevel    = errors.New("unsupported measurement level")
	ErrQubitRange      = errors.New("channel index exceeds backend qubits")
)
