package engine

import "errors"

var (
	// ErrEmptyQobj is returned when a submission carries no qobj payload.
	ErrEmptyQobj = errors.New("engine: empty qobj payload")

	// ErrBadSchedule is returned when --at/--every parameters do not
	// describe a future run.
	ErrBadSchedule = errors.New("engine: invalid schedule")

	// ErrNotCancellable is returned when cancelling a job that already
	// reached a terminal state.
	ErrNotCancellable = errors.New("engine: job already finished")

	// ErrJobActive is returned when flushing a job that has not
	// finished yet.
	ErrJobActive = errors.New("engine: job is still active")
)
