package ibmq

import "errors"

var (
	ErrNoURL        = errors.New("account url is empty")
	ErrNoToken      = errors.New("account token is empty")
	ErrBadURL       = errors.New("account url must be http or https")
	ErrUnauthorized = errors.New("credentials rejected")
	ErrNotFound     = errors.New("resource not found")
	ErrRateLimited  = errors.New("rate limited")
	ErrAPI          = errors.New("api request failed")
	ErrJobFailed    = errors.New("job failed")
	ErrJobCancelled = errors.New("job cancelled")
)
