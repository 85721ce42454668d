package server

// ErrorType classifies an error recorded against a job in the pool.
type ErrorType int

const (
	// ErrorTypeCritical marks an error that ends the job.
	ErrorTypeCritical ErrorType = iota
	// ErrorTypeWarning marks a recoverable condition.
	ErrorTypeWarning
)

// Error is the last error observed for a job, kept so that clients
// attaching after the fact still see why the job stopped.
type Error struct {
	Type    ErrorType `json:"error_type"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}
