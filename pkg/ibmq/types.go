package ibmq

import (
	"github.com/cjliu20152/qiskit/pkg/provider"
	"github.com/cjliu20152/qiskit/pkg/qobj"
)

// BackendPayload is one backend row as served by the API.
type BackendPayload struct {
	Name          string                 `json:"backend_name"`
	Configuration provider.Configuration `json:"configuration"`
}

// StatusPayload is the availability snapshot of one backend.
type StatusPayload struct {
	Operational bool   `json:"operational"`
	PendingJobs int    `json:"pending_jobs"`
	Message     string `json:"status_msg,omitempty"`
}

// SubmitRequest is the job submission body.
type SubmitRequest struct {
	Backend string     `json:"backend"`
	Name    string     `json:"name,omitempty"`
	Qobj    *qobj.Qobj `json:"qobj"`
}

// JobPayload is one job row. Results are present only once the job is
// terminal.
type JobPayload struct {
	ID            string             `json:"id"`
	Backend       string             `json:"backend"`
	Name          string             `json:"name,omitempty"`
	Status        string             `json:"status"`
	QueuePosition int                `json:"queue_position,omitempty"`
	Error         string             `json:"error,omitempty"`
	Results       []*provider.Result `json:"results,omitempty"`
	CreatedAt     string             `json:"created_at,omitempty"`
	EndedAt       string             `json:"ended_at,omitempty"`
}

// StatusEvent is one message on a job's WebSocket status stream.
type StatusEvent struct {
	JobID         string `json:"job_id"`
	Status        string `json:"status"`
	QueuePosition int    `json:"queue_position,omitempty"`
	Error         string `json:"error,omitempty"`
}

// ErrorPayload is the error envelope of failed API calls.
type ErrorPayload struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
