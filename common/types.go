package common

import (
	"encoding/json"
	"time"

	"github.com/cjliu20152/qiskit/pkg/provider"
)

// InputJobId selects a single job for status, result, cancel and attach
// calls.
type InputJobId struct {
	JobId string `json:"job_id"`
}

// SubmitParams carries an assembled qobj to the daemon.
type SubmitParams struct {
	Backend  string          `json:"backend"`
	Name     string          `json:"name,omitempty"`
	Qobj     json.RawMessage `json:"qobj"`
	Priority int             `json:"priority,omitempty"`
	// At defers the run to a wall-clock instant, RFC 3339.
	At string `json:"at,omitempty"`
	// Every re-runs the job on a cron cadence.
	Every string `json:"every,omitempty"`
}

type SubmitResponse struct {
	JobId         string `json:"job_id"`
	Backend       string `json:"backend"`
	Name          string `json:"name"`
	Status        string `json:"status"`
	QueuePosition int    `json:"queue_position"`
	ScheduledAt   string `json:"scheduled_at,omitempty"`
}

// JobInfo summarises one job row. Zero time fields mean the job has not
// reached that stage yet.
type JobInfo struct {
	JobId       string    `json:"job_id"`
	Backend     string    `json:"backend"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	Shots       int       `json:"shots"`
	MeasLevel   int       `json:"meas_level"`
	SubmittedAt time.Time `json:"submitted_at"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Error       string    `json:"error,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
	CronExpr    string    `json:"cron_expr,omitempty"`
}

type StatusResponse struct {
	Job *JobInfo `json:"job"`
	// QueuePosition is -1 unless the job is waiting in the queue.
	QueuePosition int `json:"queue_position"`
}

type ResultResponse struct {
	JobId string `json:"job_id"`
	// Results holds one entry per experiment in submission order.
	Results []*provider.Result `json:"results"`
}

type CancelResponse struct {
	JobId  string `json:"job_id"`
	Status string `json:"status"`
}

type ListParams struct {
	Backend string `json:"backend,omitempty"`
	Status  string `json:"status,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

type ListResponse struct {
	Jobs []*JobInfo `json:"jobs"`
}

type FlushParams struct {
	// JobId flushes a single job; empty flushes all terminal jobs.
	JobId string `json:"job_id,omitempty"`
}

type FlushResponse struct {
	Flushed int `json:"flushed"`
}

// RunningResponse is one pushed event on an attached job stream.
type RunningResponse struct {
	JobId           string    `json:"job_id"`
	Action          JobAction `json:"action"`
	Status          string    `json:"status"`
	QueuePosition   int       `json:"queue_position,omitempty"`
	Experiments     int       `json:"experiments,omitempty"`
	ExperimentsDone int       `json:"experiments_done,omitempty"`
	TotalShots      int64     `json:"total_shots,omitempty"`
	CompletedShots  int64     `json:"completed_shots,omitempty"`
	Error           string    `json:"error,omitempty"`
}

type BackendInfo struct {
	Name        string  `json:"name"`
	NumQubits   int     `json:"n_qubits"`
	Simulator   bool    `json:"simulator"`
	Operational bool    `json:"operational"`
	StatusMsg   string  `json:"status_msg,omitempty"`
	PendingJobs int     `json:"pending_jobs"`
	MaxShots    int     `json:"max_shots"`
	Dt          float64 `json:"dt"`
}

type BackendsResponse struct {
	Backends []*BackendInfo `json:"backends"`
}

type BackendParams struct {
	Name string `json:"name"`
}

type BackendResponse struct {
	Info          *BackendInfo            `json:"info"`
	Configuration *provider.Configuration `json:"configuration"`
}

type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildType string `json:"build_type,omitempty"`
}
