package qiskitcli

import (
	"encoding/json"

	"github.com/cjliu20152/qiskit/common"
)

func invoke[T any](c *Client, method common.UpdateType, message any) (*T, error) {
	resp, err := c.invoke(method, message)
	if err != nil {
		return nil, err
	}
	var d T
	return &d, json.Unmarshal(resp, &d)
}

// SubmitOpts carries the optional submit knobs. Zero values are
// omitted from the wire request.
type SubmitOpts struct {
	Name     string `json:"name,omitempty"`
	Priority int    `json:"priority,omitempty"`
	At       string `json:"at,omitempty"`
	Every    string `json:"every,omitempty"`
}

// Submit sends an assembled qobj to the daemon for execution on the
// named backend and returns the accepted job.
func (c *Client) Submit(backend string, qobj json.RawMessage, opts *SubmitOpts) (*common.SubmitResponse, error) {
	if opts == nil {
		opts = &SubmitOpts{}
	}
	return invoke[common.SubmitResponse](c, common.UPDATE_SUBMIT, &common.SubmitParams{
		Backend:  backend,
		Name:     opts.Name,
		Qobj:     qobj,
		Priority: opts.Priority,
		At:       opts.At,
		Every:    opts.Every,
	})
}

// Status fetches the current state of one job.
func (c *Client) Status(jobId string) (*common.StatusResponse, error) {
	return invoke[common.StatusResponse](c, common.UPDATE_STATUS, &common.InputJobId{JobId: jobId})
}

// Result fetches the measurement results of a completed job.
func (c *Client) Result(jobId string) (*common.ResultResponse, error) {
	return invoke[common.ResultResponse](c, common.UPDATE_RESULT, &common.InputJobId{JobId: jobId})
}

// Cancel stops a queued, scheduled or running job.
func (c *Client) Cancel(jobId string) (*common.CancelResponse, error) {
	return invoke[common.CancelResponse](c, common.UPDATE_CANCEL, &common.InputJobId{JobId: jobId})
}

// Attach subscribes this connection to a job's progress stream and
// returns a status snapshot. Pushed updates arrive via Listen.
func (c *Client) Attach(jobId string) (*common.StatusResponse, error) {
	return invoke[common.StatusResponse](c, common.UPDATE_ATTACH, &common.InputJobId{JobId: jobId})
}

type ListOpts common.ListParams

// List fetches job rows, newest first, optionally filtered by backend
// or status.
func (c *Client) List(opts *ListOpts) (*common.ListResponse, error) {
	if opts == nil {
		opts = &ListOpts{}
	}
	return invoke[common.ListResponse](c, common.UPDATE_LIST, (*common.ListParams)(opts))
}

// Flush removes one terminal job, or every terminal job when jobId is
// empty, and reports how many rows went away.
func (c *Client) Flush(jobId string) (*common.FlushResponse, error) {
	return invoke[common.FlushResponse](c, common.UPDATE_FLUSH, &common.FlushParams{JobId: jobId})
}

// Backends lists every backend the daemon's provider exposes.
func (c *Client) Backends() (*common.BackendsResponse, error) {
	return invoke[common.BackendsResponse](c, common.UPDATE_BACKENDS, nil)
}

// Backend fetches one backend with its full pulse configuration.
func (c *Client) Backend(name string) (*common.BackendResponse, error) {
	return invoke[common.BackendResponse](c, common.UPDATE_BACKEND, &common.BackendParams{Name: name})
}

// GetDaemonVersion reports the running daemon's build information.
func (c *Client) GetDaemonVersion() (*common.VersionResponse, error) {
	return invoke[common.VersionResponse](c, common.UPDATE_VERSION, nil)
}
