package qiskitcli

import (
	"encoding/json"

	"github.com/cjliu20152/qiskit/common"
)

// Handler defines the interface for processing daemon updates.
// Implementations receive raw JSON messages and are responsible for
// unmarshaling and processing them appropriately.
type Handler interface {
	Handle(json.RawMessage) error
}

// NewRunningHandler creates a handler for job progress updates. The
// action parameter filters updates to only those matching the given
// job action; pass an empty action to receive all of them. The
// callback is invoked for each matching update.
func NewRunningHandler(action common.JobAction, callback func(*common.RunningResponse) error) *RunningHandler {
	return &RunningHandler{
		Action:   action,
		Callback: callback,
	}
}

// RunningHandler processes job progress updates pushed by the daemon.
// It filters updates by action and invokes a callback for matches.
type RunningHandler struct {
	Action   common.JobAction
	Callback func(*common.RunningResponse) error
}

// Handle unmarshals a raw job progress message, checks it against the
// configured action filter, and invokes the callback if it matches.
func (h *RunningHandler) Handle(m json.RawMessage) error {
	var v common.RunningResponse
	err := json.Unmarshal(m, &v)
	if err != nil {
		return err
	}
	if h.Action != "" && v.Action != h.Action {
		return nil
	}
	return h.Callback(&v)
}
