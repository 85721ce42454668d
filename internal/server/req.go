package server

import (
	"encoding/json"

	"github.com/cjliu20152/qiskit/common"
)

// Request is one framed client call: a method name plus its params.
type Request struct {
	Method  common.UpdateType `json:"method"`
	Message json.RawMessage   `json:"message,omitempty"`
}

func ParseRequest(b []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(b, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
