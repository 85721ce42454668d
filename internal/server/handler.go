package server

import (
	"encoding/json"

	"github.com/cjliu20152/qiskit/common"
)

// HandlerFunc processes one decoded request body and returns the update
// type and payload for the response envelope. Returning an error sends
// an error response instead; the connection stays open either way.
type HandlerFunc func(conn *SyncConn, pool *Pool, body json.RawMessage) (common.UpdateType, any, error)
