package server

import (
	"encoding/json"

	"github.com/cjliu20152/qiskit/common"
)

// Response is the envelope for every framed server message, both direct
// replies and pushed job events.
type Response struct {
	Ok     bool    `json:"ok"`
	Error  string  `json:"error,omitempty"`
	Update *Update `json:"update,omitempty"`
}

// Update carries the typed payload of a successful response. The type
// tag lets clients route pushed events that arrive between replies.
type Update struct {
	Type    common.UpdateType `json:"type"`
	Message any               `json:"message,omitempty"`
}

// MakeResult encodes a success envelope for the given update type.
func MakeResult(utype common.UpdateType, res any) []byte {
	b, _ := json.Marshal(Response{
		Ok: true,
		Update: &Update{
			Type:    utype,
			Message: res,
		},
	})
	return b
}

// InitError encodes an error envelope from a Go error.
func InitError(err error) []byte {
	if err == nil {
		return CreateError("unknown error")
	}
	return CreateError(err.Error())
}

// CreateError encodes an error envelope from a message string.
func CreateError(msg string) []byte {
	b, _ := json.Marshal(Response{
		Ok:    false,
		Error: msg,
	})
	return b
}
