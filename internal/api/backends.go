package api

import (
	"encoding/json"
	"errors"

	"github.com/cjliu20152/qiskit/common"
	"github.com/cjliu20152/qiskit/internal/server"
)

func (s *Api) backendsHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	resp, err := s.engine.Backends()
	if err != nil {
		return common.UPDATE_BACKENDS, nil, err
	}
	return common.UPDATE_BACKENDS, resp, nil
}

// backendHandler returns one backend's info plus its full pulse
// configuration, which clients need to assemble qobjs locally.
func (s *Api) backendHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.BackendParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_BACKEND, nil, err
	}
	if m.Name == "" {
		return common.UPDATE_BACKEND, nil, errors.New("name is required")
	}
	resp, err := s.engine.Backend(m.Name)
	if err != nil {
		return common.UPDATE_BACKEND, nil, err
	}
	return common.UPDATE_BACKEND, resp, nil
}
