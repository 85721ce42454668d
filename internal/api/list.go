package api

import (
	"encoding/json"

	"github.com/cjliu20152/qiskit/common"
	"github.com/cjliu20152/qiskit/internal/server"
)

func (s *Api) listHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.ListParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_LIST, nil, err
	}
	resp, err := s.engine.List(&m)
	if err != nil {
		return common.UPDATE_LIST, nil, err
	}
	return common.UPDATE_LIST, resp, nil
}
