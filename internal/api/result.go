package api

import (
	"encoding/json"
	"errors"

	"github.com/cjliu20152/qiskit/common"
	"github.com/cjliu20152/qiskit/internal/server"
)

func (s *Api) resultHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.InputJobId
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_RESULT, nil, err
	}
	if m.JobId == "" {
		return common.UPDATE_RESULT, nil, errors.New("job_id is required")
	}
	resp, err := s.engine.Result(m.JobId)
	if err != nil {
		return common.UPDATE_RESULT, nil, err
	}
	return common.UPDATE_RESULT, resp, nil
}
