package api

import (
	"encoding/json"
	"errors"

	"github.com/cjliu20152/qiskit/common"
	"github.com/cjliu20152/qiskit/internal/server"
)

// cancelHandler cancels a queued, running or scheduled job. The engine
// settles running jobs asynchronously from the job goroutine, so the
// response may arrive before the terminal event does.
func (s *Api) cancelHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.InputJobId
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_CANCEL, nil, err
	}
	if m.JobId == "" {
		return common.UPDATE_CANCEL, nil, errors.New("job_id is required")
	}
	resp, err := s.engine.Cancel(m.JobId)
	if err != nil {
		return common.UPDATE_CANCEL, nil, err
	}
	return common.UPDATE_CANCEL, resp, nil
}
