package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cjliu20152/qiskit/common"
	"github.com/cjliu20152/qiskit/internal/server"
)

func (s *Api) attachHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.InputJobId
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_ATTACH, nil, err
	}
	if m.JobId == "" {
		return common.UPDATE_ATTACH, nil, errors.New("job_id is required")
	}
	status, err := s.engine.Status(m.JobId)
	if err != nil {
		return common.UPDATE_ATTACH, nil, err
	}
	if !pool.HasJob(m.JobId) {
		// The pool forgets a job once it settles, so late attaches
		// surface the recorded failure or the final status instead of
		// waiting on a stream that will never produce.
		if perr := pool.GetError(m.JobId); perr != nil {
			return common.UPDATE_ATTACH, nil, perr
		}
		return common.UPDATE_ATTACH, nil, fmt.Errorf("job not active: %s", status.Job.Status)
	}
	pool.AddConnection(m.JobId, sconn)
	return common.UPDATE_ATTACH, status, nil
}
