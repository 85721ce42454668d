package api

import (
	"encoding/json"

	"github.com/cjliu20152/qiskit/common"
	"github.com/cjliu20152/qiskit/internal/server"
)

// flushHandler removes the rows of finished jobs. An empty job_id
// flushes every terminal row.
func (s *Api) flushHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.FlushParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_FLUSH, nil, err
	}
	resp, err := s.engine.Flush(m.JobId)
	if err != nil {
		return common.UPDATE_FLUSH, nil, err
	}
	return common.UPDATE_FLUSH, resp, nil
}
