package api

import (
	"encoding/json"
	"errors"

	"github.com/cjliu20152/qiskit/common"
	"github.com/cjliu20152/qiskit/internal/server"
)

// submitHandler accepts an assembled qobj, queues or schedules it and
// attaches the submitting connection to the job's event stream. Clients
// that do not want live updates simply disconnect after the response.
func (s *Api) submitHandler(sconn *server.SyncConn, pool *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.SubmitParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_SUBMIT, nil, err
	}
	if m.Backend == "" {
		return common.UPDATE_SUBMIT, nil, errors.New("backend is required")
	}
	if len(m.Qobj) == 0 {
		return common.UPDATE_SUBMIT, nil, errors.New("qobj is required")
	}

	resp, err := s.engine.Submit(&m)
	if err != nil {
		return common.UPDATE_SUBMIT, nil, err
	}
	pool.AddJob(resp.JobId, sconn)
	return common.UPDATE_SUBMIT, resp, nil
}
