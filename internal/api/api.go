// Package api wires the daemon's request handlers to the framed socket
// server. Each handler unwraps one method's params, calls into the
// engine and returns the typed response envelope.
package api

import (
	"github.com/cjliu20152/qiskit/common"
	"github.com/cjliu20152/qiskit/internal/engine"
	"github.com/cjliu20152/qiskit/internal/server"
	"github.com/cjliu20152/qiskit/pkg/logger"
)

type Api struct {
	log       logger.Logger
	engine    *engine.Engine
	version   string
	commit    string
	buildType string
}

func NewApi(l logger.Logger, eng *engine.Engine, version, commit, buildType string) (*Api, error) {
	return &Api{
		log:       l,
		engine:    eng,
		version:   version,
		commit:    commit,
		buildType: buildType,
	}, nil
}

func (s *Api) RegisterHandlers(server *server.Server) {
	// job API methods
	server.RegisterHandler(common.UPDATE_SUBMIT, s.submitHandler)
	server.RegisterHandler(common.UPDATE_STATUS, s.statusHandler)
	server.RegisterHandler(common.UPDATE_RESULT, s.resultHandler)
	server.RegisterHandler(common.UPDATE_CANCEL, s.cancelHandler)
	server.RegisterHandler(common.UPDATE_ATTACH, s.attachHandler)
	server.RegisterHandler(common.UPDATE_LIST, s.listHandler)
	server.RegisterHandler(common.UPDATE_FLUSH, s.flushHandler)

	// backend API methods
	server.RegisterHandler(common.UPDATE_BACKENDS, s.backendsHandler)
	server.RegisterHandler(common.UPDATE_BACKEND, s.backendHandler)

	// daemon API methods
	server.RegisterHandler(common.UPDATE_VERSION, s.versionHandler)
}

func (s *Api) Close() error {
	return s.engine.Close()
}
