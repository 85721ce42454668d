package common

import "time"

// UpdateType identifies a daemon method and doubles as the type tag on
// response envelopes, so a client can route pushed updates.
type UpdateType string

const (
	UPDATE_SUBMIT   UpdateType = "submit"
	UPDATE_RUNNING  UpdateType = "running"
	UPDATE_ATTACH   UpdateType = "attach"
	UPDATE_STATUS   UpdateType = "status"
	UPDATE_RESULT   UpdateType = "result"
	UPDATE_CANCEL   UpdateType = "cancel"
	UPDATE_LIST     UpdateType = "list"
	UPDATE_FLUSH    UpdateType = "flush"
	UPDATE_BACKENDS UpdateType = "backends"
	UPDATE_BACKEND  UpdateType = "backend"
	UPDATE_VERSION  UpdateType = "version"
)

// JobAction labels one event inside an UPDATE_RUNNING stream.
type JobAction string

const (
	JobQueued    JobAction = "job_queued"
	JobStarted   JobAction = "job_started"
	JobProgress  JobAction = "job_progress"
	JobDone      JobAction = "job_done"
	JobErrored   JobAction = "job_error"
	JobCancelled JobAction = "job_cancelled"
)

// TCPHost is the loopback host used for TCP fallback listeners.
// The daemon never binds RPC framing to non-loopback interfaces.
const TCPHost = "127.0.0.1"

// DefaultTCPPort is the fallback TCP port when the socket transport is
// unavailable. The web/JSON-RPC server listens on the next port up.
const DefaultTCPPort = 4024

// MaxMessageSize bounds a single length-prefixed frame. Qobj payloads
// carry whole waveform libraries, so the cap is generous.
const MaxMessageSize = 64 << 20

// DefaultDialTimeout bounds a single client dial attempt against the
// daemon transport.
const DefaultDialTimeout = 2 * time.Second
