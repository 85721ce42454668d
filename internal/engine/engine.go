// Package engine runs pulse jobs for the daemon. It owns the job queue,
// the SQLite job rows, the scheduler for deferred and recurring
// submissions, and the per-job event fan-out.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cjliu20152/qiskit/common"
	"github.com/cjliu20152/qiskit/internal/scheduler"
	"github.com/cjliu20152/qiskit/internal/store"
	"github.com/cjliu20152/qiskit/pkg/logger"
	"github.com/cjliu20152/qiskit/pkg/provider"
	"github.com/cjliu20152/qiskit/pkg/qobj"
	"github.com/cjliu20152/qiskit/pkg/simulator"
)

// DefaultMaxConcurrent bounds simultaneously executing jobs when Opts
// leaves it zero.
const DefaultMaxConcurrent = 2

// Opts configures a new Engine.
type Opts struct {
	// MaxConcurrent bounds simultaneously executing jobs.
	MaxConcurrent int
	// OnEvent receives job lifecycle events for fan-out to attached
	// clients. It is called from job goroutines and must be safe for
	// concurrent use. Nil disables fan-out.
	OnEvent func(ev *common.RunningResponse)
}

// Engine accepts qobj submissions and runs them on simulator backends.
type Engine struct {
	log      logger.Logger
	store    *store.Store
	provider *simulator.Provider
	queue    *jobQueue
	sched    *scheduler.Scheduler
	onEvent  func(ev *common.RunningResponse)
	ctx      context.Context

	mu     sync.Mutex
	active map[string]*run
}

// run tracks one executing job so it can be cancelled. The user flag
// distinguishes an explicit cancel from a daemon shutdown: shutdown
// leaves the row RUNNING so the job is re-queued on the next start.
type run struct {
	cancel context.CancelFunc
	mu     sync.Mutex
	user   bool
}

func (r *run) userCancel() {
	r.mu.Lock()
	r.user = true
	r.mu.Unlock()
	r.cancel()
}

func (r *run) isUserCancel() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.user
}

// New creates an Engine on top of the given store and simulator
// provider. Jobs execute until ctx is cancelled.
func New(ctx context.Context, l logger.Logger, st *store.Store, prov *simulator.Provider, opts *Opts) *Engine {
	if opts == nil {
		opts = &Opts{}
	}
	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if l == nil {
		l = logger.NewNopLogger()
	}
	e := &Engine{
		log:      l,
		store:    st,
		provider: prov,
		onEvent:  opts.OnEvent,
		ctx:      ctx,
		active:   make(map[string]*run),
	}
	e.queue = newJobQueue(maxConcurrent, e.startJob)
	e.sched = scheduler.New(ctx, e.enqueueScheduled)
	return e
}

// Close releases the underlying job store.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Recover re-queues jobs interrupted by the last shutdown and re-seeds
// the scheduler heap from persisted schedule rows. Call once at startup
// before serving requests.
func (e *Engine) Recover() error {
	interrupted, err := e.store.InterruptedJobs()
	if err != nil {
		return err
	}
	for _, rec := range interrupted {
		rec.Status = provider.StatusQueued
		rec.StartedAt = time.Time{}
		if err := e.store.PutJob(rec); err != nil {
			return err
		}
		e.log.Info("job %s: re-queued after restart", rec.Id)
		e.queue.Add(rec.Id, clampPriority(rec.Priority))
	}

	scheduled, err := e.store.ScheduledJobs()
	if err != nil {
		return err
	}
	missed, future := scheduler.LoadSchedules(scheduled, time.Now())
	for _, ev := range future {
		e.sched.Add(ev)
	}
	for _, rec := range missed {
		// LoadSchedules already advanced recurring rows to the next
		// occurrence and marked one-shot rows missed; enqueueRecord
		// persists the mutation.
		e.log.Warning("job %s: missed schedule, running now", rec.Id)
		e.enqueueRecord(rec)
	}
	return nil
}

// Submit validates a qobj payload and either queues it for execution or
// hands it to the scheduler when At/Every are set.
func (e *Engine) Submit(p *common.SubmitParams) (*common.SubmitResponse, error) {
	if len(p.Qobj) == 0 {
		return nil, ErrEmptyQobj
	}
	backend, err := e.provider.Simulated(p.Backend)
	if err != nil {
		return nil, err
	}

	var q qobj.Qobj
	if err := json.Unmarshal(p.Qobj, &q); err != nil {
		return nil, fmt.Errorf("failed to parse qobj: %w", err)
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	opts := provider.RunOpts{
		Shots:      q.Config.Shots,
		MeasLevel:  q.Config.MeasLevel,
		MeasReturn: q.Config.MeasReturn,
	}
	normalized, err := provider.NormalizeRunOpts(&opts, backend.Configuration())
	if err != nil {
		return nil, err
	}

	name := p.Name
	if name == "" {
		name = q.Header.JobName
	}
	id := newJobID()
	if name == "" {
		name = "job_" + id[:6]
	}

	rec := &store.JobRecord{
		Id:          id,
		Backend:     p.Backend,
		Name:        name,
		Status:      provider.StatusInitializing,
		Priority:    int(clampPriority(p.Priority)),
		Shots:       normalized.Shots,
		MeasLevel:   normalized.MeasLevel,
		Qobj:        p.Qobj,
		SubmittedAt: time.Now(),
	}

	resp := &common.SubmitResponse{
		JobId:   id,
		Backend: p.Backend,
		Name:    name,
	}

	if p.At != "" || p.Every != "" {
		triggerAt, err := e.scheduleTime(p)
		if err != nil {
			return nil, err
		}
		rec.ScheduledAt = triggerAt
		rec.CronExpr = p.Every
		rec.ScheduleState = store.ScheduleStateScheduled
		rec.Status = provider.StatusInitializing
		if err := e.store.PutJob(rec); err != nil {
			return nil, err
		}
		e.sched.Add(scheduler.ScheduleEvent{JobId: id, TriggerAt: triggerAt, CronExpr: p.Every})
		recordJobSubmitted(rec.Shots)
		e.log.Info("job %s: scheduled for %s on %s", id, triggerAt.Format(time.RFC3339), p.Backend)
		resp.Status = string(rec.Status)
		resp.QueuePosition = -1
		resp.ScheduledAt = triggerAt.Format(time.RFC3339)
		return resp, nil
	}

	rec.Status = provider.StatusQueued
	if err := e.store.PutJob(rec); err != nil {
		return nil, err
	}
	recordJobSubmitted(rec.Shots)
	e.log.Info("job %s: accepted %q on %s (%d shots)", id, name, p.Backend, rec.Shots)
	e.queue.Add(id, clampPriority(p.Priority))

	pos := e.queue.Position(id)
	e.notify(&common.RunningResponse{
		JobId:         id,
		Action:        common.JobQueued,
		Status:        string(provider.StatusQueued),
		QueuePosition: pos,
	})
	resp.Status = string(provider.StatusQueued)
	resp.QueuePosition = pos
	return resp, nil
}

// scheduleTime resolves the first trigger instant for a deferred
// submission.
func (e *Engine) scheduleTime(p *common.SubmitParams) (time.Time, error) {
	now := time.Now()
	if p.Every != "" {
		if err := scheduler.ValidateCron(p.Every); err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", ErrBadSchedule, err)
		}
	}
	if p.At != "" {
		at, err := time.Parse(time.RFC3339, p.At)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: bad at time %q: %v", ErrBadSchedule, p.At, err)
		}
		if !at.After(now) {
			return time.Time{}, fmt.Errorf("%w: at time %s is in the past", ErrBadSchedule, p.At)
		}
		return at, nil
	}
	next, err := scheduler.NextTick(p.Every, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad cron %q: %v", ErrBadSchedule, p.Every, err)
	}
	return next, nil
}

// enqueueScheduled fires when the scheduler heap reaches a job's trigger
// time. Recurring jobs re-run under the same id with a fresh result.
func (e *Engine) enqueueScheduled(id string) {
	rec, err := e.store.GetJob(id)
	if err != nil {
		e.log.Error("scheduled job %s vanished: %v", id, err)
		return
	}
	if rec.ScheduleState != store.ScheduleStateScheduled {
		return
	}
	if rec.CronExpr == "" {
		rec.ScheduleState = store.ScheduleStateNone
	} else if next, err := scheduler.NextTick(rec.CronExpr, time.Now()); err == nil {
		rec.ScheduledAt = next
	}
	e.enqueueRecord(rec)
}

// enqueueRecord resets a row for a (re-)run and adds it to the queue.
// A row whose previous run is still queued or executing keeps its
// advanced schedule but skips this trigger.
func (e *Engine) enqueueRecord(rec *store.JobRecord) {
	if e.queue.Position(rec.Id) >= 0 {
		if err := e.store.PutJob(rec); err != nil {
			e.log.Error("job %s: failed to persist schedule state: %v", rec.Id, err)
		}
		e.log.Warning("job %s: previous run still active, skipping trigger", rec.Id)
		return
	}
	rec.Status = provider.StatusQueued
	rec.Result = nil
	rec.Error = ""
	rec.StartedAt = time.Time{}
	rec.FinishedAt = time.Time{}
	if err := e.store.PutJob(rec); err != nil {
		e.log.Error("job %s: failed to persist queue state: %v", rec.Id, err)
		return
	}
	e.queue.Add(rec.Id, clampPriority(rec.Priority))
	e.notify(&common.RunningResponse{
		JobId:         rec.Id,
		Action:        common.JobQueued,
		Status:        string(provider.StatusQueued),
		QueuePosition: e.queue.Position(rec.Id),
	})
}

// startJob is the queue's onStart callback.
func (e *Engine) startJob(id string) {
	safeGo(e.log, "job "+id, func(r interface{}) {
		e.failJob(id, fmt.Errorf("job panicked: %v", r))
		e.queue.OnComplete(id)
	}, func() {
		e.runJob(id)
		e.queue.OnComplete(id)
	})
}

func (e *Engine) runJob(id string) {
	rec, err := e.store.GetJob(id)
	if err != nil {
		e.log.Error("job %s vanished before start: %v", id, err)
		return
	}
	if rec.Status.Terminal() {
		// Cancelled while waiting for a slot.
		return
	}

	ctx, cancel := context.WithCancel(e.ctx)
	r := &run{cancel: cancel}
	e.mu.Lock()
	e.active[id] = r
	e.mu.Unlock()
	defer func() {
		cancel()
		e.mu.Lock()
		delete(e.active, id)
		e.mu.Unlock()
	}()
	recordJobStarted()

	var q qobj.Qobj
	if err := json.Unmarshal(rec.Qobj, &q); err != nil {
		e.settle(rec, nil, fmt.Errorf("corrupt qobj: %w", err), false)
		return
	}

	rec.Status = provider.StatusRunning
	rec.StartedAt = time.Now()
	if err := e.store.PutJob(rec); err != nil {
		e.log.Error("job %s: failed to persist running state: %v", id, err)
	}
	e.log.Info("job %s: running %q on %s (%d experiments)", id, rec.Name, rec.Backend, len(q.Experiments))
	e.notify(&common.RunningResponse{
		JobId:       id,
		Action:      common.JobStarted,
		Status:      string(provider.StatusRunning),
		Experiments: len(q.Experiments),
		TotalShots:  int64(rec.Shots) * int64(len(q.Experiments)),
	})

	backend, err := e.provider.Simulated(rec.Backend)
	if err != nil {
		e.settle(rec, nil, err, false)
		return
	}

	results, err := backend.Execute(ctx, &q)
	if err != nil && errors.Is(err, context.Canceled) {
		if r.isUserCancel() {
			e.settle(rec, nil, err, true)
		} else {
			// Daemon shutdown: keep the row RUNNING so Recover
			// re-queues it next start.
			e.log.Info("job %s: interrupted by shutdown", id)
		}
		return
	}
	e.settle(rec, results, err, false)
}

// settle records a job's terminal state and fans out the final event.
func (e *Engine) settle(rec *store.JobRecord, results []*provider.Result, runErr error, cancelled bool) {
	rec.FinishedAt = time.Now()
	ev := &common.RunningResponse{JobId: rec.Id}
	switch {
	case cancelled:
		rec.Status = provider.StatusCancelled
		ev.Action = common.JobCancelled
		e.log.Info("job %s: cancelled", rec.Id)
	case runErr != nil:
		rec.Status = provider.StatusError
		rec.Error = runErr.Error()
		ev.Action = common.JobErrored
		ev.Error = rec.Error
		e.log.Error("job %s: failed: %v", rec.Id, runErr)
	default:
		rec.Status = provider.StatusDone
		blob, err := json.Marshal(results)
		if err != nil {
			rec.Status = provider.StatusError
			rec.Error = fmt.Sprintf("failed to encode results: %v", err)
			runErr = err
			ev.Action = common.JobErrored
			ev.Error = rec.Error
		} else {
			rec.Result = blob
			ev.Action = common.JobDone
			ev.Experiments = len(results)
			ev.ExperimentsDone = len(results)
			ev.TotalShots = int64(rec.Shots) * int64(len(results))
			ev.CompletedShots = ev.TotalShots
			e.log.Info("job %s: done (%d experiments, %d shots)", rec.Id, len(results), rec.Shots)
		}
	}
	ev.Status = string(rec.Status)
	if err := e.store.PutJob(rec); err != nil {
		e.log.Error("job %s: failed to persist final state: %v", rec.Id, err)
	}
	recordJobSettled(runErr, cancelled)
	e.notify(ev)
}

// failJob marks a job ERROR outside the normal run path (panic
// recovery).
func (e *Engine) failJob(id string, cause error) {
	rec, err := e.store.GetJob(id)
	if err != nil {
		e.log.Error("job %s: cannot record failure: %v", id, err)
		return
	}
	e.settle(rec, nil, cause, false)
}

// Cancel stops a job. Waiting and scheduled jobs settle immediately;
// running jobs are cancelled through their context and settle from the
// job goroutine.
func (e *Engine) Cancel(id string) (*common.CancelResponse, error) {
	rec, err := e.store.GetJob(id)
	if err != nil {
		return nil, err
	}

	if rec.ScheduleState == store.ScheduleStateScheduled {
		e.sched.Remove(id)
		rec.ScheduleState = store.ScheduleStateCancelled
		rec.Status = provider.StatusCancelled
		rec.FinishedAt = time.Now()
		if err := e.store.PutJob(rec); err != nil {
			return nil, err
		}
		metricJobsCancelled.Inc()
		e.log.Info("job %s: schedule cancelled", id)
		e.notify(&common.RunningResponse{
			JobId:  id,
			Action: common.JobCancelled,
			Status: string(provider.StatusCancelled),
		})
		return &common.CancelResponse{JobId: id, Status: string(provider.StatusCancelled)}, nil
	}

	if rec.Status.Terminal() {
		return nil, ErrNotCancellable
	}

	if e.queue.Remove(id) {
		rec.Status = provider.StatusCancelled
		rec.FinishedAt = time.Now()
		if err := e.store.PutJob(rec); err != nil {
			return nil, err
		}
		metricJobsCancelled.Inc()
		e.log.Info("job %s: cancelled while queued", id)
		e.notify(&common.RunningResponse{
			JobId:  id,
			Action: common.JobCancelled,
			Status: string(provider.StatusCancelled),
		})
		return &common.CancelResponse{JobId: id, Status: string(provider.StatusCancelled)}, nil
	}

	e.mu.Lock()
	r := e.active[id]
	e.mu.Unlock()
	if r == nil {
		return nil, ErrNotCancellable
	}
	r.userCancel()
	return &common.CancelResponse{JobId: id, Status: string(provider.StatusCancelled)}, nil
}

// Status reports a job row plus its queue position (-1 when not
// waiting).
func (e *Engine) Status(id string) (*common.StatusResponse, error) {
	rec, err := e.store.GetJob(id)
	if err != nil {
		return nil, err
	}
	pos := e.queue.Position(id)
	if rec.Status != provider.StatusQueued {
		pos = -1
	}
	return &common.StatusResponse{Job: jobInfo(rec), QueuePosition: pos}, nil
}

// Result returns the per-experiment results of a finished job.
func (e *Engine) Result(id string) (*common.ResultResponse, error) {
	rec, err := e.store.GetJob(id)
	if err != nil {
		return nil, err
	}
	switch rec.Status {
	case provider.StatusDone:
	case provider.StatusError:
		return nil, fmt.Errorf("%s: %w", rec.Error, provider.ErrJobFailed)
	case provider.StatusCancelled:
		return nil, provider.ErrJobCancelled
	default:
		return nil, provider.ErrJobNotDone
	}
	var results []*provider.Result
	if err := json.Unmarshal(rec.Result, &results); err != nil {
		return nil, fmt.Errorf("corrupt result for job %s: %w", id, err)
	}
	return &common.ResultResponse{JobId: id, Results: results}, nil
}

// List returns job summaries matching the filter, newest first.
func (e *Engine) List(p *common.ListParams) (*common.ListResponse, error) {
	f := store.Filter{Backend: p.Backend, Limit: p.Limit}
	if p.Status != "" {
		st, err := provider.ParseJobStatus(strings.ToUpper(p.Status))
		if err != nil {
			return nil, err
		}
		f.Status = st
	}
	recs, err := e.store.ListJobs(f)
	if err != nil {
		return nil, err
	}
	resp := &common.ListResponse{Jobs: make([]*common.JobInfo, 0, len(recs))}
	for _, rec := range recs {
		resp.Jobs = append(resp.Jobs, jobInfo(rec))
	}
	return resp, nil
}

// Flush removes finished jobs. With an id it removes that job only and
// refuses if it is still active.
func (e *Engine) Flush(id string) (*common.FlushResponse, error) {
	if id == "" {
		n, err := e.store.FlushTerminal()
		if err != nil {
			return nil, err
		}
		e.log.Info("flushed %d finished jobs", n)
		return &common.FlushResponse{Flushed: n}, nil
	}
	rec, err := e.store.GetJob(id)
	if err != nil {
		return nil, err
	}
	if !rec.Status.Terminal() {
		return nil, ErrJobActive
	}
	if err := e.store.DeleteJob(id); err != nil {
		return nil, err
	}
	return &common.FlushResponse{Flushed: 1}, nil
}

// HasJob reports whether a job id exists in the store.
func (e *Engine) HasJob(id string) bool {
	_, err := e.store.GetJob(id)
	return err == nil
}

// Backends lists the provider's backends with live status and the
// daemon's pending-job counts.
func (e *Engine) Backends() (*common.BackendsResponse, error) {
	backends, err := e.provider.Backends(e.ctx)
	if err != nil {
		return nil, err
	}
	resp := &common.BackendsResponse{Backends: make([]*common.BackendInfo, 0, len(backends))}
	for _, b := range backends {
		info, err := e.backendInfo(b)
		if err != nil {
			return nil, err
		}
		resp.Backends = append(resp.Backends, info)
	}
	return resp, nil
}

// Backend returns one backend's summary plus its full configuration.
func (e *Engine) Backend(name string) (*common.BackendResponse, error) {
	b, err := e.provider.Backend(e.ctx, name)
	if err != nil {
		return nil, err
	}
	info, err := e.backendInfo(b)
	if err != nil {
		return nil, err
	}
	cfg := b.Configuration()
	return &common.BackendResponse{Info: info, Configuration: &cfg}, nil
}

func (e *Engine) backendInfo(b provider.Backend) (*common.BackendInfo, error) {
	cfg := b.Configuration()
	status, err := b.Status(e.ctx)
	if err != nil {
		return nil, err
	}
	pending, err := e.store.CountActive(cfg.BackendName)
	if err != nil {
		return nil, err
	}
	return &common.BackendInfo{
		Name:        cfg.BackendName,
		NumQubits:   cfg.NumQubits,
		Simulator:   cfg.Simulator,
		Operational: status.Operational,
		StatusMsg:   status.Message,
		PendingJobs: pending,
		MaxShots:    cfg.MaxShots,
		Dt:          cfg.DT,
	}, nil
}

func (e *Engine) notify(ev *common.RunningResponse) {
	if e.onEvent != nil {
		e.onEvent(ev)
	}
}

func jobInfo(rec *store.JobRecord) *common.JobInfo {
	return &common.JobInfo{
		JobId:       rec.Id,
		Backend:     rec.Backend,
		Name:        rec.Name,
		Status:      string(rec.Status),
		Shots:       rec.Shots,
		MeasLevel:   rec.MeasLevel,
		SubmittedAt: rec.SubmittedAt,
		StartedAt:   rec.StartedAt,
		FinishedAt:  rec.FinishedAt,
		Error:       rec.Error,
		ScheduledAt: rec.ScheduledAt,
		CronExpr:    rec.CronExpr,
	}
}
