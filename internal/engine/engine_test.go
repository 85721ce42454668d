package engine

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cjliu20152/qiskit/common"
	"github.com/cjliu20152/qiskit/internal/store"
	"github.com/cjliu20152/qiskit/pkg/logger"
	"github.com/cjliu20152/qiskit/pkg/provider"
	"github.com/cjliu20152/qiskit/pkg/pulse"
	"github.com/cjliu20152/qiskit/pkg/qobj"
	"github.com/cjliu20152/qiskit/pkg/simulator"
)

const testBackend = "sim1q"

func newMemStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func newFileStore(t *testing.T, path string) *store.Store {
	t.Helper()
	st, err := store.New(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func newEngineWith(t *testing.T, st *store.Store, opts *Opts) *Engine {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return New(ctx, logger.NewNopLogger(), st, simulator.NewProvider(nil), opts)
}

func newTestEngine(t *testing.T, opts *Opts) *Engine {
	t.Helper()
	return newEngineWith(t, newMemStore(t), opts)
}

func sim1qCfg(t *testing.T) provider.Configuration {
	t.Helper()
	for _, cfg := range simulator.DeviceConfigurations() {
		if cfg.BackendName == testBackend {
			return cfg
		}
	}
	t.Fatal("sim1q device missing")
	return provider.Configuration{}
}

// piQobj assembles a single calibrated pi-pulse experiment: all shots
// read out as ones on sim1q.
func piQobj(t *testing.T, shots int) json.RawMessage {
	t.Helper()
	sched := pulse.NewSchedule("x")
	w, err := pulse.Constant(100, 0.5, nil)
	if err != nil {
		t.Fatalf("unexpected waveform error: %v", err)
	}
	play, err := pulse.NewPlay(w, pulse.DriveChannel(0))
	if err != nil {
		t.Fatalf("unexpected play error: %v", err)
	}
	if err := sched.Insert(0, play); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}
	acq, err := pulse.NewAcquire(100, pulse.AcquireChannel(0), pulse.MemorySlot(0))
	if err != nil {
		t.Fatalf("unexpected acquire error: %v", err)
	}
	if err := sched.Insert(100, acq); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}
	q, err := qobj.Assemble([]*pulse.Schedule{sched}, sim1qCfg(t), provider.RunOpts{Shots: shots, Seed: 7})
	if err != nil {
		t.Fatalf("unexpected assemble error: %v", err)
	}
	blob, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}
	return blob
}

// slowQobj assembles an experiment whose acquire sits tens of millions
// of ticks out, keeping the evolution busy long enough to observe and
// cancel a running job.
func slowQobj(t *testing.T) json.RawMessage {
	t.Helper()
	sched := pulse.NewSchedule("slow")
	acq, err := pulse.NewAcquire(100, pulse.AcquireChannel(0), pulse.MemorySlot(0))
	if err != nil {
		t.Fatalf("unexpected acquire error: %v", err)
	}
	if err := sched.Insert(80_000_000, acq); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}
	q, err := qobj.Assemble([]*pulse.Schedule{sched}, sim1qCfg(t), provider.RunOpts{Shots: 4, Seed: 7})
	if err != nil {
		t.Fatalf("unexpected assemble error: %v", err)
	}
	blob, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}
	return blob
}

func waitStatus(t *testing.T, e *Engine, id string, want provider.JobStatus) *common.JobInfo {
	t.Helper()
	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		st, err := e.Status(id)
		if err != nil {
			t.Fatalf("unexpected status error: %v", err)
		}
		if st.Job.Status == string(want) {
			return st.Job
		}
		if want != provider.StatusError && st.Job.Status == string(provider.StatusError) {
			t.Fatalf("job %s failed: %s", id, st.Job.Error)
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached %s", id, want)
	return nil
}

// TestSubmitRunsToCompletion verifies the full submit path: a calibrated
// pi pulse queues, runs and settles DONE with all-ones counts.
func TestSubmitRunsToCompletion(t *testing.T) {
	e := newTestEngine(t, nil)

	resp, err := e.Submit(&common.SubmitParams{Backend: testBackend, Name: "flip", Qobj: piQobj(t, 256)})
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if resp.JobId == "" {
		t.Fatal("expected a job id")
	}
	if resp.Backend != testBackend || resp.Name != "flip" {
		t.Fatalf("unexpected submit response: %+v", resp)
	}

	info := waitStatus(t, e, resp.JobId, provider.StatusDone)
	if info.Shots != 256 {
		t.Fatalf("expected 256 shots recorded, got %d", info.Shots)
	}
	if info.MeasLevel != provider.MeasLevelClassified {
		t.Fatalf("expected classified meas level by default, got %d", info.MeasLevel)
	}
	if info.SubmittedAt.IsZero() || info.StartedAt.IsZero() || info.FinishedAt.IsZero() {
		t.Fatalf("expected all lifecycle timestamps set, got %+v", info)
	}

	res, err := e.Result(resp.JobId)
	if err != nil {
		t.Fatalf("unexpected result error: %v", err)
	}
	if len(res.Results) != 1 {
		t.Fatalf("expected 1 experiment result, got %d", len(res.Results))
	}
	if got := res.Results[0].Counts["0x1"]; got != 256 {
		t.Fatalf("expected 256 shots of 0x1, got %v", res.Results[0].Counts)
	}
	if res.Results[0].JobName != "x" {
		t.Fatalf("expected experiment name preserved, got %q", res.Results[0].JobName)
	}
}

// TestSubmitEvents verifies the lifecycle event fan-out: queued, started
// and done arrive in order for a completing job.
func TestSubmitEvents(t *testing.T) {
	var mu sync.Mutex
	var events []*common.RunningResponse
	e := newTestEngine(t, &Opts{OnEvent: func(ev *common.RunningResponse) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	}})

	resp, err := e.Submit(&common.SubmitParams{Backend: testBackend, Qobj: piQobj(t, 64)})
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	waitStatus(t, e, resp.JobId, provider.StatusDone)

	// The done event is emitted just before the row settles; give the
	// job goroutine a moment to finish fanning out.
	var actions []common.JobAction
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		actions = actions[:0]
		mu.Lock()
		for _, ev := range events {
			if ev.JobId == resp.JobId {
				actions = append(actions, ev.Action)
			}
		}
		mu.Unlock()
		if len(actions) >= 3 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if len(actions) != 3 {
		t.Fatalf("expected 3 lifecycle events, got %v", actions)
	}
	want := []common.JobAction{common.JobQueued, common.JobStarted, common.JobDone}
	for i, action := range want {
		if actions[i] != action {
			t.Fatalf("expected event %d to be %s, got %v", i, action, actions)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for _, ev := range events {
		if ev.JobId == resp.JobId && ev.Action == common.JobDone {
			if ev.CompletedShots != 64 || ev.ExperimentsDone != 1 {
				t.Fatalf("unexpected done event payload: %+v", ev)
			}
		}
	}
}

// TestSubmitValidation verifies bad submissions fail synchronously
// without leaving a job row behind.
func TestSubmitValidation(t *testing.T) {
	e := newTestEngine(t, nil)

	if _, err := e.Submit(&common.SubmitParams{Backend: testBackend}); !errors.Is(err, ErrEmptyQobj) {
		t.Fatalf("expected ErrEmptyQobj, got %v", err)
	}
	if _, err := e.Submit(&common.SubmitParams{Backend: "nope", Qobj: piQobj(t, 8)}); !errors.Is(err, provider.ErrBackendNotFound) {
		t.Fatalf("expected ErrBackendNotFound, got %v", err)
	}
	if _, err := e.Submit(&common.SubmitParams{Backend: testBackend, Qobj: json.RawMessage(`{broken`)}); err == nil {
		t.Fatal("expected error for malformed payload")
	}
	if _, err := e.Submit(&common.SubmitParams{Backend: testBackend, Qobj: json.RawMessage(`{"type":"QASM"}`)}); !errors.Is(err, qobj.ErrNotPulse) {
		t.Fatalf("expected ErrNotPulse, got %v", err)
	}

	var q qobj.Qobj
	if err := json.Unmarshal(piQobj(t, 8), &q); err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}
	q.Config.Shots = 1 << 20
	blob, err := json.Marshal(&q)
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}
	if _, err := e.Submit(&common.SubmitParams{Backend: testBackend, Qobj: blob}); !errors.Is(err, provider.ErrTooManyShots) {
		t.Fatalf("expected ErrTooManyShots, got %v", err)
	}

	list, err := e.List(&common.ListParams{})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(list.Jobs) != 0 {
		t.Fatalf("expected no job rows after rejected submissions, got %d", len(list.Jobs))
	}
}

// TestSubmitNameFallback verifies the payload header name is used when
// the submission carries none.
func TestSubmitNameFallback(t *testing.T) {
	e := newTestEngine(t, nil)

	resp, err := e.Submit(&common.SubmitParams{Backend: testBackend, Qobj: piQobj(t, 8)})
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	// Assemble seeds the header name from the first schedule.
	if resp.Name != "x" {
		t.Fatalf("expected payload header name, got %q", resp.Name)
	}
}

// TestScheduledSubmitRuns verifies a deferred submission fires and runs
// once its trigger time arrives.
func TestScheduledSubmitRuns(t *testing.T) {
	e := newTestEngine(t, nil)

	at := time.Now().Add(1500 * time.Millisecond)
	resp, err := e.Submit(&common.SubmitParams{
		Backend: testBackend,
		Qobj:    piQobj(t, 16),
		At:      at.Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if resp.ScheduledAt == "" {
		t.Fatal("expected scheduled time in response")
	}
	if resp.QueuePosition != -1 {
		t.Fatalf("expected no queue position for scheduled job, got %d", resp.QueuePosition)
	}

	info := waitStatus(t, e, resp.JobId, provider.StatusDone)
	if info.ScheduledAt.IsZero() {
		t.Fatal("expected scheduled time recorded on the job row")
	}
	if _, err := e.Result(resp.JobId); err != nil {
		t.Fatalf("unexpected result error: %v", err)
	}
}

// TestScheduledSubmitValidation verifies schedule parameters are
// rejected up front.
func TestScheduledSubmitValidation(t *testing.T) {
	e := newTestEngine(t, nil)

	cases := []struct {
		name string
		p    *common.SubmitParams
	}{
		{"past at", &common.SubmitParams{Backend: testBackend, Qobj: piQobj(t, 8), At: time.Now().Add(-time.Hour).Format(time.RFC3339)}},
		{"bad at", &common.SubmitParams{Backend: testBackend, Qobj: piQobj(t, 8), At: "tomorrow"}},
		{"bad cron", &common.SubmitParams{Backend: testBackend, Qobj: piQobj(t, 8), Every: "bad-cron"}},
		{"six field cron", &common.SubmitParams{Backend: testBackend, Qobj: piQobj(t, 8), Every: "0 0 2 * * *"}},
	}
	for _, c := range cases {
		if _, err := e.Submit(c.p); !errors.Is(err, ErrBadSchedule) {
			t.Errorf("%s: expected ErrBadSchedule, got %v", c.name, err)
		}
	}
}

// TestCancelScheduled verifies cancelling a deferred job before it
// fires settles it without running.
func TestCancelScheduled(t *testing.T) {
	e := newTestEngine(t, nil)

	resp, err := e.Submit(&common.SubmitParams{
		Backend: testBackend,
		Qobj:    piQobj(t, 8),
		At:      time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	cres, err := e.Cancel(resp.JobId)
	if err != nil {
		t.Fatalf("unexpected cancel error: %v", err)
	}
	if cres.Status != string(provider.StatusCancelled) {
		t.Fatalf("expected cancelled status, got %s", cres.Status)
	}

	if _, err := e.Result(resp.JobId); !errors.Is(err, provider.ErrJobCancelled) {
		t.Fatalf("expected ErrJobCancelled, got %v", err)
	}
	// A settled schedule cannot be cancelled again.
	if _, err := e.Cancel(resp.JobId); !errors.Is(err, ErrNotCancellable) {
		t.Fatalf("expected ErrNotCancellable, got %v", err)
	}
}

// TestCancelWaiting verifies cancelling a job still waiting for an
// execution slot.
func TestCancelWaiting(t *testing.T) {
	e := newTestEngine(t, nil)
	e.queue.Pause()

	resp, err := e.Submit(&common.SubmitParams{Backend: testBackend, Qobj: piQobj(t, 8)})
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	st, err := e.Status(resp.JobId)
	if err != nil {
		t.Fatalf("unexpected status error: %v", err)
	}
	if st.QueuePosition != 1 {
		t.Fatalf("expected queue position 1 while paused, got %d", st.QueuePosition)
	}

	if _, err := e.Cancel(resp.JobId); err != nil {
		t.Fatalf("unexpected cancel error: %v", err)
	}
	waitStatus(t, e, resp.JobId, provider.StatusCancelled)
	if _, err := e.Result(resp.JobId); !errors.Is(err, provider.ErrJobCancelled) {
		t.Fatalf("expected ErrJobCancelled, got %v", err)
	}
	if e.queue.WaitingCount() != 0 {
		t.Fatalf("expected empty waiting queue, got %d", e.queue.WaitingCount())
	}
}

// TestCancelRunning verifies a running job is interrupted through its
// context and settles CANCELLED.
func TestCancelRunning(t *testing.T) {
	e := newTestEngine(t, nil)

	resp, err := e.Submit(&common.SubmitParams{Backend: testBackend, Qobj: slowQobj(t)})
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	waitStatus(t, e, resp.JobId, provider.StatusRunning)

	if _, err := e.Cancel(resp.JobId); err != nil {
		t.Fatalf("unexpected cancel error: %v", err)
	}
	info := waitStatus(t, e, resp.JobId, provider.StatusCancelled)
	if info.FinishedAt.IsZero() {
		t.Fatal("expected finish timestamp on cancelled job")
	}
	if _, err := e.Result(resp.JobId); !errors.Is(err, provider.ErrJobCancelled) {
		t.Fatalf("expected ErrJobCancelled, got %v", err)
	}
}

// TestCancelTerminalAndUnknown verifies terminal jobs and unknown ids
// are rejected.
func TestCancelTerminalAndUnknown(t *testing.T) {
	e := newTestEngine(t, nil)

	resp, err := e.Submit(&common.SubmitParams{Backend: testBackend, Qobj: piQobj(t, 8)})
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	waitStatus(t, e, resp.JobId, provider.StatusDone)

	if _, err := e.Cancel(resp.JobId); !errors.Is(err, ErrNotCancellable) {
		t.Fatalf("expected ErrNotCancellable, got %v", err)
	}
	if _, err := e.Cancel("missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// TestResultStates verifies Result's error mapping for jobs that are
// not DONE.
func TestResultStates(t *testing.T) {
	e := newTestEngine(t, nil)

	// Not yet run: a deferred job has no result.
	pending, err := e.Submit(&common.SubmitParams{
		Backend: testBackend,
		Qobj:    piQobj(t, 8),
		At:      time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if _, err := e.Result(pending.JobId); !errors.Is(err, provider.ErrJobNotDone) {
		t.Fatalf("expected ErrJobNotDone, got %v", err)
	}

	// A payload that validates structurally but targets a qubit the
	// backend does not have fails at run time.
	sched := pulse.NewSchedule("offchip")
	w, err := pulse.Constant(10, 0.1, nil)
	if err != nil {
		t.Fatalf("unexpected waveform error: %v", err)
	}
	play, err := pulse.NewPlay(w, pulse.DriveChannel(4))
	if err != nil {
		t.Fatalf("unexpected play error: %v", err)
	}
	if err := sched.Insert(0, play); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}
	q, err := qobj.Assemble([]*pulse.Schedule{sched}, sim1qCfg(t), provider.RunOpts{Shots: 8})
	if err != nil {
		t.Fatalf("unexpected assemble error: %v", err)
	}
	blob, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}
	failing, err := e.Submit(&common.SubmitParams{Backend: testBackend, Qobj: blob})
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	info := waitStatus(t, e, failing.JobId, provider.StatusError)
	if info.Error == "" {
		t.Fatal("expected error text on failed job")
	}
	if _, err := e.Result(failing.JobId); !errors.Is(err, provider.ErrJobFailed) {
		t.Fatalf("expected ErrJobFailed, got %v", err)
	}
}

// TestRecoverRequeuesInterrupted verifies rows left QUEUED or RUNNING by
// a dead daemon re-run on the next start.
func TestRecoverRequeuesInterrupted(t *testing.T) {
	st := newMemStore(t)

	blob := piQobj(t, 32)
	running := &store.JobRecord{
		Id: "run1", Backend: testBackend, Name: "interrupted",
		Status: provider.StatusRunning, Priority: int(PriorityNormal),
		Shots: 32, MeasLevel: provider.MeasLevelClassified,
		Qobj: blob, SubmittedAt: time.Now().Add(-time.Minute), StartedAt: time.Now().Add(-time.Minute),
	}
	queued := &store.JobRecord{
		Id: "que1", Backend: testBackend, Name: "pending",
		Status: provider.StatusQueued, Priority: int(PriorityNormal),
		Shots: 32, MeasLevel: provider.MeasLevelClassified,
		Qobj: blob, SubmittedAt: time.Now().Add(-time.Minute),
	}
	if err := st.PutJob(running); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}
	if err := st.PutJob(queued); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}

	e := newEngineWith(t, st, nil)
	if err := e.Recover(); err != nil {
		t.Fatalf("unexpected recover error: %v", err)
	}

	for _, id := range []string{"run1", "que1"} {
		waitStatus(t, e, id, provider.StatusDone)
		res, err := e.Result(id)
		if err != nil {
			t.Fatalf("unexpected result error for %s: %v", id, err)
		}
		if got := res.Results[0].Counts["0x1"]; got != 32 {
			t.Fatalf("expected 32 shots of 0x1 for %s, got %v", id, res.Results[0].Counts)
		}
	}
}

// TestShutdownKeepsRunningRow verifies daemon shutdown does not settle a
// running job: the row stays RUNNING for the next start to re-queue.
func TestShutdownKeepsRunningRow(t *testing.T) {
	st := newFileStore(t, filepath.Join(t.TempDir(), "jobs.db"))

	ctx, cancel := context.WithCancel(context.Background())
	e := New(ctx, logger.NewNopLogger(), st, simulator.NewProvider(nil), nil)

	resp, err := e.Submit(&common.SubmitParams{Backend: testBackend, Qobj: slowQobj(t)})
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	waitStatus(t, e, resp.JobId, provider.StatusRunning)

	// Shut the daemon down mid-run.
	cancel()
	deadline := time.Now().Add(10 * time.Second)
	for {
		e.mu.Lock()
		n := len(e.active)
		e.mu.Unlock()
		if n == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("job goroutine never exited after shutdown")
		}
		time.Sleep(5 * time.Millisecond)
	}

	rec, err := st.GetJob(resp.JobId)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if rec.Status != provider.StatusRunning {
		t.Fatalf("expected row left RUNNING after shutdown, got %s", rec.Status)
	}

	// A fresh engine over the same store re-runs it.
	e2 := newEngineWith(t, st, nil)
	if err := e2.Recover(); err != nil {
		t.Fatalf("unexpected recover error: %v", err)
	}
	waitStatus(t, e2, resp.JobId, provider.StatusDone)
}

// TestRecoverMissedOneShot verifies a one-shot schedule missed while the
// daemon was down runs immediately at startup.
func TestRecoverMissedOneShot(t *testing.T) {
	st := newMemStore(t)

	rec := &store.JobRecord{
		Id: "missed1", Backend: testBackend, Name: "missed",
		Status: provider.StatusInitializing, Priority: int(PriorityNormal),
		Shots: 16, MeasLevel: provider.MeasLevelClassified,
		Qobj: piQobj(t, 16), SubmittedAt: time.Now().Add(-2 * time.Hour),
		ScheduledAt: time.Now().Add(-time.Hour), ScheduleState: store.ScheduleStateScheduled,
	}
	if err := st.PutJob(rec); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}

	e := newEngineWith(t, st, nil)
	if err := e.Recover(); err != nil {
		t.Fatalf("unexpected recover error: %v", err)
	}
	waitStatus(t, e, "missed1", provider.StatusDone)

	got, err := st.GetJob("missed1")
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if got.ScheduleState != store.ScheduleStateMissed {
		t.Fatalf("expected schedule state missed, got %q", got.ScheduleState)
	}
}

// TestRecoverFutureSchedule verifies a future schedule survives restart
// without running early and can still be cancelled.
func TestRecoverFutureSchedule(t *testing.T) {
	st := newMemStore(t)

	rec := &store.JobRecord{
		Id: "future1", Backend: testBackend, Name: "later",
		Status: provider.StatusInitializing, Priority: int(PriorityNormal),
		Shots: 16, MeasLevel: provider.MeasLevelClassified,
		Qobj: piQobj(t, 16), SubmittedAt: time.Now(),
		ScheduledAt: time.Now().Add(time.Hour), ScheduleState: store.ScheduleStateScheduled,
	}
	if err := st.PutJob(rec); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}

	e := newEngineWith(t, st, nil)
	if err := e.Recover(); err != nil {
		t.Fatalf("unexpected recover error: %v", err)
	}

	st2, err := e.Status("future1")
	if err != nil {
		t.Fatalf("unexpected status error: %v", err)
	}
	if st2.Job.Status != string(provider.StatusInitializing) {
		t.Fatalf("expected future job untouched, got %s", st2.Job.Status)
	}

	if _, err := e.Cancel("future1"); err != nil {
		t.Fatalf("unexpected cancel error: %v", err)
	}
	waitStatus(t, e, "future1", provider.StatusCancelled)
}

// TestFlush verifies bulk and targeted flushing of finished jobs.
func TestFlush(t *testing.T) {
	e := newTestEngine(t, nil)

	first, err := e.Submit(&common.SubmitParams{Backend: testBackend, Qobj: piQobj(t, 8)})
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	second, err := e.Submit(&common.SubmitParams{Backend: testBackend, Qobj: piQobj(t, 8)})
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	waitStatus(t, e, first.JobId, provider.StatusDone)
	waitStatus(t, e, second.JobId, provider.StatusDone)

	fres, err := e.Flush("")
	if err != nil {
		t.Fatalf("unexpected flush error: %v", err)
	}
	if fres.Flushed != 2 {
		t.Fatalf("expected 2 flushed jobs, got %d", fres.Flushed)
	}
	if _, err := e.Status(first.JobId); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected flushed job gone, got %v", err)
	}

	if _, err := e.Flush("missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Active jobs cannot be flushed away.
	e.queue.Pause()
	waiting, err := e.Submit(&common.SubmitParams{Backend: testBackend, Qobj: piQobj(t, 8)})
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if _, err := e.Flush(waiting.JobId); !errors.Is(err, ErrJobActive) {
		t.Fatalf("expected ErrJobActive, got %v", err)
	}
}

// TestList verifies the job listing filters.
func TestList(t *testing.T) {
	e := newTestEngine(t, nil)

	done, err := e.Submit(&common.SubmitParams{Backend: testBackend, Qobj: piQobj(t, 8)})
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	waitStatus(t, e, done.JobId, provider.StatusDone)

	time.Sleep(20 * time.Millisecond)
	if _, err := e.Submit(&common.SubmitParams{
		Backend: "sim5q",
		Qobj:    piQobj(t, 8),
		At:      time.Now().Add(time.Hour).Format(time.RFC3339),
	}); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	all, err := e.List(&common.ListParams{})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(all.Jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(all.Jobs))
	}
	if all.Jobs[0].Backend != "sim5q" {
		t.Fatalf("expected newest job first, got %s", all.Jobs[0].Backend)
	}

	byBackend, err := e.List(&common.ListParams{Backend: testBackend})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(byBackend.Jobs) != 1 || byBackend.Jobs[0].JobId != done.JobId {
		t.Fatalf("unexpected backend filter result: %+v", byBackend.Jobs)
	}

	// Status filters are case-insensitive on the wire.
	byStatus, err := e.List(&common.ListParams{Status: "done"})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(byStatus.Jobs) != 1 {
		t.Fatalf("expected 1 done job, got %d", len(byStatus.Jobs))
	}

	if _, err := e.List(&common.ListParams{Status: "bogus"}); err == nil {
		t.Fatal("expected error for unknown status filter")
	}

	limited, err := e.List(&common.ListParams{Limit: 1})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(limited.Jobs) != 1 {
		t.Fatalf("expected 1 job with limit, got %d", len(limited.Jobs))
	}
}

// TestBackends verifies the backend listing carries configuration and
// live queue depth.
func TestBackends(t *testing.T) {
	e := newTestEngine(t, nil)

	bres, err := e.Backends()
	if err != nil {
		t.Fatalf("unexpected backends error: %v", err)
	}
	if len(bres.Backends) != 2 {
		t.Fatalf("expected 2 backends, got %d", len(bres.Backends))
	}
	if bres.Backends[0].Name != "sim1q" || bres.Backends[1].Name != "sim5q" {
		t.Fatalf("expected sorted backend names, got %+v", bres.Backends)
	}
	if !bres.Backends[0].Simulator || !bres.Backends[0].Operational {
		t.Fatalf("expected operational simulator, got %+v", bres.Backends[0])
	}

	one, err := e.Backend("sim5q")
	if err != nil {
		t.Fatalf("unexpected backend error: %v", err)
	}
	if one.Info.NumQubits != 5 {
		t.Fatalf("expected 5 qubits, got %d", one.Info.NumQubits)
	}
	if one.Configuration == nil || one.Configuration.MaxShots != 8192 {
		t.Fatalf("expected full configuration, got %+v", one.Configuration)
	}

	if _, err := e.Backend("nope"); !errors.Is(err, provider.ErrBackendNotFound) {
		t.Fatalf("expected ErrBackendNotFound, got %v", err)
	}
}

// TestPendingJobsCount verifies backend info reports jobs still in
// flight for that backend.
func TestPendingJobsCount(t *testing.T) {
	e := newTestEngine(t, nil)
	e.queue.Pause()

	if _, err := e.Submit(&common.SubmitParams{Backend: testBackend, Qobj: piQobj(t, 8)}); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if _, err := e.Submit(&common.SubmitParams{Backend: testBackend, Qobj: piQobj(t, 8)}); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	one, err := e.Backend(testBackend)
	if err != nil {
		t.Fatalf("unexpected backend error: %v", err)
	}
	if one.Info.PendingJobs != 2 {
		t.Fatalf("expected 2 pending jobs, got %d", one.Info.PendingJobs)
	}
}

// TestHasJob covers the attach existence check.
func TestHasJob(t *testing.T) {
	e := newTestEngine(t, nil)

	resp, err := e.Submit(&common.SubmitParams{Backend: testBackend, Qobj: piQobj(t, 8)})
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if !e.HasJob(resp.JobId) {
		t.Fatal("expected submitted job to exist")
	}
	if e.HasJob("missing") {
		t.Fatal("expected unknown id to be absent")
	}
}
