package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cjliu20152/qiskit/pkg/provider"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(id string) *JobRecord {
	return &JobRecord{
		Id:          id,
		Backend:     "sim1q",
		Name:        "rabi",
		Status:      provider.StatusQueued,
		Priority:    1,
		Shots:       1024,
		MeasLevel:   2,
		Qobj:        []byte(`{"qobj_id":"` + id + `"}`),
		SubmittedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)

	rec := testRecord("job1")
	if err := s.PutJob(rec); err != nil {
		t.Fatalf("PutJob: %v", err)
	}

	got, err := s.GetJob("job1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Backend != rec.Backend || got.Name != rec.Name || got.Shots != rec.Shots {
		t.Fatalf("unexpected row: %+v", got)
	}
	if got.Status != provider.StatusQueued {
		t.Errorf("expected status QUEUED, got %s", got.Status)
	}
	if string(got.Qobj) != string(rec.Qobj) {
		t.Errorf("qobj payload altered: %s", got.Qobj)
	}
	if !got.StartedAt.IsZero() || !got.FinishedAt.IsZero() {
		t.Errorf("expected unset stage times to stay zero, got %v / %v",
			got.StartedAt, got.FinishedAt)
	}
}

func TestGetJobNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetJob("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutJobUpsertsResult(t *testing.T) {
	s := newTestStore(t)

	rec := testRecord("job1")
	if err := s.PutJob(rec); err != nil {
		t.Fatalf("PutJob: %v", err)
	}

	rec.Status = provider.StatusDone
	rec.Result = []byte(`[{"job_id":"job1","counts":{"0x1":1024}}]`)
	rec.StartedAt = rec.SubmittedAt.Add(time.Second)
	rec.FinishedAt = rec.SubmittedAt.Add(2 * time.Second)
	if err := s.PutJob(rec); err != nil {
		t.Fatalf("PutJob update: %v", err)
	}

	got, err := s.GetJob("job1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != provider.StatusDone {
		t.Errorf("expected status DONE, got %s", got.Status)
	}
	if len(got.Result) == 0 {
		t.Error("expected result blob to be stored")
	}
	if !got.FinishedAt.Equal(rec.FinishedAt) {
		t.Errorf("expected finished_at %v, got %v", rec.FinishedAt, got.FinishedAt)
	}
}

func TestListJobsFilters(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, tc := range []struct {
		id      string
		backend string
		status  provider.JobStatus
	}{
		{"a", "sim1q", provider.StatusDone},
		{"b", "sim5q", provider.StatusQueued},
		{"c", "sim1q", provider.StatusRunning},
	} {
		rec := testRecord(tc.id)
		rec.Backend = tc.backend
		rec.Status = tc.status
		rec.SubmittedAt = base.Add(time.Duration(i) * time.Minute)
		if err := s.PutJob(rec); err != nil {
			t.Fatalf("PutJob %s: %v", tc.id, err)
		}
	}

	all, err := s.ListJobs(Filter{})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(all))
	}
	// Newest first.
	if all[0].Id != "c" || all[2].Id != "a" {
		t.Errorf("unexpected order: %s, %s, %s", all[0].Id, all[1].Id, all[2].Id)
	}

	sim1q, err := s.ListJobs(Filter{Backend: "sim1q"})
	if err != nil {
		t.Fatalf("ListJobs backend: %v", err)
	}
	if len(sim1q) != 2 {
		t.Errorf("expected 2 sim1q jobs, got %d", len(sim1q))
	}

	queued, err := s.ListJobs(Filter{Status: provider.StatusQueued})
	if err != nil {
		t.Fatalf("ListJobs status: %v", err)
	}
	if len(queued) != 1 || queued[0].Id != "b" {
		t.Errorf("expected job b queued, got %+v", queued)
	}

	limited, err := s.ListJobs(Filter{Limit: 1})
	if err != nil {
		t.Fatalf("ListJobs limit: %v", err)
	}
	if len(limited) != 1 || limited[0].Id != "c" {
		t.Errorf("expected newest job only, got %+v", limited)
	}
}

func TestDeleteJob(t *testing.T) {
	s := newTestStore(t)
	if err := s.PutJob(testRecord("job1")); err != nil {
		t.Fatalf("PutJob: %v", err)
	}
	if err := s.DeleteJob("job1"); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	if err := s.DeleteJob("job1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestFlushTerminalKeepsScheduledAndActive(t *testing.T) {
	s := newTestStore(t)

	done := testRecord("done")
	done.Status = provider.StatusDone

	failed := testRecord("failed")
	failed.Status = provider.StatusError

	running := testRecord("running")
	running.Status = provider.StatusRunning

	recurring := testRecord("recurring")
	recurring.Status = provider.StatusDone
	recurring.CronExpr = "0 * * * *"
	recurring.ScheduleState = ScheduleStateScheduled

	for _, rec := range []*JobRecord{done, failed, running, recurring} {
		if err := s.PutJob(rec); err != nil {
			t.Fatalf("PutJob %s: %v", rec.Id, err)
		}
	}

	n, err := s.FlushTerminal()
	if err != nil {
		t.Fatalf("FlushTerminal: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 flushed rows, got %d", n)
	}
	if _, err := s.GetJob("running"); err != nil {
		t.Errorf("expected running job to survive flush: %v", err)
	}
	if _, err := s.GetJob("recurring"); err != nil {
		t.Errorf("expected recurring job to survive flush: %v", err)
	}
}

func TestInterruptedJobs(t *testing.T) {
	s := newTestStore(t)

	queued := testRecord("queued")
	queued.Status = provider.StatusQueued

	running := testRecord("running")
	running.Status = provider.StatusRunning
	running.SubmittedAt = queued.SubmittedAt.Add(time.Minute)

	finished := testRecord("finished")
	finished.Status = provider.StatusDone

	for _, rec := range []*JobRecord{queued, running, finished} {
		if err := s.PutJob(rec); err != nil {
			t.Fatalf("PutJob %s: %v", rec.Id, err)
		}
	}

	recs, err := s.InterruptedJobs()
	if err != nil {
		t.Fatalf("InterruptedJobs: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 interrupted jobs, got %d", len(recs))
	}
	// Oldest first so re-queueing preserves submission order.
	if recs[0].Id != "queued" || recs[1].Id != "running" {
		t.Errorf("unexpected order: %s, %s", recs[0].Id, recs[1].Id)
	}
}

func TestCountActive(t *testing.T) {
	s := newTestStore(t)

	running := testRecord("running")
	running.Status = provider.StatusRunning

	done := testRecord("done")
	done.Status = provider.StatusDone

	other := testRecord("other")
	other.Backend = "sim5q"
	other.Status = provider.StatusQueued

	for _, rec := range []*JobRecord{running, done, other} {
		if err := s.PutJob(rec); err != nil {
			t.Fatalf("PutJob %s: %v", rec.Id, err)
		}
	}

	n, err := s.CountActive("sim1q")
	if err != nil {
		t.Fatalf("CountActive: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 active sim1q job, got %d", n)
	}
}

func TestScheduledJobs(t *testing.T) {
	s := newTestStore(t)

	later := testRecord("later")
	later.ScheduleState = ScheduleStateScheduled
	later.ScheduledAt = time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	sooner := testRecord("sooner")
	sooner.ScheduleState = ScheduleStateScheduled
	sooner.ScheduledAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	plain := testRecord("plain")

	for _, rec := range []*JobRecord{later, sooner, plain} {
		if err := s.PutJob(rec); err != nil {
			t.Fatalf("PutJob %s: %v", rec.Id, err)
		}
	}

	recs, err := s.ScheduledJobs()
	if err != nil {
		t.Fatalf("ScheduledJobs: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 scheduled jobs, got %d", len(recs))
	}
	if recs[0].Id != "sooner" {
		t.Errorf("expected earliest schedule first, got %s", recs[0].Id)
	}
}
