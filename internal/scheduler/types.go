package scheduler

import "time"

// ScheduleEvent represents a pending deferred job in the scheduler heap.
// It is an in-memory only type — the heap is rebuilt from job rows on
// daemon restart.
type ScheduleEvent struct {
	// JobId is the identifier of the job to enqueue when TriggerAt is reached.
	JobId string
	// TriggerAt is the wall-clock time when this job should be enqueued.
	TriggerAt time.Time
	// CronExpr is the cron expression for recurring jobs.
	// Empty string means one-shot — no re-scheduling after firing.
	CronExpr string
}
