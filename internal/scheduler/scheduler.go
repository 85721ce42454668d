package scheduler

import (
	"container/heap"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adhocore/gronx"

	"github.com/cjliu20152/qiskit/internal/store"
)

const maxSleepCap = 60 * time.Second

// Scheduler manages deferred job events using a min-heap.
// It runs a background goroutine that sleeps until the next event's
// trigger time, then calls the onTrigger callback with the job id.
type Scheduler struct {
	addChan    chan ScheduleEvent
	removeChan chan string
	ctx        context.Context
}

// New creates and starts a new Scheduler.
// The onTrigger callback is invoked when a scheduled event fires.
// The scheduler goroutine exits when ctx is cancelled.
func New(ctx context.Context, onTrigger func(string)) *Scheduler {
	s := &Scheduler{
		addChan:    make(chan ScheduleEvent, 64),
		removeChan: make(chan string, 64),
		ctx:        ctx,
	}
	go s.run(onTrigger)
	return s
}

// Add enqueues a new schedule event.
func (s *Scheduler) Add(event ScheduleEvent) {
	select {
	case s.addChan <- event:
	case <-s.ctx.Done():
	}
}

// Remove cancels a scheduled event by job id.
func (s *Scheduler) Remove(jobId string) {
	select {
	case s.removeChan <- jobId:
	case <-s.ctx.Done():
	}
}

// run is the core scheduler goroutine implementing the active-object pattern.
// It maintains a min-heap of events and sleeps with a 60s max-sleep-cap.
// For recurring events (CronExpr != ""), after firing it computes the next
// occurrence and re-adds it to the heap automatically.
func (s *Scheduler) run(onTrigger func(string)) {
	h := &scheduleHeap{}
	heap.Init(h)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	resetTimer := func() <-chan time.Time {
		if timer != nil {
			timer.Stop()
		}
		if h.Len() == 0 {
			// No events — block indefinitely on channels
			return nil
		}
		next := (*h)[0].TriggerAt
		dur := time.Until(next)
		if dur > maxSleepCap {
			dur = maxSleepCap
		}
		if dur < 0 {
			dur = 0
		}
		timer = time.NewTimer(dur)
		return timer.C
	}

	timerCh := resetTimer()

	for {
		select {
		case <-s.ctx.Done():
			return

		case event := <-s.addChan:
			heapPush(h, event)
			timerCh = resetTimer()

		case jobId := <-s.removeChan:
			heapRemoveByJobId(h, jobId)
			timerCh = resetTimer()

		case <-timerCh:
			// Check and fire all events whose time has arrived
			now := time.Now()
			for h.Len() > 0 && !(*h)[0].TriggerAt.After(now) {
				event := heapPop(h)
				onTrigger(event.JobId)
				// For recurring events, compute next cron occurrence and re-add.
				if event.CronExpr != "" {
					next, err := NextTick(event.CronExpr, time.Now())
					if err == nil {
						heapPush(h, ScheduleEvent{
							JobId:     event.JobId,
							TriggerAt: next,
							CronExpr:  event.CronExpr,
						})
					}
				}
			}
			timerCh = resetTimer()
		}
	}
}

// NextTick returns the next time the cron expression fires strictly
// after start. Uses gronx.NextTickAfter with inclRefTime=false.
func NextTick(expr string, start time.Time) (time.Time, error) {
	return gronx.NextTickAfter(expr, start, false)
}

// ValidateCron checks a cron expression for recurring submissions.
// Enforces exactly 5 fields (minute hour day-of-month month day-of-week)
// and rejects expressions with no occurrence within one year.
func ValidateCron(expr string) error {
	if expr == "" {
		return fmt.Errorf("invalid cron expression %q, expected 5-field format (minute hour day-of-month month day-of-week)", expr)
	}
	// Enforce exactly 5 fields — gronx.IsValid also accepts 6-field (with seconds).
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return fmt.Errorf("invalid cron expression %q, expected 5-field format (minute hour day-of-month month day-of-week)", expr)
	}
	if !gronx.IsValid(expr) {
		return fmt.Errorf("invalid cron expression %q, expected 5-field format (minute hour day-of-month month day-of-week)", expr)
	}
	if !hasOccurrenceWithinYear(expr, time.Now()) {
		return fmt.Errorf("cron expression %q has no occurrence within one year", expr)
	}
	return nil
}

// hasOccurrenceWithinYear checks if a cron expression has any occurrence
// within 1 year from the given time. Returns false for invalid expressions
// or if no occurrence exists within the 1-year window.
func hasOccurrenceWithinYear(expr string, from time.Time) bool {
	next, err := gronx.NextTickAfter(expr, from, false)
	if err != nil {
		return false
	}
	return next.Before(from.Add(365 * 24 * time.Hour))
}

// LoadSchedules scans persisted job rows at daemon startup to detect
// missed schedules and identify future scheduled events to add to the
// scheduler heap.
//
// Rows with ScheduleState="scheduled" and ScheduledAt before now are
// returned in missed for immediate enqueueing; one-shot rows among them
// are marked ScheduleStateMissed. Rows with ScheduledAt after now are
// returned in future as ScheduleEvents ready to push into the heap.
// Rows without ScheduledAt set or with other ScheduleStates are skipped.
//
// For missed recurring rows (CronExpr != ""), the next cron occurrence
// is computed, written back to the row's ScheduledAt, and added to
// future so the recurring schedule continues.
func LoadSchedules(recs []*store.JobRecord, now time.Time) (missed []*store.JobRecord, future []ScheduleEvent) {
	for _, rec := range recs {
		if rec.ScheduleState != store.ScheduleStateScheduled {
			continue
		}
		if rec.ScheduledAt.IsZero() {
			continue
		}
		if rec.ScheduledAt.Before(now) {
			if rec.CronExpr == "" {
				rec.ScheduleState = store.ScheduleStateMissed
			} else if next, err := NextTick(rec.CronExpr, now); err == nil {
				rec.ScheduledAt = next
				future = append(future, ScheduleEvent{
					JobId:     rec.Id,
					TriggerAt: next,
					CronExpr:  rec.CronExpr,
				})
			}
			missed = append(missed, rec)
		} else {
			future = append(future, ScheduleEvent{
				JobId:     rec.Id,
				TriggerAt: rec.ScheduledAt,
				CronExpr:  rec.CronExpr,
			})
		}
	}
	return missed, future
}
