package scheduler

import (
	"testing"
	"time"
)

func TestHeapPushPopOrdering(t *testing.T) {
	h := &scheduleHeap{}

	t1 := time.Now().Add(3 * time.Hour)
	t2 := time.Now().Add(1 * time.Hour)
	t3 := time.Now().Add(2 * time.Hour)

	heapPush(h, ScheduleEvent{JobId: "job3", TriggerAt: t1})
	heapPush(h, ScheduleEvent{JobId: "job1", TriggerAt: t2})
	heapPush(h, ScheduleEvent{JobId: "job2", TriggerAt: t3})

	// Pop should return in ascending TriggerAt order (min-heap)
	first := heapPop(h)
	if first.JobId != "job1" {
		t.Errorf("expected job1 (earliest), got %s", first.JobId)
	}
	second := heapPop(h)
	if second.JobId != "job2" {
		t.Errorf("expected job2 (middle), got %s", second.JobId)
	}
	third := heapPop(h)
	if third.JobId != "job3" {
		t.Errorf("expected job3 (latest), got %s", third.JobId)
	}
}

func TestHeapEmpty(t *testing.T) {
	h := &scheduleHeap{}
	if h.Len() != 0 {
		t.Errorf("expected empty heap, got len %d", h.Len())
	}
}

func TestHeapDuplicateTriggerTimes(t *testing.T) {
	h := &scheduleHeap{}
	sameTime := time.Now().Add(1 * time.Hour)

	heapPush(h, ScheduleEvent{JobId: "jobA", TriggerAt: sameTime})
	heapPush(h, ScheduleEvent{JobId: "jobB", TriggerAt: sameTime})
	heapPush(h, ScheduleEvent{JobId: "jobC", TriggerAt: sameTime})

	if h.Len() != 3 {
		t.Fatalf("expected 3 items, got %d", h.Len())
	}

	// All three should be popped without error (any order is valid for equal times)
	seen := map[string]bool{}
	for h.Len() > 0 {
		e := heapPop(h)
		if seen[e.JobId] {
			t.Errorf("duplicate pop for %s", e.JobId)
		}
		seen[e.JobId] = true
	}
	if len(seen) != 3 {
		t.Errorf("expected 3 distinct items, got %d", len(seen))
	}
}

func TestHeapRemoveByJobId(t *testing.T) {
	h := &scheduleHeap{}

	t1 := time.Now().Add(1 * time.Hour)
	t2 := time.Now().Add(2 * time.Hour)
	t3 := time.Now().Add(3 * time.Hour)

	heapPush(h, ScheduleEvent{JobId: "jobA", TriggerAt: t1})
	heapPush(h, ScheduleEvent{JobId: "jobB", TriggerAt: t2})
	heapPush(h, ScheduleEvent{JobId: "jobC", TriggerAt: t3})

	// Remove the middle element
	removed := heapRemoveByJobId(h, "jobB")
	if !removed {
		t.Error("expected removal to succeed")
	}
	if h.Len() != 2 {
		t.Errorf("expected 2 items after removal, got %d", h.Len())
	}

	// Pop should return jobA then jobC
	first := heapPop(h)
	if first.JobId != "jobA" {
		t.Errorf("expected jobA, got %s", first.JobId)
	}
	second := heapPop(h)
	if second.JobId != "jobC" {
		t.Errorf("expected jobC, got %s", second.JobId)
	}
}

func TestHeapRemoveByJobIdNotFound(t *testing.T) {
	h := &scheduleHeap{}
	heapPush(h, ScheduleEvent{JobId: "jobA", TriggerAt: time.Now()})

	removed := heapRemoveByJobId(h, "nonexistent")
	if removed {
		t.Error("expected removal to fail for nonexistent job id")
	}
	if h.Len() != 1 {
		t.Errorf("expected 1 item to remain, got %d", h.Len())
	}
}

func TestHeapRemoveFirst(t *testing.T) {
	h := &scheduleHeap{}
	heapPush(h, ScheduleEvent{JobId: "only", TriggerAt: time.Now()})

	removed := heapRemoveByJobId(h, "only")
	if !removed {
		t.Error("expected removal to succeed")
	}
	if h.Len() != 0 {
		t.Errorf("expected empty heap after removal, got %d", h.Len())
	}
}
