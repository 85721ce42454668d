package engine

import (
	"sync"
)

// Priority represents the priority level for queued jobs.
type Priority int

const (
	// PriorityLow is the lowest priority for jobs.
	PriorityLow Priority = iota
	// PriorityNormal is the default priority for jobs.
	PriorityNormal
	// PriorityHigh is the highest priority for jobs.
	PriorityHigh
)

// clampPriority maps arbitrary wire integers onto the known levels.
func clampPriority(p int) Priority {
	switch {
	case p <= int(PriorityLow):
		return PriorityLow
	case p >= int(PriorityHigh):
		return PriorityHigh
	default:
		return PriorityNormal
	}
}

// queuedJob represents a job waiting for an execution slot.
type queuedJob struct {
	id       string
	priority Priority
}

// jobQueue enforces the backend concurrency limit. Jobs beyond
// maxConcurrent wait in priority order and start when slots free up.
type jobQueue struct {
	maxConcurrent int
	active        map[string]struct{}
	waiting       []queuedJob
	onStart       func(id string)
	paused        bool
	mu            sync.Mutex
}

// newJobQueue creates a jobQueue with the given concurrency limit.
// onStart is called when a job is activated (can be nil).
func newJobQueue(maxConcurrent int, onStart func(id string)) *jobQueue {
	return &jobQueue{
		maxConcurrent: maxConcurrent,
		active:        make(map[string]struct{}),
		waiting:       make([]queuedJob, 0),
		onStart:       onStart,
	}
}

// Add adds a job to the queue. If under capacity, it becomes active
// immediately. Otherwise it waits, ordered by priority.
func (q *jobQueue) Add(id string, priority Priority) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.active[id]; exists {
		return
	}
	for _, item := range q.waiting {
		if item.id == id {
			return
		}
	}

	if !q.paused && len(q.active) < q.maxConcurrent {
		q.active[id] = struct{}{}
		if q.onStart != nil {
			q.onStart(id)
		}
		return
	}

	// Insert before the first waiting job with lower priority.
	insertIdx := len(q.waiting)
	for i, item := range q.waiting {
		if item.priority < priority {
			insertIdx = i
			break
		}
	}
	q.waiting = append(q.waiting, queuedJob{})
	copy(q.waiting[insertIdx+1:], q.waiting[insertIdx:])
	q.waiting[insertIdx] = queuedJob{id: id, priority: priority}
}

// Remove drops a waiting job from the queue. Returns false when the job
// is not waiting (active jobs are cancelled through their context).
func (q *jobQueue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, item := range q.waiting {
		if item.id == id {
			q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
			return true
		}
	}
	return false
}

// Position returns the 1-based waiting position of a job, 0 if it is
// active, and -1 if the queue does not know it.
func (q *jobQueue) Position(id string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.active[id]; ok {
		return 0
	}
	for i, item := range q.waiting {
		if item.id == id {
			return i + 1
		}
	}
	return -1
}

// OnComplete releases a job's slot and starts the next waiting job.
func (q *jobQueue) OnComplete(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.active, id)

	if q.paused {
		return
	}
	if len(q.waiting) > 0 && len(q.active) < q.maxConcurrent {
		next := q.waiting[0]
		q.waiting = q.waiting[1:]
		q.active[next.id] = struct{}{}
		if q.onStart != nil {
			q.onStart(next.id)
		}
	}
}

// ActiveCount returns the number of currently running jobs.
func (q *jobQueue) ActiveCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.active)
}

// WaitingCount returns the number of jobs waiting for a slot.
func (q *jobQueue) WaitingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}

// MaxConcurrent returns the execution slot limit.
func (q *jobQueue) MaxConcurrent() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.maxConcurrent
}

// Pause stops auto-starting waiting jobs. Active jobs keep running.
func (q *jobQueue) Pause() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.paused = true
}

// Resume re-enables auto-start and fills free slots from the queue.
func (q *jobQueue) Resume() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.paused = false
	for len(q.waiting) > 0 && len(q.active) < q.maxConcurrent {
		next := q.waiting[0]
		q.waiting = q.waiting[1:]
		q.active[next.id] = struct{}{}
		if q.onStart != nil {
			q.onStart(next.id)
		}
	}
}

// IsPaused returns whether the queue is paused.
func (q *jobQueue) IsPaused() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.paused
}
