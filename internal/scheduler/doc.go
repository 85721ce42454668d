// Package scheduler provides deferred and recurring job submission for
// the qiskitd daemon. It implements a single-goroutine scheduler using a
// min-heap of ScheduleEvents sorted by trigger time, with a 60-second
// max-sleep-cap to handle NTP steps, DST transitions, and system sleep
// (macOS monotonic clock pause).
//
// The scheduler is a daemon-level component that fires events and calls
// a registered OnTrigger callback to enqueue jobs through the normal
// execution flow. It does not persist state; the heap is rebuilt from
// job rows on daemon restart.
package scheduler
