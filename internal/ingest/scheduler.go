package ingest

import (
	"time"

	"k8s.io/utils/clock"
)

// Task is a handle to a scheduled one-shot callback.
type Task interface {
	// Cancel stops the callback from running. It returns false if the
	// callback already fired or was cancelled before.
	Cancel() bool
}

// Scheduler runs deferred callbacks. Callbacks may run on any goroutine and
// must not call back into the scheduler.
type Scheduler interface {
	Now() time.Time
	Schedule(delay time.Duration, fn func()) Task
}

// ClockScheduler schedules callbacks on a k8s clock. Use clock.RealClock{} in
// production and a testing.FakeClock in tests.
type ClockScheduler struct {
	clock clock.WithDelayedExecution
}

// NewClockScheduler creates a scheduler backed by c.
func NewClockScheduler(c clock.WithDelayedExecution) *ClockScheduler {
	return &ClockScheduler{clock: c}
}

// NewRealScheduler creates a scheduler backed by the wall clock.
func NewRealScheduler() *ClockScheduler {
	return NewClockScheduler(clock.RealClock{})
}

// Now returns the current time of the underlying clock.
func (s *ClockScheduler) Now() time.Time {
	return s.clock.Now()
}

// Schedule runs fn once after delay.
func (s *ClockScheduler) Schedule(delay time.Duration, fn func()) Task {
	return &timerTask{timer: s.clock.AfterFunc(delay, fn)}
}

type timerTask struct {
	timer clock.Timer
}

func (t *timerTask) Cancel() bool {
	return t.timer.Stop()
}
