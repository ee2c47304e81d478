// Package scheduler runs deferred jobs with explicit cancellation tokens.
package scheduler

import "time"

// Token cancels a scheduled job.
type Token interface {
	// Cancel stops the job and reports whether it prevented the run.
	Cancel() bool
}

// Scheduler schedules a function to run after a delay.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Token
}

// Timer is the production scheduler backed by time.AfterFunc.
type Timer struct{}

// NewTimer creates a timer-backed scheduler.
func NewTimer() *Timer {
	return &Timer{}
}

// Schedule runs fn after delay on a timer goroutine.
func (t *Timer) Schedule(delay time.Duration, fn func()) Token {
	return timerToken{timer: time.AfterFunc(delay, fn)}
}

type timerToken struct {
	timer *time.Timer
}

func (t timerToken) Cancel() bool {
	return t.timer.Stop()
}
