// Package sessiontest provides a manually driven scheduler for tests.
package sessiontest

import (
	"sync"
	"time"
)

type timer struct {
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

// Scheduler records callbacks and runs them only when the test says so.
type Scheduler struct {
	mu     sync.Mutex
	timers []*timer
}

// NewScheduler creates an empty manual scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// AfterFunc implements session.Scheduler.
func (s *Scheduler) AfterFunc(d time.Duration, f func()) func() bool {
	t := &timer{delay: d, f: f}
	s.mu.Lock()
	s.timers = append(s.timers, t)
	s.mu.Unlock()

	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if t.stopped || t.fired {
			return false
		}
		t.stopped = true
		return true
	}
}

// Pending returns the number of callbacks neither fired nor stopped.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Delays returns the delay of every callback ever scheduled, in order.
func (s *Scheduler) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.timers))
	for i, t := range s.timers {
		out[i] = t.delay
	}
	return out
}

// FireAll runs every pending callback, ignoring stop requests when force is
// set. Forcing simulates a timer that had already started when the session
// was resolved.
func (s *Scheduler) FireAll(force bool) int {
	s.mu.Lock()
	var run []func()
	for _, t := range s.timers {
		if t.fired || (t.stopped && !force) {
			continue
		}
		t.fired = true
		run = append(run, t.f)
	}
	s.mu.Unlock()

	for _, f := range run {
		f()
	}
	return len(run)
}
