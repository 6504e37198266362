package navigation

import (
	"sync"
	"time"
)

// Outcomes reported to an Observer.
const (
	OutcomeFired      = "fired"
	OutcomeSuperseded = "superseded"
)

// Observer receives delayed-transition outcomes.
type Observer interface {
	RecordTransition(outcome string)
}

// Stopper is the part of *time.Timer the scheduler needs.
type Stopper interface {
	Stop() bool
}

// Clock starts timers. Tests swap in a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Stopper
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// Scheduler holds at most one pending delayed transition. Scheduling another,
// Cancel, or Stop supersedes it, and a superseded callback never runs even if
// its timer already fired.
type Scheduler struct {
	clock    Clock
	observer Observer

	mu         sync.Mutex
	generation uint64
	pending    Stopper
	stopped    bool
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithClock replaces the wall clock.
func WithClock(c Clock) SchedulerOption {
	return func(s *Scheduler) { s.clock = c }
}

// WithObserver reports fired and superseded transitions.
func WithObserver(o Observer) SchedulerOption {
	return func(s *Scheduler) { s.observer = o }
}

// NewScheduler creates a Scheduler backed by the wall clock.
func NewScheduler(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{clock: realClock{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Step is one delayed action in a chain.
type Step struct {
	Delay time.Duration
	Run   func()
}

// Schedule runs fn after d unless superseded first. fn runs with the
// scheduler locked and must not call back into it. It returns false once
// the scheduler is stopped.
func (s *Scheduler) Schedule(d time.Duration, fn func()) bool {
	return s.ScheduleChain(Step{Delay: d, Run: fn})
}

// ScheduleChain runs each step after its delay, one after another. The chain
// occupies the single pending slot, so superseding it drops every step that
// has not run yet.
func (s *Scheduler) ScheduleChain(steps ...Step) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || len(steps) == 0 {
		return false
	}
	s.supersedeLocked()
	s.generation++
	s.startLocked(s.generation, steps)
	return true
}

func (s *Scheduler) startLocked(gen uint64, steps []Step) {
	first, rest := steps[0], steps[1:]
	s.pending = s.clock.AfterFunc(first.Delay, func() { s.fire(gen, first.Run, rest) })
}

// Cancel supersedes the pending transition, reporting whether there was one.
func (s *Scheduler) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.supersedeLocked()
}

// Pending reports whether a transition is waiting to fire.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Stop cancels anything pending and refuses further scheduling.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supersedeLocked()
	s.stopped = true
}

func (s *Scheduler) supersedeLocked() bool {
	if s.pending == nil {
		return false
	}
	s.pending.Stop()
	s.pending = nil
	// Bumping the generation suppresses a callback already in flight.
	s.generation++
	s.record(OutcomeSuperseded)
	return true
}

func (s *Scheduler) fire(gen uint64, fn func(), rest []Step) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || gen != s.generation {
		return
	}
	s.pending = nil
	s.record(OutcomeFired)
	if fn != nil {
		fn()
	}
	if len(rest) > 0 {
		s.startLocked(gen, rest)
	}
}

func (s *Scheduler) record(outcome string) {
	if s.observer != nil {
		s.observer.RecordTransition(outcome)
	}
}
