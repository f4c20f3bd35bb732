package screentone

import (
	"sync"
	"time"
)

// Scheduler debounces render requests from a control surface.
//
// Every parameter change calls Request; a new request cancels any pending
// scheduled render and reschedules, so at most one render is in flight and
// it always reflects the latest parameter snapshot. Stale scheduled renders
// are discarded, never queued.
type Scheduler struct {
	mu      sync.Mutex
	delay   time.Duration
	render  func()
	timer   *time.Timer
	gen     uint64
	pending bool
}

// NewScheduler creates a scheduler that invokes render after requests have
// been quiet for the given delay.
func NewScheduler(delay time.Duration, render func()) *Scheduler {
	if delay <= 0 {
		delay = 16 * time.Millisecond
	}
	return &Scheduler{delay: delay, render: render}
}

// Request schedules a render, replacing any pending one.
func (s *Scheduler) Request() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.pending = true
	s.timer = time.AfterFunc(s.delay, func() {
		s.fire(gen)
	})
}

// Cancel discards any pending scheduled render.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = false
}

// Pending reports whether a render is scheduled but has not fired yet.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		// A newer request superseded this one; discard it.
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.mu.Unlock()

	if s.render != nil {
		s.render()
	}
}
