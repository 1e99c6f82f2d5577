package sim

import "time"

// Scheduler turns variable frame durations into whole fixed ticks.
// Leftover time carries into the next frame. When a frame would need more
// than maxSteps ticks the excess is dropped so a stalled terminal cannot
// trigger a catch-up spiral.
type Scheduler struct {
	step     time.Duration
	maxSteps int
	acc      time.Duration
}

// NewScheduler creates a scheduler for the given tick rate.
func NewScheduler(tickHz float64, maxSteps int) *Scheduler {
	if tickHz <= 0 || maxSteps <= 0 {
		panic("sim: scheduler needs positive tick rate and step cap")
	}
	return &Scheduler{
		step:     time.Duration(float64(time.Second) / tickHz),
		maxSteps: maxSteps,
	}
}

// Advance adds frame time and returns how many ticks to run now.
func (s *Scheduler) Advance(frame time.Duration) int {
	if frame < 0 {
		frame = 0
	}
	s.acc += frame
	n := int(s.acc / s.step)
	if n > s.maxSteps {
		n = s.maxSteps
		s.acc = 0
		return n
	}
	s.acc -= time.Duration(n) * s.step
	return n
}

// Step returns the fixed tick duration.
func (s *Scheduler) Step() time.Duration { return s.step }

// Reset discards accumulated time.
func (s *Scheduler) Reset() { s.acc = 0 }
