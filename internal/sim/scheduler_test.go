package sim

import (
	"testing"
	"time"
)

func TestSchedulerAccumulates(t *testing.T) {
	s := NewScheduler(50, 5) // 20ms ticks

	tests := []struct {
		frame time.Duration
		want  int
	}{
		{10 * time.Millisecond, 0},
		{10 * time.Millisecond, 1},
		{45 * time.Millisecond, 2},
		{15 * time.Millisecond, 1},
		{0, 0},
		{-time.Second, 0},
	}
	for i, tt := range tests {
		if got := s.Advance(tt.frame); got != tt.want {
			t.Fatalf("frame %d (%v): got %d ticks, want %d", i, tt.frame, got, tt.want)
		}
	}
}

func TestSchedulerCapsSteps(t *testing.T) {
	s := NewScheduler(50, 3)
	if got := s.Advance(time.Second); got != 3 {
		t.Fatalf("got %d ticks, want cap 3", got)
	}
	// Excess was dropped, not carried.
	if got := s.Advance(10 * time.Millisecond); got != 0 {
		t.Fatalf("got %d ticks after cap, want 0", got)
	}
	s.Reset()
	if got := s.Advance(19 * time.Millisecond); got != 0 {
		t.Fatalf("got %d ticks after reset, want 0", got)
	}
	if s.Step() != 20*time.Millisecond {
		t.Fatalf("Step = %v, want 20ms", s.Step())
	}
}
