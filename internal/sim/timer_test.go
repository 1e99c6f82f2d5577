package sim

import "testing"

func TestFireGate(t *testing.T) {
	g := NewFireGate(0.125)
	dt := 1.0 / 64

	for i := 1; i < 8; i++ {
		g.Advance(dt)
		if g.Ready() {
			t.Fatalf("gate ready after %d ticks, want 8", i)
		}
	}
	g.Advance(dt)
	if !g.Ready() {
		t.Fatal("gate not ready after a full period")
	}

	// Stays open until consumed, without banking extra shots.
	for _i := 0; _i < 100; _i++ {
		g.Advance(dt)
	}
	if !g.Ready() {
		t.Fatal("gate closed without Consume")
	}
	g.Consume()
	if g.Ready() {
		t.Fatal("gate ready right after Consume")
	}
	g.Advance(dt)
	if g.Ready() {
		t.Fatal("idle time was banked past one period")
	}
}

func TestFireGatePanicsOnBadPeriod(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewFireGate(0)
}
