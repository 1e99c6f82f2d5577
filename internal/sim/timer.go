package sim

// FireGate is a repeating cooldown that limits spawn cadence.
// Time accumulates every tick; the gate is ready once a full period has
// elapsed and stays ready until Consume is called.
type FireGate struct {
	period  float64
	elapsed float64
}

// NewFireGate creates a gate that first opens one period after creation.
func NewFireGate(period float64) FireGate {
	if period <= 0 {
		panic("sim: fire gate period must be positive")
	}
	return FireGate{period: period}
}

// Advance adds dt seconds. Elapsed time saturates at one period so a long
// idle stretch never banks more than one shot.
func (g *FireGate) Advance(dt float64) {
	g.elapsed += dt
	if g.elapsed > g.period {
		g.elapsed = g.period
	}
}

// Ready reports whether a shot may be spawned.
func (g *FireGate) Ready() bool {
	return g.elapsed >= g.period
}

// Consume re-arms the gate.
func (g *FireGate) Consume() {
	g.elapsed = 0
}

// Period returns the configured period in seconds.
func (g *FireGate) Period() float64 {
	return g.period
}
