package sim

import (
	"math"

	"github.com/vovakirdan/tui-invaders/internal/ecs"
)

// Autopilot returns the intent a simple bot would send this tick: start
// from the menu, hold fire and steer under the nearest front-row enemy.
// On game over it retries only when retry is set.
func (e *Engine) Autopilot(retry bool) Intent {
	switch e.state {
	case StateMenu:
		return Intent{Start: true}
	case StateGameOver:
		return Intent{Retry: retry}
	case StateRunning:
	default:
		return Intent{}
	}

	it := Intent{Fire: true}
	player, ok := e.reg.First(ecs.RolePlayer)
	if !ok {
		return it
	}
	px := e.reg.Transforms.Ptr(player).Pos.X

	target, found := 0.0, false
	for _, ent := range e.frontCandidates() {
		x := e.reg.Transforms.Ptr(ent).Pos.X
		if !found || math.Abs(x-px) < math.Abs(target-px) {
			target, found = x, true
		}
	}
	if !found {
		return it
	}

	// Within half a step of the target, stay put rather than oscillate.
	half := e.cfg.Player.Speed * e.dt / 2
	switch dx := target - px; {
	case dx > half:
		it.Move = DirRight
	case dx < -half:
		it.Move = DirLeft
	}
	return it
}
