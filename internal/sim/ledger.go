package sim

import "fmt"

// applyKills credits this tick's kills to the score, once each.
func (e *Engine) applyKills() {
	for _, k := range e.kills.cur {
		if k.Points < 0 {
			panic(fmt.Sprintf("sim: negative points %d for kill at %+v", k.Points, k.Pos))
		}
		e.score += k.Points
		e.stats.Kills++
	}
}

// damagePlayer removes one hit point.
func (e *Engine) damagePlayer() {
	if e.hp <= 0 {
		panic(fmt.Sprintf("sim: player damaged with %d hit points left", e.hp))
	}
	e.hp--
	e.stats.PlayerHits++
}
