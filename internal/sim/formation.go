package sim

import (
	"github.com/vovakirdan/tui-invaders/internal/config"
	"github.com/vovakirdan/tui-invaders/internal/core"
	"github.com/vovakirdan/tui-invaders/internal/ecs"
)

// spawnFormation lays out the enemy grid. Row 0 sits at BaseY, nearest
// the player, and is the initial front row of every column.
func (e *Engine) spawnFormation(tag ecs.Tag) {
	en := e.cfg.Enemies
	for row := 0; row < en.Rows; row++ {
		for col := 0; col < en.Cols; col++ {
			pos := core.V(float64(col)*en.Spacing+en.BaseX, float64(row)*en.Spacing+en.BaseY)
			e.reg.Spawn(tag, ecs.RoleEnemy).
				WithTransform(pos, core.V(en.Size, en.Size)).
				WithCollider().
				WithGrid(ecs.GridPos{Row: row, Col: col}).
				WithPoints(en.Points)
		}
	}
	for col := 0; col < en.Cols; col++ {
		if en.Rows > 0 {
			e.frontRows[col] = 0
		}
	}
}

// moveFormation moves the grid as one rigid body. If any enemy would
// cross a side wall the whole grid drops instead and the heading flips.
func (e *Engine) moveFormation() {
	a := e.cfg.Arena
	dx := e.formation.Sign() * e.cfg.Enemies.Speed * e.dt

	blocked := false
	e.reg.Each(ecs.RoleEnemy, func(ent ecs.Entity) bool {
		x := e.reg.Transforms.Ptr(ent).Pos.X + dx
		if !core.InRange(x, a.LeftWall, a.RightWall) {
			blocked = true
			return false
		}
		return true
	})

	if blocked {
		drop := e.cfg.Enemies.Drop
		e.reg.Each(ecs.RoleEnemy, func(ent ecs.Entity) bool {
			e.reg.Transforms.Ptr(ent).Pos.Y -= drop
			return true
		})
		e.formation = e.formation.Flip()
		e.stats.Drops++
		return
	}

	e.reg.Each(ecs.RoleEnemy, func(ent ecs.Entity) bool {
		e.reg.Transforms.Ptr(ent).Pos.X += dx
		return true
	})
}

// updateFrontRows recomputes the front row of every column that lost an
// enemy. The killed entity is excluded explicitly since it may still be
// visible to the scan.
func (e *Engine) updateFrontRows(kills []KillEvent) {
	for _, k := range kills {
		col := k.Pos.Col
		best, found := 0, false
		e.reg.EachIncludingDoomed(ecs.RoleEnemy, func(ent ecs.Entity) bool {
			if ent == k.Enemy || e.reg.Doomed(ent) {
				return true
			}
			g, _ := e.reg.Grid.Get(ent)
			if g.Col != col || g.Row == k.Pos.Row {
				return true
			}
			if !found || g.Row < best {
				best, found = g.Row, true
			}
			return true
		})
		if found {
			e.frontRows[col] = best
		} else {
			delete(e.frontRows, col)
		}
	}
}

// frontCandidates returns the live enemies currently eligible to fire,
// in spawn order.
func (e *Engine) frontCandidates() []ecs.Entity {
	var out []ecs.Entity
	e.reg.Each(ecs.RoleEnemy, func(ent ecs.Entity) bool {
		g, _ := e.reg.Grid.Get(ent)
		if row, ok := e.frontRows[g.Col]; ok && row == g.Row {
			out = append(out, ent)
		}
		return true
	})
	return out
}

// firePlayer spawns at most one bullet per open gate.
func (e *Engine) firePlayer(fire bool) {
	e.playerGate.Advance(e.dt)
	if !fire || !e.playerGate.Ready() {
		return
	}
	player, ok := e.reg.First(ecs.RolePlayer)
	if !ok {
		return
	}
	t, _ := e.reg.Transforms.Get(player)
	e.spawnBullet(ecs.OwnerPlayer, t.Pos.Add(core.V(0, e.cfg.Bullets.Offset)))
	e.playerGate.Consume()
	e.stats.Shots++
}

// fireEnemies fires from the front row according to the configured policy.
// With no eligible enemy the gate stays open.
func (e *Engine) fireEnemies() {
	e.enemyGate.Advance(e.dt)
	if !e.enemyGate.Ready() {
		return
	}
	candidates := e.frontCandidates()
	if len(candidates) == 0 {
		return
	}

	if e.cfg.Enemies.FirePolicy == config.FireRandom {
		candidates = candidates[e.rng.Intn(len(candidates)):][:1]
	}
	offset := core.V(0, -e.cfg.Bullets.Offset)
	for _, ent := range candidates {
		t, _ := e.reg.Transforms.Get(ent)
		e.spawnBullet(ecs.OwnerEnemy, t.Pos.Add(offset))
		e.stats.EnemyShots++
	}
	e.enemyGate.Consume()
}
