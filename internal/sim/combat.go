package sim

import (
	"fmt"

	"github.com/vovakirdan/tui-invaders/internal/ecs"
)

// Combat runs in three phases over exhaustive AABB pairs. A bullet resolves
// against at most one target, the first intersecting one in spawn order,
// and is destroyed immediately so later phases skip it.

// resolveShields lets shields absorb bullets from either side.
func (e *Engine) resolveShields() {
	limit := e.cfg.Shields.MaxHits
	e.reg.Each(ecs.RoleBullet, func(bullet ecs.Entity) bool {
		box, _ := e.reg.Colliders.Get(bullet)
		e.reg.Each(ecs.RoleShield, func(shield ecs.Entity) bool {
			sbox, _ := e.reg.Colliders.Get(shield)
			if !box.Intersects(sbox) {
				return true
			}
			e.reg.Destroy(bullet)
			hits := e.reg.Hits.Ptr(shield)
			*hits++
			e.stats.ShieldAbsorbs++
			if *hits > limit {
				panic(fmt.Sprintf("sim: shield %s absorbed %d hits past limit %d", shield, *hits, limit))
			}
			if *hits == limit {
				e.reg.Destroy(shield)
				e.stats.ShieldsLost++
			}
			return false
		})
		return true
	})
}

// resolveEnemyHits trades player bullets for enemies and queues kills.
func (e *Engine) resolveEnemyHits() {
	e.reg.Each(ecs.RoleBullet, func(bullet ecs.Entity) bool {
		if e.reg.Owner(bullet) != ecs.OwnerPlayer {
			return true
		}
		box, _ := e.reg.Colliders.Get(bullet)
		e.reg.Each(ecs.RoleEnemy, func(enemy ecs.Entity) bool {
			ebox, _ := e.reg.Colliders.Get(enemy)
			if !box.Intersects(ebox) {
				return true
			}
			e.reg.Destroy(bullet)
			e.reg.Destroy(enemy)
			grid, _ := e.reg.Grid.Get(enemy)
			points, _ := e.reg.Points.Get(enemy)
			e.kills.push(KillEvent{Enemy: enemy, Pos: grid, Points: points})
			return false
		})
		return true
	})
}

// resolvePlayerHits applies enemy bullets to the player. Resolution stops
// as soon as hit points reach zero.
func (e *Engine) resolvePlayerHits() {
	player, ok := e.reg.First(ecs.RolePlayer)
	if !ok {
		return
	}
	pbox, _ := e.reg.Colliders.Get(player)
	e.reg.Each(ecs.RoleBullet, func(bullet ecs.Entity) bool {
		if e.hp == 0 {
			return false
		}
		if e.reg.Owner(bullet) != ecs.OwnerEnemy {
			return true
		}
		box, _ := e.reg.Colliders.Get(bullet)
		if !box.Intersects(pbox) {
			return true
		}
		e.reg.Destroy(bullet)
		e.damagePlayer()
		return true
	})
}
