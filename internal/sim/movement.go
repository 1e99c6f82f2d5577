package sim

import (
	"github.com/vovakirdan/tui-invaders/internal/core"
	"github.com/vovakirdan/tui-invaders/internal/ecs"
)

// movePlayer applies the intent heading and clamps to the side walls.
func (e *Engine) movePlayer(dir Direction) {
	player, ok := e.reg.First(ecs.RolePlayer)
	if !ok {
		return
	}
	t := e.reg.Transforms.Ptr(player)
	a := e.cfg.Arena
	t.Pos.X += dir.Sign() * e.cfg.Player.Speed * e.dt
	t.Pos.X = core.ClampF(t.Pos.X, a.LeftWall, a.RightWall)
}

// moveBullets advances bullets by owner and discards any that leave the
// arena vertically.
func (e *Engine) moveBullets() {
	a := e.cfg.Arena
	b := e.cfg.Bullets
	e.reg.Each(ecs.RoleBullet, func(ent ecs.Entity) bool {
		t := e.reg.Transforms.Ptr(ent)
		switch e.reg.Owner(ent) {
		case ecs.OwnerPlayer:
			t.Pos.Y += b.PlayerSpeed * e.dt
		case ecs.OwnerEnemy:
			t.Pos.Y -= b.EnemySpeed * e.dt
		}
		if !core.InRange(t.Pos.Y, a.BottomWall, a.TopWall) {
			e.reg.Destroy(ent)
		}
		return true
	})
}
