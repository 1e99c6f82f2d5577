package sim

import (
	"testing"

	"github.com/vovakirdan/tui-invaders/internal/config"
	"github.com/vovakirdan/tui-invaders/internal/core"
	"github.com/vovakirdan/tui-invaders/internal/ecs"
)

// testConfig is a quiet arena: a single stationary enemy, no shields and an
// enemy gate that effectively never opens. dt is 1/64 so positions stay exact.
func testConfig() config.InvadersConfig {
	cfg := config.DefaultInvadersConfig()
	cfg.Gameplay.TickHz = 64
	cfg.Enemies.Rows = 1
	cfg.Enemies.Cols = 1
	cfg.Enemies.Speed = 0
	cfg.Enemies.FireRate = 0.001
	cfg.Shields.Count = 0
	return cfg
}

func running(t *testing.T, cfg config.InvadersConfig) *Engine {
	t.Helper()
	e := NewEngine(cfg, WithSeed(1))
	e.Step(Intent{Start: true})
	if e.State() != StateRunning {
		t.Fatalf("state = %s, want running", e.State())
	}
	return e
}

func enemyAt(t *testing.T, e *Engine, row, col int) ecs.Entity {
	t.Helper()
	var found ecs.Entity
	e.reg.Each(ecs.RoleEnemy, func(ent ecs.Entity) bool {
		if g, _ := e.reg.Grid.Get(ent); g.Row == row && g.Col == col {
			found = ent
			return false
		}
		return true
	})
	if found.IsNil() {
		t.Fatalf("no live enemy at row %d col %d", row, col)
	}
	return found
}

func posOf(e *Engine, ent ecs.Entity) core.Vec2 {
	t, _ := e.reg.Transforms.Get(ent)
	return t.Pos
}

// playerShotAt spawns a player bullet that will sit at target after one
// tick of movement.
func playerShotAt(e *Engine, target core.Vec2) {
	e.spawnBullet(ecs.OwnerPlayer, target.Sub(core.V(0, e.cfg.Bullets.PlayerSpeed*e.dt)))
}

// enemyShotAt spawns an enemy bullet that will sit at target after one tick.
func enemyShotAt(e *Engine, target core.Vec2) {
	e.spawnBullet(ecs.OwnerEnemy, target.Add(core.V(0, e.cfg.Bullets.EnemySpeed*e.dt)))
}
