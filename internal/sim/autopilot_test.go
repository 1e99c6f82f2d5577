package sim

import (
	"testing"

	"github.com/vovakirdan/tui-invaders/internal/ecs"
)

func TestAutopilotClearsSingleEnemy(t *testing.T) {
	e := NewEngine(testConfig(), WithSeed(3))
	if it := e.Autopilot(false); !it.Start {
		t.Fatalf("menu intent = %+v, want start", it)
	}
	e.Step(e.Autopilot(false))

	first := e.Autopilot(false)
	if first.Move != DirLeft || !first.Fire {
		t.Fatalf("first running intent = %+v, want left+fire", first)
	}

	for _i := 0; _i < 256; _i++ {
		e.Step(e.Autopilot(false))
	}
	if e.Stats().Kills != 1 || e.Score() != 10 {
		t.Fatalf("kills=%d score=%d, want the only enemy dead", e.Stats().Kills, e.Score())
	}
	// Nothing left to chase: fire only.
	if it := e.Autopilot(false); it.Move != DirNone || !it.Fire {
		t.Fatalf("idle intent = %+v", it)
	}
}

func TestAutopilotRetry(t *testing.T) {
	cfg := testConfig()
	cfg.Gameplay.HitPoints = 1
	e := running(t, cfg)
	player, _ := e.reg.First(ecs.RolePlayer)
	enemyShotAt(e, posOf(e, player))
	e.Step(Intent{})
	if e.State() != StateGameOver {
		t.Fatalf("state = %s, want gameover", e.State())
	}
	if it := e.Autopilot(false); it != (Intent{}) {
		t.Fatalf("no-retry intent = %+v", it)
	}
	if it := e.Autopilot(true); !it.Retry {
		t.Fatalf("retry intent = %+v", it)
	}
}
