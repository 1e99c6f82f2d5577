package invaders

import (
	"strings"
	"testing"

	"github.com/vovakirdan/tui-invaders/internal/config"
	"github.com/vovakirdan/tui-invaders/internal/core"
	"github.com/vovakirdan/tui-invaders/internal/registry"
	"github.com/vovakirdan/tui-invaders/internal/sim"
)

func runtimeCfg(fps int) core.RuntimeConfig {
	return core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: fps, Seed: 12345}
}

func press(actions ...core.Action) core.InputFrame {
	in := core.NewInputFrame()
	for _, a := range actions {
		in.Set(a)
	}
	return in
}

func started(t *testing.T, g *Game) {
	t.Helper()
	g.Step(press(core.ActionConfirm))
	if g.Phase() != sim.StateRunning {
		t.Fatalf("phase = %s, want running", g.Phase())
	}
}

func TestModesRegistered(t *testing.T) {
	for _, id := range []string{IDClassic, IDVolley} {
		g, err := registry.Create(id)
		if err != nil {
			t.Fatalf("Create(%q): %v", id, err)
		}
		if g.ID() != id {
			t.Errorf("ID = %q, want %q", g.ID(), id)
		}
	}
	for _, info := range registry.List() {
		if info.Description == "" {
			t.Errorf("%s has no description", info.ID)
		}
	}
}

func TestVolleyModeForcesPolicy(t *testing.T) {
	g := NewVolley().WithConfig(config.DefaultInvadersConfig())
	g.Reset(runtimeCfg(60))
	cfg := g.Config()
	if cfg.Enemies.FirePolicy != config.FireVolley || cfg.EnemyFirePeriod() != 1 {
		t.Fatalf("volley config = %+v", cfg.Enemies)
	}

	c := New().WithConfig(config.DefaultInvadersConfig())
	c.Reset(runtimeCfg(60))
	if c.Config().Enemies.FirePolicy != config.FireRandom {
		t.Fatal("classic mode lost random policy")
	}
}

func TestIntentFrom(t *testing.T) {
	tests := []struct {
		name string
		in   core.InputFrame
		want sim.Intent
	}{
		{"idle", press(), sim.Intent{}},
		{"left", press(core.ActionLeft), sim.Intent{Move: sim.DirLeft}},
		{"right fire", press(core.ActionRight, core.ActionFire), sim.Intent{Move: sim.DirRight, Fire: true}},
		{"both cancel", press(core.ActionLeft, core.ActionRight), sim.Intent{}},
		{"confirm", press(core.ActionConfirm), sim.Intent{Start: true}},
		{"restart", press(core.ActionRestart), sim.Intent{Retry: true}},
		{"quit", press(core.ActionQuit), sim.Intent{Exit: true}},
		{"pause", press(core.ActionPause), sim.Intent{Pause: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IntentFrom(tt.in); got != tt.want {
				t.Fatalf("IntentFrom = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFramePacing(t *testing.T) {
	g := New().WithConfig(config.DefaultInvadersConfig())
	g.Reset(runtimeCfg(30))
	started(t, g)

	res := g.Step(press())
	if res.Ticks != 2 {
		t.Fatalf("30fps frame ran %d ticks, want 2 at 60Hz", res.Ticks)
	}
}

func TestOneShotIntentSurvivesEmptyFrame(t *testing.T) {
	g := New().WithConfig(config.DefaultInvadersConfig())
	g.Reset(runtimeCfg(120))

	res := g.Step(press(core.ActionConfirm))
	if res.Ticks != 0 {
		t.Fatalf("first 120fps frame ran %d ticks, want 0", res.Ticks)
	}
	if g.Phase() != sim.StateMenu {
		t.Fatal("left menu without a tick")
	}
	g.Step(press())
	if g.Phase() != sim.StateRunning {
		t.Fatalf("phase = %s, held start intent was lost", g.Phase())
	}
}

// doomedConfig puts a single shooter straight above a one-hit player.
func doomedConfig() config.InvadersConfig {
	cfg := config.DefaultInvadersConfig()
	cfg.Enemies.Rows, cfg.Enemies.Cols = 1, 1
	cfg.Enemies.BaseX = 0
	cfg.Enemies.Speed = 0
	cfg.Shields.Count = 0
	cfg.Gameplay.HitPoints = 1
	return cfg
}

func TestGameOverRetryAndQuit(t *testing.T) {
	g := New().WithConfig(doomedConfig())
	g.Reset(runtimeCfg(60))
	started(t, g)

	for _i := 0; _i < 240; _i++ {
		if g.State().GameOver {
			break
		}
		g.Step(press())
	}
	st := g.State()
	if !st.GameOver || st.HitPoints != 0 {
		t.Fatalf("state = %+v, want game over", st)
	}
	if g.Stats().PlayerHits != 1 {
		t.Fatalf("stats = %+v", g.Stats())
	}

	g.Step(press(core.ActionRestart))
	if st := g.State(); st.GameOver || st.HitPoints != 1 || g.Phase() != sim.StateRunning {
		t.Fatalf("retry did not restart: %+v", st)
	}

	for _i := 0; _i < 240; _i++ {
		if g.State().GameOver {
			break
		}
		g.Step(press())
	}
	g.Step(press(core.ActionQuit))
	if !g.State().Exited {
		t.Fatalf("quit from game over: %+v", g.State())
	}
	// Further frames are inert.
	if res := g.Step(press(core.ActionRestart)); res.Ticks != 0 || !res.State.Exited {
		t.Fatalf("exited game stepped: %+v", res)
	}
}

func TestObserversSeeFrames(t *testing.T) {
	g := New().WithConfig(config.DefaultInvadersConfig())
	var frames []sim.Frame
	g.AddObserver(sim.ObserverFunc(func(f sim.Frame) { frames = append(frames, f) }))
	g.Reset(runtimeCfg(60))
	started(t, g)

	shots := 0
	for _i := 0; _i < 30; _i++ {
		g.Step(press(core.ActionFire))
	}
	for _, f := range frames {
		if f.Mode != IDClassic {
			t.Fatalf("frame mode = %q", f.Mode)
		}
		shots += len(f.Fired)
	}
	if len(frames) != 31 {
		t.Fatalf("observed %d frames, want 31", len(frames))
	}
	last := frames[len(frames)-1]
	if want := last.Stats.Shots + last.Stats.EnemyShots; shots != want {
		t.Fatalf("observed %d fire events, stats count %d", shots, want)
	}
	if last.Stats.Shots == 0 {
		t.Fatal("holding fire for half a second produced no shots")
	}
}

func TestDeterministicWithSeed(t *testing.T) {
	run := func() sim.Snapshot {
		g := New().WithConfig(config.DefaultInvadersConfig())
		g.Reset(runtimeCfg(60))
		started(t, g)
		for i := 0; i < 400; i++ {
			in := press()
			if i%2 == 0 {
				in.Set(core.ActionFire)
			}
			if i%80 < 40 {
				in.Set(core.ActionLeft)
			} else {
				in.Set(core.ActionRight)
			}
			g.Step(in)
		}
		return g.LastFrame().Snapshot
	}
	a, b := run(), run()
	if a.Hash() != b.Hash() {
		t.Fatalf("hash mismatch: %d vs %d", a.Hash(), b.Hash())
	}
}

func TestRender(t *testing.T) {
	g := New().WithConfig(config.DefaultInvadersConfig())
	g.Reset(runtimeCfg(60))
	screen := core.NewScreen(80, 24)

	g.Render(screen)
	if out := screen.String(); !strings.Contains(out, "T U I   I N V A D E R S") {
		t.Fatalf("menu not rendered:\n%s", out)
	}

	started(t, g)
	g.Render(screen)
	out := screen.String()
	if !strings.Contains(out, "Score: 0") {
		t.Fatalf("HUD missing:\n%s", out)
	}
	if !strings.Contains(out, "/A\\") {
		t.Fatalf("player missing:\n%s", out)
	}
	if !strings.Contains(out, "}{") {
		t.Fatalf("enemies missing:\n%s", out)
	}
	if !strings.ContainsRune(out, '█') {
		t.Fatalf("shields missing:\n%s", out)
	}

	g.Step(press(core.ActionPause))
	g.Render(screen)
	if !strings.Contains(screen.String(), "PAUSED") {
		t.Fatal("pause overlay missing")
	}

	small := core.NewScreen(20, 10)
	g.Render(small)
	if !strings.Contains(small.String(), "Window too small") {
		t.Fatal("small-screen notice missing")
	}
}
