package tui

import (
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-invaders/internal/config"
	"github.com/vovakirdan/tui-invaders/internal/core"
	"github.com/vovakirdan/tui-invaders/internal/games/invaders"
	"github.com/vovakirdan/tui-invaders/internal/registry"
	"github.com/vovakirdan/tui-invaders/internal/sim"
	"github.com/vovakirdan/tui-invaders/internal/storage"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeyMapActions(t *testing.T) {
	keys := DefaultKeyMap()
	tests := []struct {
		msg  tea.KeyMsg
		want core.Action
	}{
		{tea.KeyMsg{Type: tea.KeyLeft}, core.ActionLeft},
		{runes("a"), core.ActionLeft},
		{tea.KeyMsg{Type: tea.KeyRight}, core.ActionRight},
		{runes("d"), core.ActionRight},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, core.ActionFire},
		{runes("z"), core.ActionFire},
		{tea.KeyMsg{Type: tea.KeyEnter}, core.ActionConfirm},
		{runes("r"), core.ActionRestart},
		{runes("p"), core.ActionPause},
		{runes("q"), core.ActionQuit},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionNone},
		{tea.KeyMsg{Type: tea.KeyEscape}, core.ActionNone},
		{runes("x"), core.ActionNone},
	}
	for _, tt := range tests {
		if got := keys.Action(tt.msg); got != tt.want {
			t.Errorf("Action(%q) = %v, want %v", tt.msg.String(), got, tt.want)
		}
	}
}

func TestInputLatch(t *testing.T) {
	t0 := time.Unix(1000, 0)
	l := newInputLatch(100 * time.Millisecond)

	l.press(core.ActionLeft, t0)
	l.press(core.ActionFire, t0)
	l.press(core.ActionConfirm, t0)

	f := l.frame(t0.Add(10 * time.Millisecond))
	for _, a := range []core.Action{core.ActionLeft, core.ActionFire, core.ActionConfirm} {
		if !f.Has(a) {
			t.Errorf("first frame missing %v", a)
		}
	}

	// One-shots fire once; held actions persist inside the window.
	f = l.frame(t0.Add(50 * time.Millisecond))
	if f.Has(core.ActionConfirm) || !f.Has(core.ActionLeft) {
		t.Errorf("second frame = %v", f.Actions)
	}

	// Reversing drops the old direction at once.
	l.press(core.ActionRight, t0.Add(60*time.Millisecond))
	f = l.frame(t0.Add(70 * time.Millisecond))
	if f.Has(core.ActionLeft) || !f.Has(core.ActionRight) {
		t.Errorf("after reverse = %v", f.Actions)
	}

	// Released: nothing left once the window passes.
	f = l.frame(t0.Add(500 * time.Millisecond))
	if len(f.Actions) != 0 {
		t.Errorf("after window = %v", f.Actions)
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

func testRuntime() core.RuntimeConfig {
	return core.RuntimeConfig{ScreenW: 100, ScreenH: 30, TickRate: 60, Seed: 7}
}

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func tick(t *testing.T, m Model) (Model, tea.Cmd) {
	t.Helper()
	return update(t, m, TickMsg{Gen: m.gen})
}

func TestModelGameOverSavesRunOnce(t *testing.T) {
	store := openStore(t)
	game := invaders.New().WithConfig(doomedConfig())
	var frames int
	m := NewModel(game, store, testRuntime(),
		WithSession("alice"),
		WithObservers(sim.ObserverFunc(func(sim.Frame) { frames++ })),
	)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	for _i := 0; _i < 300; _i++ {
		if m.GameState().GameOver {
			break
		}
		m, _ = tick(t, m)
	}
	if !m.GameState().GameOver {
		t.Fatalf("no game over: %+v", m.GameState())
	}
	for _i := 0; _i < 5; _i++ {
		m, _ = tick(t, m)
	}

	runs, err := store.RecentRuns(invaders.IDClassic, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Session != "alice" || runs[0].PlayerHits != 1 || runs[0].Ticks == 0 {
		t.Fatalf("runs = %+v", runs)
	}
	if frames == 0 {
		t.Fatal("observer saw no frames")
	}

	// Q on the game over screen is the exit transition.
	m, _ = update(t, m, runes("q"))
	if m.Done() {
		t.Fatal("q on game over should reach the game first")
	}
	m, cmd := tick(t, m)
	if !m.Exited() || !m.Done() || cmd == nil {
		t.Fatalf("exited=%v done=%v cmd=%v", m.Exited(), m.Done(), cmd)
	}
	if m.View() != "" {
		t.Error("finished model still renders")
	}
}

func TestModelQuitOutsideGameOver(t *testing.T) {
	m := NewModel(invaders.New().WithConfig(doomedConfig()), nil, testRuntime())
	m, cmd := update(t, m, runes("q"))
	if !m.IsQuitting() || cmd == nil {
		t.Fatalf("q on title screen: quitting=%v", m.IsQuitting())
	}
}

func TestModelIgnoresStaleTicks(t *testing.T) {
	m := NewModel(invaders.New().WithConfig(doomedConfig()), nil, testRuntime())
	m, cmd := update(t, m, TickMsg{Gen: m.gen + 1000})
	if cmd != nil {
		t.Fatal("stale tick rescheduled the loop")
	}
	if _, cmd = tick(t, m); cmd == nil {
		t.Fatal("own tick did not reschedule the loop")
	}
}

func TestModelBackFromPause(t *testing.T) {
	m := NewModel(invaders.New().WithConfig(doomedConfig()), nil, testRuntime())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	if m.Done() {
		t.Fatal("esc on title screen should do nothing")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = tick(t, m)
	m, _ = update(t, m, runes("p"))
	m, _ = tick(t, m)
	if !m.GameState().Paused {
		t.Fatalf("not paused: %+v", m.GameState())
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	if !m.BackToMenu() {
		t.Fatal("esc while paused should go back")
	}
}

func TestSessionFlow(t *testing.T) {
	var created, released []string
	cfg := SessionConfig{
		Runtime: testRuntime(),
		NewGame: func(id string) (registry.Game, error) {
			created = append(created, id)
			return invaders.New().WithConfig(doomedConfig()), nil
		},
		Observers: func(session, mode string) ([]sim.FrameObserver, func()) {
			return nil, func() { released = append(released, session+"/"+mode) }
		},
	}
	var sm tea.Model = NewSessionModel(cfg)
	send := func(msg tea.Msg) {
		sm, _ = sm.Update(msg)
	}
	current := func() SessionModel { return sm.(SessionModel) }

	// Scoreboard and back.
	send(tea.KeyMsg{Type: tea.KeyTab})
	if current().screen != screenScores {
		t.Fatalf("screen = %v, want scores", current().screen)
	}
	send(tea.KeyMsg{Type: tea.KeyEscape})
	if current().screen != screenMenu {
		t.Fatalf("screen = %v, want menu", current().screen)
	}

	// Play the first mode, pause, go back.
	send(tea.KeyMsg{Type: tea.KeyEnter})
	if current().screen != screenGame || len(created) != 1 || created[0] != invaders.IDClassic {
		t.Fatalf("screen = %v created = %v", current().screen, created)
	}
	send(tea.KeyMsg{Type: tea.KeyEnter})
	send(TickMsg{Gen: current().game.gen})
	send(runes("p"))
	send(TickMsg{Gen: current().game.gen})
	send(tea.KeyMsg{Type: tea.KeyEscape})
	if current().screen != screenMenu {
		t.Fatalf("screen = %v, want menu after back", current().screen)
	}
	if len(released) != 1 || released[0] != "local/invaders" {
		t.Fatalf("released = %v", released)
	}

	send(runes("q"))
	if !current().quitting {
		t.Fatal("q in menu should quit the session")
	}
}
