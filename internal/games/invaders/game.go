// Package invaders adapts the fixed-timestep simulation to the platform's
// frame-driven Game interface. It translates input actions into intents,
// paces simulation ticks with a scheduler and draws snapshots into the
// character screen.
package invaders

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-invaders/internal/config"
	"github.com/vovakirdan/tui-invaders/internal/core"
	"github.com/vovakirdan/tui-invaders/internal/registry"
	"github.com/vovakirdan/tui-invaders/internal/sim"
)

// Mode IDs.
const (
	IDClassic = "invaders"
	IDVolley  = "invaders_volley"
)

// configPath stores the custom config path set via CLI
var configPath string

// difficultyPreset stores the difficulty preset set via CLI
var difficultyPreset config.DifficultyPreset

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset. Unknown names clear it.
func SetDifficultyPreset(preset string) {
	difficultyPreset = config.ParsePreset(preset)
}

// Game implements registry.Game for both invaders modes.
type Game struct {
	id     string
	volley bool

	fixed     *config.InvadersConfig
	logger    *log.Logger
	observers []sim.FrameObserver

	runtime core.RuntimeConfig
	cfg     config.InvadersConfig
	engine  *sim.Engine
	sched   *sim.Scheduler
	frame   time.Duration
	pending sim.Intent
	last    sim.Frame
}

// New creates the classic mode: one random front-row enemy fires per gate.
func New() *Game {
	return &Game{id: IDClassic}
}

// NewVolley creates the volley mode: the whole front row fires together.
func NewVolley() *Game {
	return &Game{id: IDVolley, volley: true}
}

// WithConfig pins the simulation config instead of loading it from disk.
func (g *Game) WithConfig(cfg config.InvadersConfig) *Game {
	g.fixed = &cfg
	return g
}

// WithLogger routes engine logs to l.
func (g *Game) WithLogger(l *log.Logger) *Game {
	g.logger = l
	return g
}

// AddObserver registers consumers for every stepped frame.
func (g *Game) AddObserver(obs ...sim.FrameObserver) {
	g.observers = append(g.observers, obs...)
}

// ID returns the unique identifier for this mode.
func (g *Game) ID() string {
	return g.id
}

// Title returns the display name for this mode.
func (g *Game) Title() string {
	if g.volley {
		return "Invaders (Volley)"
	}
	return "Invaders"
}

// Description returns a one-line summary for listings.
func (g *Game) Description() string {
	if g.volley {
		return "every front-row invader fires at once, once a second"
	}
	return "one random front-row invader fires four times a second"
}

// Reset builds a fresh engine sitting on the title screen.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime
	g.cfg = g.loadConfig()

	opts := []sim.Option{sim.WithSeed(runtime.Seed)}
	if g.logger != nil {
		opts = append(opts, sim.WithLogger(g.logger.With("mode", g.id)))
	}
	g.engine = sim.NewEngine(g.cfg, opts...)
	g.sched = sim.NewScheduler(g.cfg.Gameplay.TickHz, g.cfg.Gameplay.MaxSteps)

	fps := runtime.TickRate
	if fps <= 0 {
		fps = core.DefaultConfig().TickRate
	}
	g.frame = time.Second / time.Duration(fps)
	g.pending = sim.Intent{}
	g.last = sim.Frame{Mode: g.id, Snapshot: g.engine.Snapshot()}
}

func (g *Game) loadConfig() config.InvadersConfig {
	var cfg config.InvadersConfig
	if g.fixed != nil {
		cfg = *g.fixed
	} else {
		loaded, err := config.LoadInvaders(configPath)
		if err != nil {
			loaded = config.DefaultInvadersConfig()
		}
		cfg = loaded
		if difficultyPreset != "" {
			config.ApplyPreset(&cfg, difficultyPreset)
		}
	}
	if g.volley && cfg.Enemies.FirePolicy != config.FireVolley {
		cfg = config.VolleyVariant(cfg)
	}
	return cfg
}

// Config returns the simulation config in use.
func (g *Game) Config() config.InvadersConfig {
	return g.cfg
}

// Step runs the ticks owed for one platform frame.
// One-shot intents (start, retry, exit, pause) are held until a tick
// actually runs and are applied to that tick only.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if g.engine == nil {
		g.Reset(core.DefaultConfig())
	}
	intent := IntentFrom(in)
	g.pending.Move = intent.Move
	g.pending.Fire = intent.Fire
	g.pending.Start = g.pending.Start || intent.Start
	g.pending.Retry = g.pending.Retry || intent.Retry
	g.pending.Exit = g.pending.Exit || intent.Exit
	g.pending.Pause = g.pending.Pause || intent.Pause

	n := g.sched.Advance(g.frame)
	ran := 0
	for _i := 0; _i < n; _i++ {
		if g.engine.State() == sim.StateExited {
			break
		}
		g.engine.Step(g.pending)
		g.pending.Start, g.pending.Retry, g.pending.Exit, g.pending.Pause = false, false, false, false
		ran++
	}

	g.last = sim.Frame{
		Mode:     g.id,
		Ticks:    ran,
		Snapshot: g.engine.Snapshot(),
		Stats:    g.engine.Stats(),
		Fired:    g.engine.DrainFired(),
	}
	for _, o := range g.observers {
		o.ObserveFrame(g.last)
	}
	return core.StepResult{State: g.State(), Ticks: ran}
}

// IntentFrom maps platform actions onto a simulation intent.
// Opposing directions cancel out.
func IntentFrom(in core.InputFrame) sim.Intent {
	var it sim.Intent
	left, right := in.Has(core.ActionLeft), in.Has(core.ActionRight)
	switch {
	case left && !right:
		it.Move = sim.DirLeft
	case right && !left:
		it.Move = sim.DirRight
	}
	it.Fire = in.Has(core.ActionFire)
	it.Start = in.Has(core.ActionConfirm)
	it.Retry = in.Has(core.ActionRestart)
	it.Exit = in.Has(core.ActionQuit)
	it.Pause = in.Has(core.ActionPause)
	return it
}

// State returns the readout for the platform.
func (g *Game) State() core.GameState {
	if g.engine == nil {
		return core.GameState{}
	}
	st := g.engine.State()
	return core.GameState{
		Score:     g.engine.Score(),
		HitPoints: g.engine.HitPoints(),
		GameOver:  st == sim.StateGameOver,
		Paused:    g.engine.Paused(),
		Exited:    st == sim.StateExited,
	}
}

// Phase returns the simulation state machine node.
func (g *Game) Phase() sim.State {
	if g.engine == nil {
		return sim.StateMenu
	}
	return g.engine.State()
}

// LastFrame returns what the most recent Step produced.
func (g *Game) LastFrame() sim.Frame {
	return g.last
}

// Stats returns the counters of the current or just-finished run.
func (g *Game) Stats() sim.Stats {
	if g.engine == nil {
		return sim.Stats{}
	}
	return g.engine.Stats()
}

// Register the modes with the registry
func init() {
	registry.Register(IDClassic, func() registry.Game {
		return New()
	})
	registry.Register(IDVolley, func() registry.Game {
		return NewVolley()
	})
}
