// Package sim is the fixed-timestep invaders simulation.
//
// An Engine owns the entity registry and every piece of mutable game state
// (score, hit points, front-row index, fire gates). Each call to Step runs one
// tick through a fixed pipeline:
//
//	movement -> firing -> collider refresh -> front-row update (previous
//	tick's kills) -> combat -> ledger -> state transition -> flush
//
// The engine performs no I/O and is not safe for concurrent use.
package sim

import (
	"fmt"
	"io"
	"maps"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-invaders/internal/config"
	"github.com/vovakirdan/tui-invaders/internal/core"
	"github.com/vovakirdan/tui-invaders/internal/ecs"
)

// Stats are per-run counters, reset on entry to Running.
type Stats struct {
	Ticks         uint64 `json:"ticks"`
	Kills         int    `json:"kills"`
	Shots         int    `json:"shots"`
	EnemyShots    int    `json:"enemy_shots"`
	ShieldAbsorbs int    `json:"shield_absorbs"`
	ShieldsLost   int    `json:"shields_lost"`
	PlayerHits    int    `json:"player_hits"`
	Drops         int    `json:"drops"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes state-transition logs to l.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithSeed fixes the RNG seed used for enemy target selection.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// Engine runs the simulation.
type Engine struct {
	cfg  config.InvadersConfig
	dt   float64
	seed int64
	rng  *rand.Rand
	log  *log.Logger

	reg   *ecs.Registry
	state State

	paused    bool
	tick      uint64
	score     int
	hp        int
	formation Direction
	frontRows map[int]int

	playerGate FireGate
	enemyGate  FireGate
	kills      killQueue
	fired      []FireEvent
	stats      Stats
}

// NewEngine creates an engine in the Menu state.
// The config must already be valid; an invalid one panics.
func NewEngine(cfg config.InvadersConfig, opts ...Option) *Engine {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("sim: %v", err))
	}
	e := &Engine{
		cfg:       cfg,
		dt:        cfg.TickDuration(),
		log:       log.New(io.Discard),
		reg:       ecs.NewRegistry(),
		state:     StateMenu,
		frontRows: make(map[int]int, cfg.Enemies.Cols),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rng = rand.New(rand.NewSource(e.seed)) //#nosec G404 -- gameplay RNG, not security
	return e
}

// Step advances the simulation by one fixed tick.
func (e *Engine) Step(in Intent) {
	switch e.state {
	case StateMenu:
		if in.Start {
			e.transition(EventStart)
		}
	case StateRunning:
		if in.Pause {
			e.paused = !e.paused
		}
		if !e.paused {
			e.runTick(in)
		}
	case StateGameOver:
		switch {
		case in.Retry:
			e.transition(EventRetry)
		case in.Exit:
			e.transition(EventExit)
		}
	case StateExited:
		panic("sim: step on exited engine")
	}
}

func (e *Engine) runTick(in Intent) {
	e.tick++
	e.stats.Ticks++

	e.movePlayer(in.Move)
	e.moveFormation()
	e.moveBullets()

	e.firePlayer(in.Fire)
	e.fireEnemies()

	e.refreshColliders()
	e.updateFrontRows(e.kills.drainPrev())

	e.resolveShields()
	e.resolveEnemyHits()
	e.resolvePlayerHits()

	e.applyKills()

	if e.hp == 0 {
		e.transition(EventDefeat)
	}

	e.reg.Flush()
	e.kills.rotate()
}

func (e *Engine) transition(ev Event) {
	to, ok := Next(e.state, ev)
	if !ok {
		panic(fmt.Sprintf("sim: no transition from %s on %s", e.state, ev))
	}
	from := e.state
	e.exit(from)
	e.state = to
	e.enter(to)
	e.log.Debug("state transition", "from", from, "event", ev, "to", to, "tick", e.tick, "score", e.score)
}

func (e *Engine) exit(s State) {
	e.reg.DespawnTag(s.Tag())
	if s == StateRunning {
		e.paused = false
	}
}

func (e *Engine) enter(s State) {
	if s != StateRunning {
		return
	}
	e.tick = 0
	e.score = 0
	e.hp = e.cfg.Gameplay.HitPoints
	e.formation = DirRight
	e.stats = Stats{}
	e.kills.reset()
	clear(e.frontRows)
	e.playerGate = NewFireGate(e.cfg.PlayerFirePeriod())
	e.enemyGate = NewFireGate(e.cfg.EnemyFirePeriod())

	tag := s.Tag()
	e.spawnPlayer(tag)
	e.spawnFormation(tag)
	e.spawnShields(tag)
}

func (e *Engine) spawnPlayer(tag ecs.Tag) {
	p := e.cfg.Player
	e.reg.Spawn(tag, ecs.RolePlayer).
		WithTransform(core.V(p.StartX, p.StartY), core.V(p.Size, p.Size)).
		WithCollider()
}

func (e *Engine) spawnShields(tag ecs.Tag) {
	s := e.cfg.Shields
	for col := 0; col < s.Count; col++ {
		x := float64(col)*s.Spacing + s.BaseX
		e.reg.Spawn(tag, ecs.RoleShield).
			WithTransform(core.V(x, s.Y), core.V(s.Width, s.Height)).
			WithCollider().
			WithHits()
	}
}

func (e *Engine) spawnBullet(owner ecs.Owner, pos core.Vec2) {
	size := e.cfg.Bullets.Size
	e.reg.Spawn(StateRunning.Tag(), ecs.RoleBullet).
		WithOwner(owner).
		WithTransform(pos, core.V(size, size)).
		WithCollider()
	e.fired = append(e.fired, FireEvent{Tick: e.tick, Owner: owner, Pos: pos})
}

// refreshColliders recenters every collider on its transform.
func (e *Engine) refreshColliders() {
	for _, role := range []ecs.Role{ecs.RolePlayer, ecs.RoleEnemy, ecs.RoleBullet, ecs.RoleShield} {
		e.reg.Each(role, func(ent ecs.Entity) bool {
			t, ok := e.reg.Transforms.Get(ent)
			if !ok {
				return true
			}
			if c := e.reg.Colliders.Ptr(ent); c != nil {
				*c = c.Moved(t.Pos)
			}
			return true
		})
	}
}

// State returns the current game state.
func (e *Engine) State() State { return e.state }

// Paused reports whether a Running game is paused.
func (e *Engine) Paused() bool { return e.paused }

// Score returns the current run's score.
func (e *Engine) Score() int { return e.score }

// HitPoints returns the player's remaining hit points.
func (e *Engine) HitPoints() int { return e.hp }

// Tick returns the number of simulated ticks in the current run.
func (e *Engine) Tick() uint64 { return e.tick }

// Stats returns the current run's counters.
func (e *Engine) Stats() Stats { return e.stats }

// Config returns the configuration the engine was built with.
func (e *Engine) Config() config.InvadersConfig { return e.cfg }

// TickDuration returns the fixed timestep in seconds.
func (e *Engine) TickDuration() float64 { return e.dt }

// FormationDirection returns the shared enemy heading.
func (e *Engine) FormationDirection() Direction { return e.formation }

// FrontRows returns a copy of the column -> front row index.
func (e *Engine) FrontRows() map[int]int {
	return maps.Clone(e.frontRows)
}

// Registry exposes the entity registry for inspection.
func (e *Engine) Registry() *ecs.Registry { return e.reg }

// DrainFired returns and clears the fire notifications accumulated since
// the previous call.
func (e *Engine) DrainFired() []FireEvent {
	out := e.fired
	e.fired = nil
	return out
}
