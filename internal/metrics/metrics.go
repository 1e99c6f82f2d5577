// Package metrics exports simulation and server counters to Prometheus.
//
// Labels are bounded: mode IDs come from the registry and roles/owners are
// fixed enums, so no label can grow with the number of players.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vovakirdan/tui-invaders/internal/ecs"
	"github.com/vovakirdan/tui-invaders/internal/sim"
)

// Recorder owns every collector. Create one per registry.
type Recorder struct {
	ticks         *prometheus.CounterVec
	kills         *prometheus.CounterVec
	shots         *prometheus.CounterVec
	shieldAbsorbs *prometheus.CounterVec
	shieldsLost   *prometheus.CounterVec
	playerHits    *prometheus.CounterVec
	drops         *prometheus.CounterVec
	gamesStarted  *prometheus.CounterVec
	gamesOver     *prometheus.CounterVec
	runScore      *prometheus.HistogramVec
	frameTicks    prometheus.Histogram
	sessions      prometheus.Gauge
	spectators    prometheus.Gauge
	wsMessages    prometheus.Counter
	wsRejected    *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		ticks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "invaders_ticks_total",
			Help: "Simulation ticks executed",
		}, []string{"mode"}),
		kills: f.NewCounterVec(prometheus.CounterOpts{
			Name: "invaders_kills_total",
			Help: "Enemies destroyed by player bullets",
		}, []string{"mode"}),
		shots: f.NewCounterVec(prometheus.CounterOpts{
			Name: "invaders_shots_total",
			Help: "Bullets fired",
		}, []string{"mode", "owner"}), // owner: player, enemy
		shieldAbsorbs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "invaders_shield_absorbs_total",
			Help: "Bullets absorbed by shields",
		}, []string{"mode"}),
		shieldsLost: f.NewCounterVec(prometheus.CounterOpts{
			Name: "invaders_shields_destroyed_total",
			Help: "Shields destroyed after reaching their hit limit",
		}, []string{"mode"}),
		playerHits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "invaders_player_hits_total",
			Help: "Enemy bullets that hit the player",
		}, []string{"mode"}),
		drops: f.NewCounterVec(prometheus.CounterOpts{
			Name: "invaders_formation_drops_total",
			Help: "Formation wall bounces",
		}, []string{"mode"}),
		gamesStarted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "invaders_games_started_total",
			Help: "Runs started from the menu or by retry",
		}, []string{"mode"}),
		gamesOver: f.NewCounterVec(prometheus.CounterOpts{
			Name: "invaders_games_over_total",
			Help: "Runs that ended with the player out of hit points",
		}, []string{"mode"}),
		runScore: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "invaders_run_score",
			Help:    "Final score per run",
			Buckets: []float64{0, 50, 100, 250, 500, 1000, 1500},
		}, []string{"mode"}),
		frameTicks: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "invaders_frame_ticks",
			Help:    "Fixed ticks executed per rendered frame",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		}),
		sessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "invaders_sessions_active",
			Help: "Currently running game sessions",
		}),
		spectators: f.NewGauge(prometheus.GaugeOpts{
			Name: "invaders_spectators_active",
			Help: "Currently connected websocket spectators",
		}),
		wsMessages: f.NewCounter(prometheus.CounterOpts{
			Name: "invaders_spectator_messages_total",
			Help: "Frames broadcast to spectators",
		}),
		wsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "invaders_spectator_rejected_total",
			Help: "Spectator connections refused",
		}, []string{"reason"}), // Bounded: "limit", "upgrade"
	}
}

// SetSpectators records the number of connected spectators.
func (r *Recorder) SetSpectators(n int) {
	r.spectators.Set(float64(n))
}

// SpectatorMessage counts one broadcast frame.
func (r *Recorder) SpectatorMessage() {
	r.wsMessages.Inc()
}

// SpectatorRejected counts a refused spectator connection.
func (r *Recorder) SpectatorRejected(reason string) {
	r.wsRejected.WithLabelValues(reason).Inc()
}

// Session starts tracking one game session and returns its observer.
// Call Close on the observer when the session ends.
func (r *Recorder) Session(mode string) *SessionObserver {
	r.sessions.Inc()
	return &SessionObserver{rec: r, mode: mode, state: sim.StateMenu}
}

// SessionObserver turns the cumulative per-run stats of one session into
// counter increments.
type SessionObserver struct {
	rec   *Recorder
	mode  string
	state sim.State
	prev  sim.Stats
	once  sync.Once
}

// ObserveFrame implements sim.FrameObserver.
func (o *SessionObserver) ObserveFrame(f sim.Frame) {
	r := o.rec
	r.frameTicks.Observe(float64(f.Ticks))

	st := f.Snapshot.State
	if st == sim.StateRunning && o.state != sim.StateRunning {
		r.gamesStarted.WithLabelValues(o.mode).Inc()
		o.prev = sim.Stats{}
	}

	d := delta(f.Stats, o.prev)
	o.prev = f.Stats
	r.ticks.WithLabelValues(o.mode).Add(float64(d.Ticks))
	r.kills.WithLabelValues(o.mode).Add(float64(d.Kills))
	r.shots.WithLabelValues(o.mode, ecs.OwnerPlayer.String()).Add(float64(d.Shots))
	r.shots.WithLabelValues(o.mode, ecs.OwnerEnemy.String()).Add(float64(d.EnemyShots))
	r.shieldAbsorbs.WithLabelValues(o.mode).Add(float64(d.ShieldAbsorbs))
	r.shieldsLost.WithLabelValues(o.mode).Add(float64(d.ShieldsLost))
	r.playerHits.WithLabelValues(o.mode).Add(float64(d.PlayerHits))
	r.drops.WithLabelValues(o.mode).Add(float64(d.Drops))

	if st == sim.StateGameOver && o.state == sim.StateRunning {
		r.gamesOver.WithLabelValues(o.mode).Inc()
		r.runScore.WithLabelValues(o.mode).Observe(float64(f.Snapshot.Score))
	}
	o.state = st
}

// Close releases the session gauge. Safe to call more than once.
func (o *SessionObserver) Close() {
	o.once.Do(o.rec.sessions.Dec)
}

// delta returns cur-prev per field. A counter that went backwards means
// the run was reset without an observed transition, so cur is taken whole.
func delta(cur, prev sim.Stats) sim.Stats {
	if cur.Ticks < prev.Ticks {
		return cur
	}
	return sim.Stats{
		Ticks:         cur.Ticks - prev.Ticks,
		Kills:         cur.Kills - prev.Kills,
		Shots:         cur.Shots - prev.Shots,
		EnemyShots:    cur.EnemyShots - prev.EnemyShots,
		ShieldAbsorbs: cur.ShieldAbsorbs - prev.ShieldAbsorbs,
		ShieldsLost:   cur.ShieldsLost - prev.ShieldsLost,
		PlayerHits:    cur.PlayerHits - prev.PlayerHits,
		Drops:         cur.Drops - prev.Drops,
	}
}
