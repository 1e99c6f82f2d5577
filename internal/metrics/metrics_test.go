package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vovakirdan/tui-invaders/internal/sim"
)

// value finds a gathered counter/gauge sample whose labels include want.
func value(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			have := map[string]string{}
			for _, lp := range m.GetLabel() {
				have[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if have[k] != v {
					continue metrics
				}
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return 0
}

func frame(state sim.State, score int, stats sim.Stats) sim.Frame {
	return sim.Frame{
		Mode:     "invaders",
		Ticks:    1,
		Snapshot: sim.Snapshot{State: state, Score: score},
		Stats:    stats,
	}
}

func TestSessionObserverCountsDeltas(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := New(reg)
	obs := rec.Session("invaders")
	mode := map[string]string{"mode": "invaders"}

	if got := value(t, reg, "invaders_sessions_active", nil); got != 1 {
		t.Fatalf("sessions = %v, want 1", got)
	}

	obs.ObserveFrame(frame(sim.StateMenu, 0, sim.Stats{}))
	obs.ObserveFrame(frame(sim.StateRunning, 0, sim.Stats{Ticks: 1}))
	obs.ObserveFrame(frame(sim.StateRunning, 20, sim.Stats{Ticks: 5, Kills: 2, Shots: 3, EnemyShots: 4}))
	obs.ObserveFrame(frame(sim.StateRunning, 30, sim.Stats{Ticks: 9, Kills: 3, Shots: 6, EnemyShots: 4, PlayerHits: 5, ShieldAbsorbs: 2}))
	obs.ObserveFrame(frame(sim.StateGameOver, 30, sim.Stats{Ticks: 9, Kills: 3, Shots: 6, EnemyShots: 4, PlayerHits: 5, ShieldAbsorbs: 2}))

	checks := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"invaders_ticks_total", mode, 9},
		{"invaders_kills_total", mode, 3},
		{"invaders_shots_total", map[string]string{"mode": "invaders", "owner": "player"}, 6},
		{"invaders_shots_total", map[string]string{"mode": "invaders", "owner": "enemy"}, 4},
		{"invaders_player_hits_total", mode, 5},
		{"invaders_shield_absorbs_total", mode, 2},
		{"invaders_games_started_total", mode, 1},
		{"invaders_games_over_total", mode, 1},
		{"invaders_run_score", mode, 1},
		{"invaders_frame_ticks", nil, 5},
	}
	for _, c := range checks {
		if got := value(t, reg, c.name, c.labels); got != c.want {
			t.Errorf("%s%v = %v, want %v", c.name, c.labels, got, c.want)
		}
	}

	// Retry starts a fresh run; stats restart from zero.
	obs.ObserveFrame(frame(sim.StateRunning, 0, sim.Stats{Ticks: 2, Kills: 1}))
	if got := value(t, reg, "invaders_kills_total", mode); got != 4 {
		t.Errorf("kills after retry = %v, want 4", got)
	}
	if got := value(t, reg, "invaders_games_started_total", mode); got != 2 {
		t.Errorf("games started = %v, want 2", got)
	}

	obs.Close()
	obs.Close()
	if got := value(t, reg, "invaders_sessions_active", nil); got != 0 {
		t.Fatalf("sessions after close = %v, want 0", got)
	}
}

func TestSpectatorCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := New(reg)

	rec.SetSpectators(3)
	rec.SpectatorMessage()
	rec.SpectatorMessage()
	rec.SpectatorRejected("limit")

	if got := value(t, reg, "invaders_spectators_active", nil); got != 3 {
		t.Errorf("spectators = %v", got)
	}
	if got := value(t, reg, "invaders_spectator_messages_total", nil); got != 2 {
		t.Errorf("messages = %v", got)
	}
	if got := value(t, reg, "invaders_spectator_rejected_total", map[string]string{"reason": "limit"}); got != 1 {
		t.Errorf("rejected = %v", got)
	}
}

func TestDeltaHandlesReset(t *testing.T) {
	d := delta(sim.Stats{Ticks: 3, Kills: 1}, sim.Stats{Ticks: 10, Kills: 5})
	if d.Ticks != 3 || d.Kills != 1 {
		t.Fatalf("delta = %+v, want cur taken whole", d)
	}
}
