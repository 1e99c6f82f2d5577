package sim

import (
	"math"

	"github.com/vovakirdan/tui-invaders/internal/core"
	"github.com/vovakirdan/tui-invaders/internal/ecs"
)

// EntityView is the render-facing projection of one entity.
type EntityView struct {
	Pos   core.Vec2 `json:"pos"`
	Scale core.Vec2 `json:"scale"`
	Role  ecs.Role  `json:"role"`
	Owner ecs.Owner `json:"owner,omitempty"`
	Hits  int       `json:"hits,omitempty"`
}

// Snapshot is the plain-data output consumed by renderers, the spectator
// feed and determinism tests.
type Snapshot struct {
	Tick     uint64       `json:"tick"`
	State    State        `json:"state"`
	Paused   bool         `json:"paused"`
	Score    int          `json:"score"`
	HP       int          `json:"hp"`
	Entities []EntityView `json:"entities"`
	Fired    []FireEvent  `json:"fired,omitempty"`
}

// Snapshot captures the current state. Entities are ordered player,
// enemies, bullets, shields, each in spawn order. Fired holds the
// notifications not yet drained.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:     e.tick,
		State:    e.state,
		Paused:   e.paused,
		Score:    e.score,
		HP:       e.hp,
		Entities: make([]EntityView, 0, e.reg.Len()),
	}
	for _, role := range []ecs.Role{ecs.RolePlayer, ecs.RoleEnemy, ecs.RoleBullet, ecs.RoleShield} {
		e.reg.Each(role, func(ent ecs.Entity) bool {
			t, _ := e.reg.Transforms.Get(ent)
			hits, _ := e.reg.Hits.Get(ent)
			snap.Entities = append(snap.Entities, EntityView{
				Pos:   t.Pos,
				Scale: t.Scale,
				Role:  role,
				Owner: e.reg.Owner(ent),
				Hits:  hits,
			})
			return true
		})
	}
	if len(e.fired) > 0 {
		snap.Fired = append([]FireEvent(nil), e.fired...)
	}
	return snap
}

// Count returns how many entities of role the snapshot holds.
func (snap *Snapshot) Count(role ecs.Role) int {
	n := 0
	for i := range snap.Entities {
		if snap.Entities[i].Role == role {
			n++
		}
	}
	return n
}

// Hash returns a simple hash of the snapshot for determinism testing.
func (snap *Snapshot) Hash() uint64 {
	h := snap.Tick
	h = h*31 + uint64(snap.State)
	h = h*31 + uint64(snap.Score) //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.HP)    //#nosec G115 -- hash computation
	for _, v := range snap.Entities {
		h = h*31 + uint64(v.Role)
		h = h*31 + uint64(v.Owner)
		h = h*31 + math.Float64bits(v.Pos.X)
		h = h*31 + math.Float64bits(v.Pos.Y)
		h = h*31 + uint64(v.Hits) //#nosec G115 -- hash computation
	}
	return h
}
