package sim

import (
	"github.com/vovakirdan/tui-invaders/internal/core"
	"github.com/vovakirdan/tui-invaders/internal/ecs"
)

// KillEvent is queued by the combat resolver when a player bullet
// destroys an enemy.
type KillEvent struct {
	Enemy  ecs.Entity  `json:"-"`
	Pos    ecs.GridPos `json:"pos"`
	Points int         `json:"points"`
}

// FireEvent is emitted for every bullet spawned, for sound triggering.
type FireEvent struct {
	Tick  uint64    `json:"tick"`
	Owner ecs.Owner `json:"owner"`
	Pos   core.Vec2 `json:"pos"`
}

// killQueue is a two-slot buffer: kills queued this tick become visible to
// the front-row update on the following tick. The ledger reads the current
// slot before rotation.
type killQueue struct {
	prev []KillEvent
	cur  []KillEvent
}

func (q *killQueue) push(k KillEvent) {
	q.cur = append(q.cur, k)
}

// drainPrev hands out last tick's kills exactly once.
func (q *killQueue) drainPrev() []KillEvent {
	out := q.prev
	q.prev = q.prev[:0]
	return out
}

// rotate moves this tick's kills to the prev slot.
func (q *killQueue) rotate() {
	q.prev, q.cur = q.cur, q.prev[:0]
}

func (q *killQueue) reset() {
	q.prev = q.prev[:0]
	q.cur = q.cur[:0]
}
