package ecs

import (
	"fmt"
	"slices"

	"github.com/vovakirdan/tui-invaders/internal/core"
)

type slotState uint8

const (
	slotFree slotState = iota
	slotLive
	slotDoomed // destroyed this tick, freed on Flush
)

type slot struct {
	gen   uint32
	state slotState
	role  Role
	owner Owner
	tag   Tag
}

// Registry owns every entity and its attributes.
// It is not safe for concurrent use; the simulation loop is its only writer.
type Registry struct {
	slots  []slot
	free   []uint32
	byRole [roleCount][]Entity
	doomed []Entity

	Transforms *Store[Transform]
	Colliders  *Store[core.AABB]
	Grid       *Store[GridPos]
	Hits       *Store[int]
	Points     *Store[int]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		slots:      make([]slot, 0, 256),
		Transforms: NewStore[Transform](),
		Colliders:  NewStore[core.AABB](),
		Grid:       NewStore[GridPos](),
		Hits:       NewStore[int](),
		Points:     NewStore[int](),
	}
}

// Spawn starts building a new entity. Attributes are attached with the
// Builder methods; the entity is live as soon as Spawn returns.
func (r *Registry) Spawn(tag Tag, role Role) *Builder {
	if role == RoleNone || role >= roleCount {
		panic(fmt.Sprintf("ecs: cannot spawn entity with role %d", role))
	}

	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = uint32(len(r.slots)) //#nosec G115 -- entity counts stay far below 2^32
		r.slots = append(r.slots, slot{})
	}

	s := &r.slots[idx]
	s.gen++
	s.state = slotLive
	s.role = role
	s.owner = OwnerNone
	s.tag = tag

	e := Entity{Index: idx, Gen: s.gen}
	r.byRole[role] = append(r.byRole[role], e)
	return &Builder{reg: r, entity: e}
}

func (r *Registry) lookup(e Entity) *slot {
	if e.IsNil() || int(e.Index) >= len(r.slots) {
		return nil
	}
	s := &r.slots[e.Index]
	if s.gen != e.Gen || s.state == slotFree {
		return nil
	}
	return s
}

// Alive reports whether e is live and not destroyed this tick.
func (r *Registry) Alive(e Entity) bool {
	s := r.lookup(e)
	return s != nil && s.state == slotLive
}

// Doomed reports whether e was destroyed this tick and is awaiting Flush.
func (r *Registry) Doomed(e Entity) bool {
	s := r.lookup(e)
	return s != nil && s.state == slotDoomed
}

// Role returns the role of e, or RoleNone for stale handles.
func (r *Registry) Role(e Entity) Role {
	if s := r.lookup(e); s != nil {
		return s.role
	}
	return RoleNone
}

// Owner returns the bullet owner of e.
func (r *Registry) Owner(e Entity) Owner {
	if s := r.lookup(e); s != nil {
		return s.owner
	}
	return OwnerNone
}

// Tag returns the screen tag of e.
func (r *Registry) Tag(e Entity) Tag {
	if s := r.lookup(e); s != nil {
		return s.tag
	}
	return 0
}

// Destroy marks e for removal. It stops being Alive immediately and is
// freed on the next Flush. Destroying an entity twice is a no-op.
func (r *Registry) Destroy(e Entity) {
	s := r.lookup(e)
	if s == nil || s.state != slotLive {
		return
	}
	s.state = slotDoomed
	r.doomed = append(r.doomed, e)
}

// Each calls fn for every live entity with the given role, in spawn order.
// Entities spawned during iteration are not visited. Returning false stops.
func (r *Registry) Each(role Role, fn func(Entity) bool) {
	list := r.byRole[role]
	for _, e := range list {
		if !r.Alive(e) {
			continue
		}
		if !fn(e) {
			return
		}
	}
}

// EachIncludingDoomed is Each but also visits entities destroyed this tick.
// Callers must exclude the doomed ones themselves where it matters.
func (r *Registry) EachIncludingDoomed(role Role, fn func(Entity) bool) {
	list := r.byRole[role]
	for _, e := range list {
		if r.lookup(e) == nil {
			continue
		}
		if !fn(e) {
			return
		}
	}
}

// Live returns a copy of the live entities with the given role.
func (r *Registry) Live(role Role) []Entity {
	out := make([]Entity, 0, len(r.byRole[role]))
	r.Each(role, func(e Entity) bool {
		out = append(out, e)
		return true
	})
	return out
}

// First returns the first live entity with the given role.
func (r *Registry) First(role Role) (Entity, bool) {
	var found Entity
	r.Each(role, func(e Entity) bool {
		found = e
		return false
	})
	return found, !found.IsNil()
}

// Count returns the number of live entities with the given role.
func (r *Registry) Count(role Role) int {
	n := 0
	r.Each(role, func(Entity) bool {
		n++
		return true
	})
	return n
}

// Len returns the number of live entities across all roles.
func (r *Registry) Len() int {
	n := 0
	for role := RolePlayer; role < roleCount; role++ {
		n += r.Count(role)
	}
	return n
}

// Flush frees every entity destroyed since the last Flush and
// returns how many were removed.
func (r *Registry) Flush() int {
	n := len(r.doomed)
	if n == 0 {
		return 0
	}
	for _, e := range r.doomed {
		r.release(e)
	}
	r.doomed = r.doomed[:0]
	r.compact()
	return n
}

// DespawnTag immediately removes every entity carrying tag, live or doomed.
func (r *Registry) DespawnTag(tag Tag) int {
	n := 0
	for i := range r.slots {
		s := &r.slots[i]
		if s.state == slotFree || s.tag != tag {
			continue
		}
		r.release(Entity{Index: uint32(i), Gen: s.gen}) //#nosec G115 -- bounded by slot count
		n++
	}
	r.doomed = slices.DeleteFunc(r.doomed, func(e Entity) bool {
		return r.lookup(e) == nil
	})
	r.compact()
	return n
}

func (r *Registry) release(e Entity) {
	s := r.lookup(e)
	if s == nil {
		return
	}
	s.state = slotFree
	s.role = RoleNone
	s.owner = OwnerNone
	s.tag = 0
	r.Transforms.Remove(e)
	r.Colliders.Remove(e)
	r.Grid.Remove(e)
	r.Hits.Remove(e)
	r.Points.Remove(e)
	r.free = append(r.free, e.Index)
}

// compact drops freed handles from the role index, preserving order.
func (r *Registry) compact() {
	for role := range r.byRole {
		r.byRole[role] = slices.DeleteFunc(r.byRole[role], func(e Entity) bool {
			return r.lookup(e) == nil
		})
	}
}
