package ecs

import "github.com/vovakirdan/tui-invaders/internal/core"

// Builder attaches attributes to a freshly spawned entity.
//
//	e := reg.Spawn(tag, ecs.RoleEnemy).
//		WithTransform(pos, scale).
//		WithCollider().
//		WithGrid(ecs.GridPos{Row: 0, Col: 3}).
//		Entity()
type Builder struct {
	reg    *Registry
	entity Entity
}

// WithOwner sets the bullet owner.
func (b *Builder) WithOwner(o Owner) *Builder {
	b.reg.slots[b.entity.Index].owner = o
	return b
}

// WithTransform sets position and scale.
func (b *Builder) WithTransform(pos, scale core.Vec2) *Builder {
	b.reg.Transforms.Set(b.entity, Transform{Pos: pos, Scale: scale})
	return b
}

// WithCollider sizes the collider from the transform scale (half of it)
// and centers it on the current position.
func (b *Builder) WithCollider() *Builder {
	t, ok := b.reg.Transforms.Get(b.entity)
	if !ok {
		panic("ecs: WithCollider requires a transform")
	}
	b.reg.Colliders.Set(b.entity, core.NewAABB(t.Pos, t.Scale.Scale(0.5)))
	return b
}

// WithGrid sets the formation position.
func (b *Builder) WithGrid(p GridPos) *Builder {
	b.reg.Grid.Set(b.entity, p)
	return b
}

// WithHits attaches a hit counter starting at zero.
func (b *Builder) WithHits() *Builder {
	b.reg.Hits.Set(b.entity, 0)
	return b
}

// WithPoints attaches a score value.
func (b *Builder) WithPoints(points int) *Builder {
	b.reg.Points.Set(b.entity, points)
	return b
}

// Entity returns the handle being built.
func (b *Builder) Entity() Entity {
	return b.entity
}
