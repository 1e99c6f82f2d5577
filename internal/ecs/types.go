// Package ecs is the entity registry for the invaders simulation.
//
// Entities are generational handles into parallel, typed slot arrays.
// A per-role index gives ordered "all entities with role R" iteration
// without scanning the whole table. Destruction is deferred: a destroyed
// entity stops being reported as live immediately but keeps its slot until
// Flush, so bookkeeping in the same tick can still inspect it.
package ecs

import (
	"fmt"

	"github.com/vovakirdan/tui-invaders/internal/core"
)

// Entity is an opaque handle. The zero value is never a live entity.
type Entity struct {
	Index uint32
	Gen   uint32
}

// IsNil reports whether e is the zero handle.
func (e Entity) IsNil() bool {
	return e.Gen == 0
}

func (e Entity) String() string {
	return fmt.Sprintf("e%d.%d", e.Index, e.Gen)
}

// Role is the discriminant that selects movement and resolution rules.
type Role uint8

const (
	RoleNone Role = iota
	RolePlayer
	RoleEnemy
	RoleBullet
	RoleShield
	roleCount
)

// String returns a human-readable role name.
func (r Role) String() string {
	switch r {
	case RolePlayer:
		return "player"
	case RoleEnemy:
		return "enemy"
	case RoleBullet:
		return "bullet"
	case RoleShield:
		return "shield"
	default:
		return "none"
	}
}

// Owner identifies who fired a bullet.
type Owner uint8

const (
	OwnerNone Owner = iota
	OwnerPlayer
	OwnerEnemy
)

// String returns a human-readable owner name.
func (o Owner) String() string {
	switch o {
	case OwnerPlayer:
		return "player"
	case OwnerEnemy:
		return "enemy"
	default:
		return "none"
	}
}

// Tag marks the screen (game state) an entity belongs to.
// Leaving that state despawns every entity carrying the tag.
type Tag uint8

// GridPos is an enemy's fixed place in the formation. Row 0 is nearest the player.
type GridPos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Transform holds world position and render scale.
type Transform struct {
	Pos   core.Vec2
	Scale core.Vec2
}

// MarshalText encodes the role by name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// MarshalText encodes the owner by name.
func (o Owner) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
