package ecs

import (
	"testing"

	"github.com/vovakirdan/tui-invaders/internal/core"
)

const testTag Tag = 1

func spawnEnemy(r *Registry, row, col int) Entity {
	return r.Spawn(testTag, RoleEnemy).
		WithTransform(core.V(float64(col)*50, float64(row)*50), core.V(20, 20)).
		WithCollider().
		WithGrid(GridPos{Row: row, Col: col}).
		WithPoints(10).
		Entity()
}

func TestSpawnAttachesAttributes(t *testing.T) {
	r := NewRegistry()
	e := spawnEnemy(r, 2, 3)

	if !r.Alive(e) {
		t.Fatal("spawned entity should be alive")
	}
	if r.Role(e) != RoleEnemy {
		t.Errorf("Role() = %v, expected enemy", r.Role(e))
	}
	box, ok := r.Colliders.Get(e)
	if !ok {
		t.Fatal("collider missing")
	}
	if box.Center != core.V(150, 100) || box.Half != core.V(10, 10) {
		t.Errorf("collider = %+v, expected center (150,100) half (10,10)", box)
	}
	if p, _ := r.Grid.Get(e); p != (GridPos{Row: 2, Col: 3}) {
		t.Errorf("grid = %+v, expected {2 3}", p)
	}
	if pts, _ := r.Points.Get(e); pts != 10 {
		t.Errorf("points = %d, expected 10", pts)
	}
}

func TestDestroyIsDeferredUntilFlush(t *testing.T) {
	r := NewRegistry()
	a := spawnEnemy(r, 0, 0)
	b := spawnEnemy(r, 1, 0)

	r.Destroy(a)

	if r.Alive(a) {
		t.Error("destroyed entity should not be alive")
	}
	if !r.Doomed(a) {
		t.Error("destroyed entity should be doomed until flush")
	}
	if r.Count(RoleEnemy) != 1 {
		t.Errorf("Count() = %d, expected 1", r.Count(RoleEnemy))
	}

	// Still visible to bookkeeping that opts in
	seen := 0
	r.EachIncludingDoomed(RoleEnemy, func(Entity) bool {
		seen++
		return true
	})
	if seen != 2 {
		t.Errorf("EachIncludingDoomed visited %d, expected 2", seen)
	}
	if _, ok := r.Grid.Get(a); !ok {
		t.Error("doomed entity should keep attributes until flush")
	}

	if n := r.Flush(); n != 1 {
		t.Errorf("Flush() = %d, expected 1", n)
	}
	if r.Doomed(a) || r.Alive(a) {
		t.Error("flushed entity should be gone")
	}
	if !r.Alive(b) {
		t.Error("other entity should survive flush")
	}

	// Double destroy is a no-op
	r.Destroy(b)
	r.Destroy(b)
	if n := r.Flush(); n != 1 {
		t.Errorf("Flush() after double destroy = %d, expected 1", n)
	}
}

func TestSlotReuseBumpsGeneration(t *testing.T) {
	r := NewRegistry()
	old := spawnEnemy(r, 0, 0)
	r.Destroy(old)
	r.Flush()

	fresh := spawnEnemy(r, 5, 5)
	if fresh.Index != old.Index {
		t.Fatalf("expected slot reuse, got index %d vs %d", fresh.Index, old.Index)
	}
	if fresh.Gen == old.Gen {
		t.Error("reused slot must have a new generation")
	}
	if r.Alive(old) {
		t.Error("stale handle must not alias the new entity")
	}
	if r.Role(old) != RoleNone {
		t.Error("stale handle should report RoleNone")
	}
}

func TestEachPreservesSpawnOrderAndSkipsNewSpawns(t *testing.T) {
	r := NewRegistry()
	var want []Entity
	for i := 0; i < 4; i++ {
		want = append(want, spawnEnemy(r, 0, i))
	}
	r.Destroy(want[1])
	r.Flush()
	want = append(want[:1], want[2:]...)

	var got []Entity
	r.Each(RoleEnemy, func(e Entity) bool {
		got = append(got, e)
		spawnEnemy(r, 9, 9) // must not be visited
		return true
	})

	if len(got) != len(want) {
		t.Fatalf("visited %d entities, expected %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("order[%d] = %v, expected %v", i, got[i], want[i])
		}
	}
}

func TestDespawnTagRemovesImmediately(t *testing.T) {
	r := NewRegistry()
	spawnEnemy(r, 0, 0)
	doomed := spawnEnemy(r, 0, 1)
	other := r.Spawn(Tag(2), RoleShield).
		WithTransform(core.V(0, 0), core.V(30, 20)).
		WithCollider().
		WithHits().
		Entity()
	r.Destroy(doomed)

	if n := r.DespawnTag(testTag); n != 2 {
		t.Errorf("DespawnTag() = %d, expected 2", n)
	}
	if r.Count(RoleEnemy) != 0 {
		t.Error("all tagged enemies should be gone")
	}
	if !r.Alive(other) {
		t.Error("entities with other tags must survive")
	}
	if r.Flush() != 0 {
		t.Error("despawned doomed entities must not be flushed twice")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, expected 1", r.Len())
	}
}

func TestOwnerAndFirst(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.First(RoleBullet); ok {
		t.Error("First on empty role should report false")
	}
	b := r.Spawn(testTag, RoleBullet).
		WithOwner(OwnerEnemy).
		WithTransform(core.V(0, 0), core.V(5, 5)).
		WithCollider().
		Entity()

	if got, ok := r.First(RoleBullet); !ok || got != b {
		t.Errorf("First() = %v, %v; expected %v", got, ok, b)
	}
	if r.Owner(b) != OwnerEnemy {
		t.Errorf("Owner() = %v, expected enemy", r.Owner(b))
	}
}

func TestSpawnRejectsRoleNone(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Spawn with RoleNone should panic")
		}
	}()
	NewRegistry().Spawn(testTag, RoleNone)
}
