package world

import "testing"

func TestArenaStaleHandleAfterRemove(t *testing.T) {
	a := NewArena()
	h := a.Add(&Entity{ID: "slime-1", Kind: EntityEnemy})
	if h.Zero() {
		t.Fatalf("expected a live handle")
	}
	if _, ok := a.Resolve(h); !ok {
		t.Fatalf("expected handle to resolve while live")
	}

	a.Remove(h)
	if _, ok := a.Resolve(h); ok {
		t.Fatalf("expected stale handle to stop resolving")
	}
}

func TestArenaGenerationGuardsSlotReuse(t *testing.T) {
	a := NewArena()
	old := a.Add(&Entity{ID: "slime-1", Kind: EntityEnemy})
	a.Remove(old)

	fresh := a.Add(&Entity{ID: "skeleton-1", Kind: EntityEnemy})
	if fresh.Index != old.Index {
		t.Fatalf("expected the freed slot to be reused, got index %d want %d", fresh.Index, old.Index)
	}
	if fresh.Gen == old.Gen {
		t.Fatalf("expected a bumped generation on reuse")
	}
	if _, ok := a.Resolve(old); ok {
		t.Fatalf("old handle must not resolve to the new occupant")
	}
	e, ok := a.Resolve(fresh)
	if !ok || e.ID != "skeleton-1" {
		t.Fatalf("expected fresh handle to resolve to the new entity, got %+v ok=%v", e, ok)
	}
}

func TestZeroHandleNeverResolves(t *testing.T) {
	a := NewArena()
	a.Add(&Entity{ID: "slime-1", Kind: EntityEnemy})
	if _, ok := a.Resolve(Handle{}); ok {
		t.Fatalf("zero handle must not resolve")
	}
}

func TestNearestPicksClosestOfKind(t *testing.T) {
	w := New(Config{Width: 800, Height: 600})
	w.Add(&Entity{ID: "far", Kind: EntityEnemy, Pos: Vec2{X: 300, Y: 100}})
	near := w.Add(&Entity{ID: "near", Kind: EntityEnemy, Pos: Vec2{X: 150, Y: 100}})
	w.Add(&Entity{ID: "corpse", Kind: EntityCorpse, Pos: Vec2{X: 110, Y: 100}})

	h, ok := w.Nearest(Vec2{X: 100, Y: 100}, EntityEnemy, 0)
	if !ok || h != near {
		t.Fatalf("expected nearest enemy, got %+v ok=%v", h, ok)
	}
}

func TestNearestRadiusExcludesDistant(t *testing.T) {
	w := New(Config{Width: 800, Height: 600})
	w.Add(&Entity{ID: "far", Kind: EntityEnemy, Pos: Vec2{X: 500, Y: 100}})

	if _, ok := w.Nearest(Vec2{X: 100, Y: 100}, EntityEnemy, 160); ok {
		t.Fatalf("expected no enemy inside the radius")
	}
}

func TestNearestTieBreaksOnLowestID(t *testing.T) {
	w := New(Config{Width: 800, Height: 600})
	w.Add(&Entity{ID: "b-slime", Kind: EntityEnemy, Pos: Vec2{X: 150, Y: 100}})
	first := w.Add(&Entity{ID: "a-slime", Kind: EntityEnemy, Pos: Vec2{X: 50, Y: 100}})

	h, ok := w.Nearest(Vec2{X: 100, Y: 100}, EntityEnemy, 0)
	if !ok || h != first {
		t.Fatalf("expected the lexicographically first enemy at equal distance, got %+v", h)
	}
}

func TestNearestSkipsDeadEnemiesButNotCorpses(t *testing.T) {
	w := New(Config{Width: 800, Height: 600})
	dead := &Entity{ID: "slime-1", Kind: EntityEnemy, Pos: Vec2{X: 120, Y: 100}, Dead: true}
	w.Add(dead)

	if _, ok := w.Nearest(Vec2{X: 100, Y: 100}, EntityEnemy, 0); ok {
		t.Fatalf("dead enemies must not be targetable")
	}

	corpse := w.Add(&Entity{ID: "slime-1-corpse", Kind: EntityCorpse, Pos: Vec2{X: 120, Y: 100}, Dead: true})
	h, ok := w.Nearest(Vec2{X: 100, Y: 100}, EntityCorpse, 0)
	if !ok || h != corpse {
		t.Fatalf("expected the corpse to remain findable, got %+v ok=%v", h, ok)
	}
}

func TestCountWithinIgnoresDeadEnemies(t *testing.T) {
	w := New(Config{Width: 800, Height: 600})
	w.Add(&Entity{ID: "slime-1", Kind: EntityEnemy, Pos: Vec2{X: 120, Y: 100}})
	w.Add(&Entity{ID: "slime-2", Kind: EntityEnemy, Pos: Vec2{X: 140, Y: 100}, Dead: true})
	w.Add(&Entity{ID: "slime-3", Kind: EntityEnemy, Pos: Vec2{X: 700, Y: 100}})

	if got := w.CountWithin(Vec2{X: 100, Y: 100}, EntityEnemy, 160); got != 1 {
		t.Fatalf("CountWithin = %d, want 1", got)
	}
}

func TestLineOfSightBlockedByObstacle(t *testing.T) {
	w := New(Config{
		Width: 800, Height: 600,
		Obstacles: []Obstacle{{X: 200, Y: 50, Width: 20, Height: 100}},
	})
	if w.LineOfSight(Vec2{X: 100, Y: 100}, Vec2{X: 300, Y: 100}) {
		t.Fatalf("expected the wall to block the segment")
	}
	if !w.LineOfSight(Vec2{X: 100, Y: 200}, Vec2{X: 300, Y: 200}) {
		t.Fatalf("expected a clear segment below the wall")
	}
}

func TestHasFloorRejectsBoundsPitsAndWalls(t *testing.T) {
	w := New(Config{
		Width: 800, Height: 600,
		Obstacles: []Obstacle{{X: 200, Y: 50, Width: 20, Height: 100}},
		Pits:      []Pit{{X: 400, Y: 400, Width: 50, Height: 50}},
	})
	cases := []struct {
		name string
		p    Vec2
		want bool
	}{
		{"open floor", Vec2{X: 100, Y: 100}, true},
		{"outside bounds", Vec2{X: -1, Y: 100}, false},
		{"beyond width", Vec2{X: 801, Y: 100}, false},
		{"inside wall", Vec2{X: 210, Y: 100}, false},
		{"inside pit", Vec2{X: 420, Y: 420}, false},
	}
	for _, tc := range cases {
		if got := w.HasFloor(tc.p); got != tc.want {
			t.Fatalf("%s: HasFloor(%+v) = %v, want %v", tc.name, tc.p, got, tc.want)
		}
	}
}

func TestLootablePeekTakeSemantics(t *testing.T) {
	loot := &Lootable{
		Gold: 15,
		Slots: []LootSlot{
			{Type: "bone_shard", Quantity: 2},
			{},
		},
	}

	if got := loot.TakeGold(); got != 15 {
		t.Fatalf("TakeGold = %d, want 15", got)
	}
	if got := loot.TakeGold(); got != 0 {
		t.Fatalf("second TakeGold = %d, want 0", got)
	}

	slot, ok := loot.Peek(0)
	if !ok || slot.Quantity != 2 {
		t.Fatalf("Peek left the slot intact? got %+v ok=%v", slot, ok)
	}
	if _, ok := loot.Peek(1); ok {
		t.Fatalf("empty slot must peek false")
	}
	if _, ok := loot.Peek(5); ok {
		t.Fatalf("out-of-range slot must peek false")
	}

	taken, ok := loot.Take(0)
	if !ok || taken.Type != "bone_shard" {
		t.Fatalf("Take = %+v ok=%v", taken, ok)
	}
	if _, ok := loot.Peek(0); ok {
		t.Fatalf("taken slot must be cleared")
	}
	if !loot.Empty() {
		t.Fatalf("expected lootable to be empty after draining")
	}
}
