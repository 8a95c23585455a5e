package ai

import (
	"context"
	"sync"
	"testing"

	"dungeon-crawlers/sim/internal/explore"
	"dungeon-crawlers/sim/internal/items"
	"dungeon-crawlers/sim/internal/nav"
	"dungeon-crawlers/sim/internal/state"
	"dungeon-crawlers/sim/internal/world"
	"dungeon-crawlers/sim/logging"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []logging.Event
}

func (r *eventRecorder) Publish(_ context.Context, event logging.Event) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *eventRecorder) ofType(t logging.EventType) []logging.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []logging.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type harness struct {
	world    *world.World
	exec     *Executor
	crawler  *state.Crawler
	recorder *eventRecorder
	attacks  []attackCall
}

type attackCall struct {
	target world.Handle
	damage int
}

func newHarness(t *testing.T, mutate func(*Personality)) *harness {
	t.Helper()
	p := DefaultPersonality("test")
	if mutate != nil {
		mutate(p)
	}

	w := world.New(world.Config{Width: 800, Height: 600})
	crawler, err := Spawn("test", p, world.Vec2{X: 400, Y: 300})
	if err != nil {
		t.Fatalf("spawn failed: %v", err)
	}

	h := &harness{world: w, crawler: crawler, recorder: &eventRecorder{}}
	exec, err := NewExecutor(crawler, p, Deps{
		World:     w,
		Grid:      explore.NewGrid(explore.Config{}),
		Nav:       nav.NewController(nav.Config{}),
		Publisher: h.recorder,
		Hooks: Hooks{Attack: func(target world.Handle, damage int) bool {
			h.attacks = append(h.attacks, attackCall{target: target, damage: damage})
			return true
		}},
		TickRate: 15,
	})
	if err != nil {
		t.Fatalf("executor construction failed: %v", err)
	}
	h.exec = exec
	return h
}

func (h *harness) addEnemy(id string, pos world.Vec2, health int) world.Handle {
	return h.world.Add(&world.Entity{
		ID: id, Kind: world.EntityEnemy, Pos: pos, Health: health, MaxHealth: health,
	})
}

func (h *harness) addCorpse(id string, pos world.Vec2, loot *world.Lootable) world.Handle {
	return h.world.Add(&world.Entity{
		ID: id, Kind: world.EntityCorpse, Pos: pos, Dead: true, Loot: loot,
	})
}

func (h *harness) addSafeZone(id string, pos world.Vec2) world.Handle {
	return h.world.Add(&world.Entity{ID: id, Kind: world.EntitySafeZone, Pos: pos})
}

func TestExecutorEntersCombatAndAttacks(t *testing.T) {
	h := newHarness(t, nil)
	h.addEnemy("enemy-1", world.Vec2{X: 410, Y: 300}, 50)

	h.crawler.Blackboard.NextDecisionAt = 0
	h.exec.Tick(1)

	if h.crawler.State != state.StateCombat {
		t.Fatalf("expected Combat after sensing an adjacent enemy, got %s", h.crawler.State)
	}
	if len(h.attacks) == 0 {
		t.Fatalf("expected an attack against the in-range enemy")
	}
	if h.attacks[0].damage != h.exec.personality.AttackDamage {
		t.Fatalf("expected attack damage %d, got %d", h.exec.personality.AttackDamage, h.attacks[0].damage)
	}
}

func TestExecutorCombatReentryGuardSkipsScoring(t *testing.T) {
	h := newHarness(t, nil)
	enemy := h.addEnemy("enemy-1", world.Vec2{X: 410, Y: 300}, 50)

	h.exec.Tick(1)
	if h.crawler.State != state.StateCombat {
		t.Fatalf("expected Combat, got %s", h.crawler.State)
	}

	// Decisions fall due while the target is alive; the guard must hold the
	// state.
	for tick := uint64(2); tick <= 40; tick++ {
		h.exec.Tick(tick)
		if h.crawler.State != state.StateCombat {
			t.Fatalf("tick %d: combat guard broken, state %s", tick, h.crawler.State)
		}
	}

	h.world.Remove(enemy)
	h.exec.Tick(41)
	if h.crawler.State == state.StateCombat {
		t.Fatalf("expected combat to end once the target handle went stale")
	}
}

func TestExecutorLootTransfersGoldAndSkipsTrash(t *testing.T) {
	h := newHarness(t, nil)
	corpse := h.addCorpse("corpse-1", world.Vec2{X: 402, Y: 300}, &world.Lootable{
		Gold: 12,
		Slots: []world.LootSlot{
			{Type: string(items.TypeBoneBlade), Quantity: 1},
			{Type: string(items.TypeSlimeGel), Quantity: 2},
		},
	})

	h.crawler.Blackboard.LootTarget = corpse
	h.crawler.State = state.StateLooting
	h.exec.stepState(1)

	if got := h.crawler.Inventory.Gold(); got != 12 {
		t.Fatalf("expected 12 gold looted, got %d", got)
	}
	entity, ok := h.world.Resolve(corpse)
	if !ok {
		t.Fatalf("corpse should remain while loot is left")
	}
	// Slime gel is worth less than the default minimum and stays behind.
	if entity.Loot.Slots[1].Quantity != 2 {
		t.Fatalf("expected low-value loot left on corpse, got %+v", entity.Loot.Slots[1])
	}
	if _, ok := entity.Loot.Peek(0); ok {
		t.Fatalf("expected the blade slot to be emptied")
	}
	if h.crawler.State != state.StateIdle {
		t.Fatalf("expected Idle after looting, got %s", h.crawler.State)
	}
}

func TestExecutorLootStopsWhenInventoryFull(t *testing.T) {
	h := newHarness(t, func(p *Personality) {
		p.MinItemValueToLoot = 1
	})
	for h.crawler.Inventory.UsedSlots() < h.crawler.Inventory.Capacity() {
		if _, err := h.crawler.Inventory.AddStack(items.Stack{Type: items.TypeRustySword, Quantity: 1}); err != nil {
			t.Fatalf("failed to pre-fill inventory: %v", err)
		}
	}
	corpse := h.addCorpse("corpse-1", world.Vec2{X: 402, Y: 300}, &world.Lootable{
		Slots: []world.LootSlot{{Type: string(items.TypeBoneBlade), Quantity: 1}},
	})

	h.crawler.Blackboard.LootTarget = corpse
	h.crawler.State = state.StateLooting
	h.exec.stepState(1)

	entity, ok := h.world.Resolve(corpse)
	if !ok {
		t.Fatalf("corpse should survive a failed pickup")
	}
	if _, ok := entity.Loot.Peek(0); !ok {
		t.Fatalf("expected the item to stay on the corpse")
	}
	if events := h.recorder.ofType("economy.inventory_full"); len(events) == 0 {
		t.Fatalf("expected an inventory-full event")
	}
}

func TestExecutorTakeDamageAutoAggro(t *testing.T) {
	h := newHarness(t, nil)
	enemy := h.addEnemy("enemy-1", world.Vec2{X: 500, Y: 300}, 50)

	h.exec.TakeDamage(5, 10, enemy)

	if h.crawler.State != state.StateCombat {
		t.Fatalf("expected auto-aggro into Combat, got %s", h.crawler.State)
	}
	if h.crawler.Blackboard.CombatTarget != enemy {
		t.Fatalf("expected combat target set to the attacker")
	}
	if h.crawler.Health != h.crawler.MaxHealth-10 {
		t.Fatalf("expected health %d, got %d", h.crawler.MaxHealth-10, h.crawler.Health)
	}
}

func TestExecutorTakeDamageForcesFleeBelowThreshold(t *testing.T) {
	h := newHarness(t, nil)
	enemy := h.addEnemy("enemy-1", world.Vec2{X: 500, Y: 300}, 50)

	h.exec.TakeDamage(5, h.crawler.MaxHealth*9/10, enemy)

	if h.crawler.State != state.StateFleeing {
		t.Fatalf("expected mandatory flee below threshold, got %s", h.crawler.State)
	}
}

func TestExecutorDamageWhileFleeingKeepsFleeing(t *testing.T) {
	h := newHarness(t, nil)
	enemy := h.addEnemy("enemy-1", world.Vec2{X: 500, Y: 300}, 50)

	h.exec.TakeDamage(5, h.crawler.MaxHealth*9/10, enemy)
	if h.crawler.State != state.StateFleeing {
		t.Fatalf("expected mandatory flee below threshold, got %s", h.crawler.State)
	}

	// A follow-up hit must not pull the crawler back into Combat.
	h.exec.TakeDamage(6, 1, enemy)

	if h.crawler.State != state.StateFleeing {
		t.Fatalf("expected flight to continue, got %s", h.crawler.State)
	}
	if !h.crawler.Blackboard.CombatTarget.Zero() {
		t.Fatalf("expected no combat target while fleeing")
	}
}

func TestExecutorDeathIsIdempotent(t *testing.T) {
	h := newHarness(t, nil)

	h.exec.TakeDamage(5, h.crawler.MaxHealth, world.Handle{})
	if h.crawler.State != state.StateDead {
		t.Fatalf("expected Dead, got %s", h.crawler.State)
	}
	if h.crawler.Health != 0 {
		t.Fatalf("expected health clamped to 0, got %d", h.crawler.Health)
	}

	h.exec.TakeDamage(6, 100, world.Handle{})
	h.exec.Tick(7)
	h.exec.EnterStasis(8)

	if h.crawler.State != state.StateDead {
		t.Fatalf("dead crawler left Dead state: %s", h.crawler.State)
	}
	if died := h.recorder.ofType("behavior.died"); len(died) != 1 {
		t.Fatalf("expected exactly one death event, got %d", len(died))
	}
}

func TestExecutorSafeZoneHealsSellsThenIdles(t *testing.T) {
	h := newHarness(t, nil)
	zone := h.addSafeZone("camp", world.Vec2{X: 400, Y: 300})
	h.crawler.Blackboard.SafeZone = zone
	h.crawler.Health = h.crawler.MaxHealth - 15
	if _, err := h.crawler.Inventory.AddStack(items.Stack{Type: items.TypeBoneBlade, Quantity: 1}); err != nil {
		t.Fatalf("failed to seed inventory: %v", err)
	}

	h.crawler.State = state.StateAtSafeZone
	h.crawler.Blackboard.NextHealAt = 0

	tick := uint64(1)
	for h.crawler.Health < h.crawler.MaxHealth {
		h.exec.stepState(tick)
		tick += h.exec.personality.HealIntervalTicks
		if tick > 1000 {
			t.Fatalf("healing never completed")
		}
	}

	h.exec.stepState(tick)
	if h.crawler.Inventory.Gold() == 0 {
		t.Fatalf("expected sale proceeds in gold")
	}
	if events := h.recorder.ofType("economy.items_sold"); len(events) != 1 {
		t.Fatalf("expected one sale event, got %d", len(events))
	}

	h.exec.stepState(tick + 1)
	if h.crawler.State != state.StateIdle {
		t.Fatalf("expected Idle after heal and sale, got %s", h.crawler.State)
	}
}

func TestExecutorStasisFreezesAndResumes(t *testing.T) {
	h := newHarness(t, nil)
	h.crawler.State = state.StatePatrolling
	h.crawler.Blackboard.PatrolTarget = world.Vec2{X: 600, Y: 300}
	h.crawler.Blackboard.HasPatrolTarget = true

	h.exec.EnterStasis(1)
	if h.crawler.State != state.StateStasis {
		t.Fatalf("expected Stasis, got %s", h.crawler.State)
	}

	before := h.crawler.Pos
	for tick := uint64(2); tick < 30; tick++ {
		h.exec.Tick(tick)
	}
	if h.crawler.Pos != before {
		t.Fatalf("stasis crawler moved from %+v to %+v", before, h.crawler.Pos)
	}

	h.exec.ExitStasis(30)
	if h.crawler.State != state.StatePatrolling {
		t.Fatalf("expected prior state restored, got %s", h.crawler.State)
	}
}

func TestExecutorFleeReachesSafeZone(t *testing.T) {
	h := newHarness(t, nil)
	h.addSafeZone("camp", world.Vec2{X: 420, Y: 300})
	h.crawler.Health = h.crawler.MaxHealth / 10

	h.exec.transition(state.StateFleeing, 1)
	for tick := uint64(2); tick < 200; tick++ {
		h.exec.Tick(tick)
		if h.crawler.State == state.StateAtSafeZone {
			return
		}
		if h.crawler.State != state.StateFleeing {
			t.Fatalf("tick %d: unexpected state %s", tick, h.crawler.State)
		}
	}
	t.Fatalf("crawler never reached the safe zone, pos %+v", h.crawler.Pos)
}
