package sim

import (
	"testing"

	"dungeon-crawlers/sim/internal/ai"
	"dungeon-crawlers/sim/internal/items"
	"dungeon-crawlers/sim/internal/state"
	"dungeon-crawlers/sim/internal/telemetry"
	"dungeon-crawlers/sim/internal/world"
)

func testConfig() Config {
	return Config{
		TickRate: 15,
		World:    world.Config{Width: 800, Height: 600},
		Personalities: map[string]*ai.Personality{
			"default": ai.DefaultPersonality("default"),
		},
	}
}

func newTestEngine(t *testing.T, cfg Config, deps Deps) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, deps)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestStepPublishesTick(t *testing.T) {
	e := newTestEngine(t, testConfig(), Deps{})
	for i := 0; i < 3; i++ {
		e.Step()
	}
	if got := e.Tick(); got != 3 {
		t.Fatalf("Tick = %d, want 3", got)
	}
	if e.Paused() {
		t.Fatalf("expected engine to start unpaused")
	}
}

func TestUnknownArchetypeFails(t *testing.T) {
	cfg := testConfig()
	cfg.Crawlers = []CrawlerSpec{{Archetype: "ghost", X: 100, Y: 100}}
	if _, err := NewEngine(cfg, Deps{}); err == nil {
		t.Fatalf("expected an error for an unknown archetype")
	}
}

func TestPauseEntersStasisAndResumeRestores(t *testing.T) {
	cfg := testConfig()
	cfg.Crawlers = []CrawlerSpec{{Archetype: "default", X: 400, Y: 300}}
	e := newTestEngine(t, cfg, Deps{})
	id := e.CrawlerIDs()[0]

	e.Step()
	e.Post(Command{Type: CommandPause})
	e.Step()

	exec, _ := e.Executor(id)
	if exec.Crawler().State != state.StateStasis {
		t.Fatalf("expected stasis after pause, got %s", exec.Crawler().State)
	}
	if !e.Paused() {
		t.Fatalf("expected Paused() true")
	}

	pos := exec.Crawler().Pos
	for i := 0; i < 5; i++ {
		e.Step()
	}
	if exec.Crawler().Pos != pos {
		t.Fatalf("crawler moved while in stasis")
	}

	e.Post(Command{Type: CommandResume})
	e.Step()
	if exec.Crawler().State == state.StateStasis {
		t.Fatalf("expected stasis to clear after resume")
	}
	if e.Paused() {
		t.Fatalf("expected Paused() false after resume")
	}
}

func TestDamageCommandHurtsCrawler(t *testing.T) {
	cfg := testConfig()
	cfg.Crawlers = []CrawlerSpec{{Archetype: "default", X: 400, Y: 300}}
	e := newTestEngine(t, cfg, Deps{})
	id := e.CrawlerIDs()[0]

	e.Post(Command{Type: CommandDamage, CrawlerID: id, Amount: 30})
	e.Step()

	exec, _ := e.Executor(id)
	if got := exec.Crawler().Health; got != 70 {
		t.Fatalf("health = %d, want 70", got)
	}
}

func TestEnemyKillYieldsCorpseWithLoot(t *testing.T) {
	counters := telemetry.NewCounters()
	cfg := testConfig()
	cfg.Enemies = []EnemySpec{{
		ID: "slime-1", X: 500, Y: 300, Gold: 5,
		Loot: []EnemyLootSpec{{Type: string(items.TypeSlimeGel), Quantity: 2}},
	}}
	e := newTestEngine(t, cfg, Deps{Metrics: counters})

	h := e.enemies[0].handle
	if !e.damageEnemy(h, 100) {
		t.Fatalf("expected the killing blow to land")
	}
	if len(e.enemies) != 0 {
		t.Fatalf("expected the dead enemy to leave the roster, got %d", len(e.enemies))
	}
	if _, ok := e.world.Resolve(h); ok {
		t.Fatalf("enemy handle must go stale on death")
	}

	ch, ok := e.world.Nearest(world.Vec2{X: 500, Y: 300}, world.EntityCorpse, 0)
	if !ok {
		t.Fatalf("expected a corpse at the death position")
	}
	corpse, _ := e.world.Resolve(ch)
	if corpse.ID != "slime-1-corpse" {
		t.Fatalf("corpse ID = %q", corpse.ID)
	}
	if corpse.Loot.Gold != 5 || len(corpse.Loot.Slots) != 1 {
		t.Fatalf("corpse loot = %+v", corpse.Loot)
	}
	if got := counters.Snapshot()[MetricEnemyDeaths]; got != 1 {
		t.Fatalf("enemy death counter = %d, want 1", got)
	}

	if e.damageEnemy(h, 10) {
		t.Fatalf("stale handle must not take damage")
	}
}

func TestEmptyCorpseReapedOnStep(t *testing.T) {
	cfg := testConfig()
	cfg.Enemies = []EnemySpec{{ID: "slime-1", X: 500, Y: 300}}
	e := newTestEngine(t, cfg, Deps{})

	e.damageEnemy(e.enemies[0].handle, 100)
	e.Step()

	if _, ok := e.world.Nearest(world.Vec2{X: 500, Y: 300}, world.EntityCorpse, 0); ok {
		t.Fatalf("expected the empty corpse to be reaped")
	}
	if len(e.corpses) != 0 {
		t.Fatalf("corpse roster not cleared: %d", len(e.corpses))
	}
}

func TestEnemyChasesCrawler(t *testing.T) {
	cfg := testConfig()
	cfg.Crawlers = []CrawlerSpec{{Archetype: "default", X: 420, Y: 300}}
	cfg.Enemies = []EnemySpec{{ID: "slime-1", X: 500, Y: 300}}
	e := newTestEngine(t, cfg, Deps{})
	id := e.CrawlerIDs()[0]
	exec, _ := e.Executor(id)

	entity, _ := e.world.Resolve(e.enemies[0].handle)
	start := entity.Pos
	before := world.Dist(start, exec.Crawler().Pos)

	for i := 0; i < 5; i++ {
		e.Step()
	}

	if entity.Pos == start {
		t.Fatalf("expected the enemy to move toward its target")
	}
	after := world.Dist(entity.Pos, exec.Crawler().Pos)
	if after >= before {
		t.Fatalf("distance did not close: before %f after %f", before, after)
	}
}

func TestEnemyAttacksOnCooldown(t *testing.T) {
	cfg := testConfig()
	cfg.Crawlers = []CrawlerSpec{{Archetype: "default", X: 400, Y: 300}}
	cfg.Enemies = []EnemySpec{{ID: "slime-1", X: 415, Y: 300, Health: 200}}
	e := newTestEngine(t, cfg, Deps{})
	id := e.CrawlerIDs()[0]
	exec, _ := e.Executor(id)

	for i := 0; i < 3; i++ {
		e.Step()
	}
	// One swing on the first tick, then the cooldown holds.
	if got := exec.Crawler().Health; got != 95 {
		t.Fatalf("health = %d, want 95", got)
	}
}

func TestSnapshotReflectsPopulation(t *testing.T) {
	cfg := testConfig()
	cfg.Crawlers = []CrawlerSpec{{Archetype: "default", X: 400, Y: 300}}
	cfg.Enemies = []EnemySpec{{ID: "slime-1", X: 700, Y: 100}}
	e := newTestEngine(t, cfg, Deps{})

	e.Step()
	snap := e.Snapshot()
	if snap.Tick != 1 || snap.Paused {
		t.Fatalf("snapshot header = %+v", snap)
	}
	if len(snap.Crawlers) != 1 || len(snap.Enemies) != 1 || len(snap.Corpses) != 0 {
		t.Fatalf("snapshot population = %d crawlers %d enemies %d corpses",
			len(snap.Crawlers), len(snap.Enemies), len(snap.Corpses))
	}
	if snap.Enemies[0].ID != "slime-1" || snap.Enemies[0].Health != 30 {
		t.Fatalf("enemy view = %+v", snap.Enemies[0])
	}
}
