package sim

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"dungeon-crawlers/sim/internal/ai"
	"dungeon-crawlers/sim/internal/explore"
	"dungeon-crawlers/sim/internal/nav"
	"dungeon-crawlers/sim/internal/world"
)

// SafeZoneSpec places one safe zone in the world.
type SafeZoneSpec struct {
	ID string  `yaml:"id"`
	X  float64 `yaml:"x"`
	Y  float64 `yaml:"y"`
}

// CrawlerSpec places one crawler of a named archetype.
type CrawlerSpec struct {
	Archetype string  `yaml:"archetype"`
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
}

// Config assembles the world, its population, and loop tuning.
type Config struct {
	TickRate  int
	World     world.Config
	SafeZones []SafeZoneSpec
	Enemies   []EnemySpec
	Crawlers  []CrawlerSpec

	Personalities map[string]*ai.Personality
}

func (c Config) normalized() Config {
	if c.TickRate <= 0 {
		c.TickRate = 15
	}
	if c.Personalities == nil {
		c.Personalities = map[string]*ai.Personality{}
	}
	return c
}

// Engine owns the world and every agent in it. All mutation happens on the
// tick goroutine; Post is the only concurrency-safe entry point.
type Engine struct {
	cfg  Config
	deps Deps

	world      *world.World
	crawlerIDs []string
	crawlers   map[string]*ai.Executor
	enemies    []*enemy
	corpses    []world.Handle

	tick   uint64
	paused bool

	publishedTick   atomic.Uint64
	publishedPaused atomic.Bool

	cmdMu   sync.Mutex
	pending []Command
}

// NewEngine builds the world and spawns the configured population.
func NewEngine(cfg Config, deps Deps) (*Engine, error) {
	cfg = cfg.normalized()
	deps = deps.normalized()

	e := &Engine{
		cfg:      cfg,
		deps:     deps,
		world:    world.New(cfg.World),
		crawlers: make(map[string]*ai.Executor),
	}

	for i, zone := range cfg.SafeZones {
		id := zone.ID
		if id == "" {
			id = fmt.Sprintf("safezone-%d", i)
		}
		e.world.Add(&world.Entity{
			ID:   id,
			Kind: world.EntitySafeZone,
			Pos:  world.Vec2{X: zone.X, Y: zone.Y},
		})
	}

	for i, spec := range cfg.Enemies {
		spec = spec.normalized()
		if spec.ID == "" {
			spec.ID = fmt.Sprintf("enemy-%d", i)
		}
		spec.Pos = world.Vec2{X: spec.X, Y: spec.Y}
		h := e.world.Add(&world.Entity{
			ID:        spec.ID,
			Kind:      world.EntityEnemy,
			Pos:       spec.Pos,
			Health:    spec.Health,
			MaxHealth: spec.Health,
		})
		e.enemies = append(e.enemies, &enemy{spec: spec, handle: h})
	}
	sort.Slice(e.enemies, func(i, j int) bool {
		return e.enemies[i].spec.ID < e.enemies[j].spec.ID
	})

	for _, spec := range cfg.Crawlers {
		if err := e.spawnCrawler(spec); err != nil {
			return nil, err
		}
	}
	sort.Strings(e.crawlerIDs)

	return e, nil
}

func (e *Engine) spawnCrawler(spec CrawlerSpec) error {
	personality, ok := e.cfg.Personalities[spec.Archetype]
	if !ok {
		return fmt.Errorf("engine: unknown archetype %q", spec.Archetype)
	}
	crawler, err := ai.Spawn(spec.Archetype, personality, world.Vec2{X: spec.X, Y: spec.Y})
	if err != nil {
		return fmt.Errorf("engine: spawn %q: %w", spec.Archetype, err)
	}
	exec, err := ai.NewExecutor(crawler, personality, ai.Deps{
		World:     e.world,
		Grid:      explore.NewGrid(explore.Config{}),
		Nav:       nav.NewController(nav.Config{}),
		Publisher: e.deps.Publisher,
		RNG:       e.deps.RNG,
		Hooks:     ai.Hooks{Attack: e.damageEnemy},
		TickRate:  e.cfg.TickRate,
		Width:     e.world.Width(),
		Height:    e.world.Height(),
	})
	if err != nil {
		return fmt.Errorf("engine: executor for %q: %w", spec.Archetype, err)
	}
	e.crawlers[crawler.ID] = exec
	e.crawlerIDs = append(e.crawlerIDs, crawler.ID)
	return nil
}

// World exposes the spatial-query surface for tests and wiring.
func (e *Engine) World() *world.World {
	return e.world
}

// Tick reports the last completed tick. Safe to call from any goroutine.
func (e *Engine) Tick() uint64 {
	return e.publishedTick.Load()
}

// Paused reports whether agents are in stasis. Safe to call from any
// goroutine.
func (e *Engine) Paused() bool {
	return e.publishedPaused.Load()
}

// Post stages a command for the next tick. Safe to call from any goroutine.
func (e *Engine) Post(cmd Command) {
	e.cmdMu.Lock()
	e.pending = append(e.pending, cmd)
	e.cmdMu.Unlock()
}

func (e *Engine) drainCommands() []Command {
	e.cmdMu.Lock()
	defer e.cmdMu.Unlock()
	cmds := e.pending
	e.pending = nil
	return cmds
}

// Step advances the simulation by one tick: commands, crawlers in sorted-ID
// order, enemies, then corpse reaping.
func (e *Engine) Step() {
	e.tick++
	tick := e.tick

	for _, cmd := range e.drainCommands() {
		e.applyCommand(tick, cmd)
	}

	for _, id := range e.crawlerIDs {
		e.crawlers[id].Tick(tick)
	}

	if !e.paused {
		for _, en := range e.enemies {
			e.tickEnemy(tick, en)
		}
	}

	e.reapCorpses()
	e.deps.Metrics.Add(MetricTicks, 1)
	e.publishedTick.Store(e.tick)
	e.publishedPaused.Store(e.paused)
}

func (e *Engine) applyCommand(tick uint64, cmd Command) {
	switch cmd.Type {
	case CommandPause:
		e.setPaused(tick, true)
	case CommandResume:
		e.setPaused(tick, false)
	case CommandInteract:
		if exec, ok := e.crawlers[cmd.CrawlerID]; ok {
			exec.Interact(tick)
		}
	case CommandDamage:
		if exec, ok := e.crawlers[cmd.CrawlerID]; ok {
			exec.TakeDamage(tick, cmd.Amount, world.Handle{})
		}
	default:
		if e.deps.Logger != nil {
			e.deps.Logger.Printf("engine: unknown command type %q", cmd.Type)
		}
	}
}

func (e *Engine) setPaused(tick uint64, paused bool) {
	if e.paused == paused {
		return
	}
	e.paused = paused
	for _, id := range e.crawlerIDs {
		if paused {
			e.crawlers[id].EnterStasis(tick)
		} else {
			e.crawlers[id].ExitStasis(tick)
		}
	}
}

// damageEnemy is the crawler attack hook. A kill swaps the enemy entity for a
// corpse carrying its loot.
func (e *Engine) damageEnemy(h world.Handle, damage int) bool {
	target, ok := e.world.Resolve(h)
	if !ok || target.Kind != world.EntityEnemy || target.Dead {
		return false
	}
	target.Health -= damage
	if target.Health > 0 {
		return true
	}
	target.Health = 0
	target.Dead = true
	loot := e.lootFor(target.ID)
	e.world.Remove(h)
	e.removeEnemy(h)

	corpse := e.world.Add(&world.Entity{
		ID:   target.ID + "-corpse",
		Kind: world.EntityCorpse,
		Pos:  target.Pos,
		Dead: true,
		Loot: loot,
	})
	e.corpses = append(e.corpses, corpse)
	e.deps.Metrics.Add(MetricEnemyDeaths, 1)
	return true
}

func (e *Engine) lootFor(enemyID string) *world.Lootable {
	for _, en := range e.enemies {
		if en.spec.ID == enemyID {
			return en.spec.lootable()
		}
	}
	return &world.Lootable{}
}

func (e *Engine) removeEnemy(h world.Handle) {
	for i, en := range e.enemies {
		if en.handle == h {
			e.enemies = append(e.enemies[:i], e.enemies[i+1:]...)
			return
		}
	}
}

// tickEnemy runs the hostile behavior: chase the nearest living crawler and
// swing on cooldown.
func (e *Engine) tickEnemy(tick uint64, en *enemy) {
	entity, ok := e.world.Resolve(en.handle)
	if !ok || entity.Dead {
		return
	}

	targetID := ""
	bestDist := en.spec.AggroRange * en.spec.AggroRange
	for _, id := range e.crawlerIDs {
		c := e.crawlers[id].Crawler()
		if !c.Alive() {
			continue
		}
		d := world.DistSq(entity.Pos, c.Pos)
		if d <= bestDist {
			bestDist = d
			targetID = id
		}
	}
	if targetID == "" {
		return
	}
	exec := e.crawlers[targetID]
	target := exec.Crawler()

	dist := world.Dist(entity.Pos, target.Pos)
	if dist > en.spec.AttackRange {
		dir := target.Pos.Sub(entity.Pos).Normalized()
		step := en.spec.MoveSpeed / float64(e.cfg.TickRate)
		next := entity.Pos.Add(dir.Scale(step))
		if e.world.HasFloor(next) {
			entity.Pos = next
		}
		return
	}
	if tick >= en.readyAt {
		exec.TakeDamage(tick, en.spec.Damage, en.handle)
		en.readyAt = tick + en.spec.Cooldown
	}
}

// reapCorpses removes corpse entities once nothing lootable remains.
func (e *Engine) reapCorpses() {
	kept := e.corpses[:0]
	for _, h := range e.corpses {
		entity, ok := e.world.Resolve(h)
		if !ok {
			continue
		}
		if entity.Loot.Empty() {
			e.world.Remove(h)
			continue
		}
		kept = append(kept, h)
	}
	e.corpses = kept
}

// Executor returns the executor for a crawler ID.
func (e *Engine) Executor(id string) (*ai.Executor, bool) {
	exec, ok := e.crawlers[id]
	return exec, ok
}

// CrawlerIDs returns the deterministic iteration order.
func (e *Engine) CrawlerIDs() []string {
	ids := make([]string, len(e.crawlerIDs))
	copy(ids, e.crawlerIDs)
	return ids
}
