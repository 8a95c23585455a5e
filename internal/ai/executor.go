package ai

import (
	"context"
	"fmt"
	"math/rand"

	"dungeon-crawlers/sim/internal/explore"
	"dungeon-crawlers/sim/internal/items"
	"dungeon-crawlers/sim/internal/nav"
	"dungeon-crawlers/sim/internal/state"
	"dungeon-crawlers/sim/internal/world"
	"dungeon-crawlers/sim/logging"
	"dungeon-crawlers/sim/logging/behavior"
	loggingeconomy "dungeon-crawlers/sim/logging/economy"
)

// Hooks bundles the callbacks the executor needs to act on the world it does
// not own.
type Hooks struct {
	// Attack applies damage to the target entity. Returns false when the
	// target could not be hit.
	Attack func(target world.Handle, damage int) bool
}

// Deps captures the runtime dependencies injected into an executor at
// construction. The world is consumed through the Query interface only.
type Deps struct {
	World     world.Query
	Grid      *explore.Grid
	Nav       *nav.Controller
	Publisher logging.Publisher
	RNG       *rand.Rand
	Hooks     Hooks

	TickRate int
	Width    float64
	Height   float64
}

func (d Deps) normalized() Deps {
	if d.Publisher == nil {
		d.Publisher = logging.NopPublisher()
	}
	if d.TickRate <= 0 {
		d.TickRate = 15
	}
	if d.Width <= 0 {
		d.Width = world.DefaultWidth
	}
	if d.Height <= 0 {
		d.Height = world.DefaultHeight
	}
	return d
}

// Executor owns one crawler's behavior: it runs the periodic utility
// evaluation, enforces reentry guards, and executes per-state tick logic.
type Executor struct {
	crawler     *state.Crawler
	personality *Personality
	deps        Deps

	lastScores ScoreVector
}

// NewExecutor wires an executor for one crawler.
func NewExecutor(crawler *state.Crawler, personality *Personality, deps Deps) (*Executor, error) {
	if crawler == nil {
		return nil, fmt.Errorf("executor: nil crawler")
	}
	if personality == nil {
		return nil, fmt.Errorf("executor: nil personality")
	}
	deps = deps.normalized()
	if deps.World == nil {
		return nil, fmt.Errorf("executor: nil world query")
	}
	if deps.Grid == nil {
		deps.Grid = explore.NewGrid(explore.Config{})
	}
	if deps.Nav == nil {
		deps.Nav = nav.NewController(nav.Config{})
	}
	return &Executor{crawler: crawler, personality: personality, deps: deps}, nil
}

// Crawler exposes the agent state for read-only callers.
func (e *Executor) Crawler() *state.Crawler {
	return e.crawler
}

// LastScores returns the score vector from the most recent evaluation.
func (e *Executor) LastScores() ScoreVector {
	return e.lastScores
}

func (e *Executor) ref() logging.EntityRef {
	return logging.EntityRef{ID: e.crawler.ID, Kind: logging.EntityKindCrawler}
}

// Tick advances the crawler by one simulation step. dt is implicit: every
// timer counts ticks.
func (e *Executor) Tick(tick uint64) {
	c := e.crawler
	switch c.State {
	case state.StateDead:
		return
	case state.StateStasis:
		// Frozen: presentation idle continues externally, nothing moves.
		return
	}

	e.deps.Grid.MarkVisited(c.Pos, tick)
	e.deps.Nav.Record(c.Pos)

	if tick >= c.Blackboard.NextDecisionAt && !e.exclusive(tick) {
		e.decide(tick)
		c.Blackboard.NextDecisionAt = tick + e.personality.DecisionInterval
	}

	e.stepState(tick)
}

// exclusive reports whether the current state is reentry-guarded: the
// executor skips scoring and drives the state to natural completion.
func (e *Executor) exclusive(tick uint64) bool {
	c := e.crawler
	switch c.State {
	case state.StateCombat:
		if target, ok := e.deps.World.Resolve(c.Blackboard.CombatTarget); ok && !target.Dead {
			return true
		}
		return false
	case state.StateLooting:
		_, ok := e.deps.World.Resolve(c.Blackboard.LootTarget)
		return ok
	case state.StateAtSafeZone:
		return true
	default:
		return false
	}
}

func (e *Executor) decide(tick uint64) {
	c := e.crawler
	senses := e.sense()
	input := ScoreInput{
		HealthFraction:    c.HealthFraction(),
		InventoryFullness: c.Inventory.Fullness(),
		InventoryFree:     c.Inventory.FreeFraction(),
		Senses:            senses,
	}
	action, scores := Score(e.personality, input)
	e.lastScores = scores

	behavior.Decision(context.Background(), e.deps.Publisher, tick, e.ref(), behavior.DecisionPayload{
		Chosen: action.String(),
		Scores: scores.Map(),
	})

	e.apply(action, tick)
}

func (e *Executor) sense() Senses {
	c := e.crawler
	senses := Senses{
		EnemyCount:    e.deps.World.CountWithin(c.Pos, world.EntityEnemy, e.personality.AggroRange),
		LootableCount: e.deps.World.CountWithin(c.Pos, world.EntityCorpse, e.personality.LootRange),
	}
	if h, ok := e.deps.World.Nearest(c.Pos, world.EntitySafeZone, 0); ok {
		if zone, ok := e.deps.World.Resolve(h); ok {
			senses.SafeZoneKnown = true
			senses.SafeZoneDist = world.Dist(c.Pos, zone.Pos)
			c.Blackboard.SafeZone = h
		}
	}
	return senses
}

func (e *Executor) apply(action Action, tick uint64) {
	c := e.crawler
	switch action {
	case ActionAttack:
		if h, ok := e.deps.World.Nearest(c.Pos, world.EntityEnemy, e.personality.AggroRange); ok {
			c.Blackboard.CombatTarget = h
			e.transition(state.StateCombat, tick)
		}
	case ActionLoot:
		if h, ok := e.deps.World.Nearest(c.Pos, world.EntityCorpse, e.personality.LootRange); ok {
			c.Blackboard.LootTarget = h
			e.transition(state.StateInvestigating, tick)
		}
	case ActionReturn:
		e.transition(state.StateReturning, tick)
	case ActionFlee:
		e.transition(state.StateFleeing, tick)
	case ActionPatrol:
		e.transition(state.StatePatrolling, tick)
	case ActionIdle:
		e.transition(state.StateIdle, tick)
	}
}

// transition moves the crawler to a new state, running entry effects. A
// transition to the current state is a no-op.
func (e *Executor) transition(to state.CrawlerState, tick uint64) {
	c := e.crawler
	if c.State == to {
		return
	}
	if c.State == state.StateDead {
		return
	}
	from := c.State
	c.State = to
	c.Blackboard.StateEnteredTick = tick

	switch to {
	case state.StateIdle:
		c.Blackboard.IdleUntil = tick + e.personality.IdleDwellTicks
	case state.StatePatrolling:
		e.acquirePatrolTarget()
	case state.StateFleeing:
		c.Blackboard.FleeDeadline = tick + e.personality.FleeTimeoutTicks
	case state.StateAtSafeZone:
		c.Blackboard.NextHealAt = tick + e.personality.HealIntervalTicks
	}

	behavior.StateChanged(context.Background(), e.deps.Publisher, tick, e.ref(), behavior.StateChangedPayload{
		From: from.String(),
		To:   to.String(),
	})
}

func (e *Executor) stepState(tick uint64) {
	switch e.crawler.State {
	case state.StateIdle:
		e.tickIdle(tick)
	case state.StatePatrolling:
		e.tickPatrolling(tick)
	case state.StateInvestigating:
		e.tickInvestigating(tick)
	case state.StateCombat:
		e.tickCombat(tick)
	case state.StateFleeing:
		e.tickFleeing(tick)
	case state.StateLooting:
		e.tickLooting(tick)
	case state.StateReturning:
		e.tickReturning(tick)
	case state.StateAtSafeZone:
		e.tickAtSafeZone(tick)
	case state.StateDead, state.StateStasis:
		// Handled before stepState runs.
	}
}

func (e *Executor) tickIdle(tick uint64) {
	if tick >= e.crawler.Blackboard.IdleUntil {
		e.transition(state.StatePatrolling, tick)
	}
}

func (e *Executor) tickPatrolling(tick uint64) {
	c := e.crawler
	if !c.Blackboard.HasPatrolTarget {
		e.acquirePatrolTarget()
	}
	target := c.Blackboard.PatrolTarget

	if world.Dist(c.Pos, target) <= e.deps.Nav.ArriveRadius() {
		c.Blackboard.HasPatrolTarget = false
		e.deps.Nav.Reset()
		return
	}
	if e.deps.Nav.Stuck() {
		behavior.Stuck(context.Background(), e.deps.Publisher, tick, e.ref(), behavior.StuckPayload{
			Displacement: e.deps.Nav.Displacement(),
			WindowTicks:  e.deps.Nav.Window(),
		})
		c.Blackboard.HasPatrolTarget = false
		e.deps.Nav.Reset()
		return
	}
	e.moveToward(target, 1)
}

func (e *Executor) tickInvestigating(tick uint64) {
	c := e.crawler
	corpse, ok := e.deps.World.Resolve(c.Blackboard.LootTarget)
	if !ok {
		c.Blackboard.LootTarget = world.Handle{}
		e.transition(state.StateIdle, tick)
		return
	}
	if world.Dist(c.Pos, corpse.Pos) <= e.deps.Nav.ArriveRadius() {
		e.transition(state.StateLooting, tick)
		return
	}
	e.moveToward(corpse.Pos, 1)
}

func (e *Executor) tickCombat(tick uint64) {
	c := e.crawler
	target, ok := e.deps.World.Resolve(c.Blackboard.CombatTarget)
	if !ok || target.Dead {
		c.Blackboard.CombatTarget = world.Handle{}
		if h, found := e.deps.World.Nearest(c.Pos, world.EntityCorpse, e.personality.LootRange); found {
			c.Blackboard.LootTarget = h
			e.transition(state.StateLooting, tick)
		} else {
			e.transition(state.StateIdle, tick)
		}
		return
	}

	if !e.personality.NeverFlees && c.HealthFraction() <= e.personality.FleeThreshold {
		e.transition(state.StateFleeing, tick)
		return
	}

	dist := world.Dist(c.Pos, target.Pos)
	if dist > e.personality.AttackRange {
		e.moveToward(target.Pos, 1)
		return
	}

	c.Facing = target.Pos.Sub(c.Pos).Normalized()
	if tick >= c.Blackboard.AttackReadyAt {
		if e.deps.Hooks.Attack != nil {
			e.deps.Hooks.Attack(c.Blackboard.CombatTarget, e.personality.AttackDamage)
		}
		c.Blackboard.AttackReadyAt = tick + e.personality.AttackCooldown
	}
}

func (e *Executor) tickFleeing(tick uint64) {
	c := e.crawler
	goal, known := e.safeZonePos()
	if !known {
		away := world.Vec2{X: 1}
		if h, ok := e.deps.World.Nearest(c.Pos, world.EntityEnemy, e.personality.AggroRange); ok {
			if enemy, ok := e.deps.World.Resolve(h); ok {
				away = c.Pos.Sub(enemy.Pos).Normalized()
			}
		}
		goal = c.Pos.Add(away.Scale(e.personality.AggroRange))
	}

	if known && world.Dist(c.Pos, goal) <= e.deps.Nav.ArriveRadius() {
		e.transition(state.StateAtSafeZone, tick)
		return
	}
	if tick >= c.Blackboard.FleeDeadline {
		e.transition(state.StateReturning, tick)
		return
	}
	e.moveToward(goal, e.personality.FleeSpeedMultiplier)
}

// tickLooting transfers gold and sufficiently valuable items from the corpse,
// then returns to Idle. It always completes in a single tick.
func (e *Executor) tickLooting(tick uint64) {
	c := e.crawler
	ctx := context.Background()
	corpse, ok := e.deps.World.Resolve(c.Blackboard.LootTarget)
	if !ok || corpse.Loot == nil {
		c.Blackboard.LootTarget = world.Handle{}
		e.transition(state.StateIdle, tick)
		return
	}
	loot := corpse.Loot

	if gold := loot.TakeGold(); gold > 0 {
		if _, err := c.Inventory.AddStack(items.Stack{Type: items.TypeGold, Quantity: gold}); err != nil {
			loot.Gold = gold
			loggingeconomy.InventoryFull(ctx, e.deps.Publisher, tick, e.ref(), string(items.TypeGold))
		} else {
			loggingeconomy.LootTaken(ctx, e.deps.Publisher, tick, e.ref(), loggingeconomy.LootTakenPayload{Gold: gold})
		}
	}

	for i := 0; i < len(loot.Slots); i++ {
		slot, ok := loot.Peek(i)
		if !ok {
			continue
		}
		value := items.EstimateValue(items.ItemType(slot.Type))
		if value < e.personality.MinItemValueToLoot {
			loggingeconomy.LootSkipped(ctx, e.deps.Publisher, tick, e.ref(), loggingeconomy.LootSkippedPayload{
				ItemType: slot.Type,
				Reason:   "below_min_value",
			})
			continue
		}
		if _, err := c.Inventory.AddStack(items.Stack{Type: items.ItemType(slot.Type), Quantity: slot.Quantity}); err != nil {
			loggingeconomy.InventoryFull(ctx, e.deps.Publisher, tick, e.ref(), slot.Type)
			break
		}
		loot.Take(i)
		loggingeconomy.LootTaken(ctx, e.deps.Publisher, tick, e.ref(), loggingeconomy.LootTakenPayload{
			ItemType: slot.Type,
			Quantity: slot.Quantity,
		})
	}

	c.Blackboard.LootTarget = world.Handle{}
	e.transition(state.StateIdle, tick)
}

func (e *Executor) tickReturning(tick uint64) {
	c := e.crawler
	goal, known := e.safeZonePos()
	if !known {
		e.transition(state.StateIdle, tick)
		return
	}
	if world.Dist(c.Pos, goal) <= e.deps.Nav.ArriveRadius() {
		e.transition(state.StateAtSafeZone, tick)
		return
	}
	e.moveToward(goal, 1)
}

// tickAtSafeZone heals on a fixed interval, then sells everything, then
// releases the crawler back to Idle.
func (e *Executor) tickAtSafeZone(tick uint64) {
	c := e.crawler
	if c.Health < c.MaxHealth {
		if tick >= c.Blackboard.NextHealAt {
			c.Health += e.personality.HealPerInterval
			if c.Health > c.MaxHealth {
				c.Health = c.MaxHealth
			}
			c.Blackboard.NextHealAt = tick + e.personality.HealIntervalTicks
		}
		return
	}
	if e.hasSellable() {
		sold := c.Inventory.UsedSlots()
		earned := items.SellAll(&c.Inventory)
		if earned > 0 {
			c.Inventory.AddStack(items.Stack{Type: items.TypeGold, Quantity: earned})
		}
		loggingeconomy.ItemsSold(context.Background(), e.deps.Publisher, tick, e.ref(), loggingeconomy.ItemsSoldPayload{
			SlotsSold: sold,
			GoldTotal: earned,
		})
		return
	}
	e.transition(state.StateIdle, tick)
}

// hasSellable reports whether anything besides banked gold is in the bag.
func (e *Executor) hasSellable() bool {
	inv := &e.crawler.Inventory
	for i := 0; i < inv.Capacity(); i++ {
		s, ok := inv.Slot(i)
		if ok && !s.Empty() && s.Type != items.TypeGold {
			return true
		}
	}
	return false
}

func (e *Executor) safeZonePos() (world.Vec2, bool) {
	c := e.crawler
	if zone, ok := e.deps.World.Resolve(c.Blackboard.SafeZone); ok {
		return zone.Pos, true
	}
	if h, ok := e.deps.World.Nearest(c.Pos, world.EntitySafeZone, 0); ok {
		if zone, ok := e.deps.World.Resolve(h); ok {
			c.Blackboard.SafeZone = h
			return zone.Pos, true
		}
	}
	return world.Vec2{}, false
}

func (e *Executor) acquirePatrolTarget() {
	c := e.crawler
	c.Blackboard.PatrolTarget = e.deps.Grid.NextTarget(c.Pos, e.deps.World, e.deps.RNG)
	c.Blackboard.HasPatrolTarget = true
	e.deps.Nav.Reset()
}

// moveToward steers and integrates one tick of movement.
func (e *Executor) moveToward(goal world.Vec2, speedMul float64) {
	c := e.crawler
	dir := e.deps.Nav.Steer(c.Pos, goal, e.deps.World)
	if dir.Length() == 0 {
		return
	}
	step := e.personality.MoveSpeed * speedMul / float64(e.deps.TickRate)
	c.Pos = world.Vec2{
		X: world.Clamp(c.Pos.X+dir.X*step, 0, e.deps.Width),
		Y: world.Clamp(c.Pos.Y+dir.Y*step, 0, e.deps.Height),
	}
	c.Facing = dir.Normalized()
}

// TakeDamage applies a hit, clamping health at zero. Damage while not in
// Combat aggroes onto an identifiable attacker. Dead crawlers ignore it.
func (e *Executor) TakeDamage(tick uint64, amount int, source world.Handle) {
	c := e.crawler
	if c.State == state.StateDead || amount <= 0 {
		return
	}
	c.Health -= amount
	if c.Health < 0 {
		c.Health = 0
	}

	sourceID := ""
	if attacker, ok := e.deps.World.Resolve(source); ok {
		sourceID = attacker.ID
	}
	behavior.DamageTaken(context.Background(), e.deps.Publisher, tick, e.ref(), behavior.DamageTakenPayload{
		Amount:    amount,
		Remaining: c.Health,
		SourceID:  sourceID,
	})

	if c.Health == 0 {
		e.die(tick)
		return
	}
	if c.State == state.StateCombat || c.State == state.StateFleeing || c.State == state.StateStasis {
		return
	}
	if !e.personality.NeverFlees && c.HealthFraction() <= e.personality.FleeThreshold {
		e.transition(state.StateFleeing, tick)
		return
	}
	if _, ok := e.deps.World.Resolve(source); ok {
		c.Blackboard.CombatTarget = source
		e.transition(state.StateCombat, tick)
	}
}

// die runs the terminal death sequence. Safe to invoke on a dead crawler.
func (e *Executor) die(tick uint64) {
	c := e.crawler
	if c.State == state.StateDead {
		return
	}
	from := c.State
	c.State = state.StateDead
	c.Blackboard.StateEnteredTick = tick
	behavior.StateChanged(context.Background(), e.deps.Publisher, tick, e.ref(), behavior.StateChangedPayload{
		From: from.String(),
		To:   state.StateDead.String(),
	})
	behavior.Died(context.Background(), e.deps.Publisher, tick, e.ref())
}

// EnterStasis freezes decision-making and movement. Dead crawlers stay dead.
func (e *Executor) EnterStasis(tick uint64) {
	c := e.crawler
	if c.State == state.StateDead || c.State == state.StateStasis {
		return
	}
	c.Blackboard.PriorState = c.State
	e.transition(state.StateStasis, tick)
}

// ExitStasis resumes the state the crawler froze in.
func (e *Executor) ExitStasis(tick uint64) {
	c := e.crawler
	if c.State != state.StateStasis {
		return
	}
	prior := c.Blackboard.PriorState
	if prior == state.StateStasis || prior == state.StateDead {
		prior = state.StateIdle
	}
	e.transition(prior, tick)
}

// Interact is the hook external dialogue/UI calls on player contact. It only
// notifies observers; presentation never feeds back into decisions.
func (e *Executor) Interact(tick uint64) {
	if e.crawler.State == state.StateDead {
		return
	}
	behavior.Interact(context.Background(), e.deps.Publisher, tick, e.ref())
}
