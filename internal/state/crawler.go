package state

import (
	"dungeon-crawlers/sim/internal/items"
	"dungeon-crawlers/sim/internal/world"
)

// CrawlerState enumerates the behavior states. A crawler is in exactly one
// state at all times; Dead is terminal.
type CrawlerState uint8

const (
	StateIdle CrawlerState = iota
	StatePatrolling
	StateInvestigating
	StateCombat
	StateFleeing
	StateLooting
	StateReturning
	StateAtSafeZone
	StateDead
	StateStasis
)

func (s CrawlerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePatrolling:
		return "patrolling"
	case StateInvestigating:
		return "investigating"
	case StateCombat:
		return "combat"
	case StateFleeing:
		return "fleeing"
	case StateLooting:
		return "looting"
	case StateReturning:
		return "returning"
	case StateAtSafeZone:
		return "at_safezone"
	case StateDead:
		return "dead"
	case StateStasis:
		return "stasis"
	default:
		return "unknown"
	}
}

// Blackboard stores the per-crawler memory the executor needs between ticks.
// All timers are simulation ticks, never wall clock.
type Blackboard struct {
	NextDecisionAt   uint64
	StateEnteredTick uint64
	AttackReadyAt    uint64
	IdleUntil        uint64
	FleeDeadline     uint64
	NextHealAt       uint64

	PatrolTarget    world.Vec2
	HasPatrolTarget bool

	CombatTarget world.Handle
	LootTarget   world.Handle
	SafeZone     world.Handle

	// PriorState lets Stasis resume where the crawler left off.
	PriorState CrawlerState
}

// Crawler is the mutable per-agent simulation state. It is owned by the tick
// that advances it and mutated only by its executor, TakeDamage, or the death
// sequence.
type Crawler struct {
	ID         string
	Archetype  string
	Pos        world.Vec2
	Facing     world.Vec2
	Health     int
	MaxHealth  int
	State      CrawlerState
	Inventory  items.Inventory
	Blackboard Blackboard
}

// HealthFraction returns health normalized to 0..1.
func (c *Crawler) HealthFraction() float64 {
	if c == nil || c.MaxHealth <= 0 {
		return 0
	}
	return float64(c.Health) / float64(c.MaxHealth)
}

// Alive reports whether the crawler has not completed its death sequence.
func (c *Crawler) Alive() bool {
	return c != nil && c.State != StateDead
}

// Snapshot is the read-only view exposed to observers.
type Snapshot struct {
	ID        string     `json:"id"`
	Archetype string     `json:"archetype"`
	Pos       world.Vec2 `json:"pos"`
	Health    int        `json:"health"`
	MaxHealth int        `json:"maxHealth"`
	State     string     `json:"state"`
	Slots     int        `json:"slots"`
	Capacity  int        `json:"capacity"`
	Gold      int        `json:"gold"`
}

// Snapshot returns a sanitized copy for serialization.
func (c *Crawler) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	return Snapshot{
		ID:        c.ID,
		Archetype: c.Archetype,
		Pos:       c.Pos,
		Health:    c.Health,
		MaxHealth: c.MaxHealth,
		State:     c.State.String(),
		Slots:     c.Inventory.UsedSlots(),
		Capacity:  c.Inventory.Capacity(),
		Gold:      c.Inventory.Gold(),
	}
}
