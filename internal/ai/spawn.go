package ai

import (
	"fmt"

	"github.com/google/uuid"

	"dungeon-crawlers/sim/internal/items"
	"dungeon-crawlers/sim/internal/state"
	"dungeon-crawlers/sim/internal/world"
)

// Spawn builds a fresh crawler of the given archetype at pos. The crawler
// starts Idle with full health and an empty inventory.
func Spawn(archetype string, p *Personality, pos world.Vec2) (*state.Crawler, error) {
	if p == nil {
		return nil, fmt.Errorf("spawn %q: nil personality", archetype)
	}
	c := &state.Crawler{
		ID:        uuid.NewString(),
		Archetype: archetype,
		Pos:       pos,
		Facing:    world.Vec2{X: 1},
		Health:    p.MaxHealth,
		MaxHealth: p.MaxHealth,
		State:     state.StateIdle,
		Inventory: items.NewInventory(items.DefaultCapacity),
	}
	return c, nil
}
