package sim

import (
	"dungeon-crawlers/sim/internal/state"
	"dungeon-crawlers/sim/internal/world"
)

// EnemyView is the observer-facing slice of one hostile.
type EnemyView struct {
	ID        string     `json:"id"`
	Pos       world.Vec2 `json:"pos"`
	Health    int        `json:"health"`
	MaxHealth int        `json:"maxHealth"`
}

// CorpseView is the observer-facing slice of one lootable corpse.
type CorpseView struct {
	ID   string     `json:"id"`
	Pos  world.Vec2 `json:"pos"`
	Gold int        `json:"gold"`
}

// Snapshot is the full observer state for one tick.
type Snapshot struct {
	Tick     uint64           `json:"tick"`
	Paused   bool             `json:"paused"`
	Crawlers []state.Snapshot `json:"crawlers"`
	Enemies  []EnemyView      `json:"enemies"`
	Corpses  []CorpseView     `json:"corpses"`
}

// Snapshot builds the observer view. Call only from the tick goroutine.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:     e.tick,
		Paused:   e.paused,
		Crawlers: make([]state.Snapshot, 0, len(e.crawlerIDs)),
	}
	for _, id := range e.crawlerIDs {
		snap.Crawlers = append(snap.Crawlers, e.crawlers[id].Crawler().Snapshot())
	}
	for _, en := range e.enemies {
		entity, ok := e.world.Resolve(en.handle)
		if !ok || entity.Dead {
			continue
		}
		snap.Enemies = append(snap.Enemies, EnemyView{
			ID:        entity.ID,
			Pos:       entity.Pos,
			Health:    entity.Health,
			MaxHealth: entity.MaxHealth,
		})
	}
	for _, h := range e.corpses {
		entity, ok := e.world.Resolve(h)
		if !ok {
			continue
		}
		gold := 0
		if entity.Loot != nil {
			gold = entity.Loot.Gold
		}
		snap.Corpses = append(snap.Corpses, CorpseView{ID: entity.ID, Pos: entity.Pos, Gold: gold})
	}
	return snap
}
