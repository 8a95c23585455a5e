package sim

import (
	"dungeon-crawlers/sim/internal/world"
)

// EnemySpec describes one hostile spawn. Loot is what the corpse carries once
// the enemy dies.
type EnemySpec struct {
	ID          string          `yaml:"id"`
	Pos         world.Vec2      `yaml:"-"`
	X           float64         `yaml:"x"`
	Y           float64         `yaml:"y"`
	Health      int             `yaml:"health"`
	Damage      int             `yaml:"damage"`
	AttackRange float64         `yaml:"attack_range"`
	AggroRange  float64         `yaml:"aggro_range"`
	MoveSpeed   float64         `yaml:"move_speed"`
	Cooldown    uint64          `yaml:"attack_cooldown_ticks"`
	Gold        int             `yaml:"gold"`
	Loot        []EnemyLootSpec `yaml:"loot"`
}

// EnemyLootSpec is one slot of corpse loot.
type EnemyLootSpec struct {
	Type     string `yaml:"type"`
	Quantity int    `yaml:"quantity"`
}

func (s EnemySpec) normalized() EnemySpec {
	if s.Health <= 0 {
		s.Health = 30
	}
	if s.Damage <= 0 {
		s.Damage = 5
	}
	if s.AttackRange <= 0 {
		s.AttackRange = 22
	}
	if s.AggroRange <= 0 {
		s.AggroRange = 120
	}
	if s.MoveSpeed <= 0 {
		s.MoveSpeed = 60
	}
	if s.Cooldown == 0 {
		s.Cooldown = 20
	}
	return s
}

// enemy is the engine-side record for one live hostile.
type enemy struct {
	spec    EnemySpec
	handle  world.Handle
	readyAt uint64
}

func (s EnemySpec) lootable() *world.Lootable {
	loot := &world.Lootable{Gold: s.Gold}
	for _, l := range s.Loot {
		if l.Type == "" || l.Quantity <= 0 {
			continue
		}
		loot.Slots = append(loot.Slots, world.LootSlot{Type: l.Type, Quantity: l.Quantity})
	}
	return loot
}
