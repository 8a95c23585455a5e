package ai

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Personality is the immutable per-archetype tuning record. Loaded once at
// startup and shared read-only between every crawler of the archetype.
type Personality struct {
	Name string `yaml:"-"`

	MoveSpeed    float64 `yaml:"move_speed"`
	AttackDamage int     `yaml:"attack_damage"`
	AttackRange  float64 `yaml:"attack_range"`
	AggroRange   float64 `yaml:"aggro_range"`
	LootRange    float64 `yaml:"loot_range"`
	MaxHealth    int     `yaml:"max_health"`

	EngageMinimum   float64 `yaml:"engage_minimum"`
	FleeThreshold   float64 `yaml:"flee_threshold"`
	ReturnThreshold float64 `yaml:"return_threshold"`
	SellThreshold   float64 `yaml:"sell_threshold"`

	AttackBase        float64 `yaml:"attack_base"`
	LootBase          float64 `yaml:"loot_base"`
	ReturnBase        float64 `yaml:"return_base"`
	FleeBase          float64 `yaml:"flee_base"`
	PatrolBase        float64 `yaml:"patrol_base"`
	IdleBase          float64 `yaml:"idle_base"`
	AttackBonus       float64 `yaml:"attack_bonus"`
	LootPriority      float64 `yaml:"loot_priority"`
	ThreatPenalty     float64 `yaml:"threat_penalty_per_enemy"`
	WeakTargetPenalty float64 `yaml:"weak_target_penalty"`
	ProximityRange    float64 `yaml:"proximity_range"`

	MaxSimultaneousEnemies int `yaml:"max_simultaneous_enemies"`

	NeverFlees         bool `yaml:"never_flees"`
	PrefersWeakTargets bool `yaml:"prefers_weak_targets"`
	Reckless           bool `yaml:"reckless"`

	MinItemValueToLoot int `yaml:"min_item_value_to_loot"`

	FleeSpeedMultiplier float64 `yaml:"flee_speed_multiplier"`
	FleeTimeoutTicks    uint64  `yaml:"flee_timeout_ticks"`
	DecisionInterval    uint64  `yaml:"decision_interval_ticks"`
	IdleDwellTicks      uint64  `yaml:"idle_dwell_ticks"`
	AttackCooldown      uint64  `yaml:"attack_cooldown_ticks"`
	HealPerInterval     int     `yaml:"heal_per_interval"`
	HealIntervalTicks   uint64  `yaml:"heal_interval_ticks"`
}

// normalized returns a personality with defaults applied to unset fields.
func (p Personality) normalized() Personality {
	if p.MoveSpeed <= 0 {
		p.MoveSpeed = 90
	}
	if p.AttackDamage <= 0 {
		p.AttackDamage = 8
	}
	if p.AttackRange <= 0 {
		p.AttackRange = 24
	}
	if p.AggroRange <= 0 {
		p.AggroRange = 160
	}
	if p.LootRange <= 0 {
		p.LootRange = 200
	}
	if p.MaxHealth <= 0 {
		p.MaxHealth = 100
	}
	if p.EngageMinimum <= 0 {
		p.EngageMinimum = 0.3
	}
	if p.FleeThreshold <= 0 {
		p.FleeThreshold = 0.2
	}
	if p.ReturnThreshold <= 0 {
		p.ReturnThreshold = 0.35
	}
	if p.SellThreshold <= 0 {
		p.SellThreshold = 0.8
	}
	if p.AttackBase <= 0 {
		p.AttackBase = 0.6
	}
	if p.LootBase <= 0 {
		p.LootBase = 0.5
	}
	if p.ReturnBase <= 0 {
		p.ReturnBase = 0.4
	}
	if p.FleeBase <= 0 {
		p.FleeBase = 0.7
	}
	if p.PatrolBase <= 0 {
		p.PatrolBase = 0.15
	}
	if p.IdleBase <= 0 {
		p.IdleBase = 0.05
	}
	if p.LootPriority <= 0 {
		p.LootPriority = 1
	}
	if p.ThreatPenalty <= 0 {
		p.ThreatPenalty = 0.25
	}
	if p.WeakTargetPenalty <= 0 {
		p.WeakTargetPenalty = 0.1
	}
	if p.ProximityRange <= 0 {
		p.ProximityRange = 400
	}
	if p.MaxSimultaneousEnemies <= 0 {
		p.MaxSimultaneousEnemies = 4
	}
	if p.MinItemValueToLoot <= 0 {
		p.MinItemValueToLoot = 3
	}
	if p.FleeSpeedMultiplier <= 0 {
		p.FleeSpeedMultiplier = 1.4
	}
	if p.FleeTimeoutTicks == 0 {
		p.FleeTimeoutTicks = 90
	}
	if p.DecisionInterval == 0 {
		p.DecisionInterval = 10
	}
	if p.IdleDwellTicks == 0 {
		p.IdleDwellTicks = 20
	}
	if p.AttackCooldown == 0 {
		p.AttackCooldown = 15
	}
	if p.HealPerInterval <= 0 {
		p.HealPerInterval = 10
	}
	if p.HealIntervalTicks == 0 {
		p.HealIntervalTicks = 10
	}
	return p
}

func (p Personality) validate() error {
	if p.FleeThreshold >= p.EngageMinimum && p.FleeThreshold >= 0.5 {
		return fmt.Errorf("personality %s: flee threshold %.2f unreasonably high", p.Name, p.FleeThreshold)
	}
	if p.SellThreshold > 1 {
		return fmt.Errorf("personality %s: sell threshold %.2f above 1", p.Name, p.SellThreshold)
	}
	return nil
}

// PersonalityFile is the on-disk archetype catalog.
type PersonalityFile struct {
	Archetypes map[string]Personality `yaml:"archetypes"`
}

// DefaultPersonality returns the baseline archetype.
func DefaultPersonality(name string) *Personality {
	p := Personality{Name: name}.normalized()
	return &p
}

// LoadPersonalities reads the YAML archetype catalog, applying defaults and
// validating each entry.
func LoadPersonalities(path string) (map[string]*Personality, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePersonalities(raw)
}

// ParsePersonalities decodes an archetype catalog document.
func ParsePersonalities(raw []byte) (map[string]*Personality, error) {
	var file PersonalityFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("personalities: %w", err)
	}
	if len(file.Archetypes) == 0 {
		return nil, fmt.Errorf("personalities: no archetypes defined")
	}
	return NormalizeCatalog(file.Archetypes)
}

// NormalizeCatalog applies defaults and validation to a decoded archetype
// map.
func NormalizeCatalog(archetypes map[string]Personality) (map[string]*Personality, error) {
	out := make(map[string]*Personality, len(archetypes))
	for name, p := range archetypes {
		p.Name = name
		p = p.normalized()
		if err := p.validate(); err != nil {
			return nil, err
		}
		cloned := p
		out[name] = &cloned
	}
	return out, nil
}
