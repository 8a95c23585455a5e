package ai

import "math"

// Action enumerates the scored behaviors. The order is load-bearing: ties
// resolve to the action declared first, which keeps runs reproducible.
type Action uint8

const (
	ActionAttack Action = iota
	ActionLoot
	ActionReturn
	ActionFlee
	ActionPatrol
	ActionIdle

	actionCount
)

func (a Action) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionLoot:
		return "loot"
	case ActionReturn:
		return "return"
	case ActionFlee:
		return "flee"
	case ActionPatrol:
		return "patrol"
	case ActionIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// ScoreVector holds the utility of every action from one evaluation, kept
// for observability.
type ScoreVector [actionCount]float64

// Map converts the vector into a name-keyed map for event payloads.
func (v ScoreVector) Map() map[string]float64 {
	out := make(map[string]float64, actionCount)
	for a := Action(0); a < actionCount; a++ {
		out[a.String()] = v[a]
	}
	return out
}

// Senses carries the world-sense results feeding one evaluation.
type Senses struct {
	EnemyCount    int
	LootableCount int
	SafeZoneDist  float64
	SafeZoneKnown bool
}

// ScoreInput is everything the scorer reads: agent state, inventory state,
// and sensed world.
type ScoreInput struct {
	HealthFraction    float64
	InventoryFullness float64
	InventoryFree     float64
	Senses            Senses
}

// Score computes the utility of every action and returns the winner. Equal
// scores resolve to the earlier action in the enumeration.
func Score(p *Personality, in ScoreInput) (Action, ScoreVector) {
	var v ScoreVector
	v[ActionAttack] = scoreAttack(p, in)
	v[ActionLoot] = scoreLoot(p, in)
	v[ActionReturn] = scoreReturn(p, in)
	v[ActionFlee] = scoreFlee(p, in)
	v[ActionPatrol] = scorePatrol(p, in)
	v[ActionIdle] = p.IdleBase

	best := ActionAttack
	for a := Action(1); a < actionCount; a++ {
		if v[a] > v[best] {
			best = a
		}
	}
	return best, v
}

func scoreAttack(p *Personality, in ScoreInput) float64 {
	if in.Senses.EnemyCount == 0 {
		return 0
	}
	if in.HealthFraction < p.EngageMinimum && !p.Reckless {
		return 0
	}
	pressure := 1 - float64(in.Senses.EnemyCount)/float64(p.MaxSimultaneousEnemies+1)
	if pressure < 0.1 {
		pressure = 0.1
	}
	score := p.AttackBase*in.HealthFraction*pressure + p.AttackBonus
	if p.PrefersWeakTargets {
		score -= p.WeakTargetPenalty
	}
	if score < 0 {
		return 0
	}
	return score
}

func scoreLoot(p *Personality, in ScoreInput) float64 {
	if in.Senses.LootableCount == 0 || in.InventoryFree <= 0.05 {
		return 0
	}
	score := p.LootBase * p.LootPriority * in.InventoryFree *
		(1 - float64(in.Senses.EnemyCount)*p.ThreatPenalty)
	if score < 0 {
		return 0
	}
	return score
}

func scoreReturn(p *Personality, in ScoreInput) float64 {
	if in.HealthFraction <= p.ReturnThreshold {
		return 2 * p.ReturnBase
	}
	if in.InventoryFullness >= p.SellThreshold {
		return 1.5 * p.ReturnBase
	}
	urgency := math.Max(1-in.HealthFraction, in.InventoryFullness)
	proximity := 0.0
	if in.Senses.SafeZoneKnown {
		proximity = 1 - in.Senses.SafeZoneDist/p.ProximityRange
		if proximity < 0 {
			proximity = 0
		}
	}
	return p.ReturnBase * urgency * (0.5 + 0.5*proximity)
}

func scoreFlee(p *Personality, in ScoreInput) float64 {
	if p.NeverFlees {
		return 0
	}
	if in.HealthFraction <= p.FleeThreshold {
		return 2 * p.FleeBase
	}
	load := float64(in.Senses.EnemyCount) / float64(p.MaxSimultaneousEnemies+1)
	if load > 1 {
		load = 1
	}
	if in.HealthFraction < 0.4 && load > 0.5 {
		return p.FleeBase * load
	}
	return 0
}

func scorePatrol(p *Personality, in ScoreInput) float64 {
	if in.Senses.EnemyCount > 0 {
		return 0
	}
	if in.HealthFraction <= p.ReturnThreshold || in.InventoryFullness >= p.SellThreshold {
		return 0
	}
	return p.PatrolBase
}
