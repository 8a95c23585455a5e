package sim

// CommandType enumerates the external control commands the engine accepts.
type CommandType string

const (
	// CommandPause puts every crawler into stasis.
	CommandPause CommandType = "Pause"
	// CommandResume releases every crawler from stasis.
	CommandResume CommandType = "Resume"
	// CommandInteract notifies a crawler of player contact.
	CommandInteract CommandType = "Interact"
	// CommandDamage applies damage to a crawler from an unidentified source.
	CommandDamage CommandType = "Damage"
)

// Command is an intent captured for processing at the start of the next tick.
type Command struct {
	Type      CommandType `json:"type"`
	CrawlerID string      `json:"crawlerId,omitempty"`
	Amount    int         `json:"amount,omitempty"`
}

// Metric counter keys recorded by the engine and loop.
const (
	MetricTicks       = "sim.ticks"
	MetricEnemyDeaths = "sim.enemy_deaths"
	MetricSlowTicks   = "sim.slow_ticks"
)
