package sim

import (
	"math/rand"

	"dungeon-crawlers/sim/internal/telemetry"
	"dungeon-crawlers/sim/logging"
)

// Deps carries shared infrastructure dependencies required by the engine.
type Deps struct {
	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
	Clock     logging.Clock
	RNG       *rand.Rand
	Publisher logging.Publisher
}

func (d Deps) normalized() Deps {
	if d.Metrics == nil {
		d.Metrics = telemetry.NopMetrics()
	}
	if d.Clock == nil {
		d.Clock = logging.SystemClock{}
	}
	if d.RNG == nil {
		d.RNG = rand.New(rand.NewSource(1))
	}
	if d.Publisher == nil {
		d.Publisher = logging.NopPublisher()
	}
	return d
}
