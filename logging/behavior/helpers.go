package behavior

import (
	"context"

	"dungeon-crawlers/sim/logging"
)

const (
	// EventStateChanged is emitted whenever a crawler transitions between
	// behavior states.
	EventStateChanged logging.EventType = "behavior.state_changed"
	// EventDecision is emitted after each utility evaluation with the full
	// score vector.
	EventDecision logging.EventType = "behavior.decision"
	// EventDamageTaken is emitted when a crawler takes damage.
	EventDamageTaken logging.EventType = "behavior.damage_taken"
	// EventDied is emitted once when a crawler's death sequence runs.
	EventDied logging.EventType = "behavior.died"
	// EventStuck is emitted when stuck detection forces a new patrol target.
	EventStuck logging.EventType = "behavior.stuck"
	// EventInteract is emitted when an external presentation layer opens an
	// interaction with a crawler.
	EventInteract logging.EventType = "behavior.interact"
)

// StateChangedPayload describes a behavior state transition.
type StateChangedPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// DecisionPayload carries the chosen action and the per-action utilities.
type DecisionPayload struct {
	Chosen string             `json:"chosen"`
	Scores map[string]float64 `json:"scores"`
}

// DamageTakenPayload describes an applied hit.
type DamageTakenPayload struct {
	Amount    int    `json:"amount"`
	Remaining int    `json:"remaining"`
	SourceID  string `json:"sourceId,omitempty"`
}

// StuckPayload records how little ground was covered before re-targeting.
type StuckPayload struct {
	Displacement float64 `json:"displacement"`
	WindowTicks  int     `json:"windowTicks"`
}

// StateChanged publishes a state transition event.
func StateChanged(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload StateChangedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventStateChanged,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryBehavior,
		Payload:  payload,
	})
}

// Decision publishes the outcome of a utility evaluation.
func Decision(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload DecisionPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDecision,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryBehavior,
		Payload:  payload,
	})
}

// DamageTaken publishes an applied hit.
func DamageTaken(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload DamageTakenPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDamageTaken,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryBehavior,
		Payload:  payload,
	})
}

// Died publishes the terminal death event.
func Died(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDied,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryBehavior,
	})
}

// Interact publishes an external interaction hook firing.
func Interact(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventInteract,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryBehavior,
	})
}

// Stuck publishes a stuck-detection firing.
func Stuck(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload StuckPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventStuck,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryBehavior,
		Payload:  payload,
	})
}
