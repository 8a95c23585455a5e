package economy

import (
	"context"

	"dungeon-crawlers/sim/logging"
)

const (
	// EventLootTaken is emitted when a crawler pulls gold or an item from a
	// corpse.
	EventLootTaken logging.EventType = "economy.loot_taken"
	// EventLootSkipped is emitted when a lootable item is left behind.
	EventLootSkipped logging.EventType = "economy.loot_skipped"
	// EventInventoryFull is emitted when a pickup fails for lack of space.
	EventInventoryFull logging.EventType = "economy.inventory_full"
	// EventItemsSold is emitted when a crawler sells its inventory at a safe
	// zone.
	EventItemsSold logging.EventType = "economy.items_sold"
)

// LootTakenPayload describes a successful pickup.
type LootTakenPayload struct {
	ItemType string `json:"itemType,omitempty"`
	Quantity int    `json:"quantity"`
	Gold     int    `json:"gold,omitempty"`
}

// LootSkippedPayload explains why an item stayed on the corpse.
type LootSkippedPayload struct {
	ItemType string `json:"itemType"`
	Reason   string `json:"reason"`
}

// ItemsSoldPayload summarizes a safe-zone sale.
type ItemsSoldPayload struct {
	SlotsSold int `json:"slotsSold"`
	GoldTotal int `json:"goldTotal"`
}

// LootTaken publishes a successful pickup event.
func LootTaken(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload LootTakenPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLootTaken,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEconomy,
		Payload:  payload,
	})
}

// LootSkipped publishes a left-behind item event.
func LootSkipped(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload LootSkippedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLootSkipped,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryEconomy,
		Payload:  payload,
	})
}

// InventoryFull publishes a failed pickup caused by a full inventory.
func InventoryFull(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, itemType string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventInventoryFull,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryEconomy,
		Payload:  LootSkippedPayload{ItemType: itemType, Reason: "inventory_full"},
	})
}

// ItemsSold publishes a safe-zone sale event.
func ItemsSold(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ItemsSoldPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventItemsSold,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEconomy,
		Payload:  payload,
	})
}
