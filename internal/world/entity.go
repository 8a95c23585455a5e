package world

// EntityKind tags the externally-owned entities crawlers can reference.
type EntityKind string

const (
	EntityEnemy    EntityKind = "enemy"
	EntityCorpse   EntityKind = "corpse"
	EntitySafeZone EntityKind = "safezone"
)

// LootSlot holds a quantity of an item type inside a lootable.
type LootSlot struct {
	Type     string
	Quantity int
}

// Lootable exposes a gold amount and a fixed-size slot collection with
// peek/take semantics. Taking clears the slot; untaken loot stays available.
type Lootable struct {
	Gold  int
	Slots []LootSlot
}

// TakeGold removes and returns all gold.
func (l *Lootable) TakeGold() int {
	if l == nil || l.Gold <= 0 {
		return 0
	}
	gold := l.Gold
	l.Gold = 0
	return gold
}

// Peek returns the slot contents without removing them.
func (l *Lootable) Peek(i int) (LootSlot, bool) {
	if l == nil || i < 0 || i >= len(l.Slots) {
		return LootSlot{}, false
	}
	slot := l.Slots[i]
	if slot.Quantity <= 0 || slot.Type == "" {
		return LootSlot{}, false
	}
	return slot, true
}

// Take removes and returns the slot contents.
func (l *Lootable) Take(i int) (LootSlot, bool) {
	slot, ok := l.Peek(i)
	if !ok {
		return LootSlot{}, false
	}
	l.Slots[i] = LootSlot{}
	return slot, true
}

// Empty reports whether no gold or items remain.
func (l *Lootable) Empty() bool {
	if l == nil {
		return true
	}
	if l.Gold > 0 {
		return false
	}
	for _, slot := range l.Slots {
		if slot.Quantity > 0 && slot.Type != "" {
			return false
		}
	}
	return true
}

// Entity is an externally-owned world object crawlers sense and target.
type Entity struct {
	ID        string
	Kind      EntityKind
	Pos       Vec2
	Health    int
	MaxHealth int
	Dead      bool
	Loot      *Lootable

	handle Handle
}

// Handle returns the arena handle assigned when the entity was added.
func (e *Entity) Handle() Handle {
	if e == nil {
		return Handle{}
	}
	return e.handle
}
