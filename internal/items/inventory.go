package items

import (
	"errors"
	"fmt"
)

// ErrInventoryFull is returned when no stack can merge and no slot is free.
var ErrInventoryFull = errors.New("inventory full")

// DefaultCapacity matches the crawler pack size used by the spawner.
const DefaultCapacity = 25

// Stack is a quantity of one item type.
type Stack struct {
	Type     ItemType `json:"type"`
	Quantity int      `json:"quantity"`
}

// Empty reports whether the slot holds nothing.
func (s Stack) Empty() bool {
	return s.Type == "" || s.Quantity <= 0
}

// Inventory is a fixed-capacity ordered slot array. Equipment occupies exactly
// one slot per item; other classes merge onto existing stacks first.
type Inventory struct {
	slots []Stack
}

// NewInventory allocates an inventory with the given slot count.
func NewInventory(capacity int) Inventory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return Inventory{slots: make([]Stack, capacity)}
}

// Capacity returns the fixed slot count.
func (inv *Inventory) Capacity() int {
	return len(inv.slots)
}

// UsedSlots counts occupied slots.
func (inv *Inventory) UsedSlots() int {
	used := 0
	for _, s := range inv.slots {
		if !s.Empty() {
			used++
		}
	}
	return used
}

// Fullness returns occupied slots as a fraction of capacity.
func (inv *Inventory) Fullness() float64 {
	if len(inv.slots) == 0 {
		return 1
	}
	return float64(inv.UsedSlots()) / float64(len(inv.slots))
}

// FreeFraction returns the remaining slot fraction.
func (inv *Inventory) FreeFraction() float64 {
	return 1 - inv.Fullness()
}

// Slot returns the stack at index.
func (inv *Inventory) Slot(i int) (Stack, bool) {
	if i < 0 || i >= len(inv.slots) {
		return Stack{}, false
	}
	return inv.slots[i], true
}

// AddStack merges onto an existing compatible stack first (same type, not
// equipment, under the per-type max), then fills empty slots in chunks of
// the per-type max. The add is all or nothing: when the chunks do not fit,
// nothing is placed and ErrInventoryFull is returned. On success it returns
// the first slot index used.
func (inv *Inventory) AddStack(stack Stack) (int, error) {
	if stack.Empty() {
		return -1, fmt.Errorf("add stack: empty stack")
	}
	def, ok := DefinitionFor(stack.Type)
	if !ok {
		return -1, fmt.Errorf("add stack: unknown item type %q", stack.Type)
	}

	if !def.Equipment() {
		for i, existing := range inv.slots {
			if existing.Empty() || existing.Type != stack.Type {
				continue
			}
			if existing.Quantity+stack.Quantity > def.MaxStack {
				continue
			}
			inv.slots[i].Quantity += stack.Quantity
			return i, nil
		}
	}

	needed := (stack.Quantity + def.MaxStack - 1) / def.MaxStack
	empty := make([]int, 0, needed)
	for i, existing := range inv.slots {
		if !existing.Empty() {
			continue
		}
		empty = append(empty, i)
		if len(empty) == needed {
			break
		}
	}
	if len(empty) < needed {
		return -1, ErrInventoryFull
	}

	remaining := stack.Quantity
	for _, i := range empty {
		take := remaining
		if take > def.MaxStack {
			take = def.MaxStack
		}
		inv.slots[i] = Stack{Type: stack.Type, Quantity: take}
		remaining -= take
	}
	return empty[0], nil
}

// RemoveQuantity decrements a slot by count, clearing it when it reaches zero.
func (inv *Inventory) RemoveQuantity(slot, count int) (Stack, error) {
	if slot < 0 || slot >= len(inv.slots) {
		return Stack{}, fmt.Errorf("remove quantity: slot %d out of range", slot)
	}
	existing := inv.slots[slot]
	if existing.Empty() {
		return Stack{}, fmt.Errorf("remove quantity: slot %d is empty", slot)
	}
	if count <= 0 || count > existing.Quantity {
		return Stack{}, fmt.Errorf("remove quantity: invalid count %d for slot %d", count, slot)
	}
	removed := Stack{Type: existing.Type, Quantity: count}
	remaining := existing.Quantity - count
	if remaining == 0 {
		inv.slots[slot] = Stack{}
	} else {
		inv.slots[slot].Quantity = remaining
	}
	return removed, nil
}

// Clear empties every slot.
func (inv *Inventory) Clear() {
	for i := range inv.slots {
		inv.slots[i] = Stack{}
	}
}

// Gold sums the quantity of currency stacks.
func (inv *Inventory) Gold() int {
	total := 0
	for _, s := range inv.slots {
		if s.Type == TypeGold {
			total += s.Quantity
		}
	}
	return total
}

// Stacks returns a copy of the occupied slots in order.
func (inv *Inventory) Stacks() []Stack {
	out := make([]Stack, 0, len(inv.slots))
	for _, s := range inv.slots {
		if !s.Empty() {
			out = append(out, s)
		}
	}
	return out
}
