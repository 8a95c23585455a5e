package world

// Handle is a generation-checked reference into an Arena. A handle taken
// before its entity was removed resolves to nothing afterwards, so stale
// targets are detected by comparison instead of dangling pointers.
type Handle struct {
	Index uint32
	Gen   uint32
}

// Zero reports whether the handle was never assigned.
func (h Handle) Zero() bool {
	return h.Gen == 0
}

type arenaSlot struct {
	gen    uint32
	entity *Entity
	live   bool
}

// Arena owns entity storage and hands out generational handles.
type Arena struct {
	slots []arenaSlot
	free  []uint32
}

func NewArena() *Arena {
	return &Arena{}
}

// Add stores the entity and returns its handle.
func (a *Arena) Add(entity *Entity) Handle {
	if a == nil || entity == nil {
		return Handle{}
	}
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		slot := &a.slots[idx]
		slot.gen++
		slot.entity = entity
		slot.live = true
		entity.handle = Handle{Index: idx, Gen: slot.gen}
		return entity.handle
	}
	idx := uint32(len(a.slots))
	a.slots = append(a.slots, arenaSlot{gen: 1, entity: entity, live: true})
	entity.handle = Handle{Index: idx, Gen: 1}
	return entity.handle
}

// Resolve returns the live entity for the handle, or false when the handle is
// stale or was never assigned.
func (a *Arena) Resolve(h Handle) (*Entity, bool) {
	if a == nil || h.Zero() || int(h.Index) >= len(a.slots) {
		return nil, false
	}
	slot := &a.slots[h.Index]
	if !slot.live || slot.gen != h.Gen {
		return nil, false
	}
	return slot.entity, true
}

// Remove frees the slot so later resolves of the old handle fail.
func (a *Arena) Remove(h Handle) {
	if a == nil || h.Zero() || int(h.Index) >= len(a.slots) {
		return
	}
	slot := &a.slots[h.Index]
	if !slot.live || slot.gen != h.Gen {
		return
	}
	slot.live = false
	slot.entity = nil
	a.free = append(a.free, h.Index)
}

// Each calls fn for every live entity.
func (a *Arena) Each(fn func(Handle, *Entity)) {
	if a == nil || fn == nil {
		return
	}
	for i := range a.slots {
		slot := &a.slots[i]
		if slot.live {
			fn(Handle{Index: uint32(i), Gen: slot.gen}, slot.entity)
		}
	}
}
