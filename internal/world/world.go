package world

import "math"

// Query is the spatial-query service crawlers consume. The underlying
// navigation/physics engine stays behind this interface; the simulation core
// never walks world geometry directly.
type Query interface {
	// LineOfSight reports whether the segment between two points is free of
	// blocking obstacles.
	LineOfSight(a, b Vec2) bool
	// HasFloor reports whether a candidate point has valid floor beneath it.
	HasFloor(p Vec2) bool
	// Resolve returns the live entity for a handle.
	Resolve(h Handle) (*Entity, bool)
	// Nearest returns the closest live entity of the kind within radius.
	Nearest(pos Vec2, kind EntityKind, radius float64) (Handle, bool)
	// CountWithin counts live entities of the kind within radius.
	CountWithin(pos Vec2, kind EntityKind, radius float64) int
}

// Config captures the world dimensions and static geometry.
type Config struct {
	Width     float64
	Height    float64
	Obstacles []Obstacle
	Pits      []Pit
}

const (
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
)

// World owns the externally-managed entity registries and answers spatial
// queries against static geometry.
type World struct {
	cfg   Config
	arena *Arena
}

func New(cfg Config) *World {
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}
	return &World{cfg: cfg, arena: NewArena()}
}

func (w *World) Width() float64  { return w.cfg.Width }
func (w *World) Height() float64 { return w.cfg.Height }

// Add registers an entity and returns its handle.
func (w *World) Add(entity *Entity) Handle {
	if w == nil {
		return Handle{}
	}
	return w.arena.Add(entity)
}

// Remove invalidates every outstanding handle to the entity.
func (w *World) Remove(h Handle) {
	if w == nil {
		return
	}
	w.arena.Remove(h)
}

func (w *World) Resolve(h Handle) (*Entity, bool) {
	if w == nil {
		return nil, false
	}
	return w.arena.Resolve(h)
}

func (w *World) LineOfSight(a, b Vec2) bool {
	if w == nil {
		return false
	}
	for _, obs := range w.cfg.Obstacles {
		if segmentIntersectsRect(a, b, obs) {
			return false
		}
	}
	return true
}

func (w *World) HasFloor(p Vec2) bool {
	if w == nil {
		return false
	}
	if p.X < 0 || p.X > w.cfg.Width || p.Y < 0 || p.Y > w.cfg.Height {
		return false
	}
	for _, pit := range w.cfg.Pits {
		if pit.contains(p) {
			return false
		}
	}
	for _, obs := range w.cfg.Obstacles {
		if obs.contains(p) {
			return false
		}
	}
	return true
}

// Nearest picks the closest live entity of the kind, breaking distance ties by
// lowest ID so repeated queries stay deterministic.
func (w *World) Nearest(pos Vec2, kind EntityKind, radius float64) (Handle, bool) {
	if w == nil {
		return Handle{}, false
	}
	bestID := ""
	bestDist := math.MaxFloat64
	var best Handle
	found := false
	limit := radius * radius
	w.arena.Each(func(h Handle, e *Entity) {
		if e.Kind != kind || e.Dead && kind != EntityCorpse {
			return
		}
		distSq := DistSq(pos, e.Pos)
		if radius > 0 && distSq > limit {
			return
		}
		if distSq < bestDist-1e-6 || (math.Abs(distSq-bestDist) <= 1e-6 && e.ID < bestID) {
			bestDist = distSq
			bestID = e.ID
			best = h
			found = true
		}
	})
	return best, found
}

func (w *World) CountWithin(pos Vec2, kind EntityKind, radius float64) int {
	if w == nil {
		return 0
	}
	count := 0
	limit := radius * radius
	w.arena.Each(func(_ Handle, e *Entity) {
		if e.Kind != kind {
			return
		}
		if e.Kind == EntityEnemy && e.Dead {
			return
		}
		if DistSq(pos, e.Pos) <= limit {
			count++
		}
	})
	return count
}
