package explore

import (
	"math"

	"dungeon-crawlers/sim/internal/world"
)

// Cell is an integer grid coordinate derived from a world position.
type Cell struct {
	Col int
	Row int
}

// Rand is the randomness the grid needs for its fallback targets.
type Rand interface {
	Float64() float64
}

// Config tunes cell size, marking cadence and search limits.
type Config struct {
	CellSize     float64
	MarkCadence  uint64
	SearchRadius int
	PatrolRadius float64
	NudgeDist    float64
	RandomTries  int
}

func (c Config) normalized() Config {
	if c.CellSize <= 0 {
		c.CellSize = 48
	}
	if c.MarkCadence == 0 {
		c.MarkCadence = 8
	}
	if c.SearchRadius <= 0 {
		c.SearchRadius = 6
	}
	if c.PatrolRadius <= 0 {
		c.PatrolRadius = 260
	}
	if c.NudgeDist <= 0 {
		c.NudgeDist = c.CellSize * 1.5
	}
	if c.RandomTries <= 0 {
		c.RandomTries = 6
	}
	return c
}

// Grid tracks the cells a crawler has visited and supplies frontier patrol
// targets. The visited set only grows; it is discarded with the crawler.
type Grid struct {
	cfg      Config
	visited  map[Cell]struct{}
	lastMark uint64
	marked   bool
}

func NewGrid(cfg Config) *Grid {
	return &Grid{cfg: cfg.normalized(), visited: make(map[Cell]struct{})}
}

// CellFor maps a world position onto the integer grid.
func (g *Grid) CellFor(pos world.Vec2) Cell {
	return Cell{
		Col: int(math.Floor(pos.X / g.cfg.CellSize)),
		Row: int(math.Floor(pos.Y / g.cfg.CellSize)),
	}
}

func (g *Grid) center(c Cell) world.Vec2 {
	return world.Vec2{
		X: (float64(c.Col) + 0.5) * g.cfg.CellSize,
		Y: (float64(c.Row) + 0.5) * g.cfg.CellSize,
	}
}

// MarkVisited records the cell under pos. Marking is throttled to the
// configured cadence; the first mark always lands.
func (g *Grid) MarkVisited(pos world.Vec2, tick uint64) {
	if g == nil {
		return
	}
	if g.marked && tick < g.lastMark+g.cfg.MarkCadence {
		return
	}
	g.marked = true
	g.lastMark = tick
	g.visited[g.CellFor(pos)] = struct{}{}
}

// Visited reports whether the cell was ever marked.
func (g *Grid) Visited(c Cell) bool {
	if g == nil {
		return false
	}
	_, ok := g.visited[c]
	return ok
}

// VisitedCount returns the size of the visited set.
func (g *Grid) VisitedCount() int {
	if g == nil {
		return 0
	}
	return len(g.visited)
}

// NextTarget picks the nearest unvisited reachable cell within the search
// radius, searching outward ring by ring. When the frontier is exhausted it
// falls back to a random reachable point inside the patrol radius, and
// finally to a fixed-distance nudge in a random direction.
func (g *Grid) NextTarget(pos world.Vec2, q world.Query, rng Rand) world.Vec2 {
	if g == nil || q == nil {
		return pos
	}
	origin := g.CellFor(pos)

	for radius := 1; radius <= g.cfg.SearchRadius; radius++ {
		best := world.Vec2{}
		bestDist := math.MaxFloat64
		found := false
		for _, cell := range ringCells(origin, radius) {
			if g.Visited(cell) {
				continue
			}
			candidate := g.center(cell)
			if !reachable(q, pos, candidate) {
				continue
			}
			dist := world.Dist(pos, candidate)
			if dist < bestDist {
				bestDist = dist
				best = candidate
				found = true
			}
		}
		if found {
			return best
		}
	}

	if rng != nil {
		for i := 0; i < g.cfg.RandomTries; i++ {
			angle := rng.Float64() * 2 * math.Pi
			dist := g.cfg.PatrolRadius * math.Sqrt(rng.Float64())
			candidate := world.Vec2{
				X: pos.X + math.Cos(angle)*dist,
				Y: pos.Y + math.Sin(angle)*dist,
			}
			if reachable(q, pos, candidate) {
				return candidate
			}
		}
		angle := rng.Float64() * 2 * math.Pi
		return world.Vec2{
			X: pos.X + math.Cos(angle)*g.cfg.NudgeDist,
			Y: pos.Y + math.Sin(angle)*g.cfg.NudgeDist,
		}
	}
	return world.Vec2{X: pos.X + g.cfg.NudgeDist, Y: pos.Y}
}

func reachable(q world.Query, from, to world.Vec2) bool {
	return q.HasFloor(to) && q.LineOfSight(from, to)
}

// ringCells enumerates the cells at Chebyshev distance radius from the origin
// in a fixed scan order.
func ringCells(origin Cell, radius int) []Cell {
	if radius <= 0 {
		return []Cell{origin}
	}
	cells := make([]Cell, 0, radius*8)
	for col := origin.Col - radius; col <= origin.Col+radius; col++ {
		cells = append(cells, Cell{Col: col, Row: origin.Row - radius})
		cells = append(cells, Cell{Col: col, Row: origin.Row + radius})
	}
	for row := origin.Row - radius + 1; row <= origin.Row+radius-1; row++ {
		cells = append(cells, Cell{Col: origin.Col - radius, Row: row})
		cells = append(cells, Cell{Col: origin.Col + radius, Row: row})
	}
	return cells
}
